package out_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	collectionout "daing/internal/modules/collection/adapter/out"
	"daing/internal/modules/collection/domain"
	"daing/internal/modules/collection/dto"
	"daing/internal/modules/collection/service"
	"daing/internal/modules/collection/usecase"
	"daing/internal/platform/clock"
	"daing/internal/platform/config"
	apperrors "daing/internal/platform/errors"
	"daing/internal/platform/httpclient"
	"daing/internal/platform/logging"
)

const base = "http://10.0.0.5:8000"

func testConfig(t *testing.T, server string) config.Config {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	cfg, err = cfg.WithServerURL(server)
	require.NoError(t, err)
	cfg.Retry = config.Retry{Attempts: 2, Delay: time.Millisecond}
	return cfg
}

func mockGateway(t *testing.T, server string) (*httpmock.MockTransport, *collectionout.HTTPGateway) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	client := httpclient.New(httpclient.WithHTTPClient(&http.Client{Transport: mt}))
	gw := collectionout.NewHTTPGateway(client, testConfig(t, server)).(*collectionout.HTTPGateway)
	return mt, gw
}

func TestEndToEndThreeEntriesTwoDates(t *testing.T) {
	t.Parallel()
	mt, gw := mockGateway(t, base+"/")
	mt.RegisterResponder(http.MethodGet, base+"/history", httpmock.NewStringResponder(http.StatusOK, `{
		"entries": [
			{"id": "s1", "url": "http://10.0.0.5:8000/images/s1.jpg", "timestamp": "2024-06-01T09:00:00"},
			{"id": "s2", "url": "/images/s2.jpg", "timestamp": "2024-06-02T10:00:00", "folder": "history"},
			{"id": 3, "url": "images/s3.jpg", "timestamp": "2024-06-02T11:30:00.250000"}
		]
	}`))

	uc := usecase.NewInteractor(
		service.NewCollectionService(gw, logging.Discard()),
		clock.Fixed{At: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)},
	)
	out, err := uc.List(context.Background(), dto.ListInput{Kind: string(domain.KindHistory)})
	require.NoError(t, err)

	require.Len(t, out.Entries, 3)
	assert.Equal(t, "3", out.Entries[2].ID, "numeric ids are read as strings")
	assert.Equal(t, base+"/images/s2.jpg", out.Entries[1].URL)
	assert.Equal(t, base+"/images/s3.jpg", out.Entries[2].URL)

	require.Len(t, out.Sections, 2)
	newest, oldest := out.Sections[0], out.Sections[1]
	assert.Equal(t, "2024-06-02", newest.Key)
	assert.Equal(t, "2024-06-01", oldest.Key)
	for _, section := range out.Sections {
		require.Len(t, section.Rows, 1)
		require.Len(t, section.Rows[0], domain.RowWidth)
	}
	assert.Equal(t, "3", newest.Rows[0][0].Entry.ID)
	assert.Equal(t, "s2", newest.Rows[0][1].Entry.ID)
	assert.True(t, newest.Rows[0][2].Placeholder)
	assert.False(t, oldest.Rows[0][0].Placeholder)
	assert.True(t, oldest.Rows[0][1].Placeholder)
	assert.True(t, oldest.Rows[0][2].Placeholder)
}

func TestFetchMalformedPayloads(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"missing entries":  `{"items": []}`,
		"entries object":   `{"entries": {"id": "x"}}`,
		"entries string":   `{"entries": "nope"}`,
		"not json":         `<html>bad gateway</html>`,
		"entry without id": `{"entries": [{"url": "/x.jpg"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			mt, gw := mockGateway(t, base)
			mt.RegisterResponder(http.MethodGet, base+"/auto-dataset", httpmock.NewStringResponder(http.StatusOK, body))

			entries, err := service.NewCollectionService(gw, logging.Discard()).Fetch(context.Background(), domain.KindAutoDataset)
			require.NoError(t, err)
			assert.NotNil(t, entries)
			assert.Empty(t, entries)
		})
	}
}

func TestFetchReportsMalformedToService(t *testing.T) {
	t.Parallel()
	mt, gw := mockGateway(t, base)
	mt.RegisterResponder(http.MethodGet, base+"/history", httpmock.NewStringResponder(http.StatusOK, `{"entries": 5}`))
	_, err := gw.Fetch(context.Background(), domain.KindHistory)
	assert.ErrorIs(t, err, apperrors.ErrMalformed)
}

func TestDeleteEscapesIDAndIsNotRetried(t *testing.T) {
	t.Parallel()
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		mu.Lock()
		paths = append(paths, r.URL.EscapedPath())
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "disk full"}`))
	}))
	t.Cleanup(srv.Close)

	gw := collectionout.NewHTTPGateway(httpclient.New(), testConfig(t, srv.URL))
	err := gw.Delete(context.Background(), domain.KindHistory, "scan 1/a")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrServer)
	assert.Equal(t, "disk full", apperrors.UserMessage(err, srv.URL))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/history/scan%201%2Fa"}, paths)
}

func TestDeleteConnectionErrorIsSentOnce(t *testing.T) {
	t.Parallel()
	mt, gw := mockGateway(t, base)
	mt.RegisterResponder(http.MethodDelete, base+"/auto-dataset/danggit_good.jpg",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	err := gw.Delete(context.Background(), domain.KindAutoDataset, "danggit_good.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnreachable)
	assert.Equal(t, 1, mt.GetTotalCallCount())
}
