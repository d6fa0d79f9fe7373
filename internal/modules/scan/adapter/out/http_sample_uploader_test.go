package out_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scanout "daing/internal/modules/scan/adapter/out"
	"daing/internal/modules/scan/domain"
	apperrors "daing/internal/platform/errors"
)

func TestUploadSendsLabelsOnce(t *testing.T) {
	t.Parallel()
	mt, client, cfg := newMock(t)
	mt.RegisterResponder(http.MethodPost, base+"/upload-dataset", func(req *http.Request) (*http.Response, error) {
		require.NoError(t, req.ParseMultipartForm(1<<20))
		assert.Equal(t, "dried_squid", req.FormValue("fish_type"))
		assert.Equal(t, "good", req.FormValue("condition"))
		_, header, err := req.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "fish.jpg", header.Filename)
		return httpmock.NewStringResponse(http.StatusOK, `{"status": "success", "message": "Saved"}`), nil
	})

	result, err := scanout.NewHTTPSampleUploader(client, cfg).Upload(context.Background(), testImage(), "dried_squid", domain.ConditionGood)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Saved", result.Message)
	assert.Equal(t, 1, mt.GetTotalCallCount())
}

func TestUploadInterpretsStatus(t *testing.T) {
	t.Parallel()
	mt, client, cfg := newMock(t)
	mt.RegisterResponder(http.MethodPost, base+"/upload-dataset",
		httpmock.NewStringResponder(http.StatusOK, `{"status": "error", "message": "duplicate sample"}`))

	result, err := scanout.NewHTTPSampleUploader(client, cfg).Upload(context.Background(), testImage(), "danggit", domain.ConditionBad)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "duplicate sample", result.Message)
}

func TestUploadUnexpectedShape(t *testing.T) {
	t.Parallel()
	mt, client, cfg := newMock(t)
	mt.RegisterResponder(http.MethodPost, base+"/upload-dataset", httpmock.NewStringResponder(http.StatusOK, `{"ok": true}`))

	_, err := scanout.NewHTTPSampleUploader(client, cfg).Upload(context.Background(), testImage(), "danggit", domain.ConditionGood)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMalformed)
}

func TestUploadIsNeverRetried(t *testing.T) {
	t.Parallel()
	mt, client, cfg := newMock(t)
	mt.RegisterResponder(http.MethodPost, base+"/upload-dataset", httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := scanout.NewHTTPSampleUploader(client, cfg).Upload(context.Background(), testImage(), "danggit", domain.ConditionGood)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnreachable)
	assert.Equal(t, 1, mt.GetTotalCallCount())
}
