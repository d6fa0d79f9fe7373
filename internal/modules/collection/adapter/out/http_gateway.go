package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"daing/internal/modules/collection/domain"
	collectionout "daing/internal/modules/collection/port/out"
	"daing/internal/platform/config"
	"daing/internal/platform/endpoint"
	"daing/internal/platform/httpclient"
)

type HTTPGateway struct {
	client        *httpclient.Client
	endpoints     endpoint.Endpoints
	fetchTimeout  time.Duration
	deleteTimeout time.Duration
	fetchRetry    httpclient.RetryPolicy
}

func NewHTTPGateway(client *httpclient.Client, cfg config.Config) collectionout.Gateway {
	return &HTTPGateway{
		client:        client,
		endpoints:     cfg.Endpoints(),
		fetchTimeout:  cfg.Timeouts.Fetch,
		deleteTimeout: cfg.Timeouts.Delete,
		fetchRetry:    httpclient.RetryPolicy{Attempts: cfg.Retry.Attempts, Delay: cfg.Retry.Delay},
	}
}

type collectionPayload struct {
	Entries []wireEntry `json:"entries"`
}

type wireEntry struct {
	ID        flexString `json:"id"`
	URL       string     `json:"url"`
	Timestamp string     `json:"timestamp"`
	Folder    string     `json:"folder"`
}

// flexString accepts ids sent either as JSON strings or numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

// Fetch is a safe read, so transient failures are retried like analyze.
func (g *HTTPGateway) Fetch(ctx context.Context, kind domain.Kind) ([]domain.Entry, error) {
	collectionURL, err := g.collectionURL(kind)
	if err != nil {
		return nil, err
	}
	req := httpclient.Request{Op: "list " + string(kind), Method: http.MethodGet, URL: collectionURL, Timeout: g.fetchTimeout}
	resp, _, err := g.client.SendWithRetry(ctx, req, g.fetchRetry)
	if err != nil {
		return nil, err
	}
	var payload collectionPayload
	if err := httpclient.DecodeJSON(req, resp, &payload); err != nil {
		return nil, err
	}

	out := make([]domain.Entry, 0, len(payload.Entries))
	for _, raw := range payload.Entries {
		entry := domain.Entry{
			ID:           strings.TrimSpace(string(raw.ID)),
			URL:          g.resolve(raw.URL),
			RawTimestamp: raw.Timestamp,
			Folder:       raw.Folder,
		}
		if entry.Validate() != nil {
			continue
		}
		if ts, err := domain.ParseTimestamp(raw.Timestamp); err == nil {
			entry.Timestamp = ts
		}
		out = append(out, entry)
	}
	return out, nil
}

// Delete is sent once; the caller decides whether to offer a retry.
func (g *HTTPGateway) Delete(ctx context.Context, kind domain.Kind, id string) error {
	entryURL, err := g.entryURL(kind, id)
	if err != nil {
		return err
	}
	req := httpclient.Request{Op: "delete " + string(kind), Method: http.MethodDelete, URL: entryURL, Timeout: g.deleteTimeout}
	_, _, err = g.client.SendWithRetry(ctx, req, httpclient.NoRetry())
	return err
}

func (g *HTTPGateway) entryURL(kind domain.Kind, id string) (string, error) {
	switch kind {
	case domain.KindHistory:
		return g.endpoints.HistoryEntry(id), nil
	case domain.KindAutoDataset:
		return g.endpoints.AutoDatasetEntry(id), nil
	default:
		return "", kind.Validate()
	}
}

func (g *HTTPGateway) collectionURL(kind domain.Kind) (string, error) {
	switch kind {
	case domain.KindHistory:
		return g.endpoints.History(), nil
	case domain.KindAutoDataset:
		return g.endpoints.AutoDataset(), nil
	default:
		return "", kind.Validate()
	}
}

// resolve turns a server-relative image path into an absolute URL.
func (g *HTTPGateway) resolve(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil || ref.IsAbs() {
		return raw
	}
	base, err := url.Parse(g.endpoints.Base() + "/")
	if err != nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}
