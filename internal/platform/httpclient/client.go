// Package httpclient is the transport under every call to the grading
// backend. It applies per-call timeouts, classifies failures into the
// apperrors taxonomy and retries transient failures when asked to.
//
// A request is described by a Request value rather than an *http.Request so
// that its body can be replayed on every attempt.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"

	apperrors "daing/internal/platform/errors"
	"daing/internal/platform/id"
	"daing/internal/platform/logging"
)

const (
	DefaultTimeout   = 10 * time.Second
	defaultUserAgent = "daing-client"
	maxResponseBytes = 32 << 20
	requestIDHeader  = "X-Request-ID"
)

type Request struct {
	Op          string
	Method      string
	URL         string
	Body        []byte
	ContentType string
	Timeout     time.Duration
}

type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Client is safe for concurrent use.
type Client struct {
	http      *http.Client
	userAgent string
	ids       id.Generator
	logger    log.Interface
	sleep     func(ctx context.Context, d time.Duration) error
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client; tests pass one whose
// transport is an httpmock.MockTransport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger log.Interface) Option {
	return func(c *Client) { c.logger = logger }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithIDGenerator(ids id.Generator) Option {
	return func(c *Client) { c.ids = ids }
}

func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		userAgent: defaultUserAgent,
		ids:       id.UUID{},
		logger:    logging.Discard(),
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send performs exactly one attempt. A non-2xx response is returned together
// with a KindServer error carrying the backend's message, if it sent one.
func (c *Client) Send(ctx context.Context, req Request) (Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader = http.NoBody
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return Response{}, &apperrors.RemoteError{Kind: apperrors.KindUnknown, Op: req.Op, Endpoint: req.URL, Err: fmt.Errorf("build request: %w", err)}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	requestID := c.ids.New()
	httpReq.Header.Set(requestIDHeader, requestID)

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	entry := c.logger.WithFields(log.Fields{
		"op":          req.Op,
		"method":      req.Method,
		"url":         req.URL,
		"request_id":  requestID,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	if err != nil {
		remote := classifyTransport(req, err)
		entry.WithField("kind", remote.Kind).WithError(err).Warn("request failed")
		return Response{}, remote
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		remote := classifyTransport(req, err)
		entry.WithField("kind", remote.Kind).WithError(err).Warn("read response failed")
		return Response{}, remote
	}
	out := Response{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: payload}
	entry = entry.WithField("status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		entry.Warn("server returned error status")
		return out, &apperrors.RemoteError{
			Kind:     apperrors.KindServer,
			Op:       req.Op,
			Endpoint: req.URL,
			Status:   resp.StatusCode,
			Message:  serverMessage(payload),
		}
	}
	entry.Debug("request completed")
	return out, nil
}

// DecodeJSON unmarshals a successful response, reporting anything that is not
// JSON as a malformed response.
func DecodeJSON(req Request, resp Response, v any) error {
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &apperrors.RemoteError{
			Kind:     apperrors.KindMalformed,
			Op:       req.Op,
			Endpoint: req.URL,
			Status:   resp.Status,
			Message:  "The server sent an unexpected response.",
			Err:      err,
		}
	}
	return nil
}

func classifyTransport(req Request, err error) *apperrors.RemoteError {
	remote := &apperrors.RemoteError{Op: req.Op, Endpoint: req.URL, Err: err}
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		remote.Kind = apperrors.KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		remote.Kind = apperrors.KindTimeout
	case errors.Is(err, context.Canceled):
		remote.Kind = apperrors.KindUnknown
	default:
		// Dial failures, resets, DNS errors and anything else the transport
		// reports before a response arrives.
		remote.Kind = apperrors.KindNetwork
	}
	return remote
}

// serverMessage pulls a human message out of common FastAPI-style error
// bodies ({"detail": ...}, {"message": ...}, {"error": ...}).
func serverMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "message", "error"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
