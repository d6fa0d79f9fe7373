package out

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"daing/internal/modules/scan/domain"
	scanout "daing/internal/modules/scan/port/out"
	"daing/internal/platform/config"
	"daing/internal/platform/endpoint"
	apperrors "daing/internal/platform/errors"
	"daing/internal/platform/httpclient"
)

const legacyContractMessage = "The server answered with an image instead of an analysis result. Update the grading server to a version that returns JSON."

type HTTPAnalyzer struct {
	client    *httpclient.Client
	endpoints endpoint.Endpoints
	timeout   time.Duration
	retry     httpclient.RetryPolicy
}

func NewHTTPAnalyzer(client *httpclient.Client, cfg config.Config) scanout.Analyzer {
	return &HTTPAnalyzer{
		client:    client,
		endpoints: cfg.Endpoints(),
		timeout:   cfg.Timeouts.Analyze,
		retry:     httpclient.RetryPolicy{Attempts: cfg.Retry.Attempts, Delay: cfg.Retry.Delay},
	}
}

type analyzeResponse struct {
	Status           string                 `json:"status"`
	IsDaing          bool                   `json:"is_daing"`
	FishType         string                 `json:"fish_type"`
	Confidence       float64                `json:"confidence"`
	Grade            string                 `json:"grade"`
	ColorConsistency *colorConsistencyField `json:"color_consistency"`
	ResultImage      string                 `json:"result_image"`
	Message          string                 `json:"message"`
	Detail           string                 `json:"detail"`
	SavedToDataset   bool                   `json:"saved_to_dataset"`
}

type colorConsistencyField struct {
	Score float64 `json:"score"`
	Grade string  `json:"grade"`
}

func (a *HTTPAnalyzer) Endpoint(autoSave bool) string {
	return a.endpoints.Analyze(autoSave)
}

// Analyze posts the photo and decodes the JSON verdict. Transient failures
// are retried under the configured policy; any HTTP response ends retrying.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, image domain.Image, autoSave bool) (domain.ScanResult, int, error) {
	body, contentType, err := httpclient.Multipart(httpclient.FormFile{
		Field:       domain.FileField,
		Name:        image.Name,
		ContentType: image.ContentType,
		Data:        image.Data,
	})
	if err != nil {
		return domain.ScanResult{}, 0, fmt.Errorf("encode analyze request: %w", err)
	}
	req := httpclient.Request{
		Op:          "analyze",
		Method:      http.MethodPost,
		URL:         a.endpoints.Analyze(autoSave),
		Body:        body,
		ContentType: contentType,
		Timeout:     a.timeout,
	}
	resp, attempts, err := a.client.SendWithRetry(ctx, req, a.retry)
	if err != nil {
		return domain.ScanResult{}, attempts, err
	}
	if isImage(resp.ContentType) {
		return domain.ScanResult{}, attempts, &apperrors.RemoteError{
			Kind:     apperrors.KindMalformed,
			Op:       req.Op,
			Endpoint: req.URL,
			Status:   resp.Status,
			Message:  legacyContractMessage,
		}
	}

	var payload analyzeResponse
	if err := httpclient.DecodeJSON(req, resp, &payload); err != nil {
		return domain.ScanResult{}, attempts, err
	}
	if strings.EqualFold(payload.Status, domain.StatusError) {
		msg := firstNonEmpty(payload.Message, payload.Detail)
		return domain.ScanResult{}, attempts, &apperrors.RemoteError{Kind: apperrors.KindServer, Op: req.Op, Endpoint: req.URL, Status: resp.Status, Message: msg}
	}

	result := domain.ScanResult{
		Status:         firstNonEmpty(payload.Status, domain.StatusSuccess),
		IsDaing:        payload.IsDaing,
		FishType:       domain.FishType(strings.TrimSpace(payload.FishType)),
		Confidence:     payload.Confidence,
		Grade:          payload.Grade,
		Message:        payload.Message,
		SavedToDataset: payload.SavedToDataset,
	}
	if payload.ColorConsistency != nil {
		result.ColorConsistency = &domain.ColorConsistency{Score: payload.ColorConsistency.Score, Grade: payload.ColorConsistency.Grade}
	}
	if payload.ResultImage != "" {
		decoded, err := decodeImage(payload.ResultImage)
		if err != nil {
			return domain.ScanResult{}, attempts, &apperrors.RemoteError{
				Kind:     apperrors.KindMalformed,
				Op:       req.Op,
				Endpoint: req.URL,
				Status:   resp.Status,
				Message:  "The server sent an unreadable result image.",
				Err:      err,
			}
		}
		result.ResultImage = decoded
	}
	return result, attempts, nil
}

// decodeImage accepts plain base64 or a data URL.
func decodeImage(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "data:") {
		if comma := strings.IndexByte(raw, ','); comma >= 0 {
			raw = raw[comma+1:]
		}
	}
	return base64.StdEncoding.DecodeString(raw)
}

func isImage(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && strings.HasPrefix(mediaType, "image/")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
