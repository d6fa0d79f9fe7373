package out

import (
	"context"
	"fmt"
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

type HTTPSampleUploader struct {
	client    *httpclient.Client
	endpoints endpoint.Endpoints
	timeout   time.Duration
}

func NewHTTPSampleUploader(client *httpclient.Client, cfg config.Config) scanout.SampleUploader {
	return &HTTPSampleUploader{client: client, endpoints: cfg.Endpoints(), timeout: cfg.Timeouts.Upload}
}

type uploadResponse struct {
	Status  *string `json:"status"`
	Message string  `json:"message"`
	Detail  string  `json:"detail"`
}

// Upload posts the sample exactly once, even after a connection error. The backend's status field decides
// success; a body without one is reported as malformed.
func (u *HTTPSampleUploader) Upload(ctx context.Context, image domain.Image, fishType domain.FishType, condition domain.Condition) (domain.UploadResult, error) {
	body, contentType, err := httpclient.Multipart(
		httpclient.FormFile{Field: domain.FileField, Name: image.Name, ContentType: image.ContentType, Data: image.Data},
		httpclient.FormField{Name: "fish_type", Value: string(fishType)},
		httpclient.FormField{Name: "condition", Value: string(condition)},
	)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("encode upload request: %w", err)
	}
	req := httpclient.Request{
		Op:          "upload-dataset",
		Method:      http.MethodPost,
		URL:         u.endpoints.UploadDataset(),
		Body:        body,
		ContentType: contentType,
		Timeout:     u.timeout,
	}
	resp, _, err := u.client.SendWithRetry(ctx, req, httpclient.NoRetry())
	if err != nil {
		return domain.UploadResult{}, err
	}

	var payload uploadResponse
	if err := httpclient.DecodeJSON(req, resp, &payload); err != nil {
		return domain.UploadResult{}, err
	}
	if payload.Status == nil {
		return domain.UploadResult{}, &apperrors.RemoteError{
			Kind:     apperrors.KindMalformed,
			Op:       req.Op,
			Endpoint: req.URL,
			Status:   resp.Status,
			Message:  "The server sent an unexpected response.",
		}
	}
	message := firstNonEmpty(payload.Message, payload.Detail)
	switch strings.ToLower(strings.TrimSpace(*payload.Status)) {
	case domain.StatusSuccess:
		if message == "" {
			message = fmt.Sprintf("Saved %s sample (%s).", fishType, condition)
		}
		return domain.UploadResult{Success: true, Message: message}, nil
	default:
		if message == "" {
			message = "The server did not accept the sample."
		}
		return domain.UploadResult{Success: false, Message: message}, nil
	}
}
