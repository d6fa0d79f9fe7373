package out

import (
	"context"
	"net/http"
	"strings"
	"time"

	"daing/internal/modules/analytics/domain"
	analyticsout "daing/internal/modules/analytics/port/out"
	"daing/internal/platform/config"
	apperrors "daing/internal/platform/errors"
	"daing/internal/platform/httpclient"
)

type HTTPSummarySource struct {
	client   *httpclient.Client
	endpoint string
	timeout  time.Duration
	retry    httpclient.RetryPolicy
}

func NewHTTPSummarySource(client *httpclient.Client, cfg config.Config) analyticsout.SummarySource {
	return &HTTPSummarySource{
		client:   client,
		endpoint: cfg.Endpoints().AnalyticsSummary(),
		timeout:  cfg.Timeouts.Fetch,
		retry:    httpclient.RetryPolicy{Attempts: cfg.Retry.Attempts, Delay: cfg.Retry.Delay},
	}
}

type summaryPayload struct {
	Status               string             `json:"status"`
	Message              string             `json:"message"`
	TotalScans           int                `json:"total_scans"`
	DaingScans           int                `json:"daing_scans"`
	NonDaingScans        int                `json:"non_daing_scans"`
	FishTypeDistribution map[string]int     `json:"fish_type_distribution"`
	AverageConfidence    map[string]float64 `json:"average_confidence"`
	DailyScans           map[string]int     `json:"daily_scans"`
	ColorConsistency     *colorPayload      `json:"color_consistency"`
}

type colorPayload struct {
	AverageScore      *float64       `json:"average_score"`
	Score             *float64       `json:"score"`
	GradeDistribution map[string]int `json:"grade_distribution"`
}

func (s *HTTPSummarySource) Endpoint() string { return s.endpoint }

func (s *HTTPSummarySource) Fetch(ctx context.Context) (domain.Summary, error) {
	req := httpclient.Request{Op: "analytics summary", Method: http.MethodGet, URL: s.endpoint, Timeout: s.timeout}
	resp, _, err := s.client.SendWithRetry(ctx, req, s.retry)
	if err != nil {
		return domain.Summary{}, err
	}
	var payload summaryPayload
	if err := httpclient.DecodeJSON(req, resp, &payload); err != nil {
		return domain.Summary{}, err
	}
	if strings.EqualFold(strings.TrimSpace(payload.Status), "error") {
		message := payload.Message
		if message == "" {
			message = "The server could not compute analytics."
		}
		return domain.Summary{}, &apperrors.RemoteError{
			Kind:     apperrors.KindServer,
			Op:       req.Op,
			Endpoint: req.URL,
			Status:   resp.Status,
			Message:  message,
		}
	}

	summary := domain.Zero()
	summary.Status = payload.Status
	summary.TotalScans = payload.TotalScans
	summary.DaingScans = payload.DaingScans
	summary.NonDaingScans = payload.NonDaingScans
	for k, v := range payload.FishTypeDistribution {
		summary.FishTypeDistribution[k] = v
	}
	for k, v := range payload.AverageConfidence {
		summary.AverageConfidence[k] = v
	}
	for k, v := range payload.DailyScans {
		summary.DailyScans[k] = v
	}
	if c := payload.ColorConsistency; c != nil {
		stats := &domain.ColorStats{GradeDistribution: map[string]int{}}
		switch {
		case c.AverageScore != nil:
			stats.AverageScore = *c.AverageScore
		case c.Score != nil:
			stats.AverageScore = *c.Score
		}
		for k, v := range c.GradeDistribution {
			stats.GradeDistribution[k] = v
		}
		summary.ColorConsistency = stats
	}
	return summary, nil
}
