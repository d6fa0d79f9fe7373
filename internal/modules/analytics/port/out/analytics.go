package out

import (
	"context"

	"daing/internal/modules/analytics/domain"
)

type SummarySource interface {
	Fetch(ctx context.Context) (domain.Summary, error)
	// Endpoint identifies the backend the summary is read from.
	Endpoint() string
}
