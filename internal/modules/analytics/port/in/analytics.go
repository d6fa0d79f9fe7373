package in

import (
	"context"

	"daing/internal/modules/analytics/dto"
)

type Usecase interface {
	Summary(ctx context.Context, input dto.SummaryInput) (dto.SummaryOutput, error)
}
