package in

import (
	"context"

	"daing/internal/modules/analytics/dto"
	analyticsin "daing/internal/modules/analytics/port/in"
)

type CLIHandler struct {
	usecase analyticsin.Usecase
}

func NewCLIHandler(usecase analyticsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Summary(ctx context.Context, refresh bool) (dto.SummaryOutput, error) {
	return h.usecase.Summary(ctx, dto.SummaryInput{Refresh: refresh})
}
