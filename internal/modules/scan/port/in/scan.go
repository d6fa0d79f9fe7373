package in

import (
	"context"

	"daing/internal/modules/scan/dto"
)

type Usecase interface {
	Analyze(ctx context.Context, input dto.AnalyzeInput) (dto.AnalyzeOutput, error)
	Upload(ctx context.Context, input dto.UploadInput) (dto.UploadOutput, error)
	Recent(ctx context.Context, limit int) ([]dto.ScanRecordOutput, error)
}
