package in

import (
	"context"

	"daing/internal/modules/scan/dto"
	scanin "daing/internal/modules/scan/port/in"
)

type CLIHandler struct {
	usecase scanin.Usecase
}

func NewCLIHandler(usecase scanin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Analyze(ctx context.Context, imagePath string, autoSave bool, outPath string) (dto.AnalyzeOutput, error) {
	return h.usecase.Analyze(ctx, dto.AnalyzeInput{ImagePath: imagePath, AutoSave: autoSave, OutPath: outPath})
}

func (h CLIHandler) Upload(ctx context.Context, imagePath, fishType, condition string) (dto.UploadOutput, error) {
	return h.usecase.Upload(ctx, dto.UploadInput{ImagePath: imagePath, FishType: fishType, Condition: condition})
}

func (h CLIHandler) Recent(ctx context.Context, limit int) ([]dto.ScanRecordOutput, error) {
	return h.usecase.Recent(ctx, limit)
}
