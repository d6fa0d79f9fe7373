package usecase

import (
	"context"

	"daing/internal/modules/scan/domain"
	"daing/internal/modules/scan/dto"
	scanin "daing/internal/modules/scan/port/in"
	"daing/internal/modules/scan/service"
)

type Interactor struct {
	svc *service.ScanService
}

func NewInteractor(svc *service.ScanService) scanin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Analyze(ctx context.Context, input dto.AnalyzeInput) (dto.AnalyzeOutput, error) {
	result, record, err := i.svc.Analyze(ctx, input.ImagePath, input.AutoSave)
	if err != nil {
		return dto.AnalyzeOutput{RecordID: record.ID, Attempts: record.Attempts}, err
	}
	out := dto.AnalyzeOutput{
		RecordID:        record.ID,
		IsDaing:         result.IsDaing,
		FishType:        string(result.FishType),
		Confidence:      result.Confidence,
		Grade:           result.Grade,
		Message:         result.Message,
		SavedToDataset:  result.SavedToDataset,
		Attempts:        record.Attempts,
		ResultImageSize: len(result.ResultImage),
	}
	if result.ColorConsistency != nil {
		out.HasColor = true
		out.ColorScore = result.ColorConsistency.Score
		out.ColorGrade = result.ColorConsistency.Grade
	}
	path, err := i.svc.SaveAnnotated(ctx, input.OutPath, result)
	if err != nil {
		return out, err
	}
	out.AnnotatedPath = path
	return out, nil
}

func (i *Interactor) Upload(ctx context.Context, input dto.UploadInput) (dto.UploadOutput, error) {
	result, fishType, condition, err := i.svc.Upload(ctx, input.ImagePath, input.FishType, input.Condition)
	if err != nil {
		return dto.UploadOutput{FishType: string(fishType), Condition: string(condition)}, err
	}
	return dto.UploadOutput{
		Success:   result.Success,
		Message:   result.Message,
		FishType:  string(fishType),
		Condition: string(condition),
	}, nil
}

func (i *Interactor) Recent(ctx context.Context, limit int) ([]dto.ScanRecordOutput, error) {
	records, err := i.svc.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ScanRecordOutput, 0, len(records))
	for _, record := range records {
		out = append(out, toRecordOutput(record))
	}
	return out, nil
}

func toRecordOutput(record domain.ScanRecord) dto.ScanRecordOutput {
	return dto.ScanRecordOutput{
		ID:             record.ID,
		ImagePath:      record.ImagePath,
		IsDaing:        record.IsDaing,
		FishType:       string(record.FishType),
		Confidence:     record.Confidence,
		Grade:          record.Grade,
		SavedToDataset: record.SavedToDataset,
		Attempts:       record.Attempts,
		ErrorKind:      record.ErrorKind,
		ErrorMessage:   record.ErrorMessage,
		CreatedAt:      record.CreatedAt,
	}
}
