package usecase

import (
	"context"

	"daing/internal/modules/analytics/dto"
	analyticsin "daing/internal/modules/analytics/port/in"
	"daing/internal/modules/analytics/service"
)

type Interactor struct {
	svc *service.AnalyticsService
}

func NewInteractor(svc *service.AnalyticsService) analyticsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Summary(ctx context.Context, input dto.SummaryInput) (dto.SummaryOutput, error) {
	summary, cached := i.svc.Summary(ctx, input.Refresh)
	out := dto.SummaryOutput{
		Status:        summary.Status,
		TotalScans:    summary.TotalScans,
		DaingScans:    summary.DaingScans,
		NonDaingScans: summary.NonDaingScans,
		DaingRatio:    summary.DaingRatio(),
		Empty:         summary.IsZero(),
		Cached:        cached,
	}
	for _, fish := range summary.FishTypes() {
		out.FishTypes = append(out.FishTypes, dto.FishTypeStat{Name: fish.Name, Count: fish.Count, AverageConfidence: fish.AverageConfidence})
	}
	for _, day := range summary.Days() {
		out.Days = append(out.Days, dto.DayCount{Date: day.Date, Count: day.Count})
	}
	if color := summary.ColorConsistency; color != nil {
		out.HasColor = true
		out.ColorAverage = color.AverageScore
		for _, grade := range color.Grades() {
			out.ColorGrades = append(out.ColorGrades, dto.GradeCount{Grade: grade.Grade, Count: grade.Count})
		}
	}
	return out, nil
}
