package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"daing/internal/modules/analytics/domain"
	"daing/internal/modules/analytics/dto"
	"daing/internal/modules/analytics/service"
	"daing/internal/modules/analytics/usecase"
	"daing/internal/platform/logging"
)

type fakeSource struct {
	summary domain.Summary
	err     error
	calls   int
}

func (f *fakeSource) Fetch(context.Context) (domain.Summary, error) {
	f.calls++
	return f.summary, f.err
}

func (f *fakeSource) Endpoint() string { return "http://h/analytics/summary" }

func TestSummaryIsCachedUntilRefresh(t *testing.T) {
	t.Parallel()
	source := &fakeSource{summary: domain.Summary{TotalScans: 4, DaingScans: 1}}
	svc := service.NewAnalyticsService(source, time.Minute, logging.Discard())
	ctx := context.Background()

	first, cached := svc.Summary(ctx, false)
	if cached || first.TotalScans != 4 {
		t.Fatalf("first read should hit the source: %+v cached=%v", first, cached)
	}
	if _, cached := svc.Summary(ctx, false); !cached || source.calls != 1 {
		t.Fatalf("second read should be cached, source calls=%d", source.calls)
	}
	if _, cached := svc.Summary(ctx, true); cached || source.calls != 2 {
		t.Fatalf("refresh should bypass the cache, source calls=%d", source.calls)
	}
}

func TestSummaryDegradesToZeroAndIsNotCached(t *testing.T) {
	t.Parallel()
	source := &fakeSource{err: errors.New("connection refused")}
	svc := service.NewAnalyticsService(source, time.Minute, logging.Discard())

	summary, _ := svc.Summary(context.Background(), false)
	if !summary.IsZero() || summary.FishTypeDistribution == nil {
		t.Fatalf("expected zeroed summary, got %+v", summary)
	}
	source.err = nil
	source.summary = domain.Summary{TotalScans: 2}
	if got, cached := svc.Summary(context.Background(), false); cached || got.TotalScans != 2 {
		t.Fatalf("failure must not be cached: %+v cached=%v", got, cached)
	}
}

func TestZeroTTLDisablesCache(t *testing.T) {
	t.Parallel()
	source := &fakeSource{summary: domain.Summary{TotalScans: 1}}
	svc := service.NewAnalyticsService(source, 0, logging.Discard())
	svc.Summary(context.Background(), false)
	svc.Summary(context.Background(), false)
	if source.calls != 2 {
		t.Fatalf("expected two source calls, got %d", source.calls)
	}
}

func TestInteractorMapsSummary(t *testing.T) {
	t.Parallel()
	source := &fakeSource{summary: domain.Summary{
		TotalScans:           4,
		DaingScans:           3,
		NonDaingScans:        1,
		FishTypeDistribution: map[string]int{"dilis": 3},
		AverageConfidence:    map[string]float64{"dilis": 0.66},
		DailyScans:           map[string]int{"2024-03-02": 1, "2024-03-01": 3},
		ColorConsistency:     &domain.ColorStats{AverageScore: 0.4, GradeDistribution: map[string]int{"uneven": 3}},
	}}
	uc := usecase.NewInteractor(service.NewAnalyticsService(source, time.Minute, logging.Discard()))
	out, err := uc.Summary(context.Background(), dto.SummaryInput{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if out.Empty || out.DaingRatio != 0.75 || len(out.FishTypes) != 1 || out.FishTypes[0].Name != "dilis" {
		t.Fatalf("unexpected output %+v", out)
	}
	if len(out.Days) != 2 || out.Days[0].Date != "2024-03-01" {
		t.Fatalf("days should be oldest first: %+v", out.Days)
	}
	if !out.HasColor || out.ColorGrades[0].Grade != "uneven" {
		t.Fatalf("color stats missing: %+v", out)
	}

	source.err = errors.New("down")
	out, err = uc.Summary(context.Background(), dto.SummaryInput{Refresh: true})
	if err != nil || !out.Empty || out.TotalScans != 0 {
		t.Fatalf("refresh failure should render zeroed: %+v %v", out, err)
	}
}

func TestCachedSummaryIsNotSharedWithCallers(t *testing.T) {
	t.Parallel()
	source := &fakeSource{summary: domain.Summary{
		TotalScans:           3,
		FishTypeDistribution: map[string]int{"danggit": 3},
		DailyScans:           map[string]int{"2024-01-16": 3},
		ColorConsistency:     &domain.ColorStats{AverageScore: 0.8, GradeDistribution: map[string]int{"consistent": 3}},
	}}
	svc := service.NewAnalyticsService(source, time.Minute, logging.Discard())
	ctx := context.Background()

	first, _ := svc.Summary(ctx, false)
	first.FishTypeDistribution["danggit"] = 99
	second, cached := svc.Summary(ctx, false)
	second.DailyScans["2024-01-17"] = 1
	second.ColorConsistency.GradeDistribution["consistent"] = 0
	second.ColorConsistency.AverageScore = 0

	third, _ := svc.Summary(ctx, false)
	if !cached || third.FishTypeDistribution["danggit"] != 3 || len(third.DailyScans) != 1 {
		t.Fatalf("caller edits leaked into the cache: %+v", third)
	}
	if third.ColorConsistency.GradeDistribution["consistent"] != 3 || third.ColorConsistency.AverageScore != 0.8 {
		t.Fatalf("color stats leaked into the cache: %+v", third.ColorConsistency)
	}
}
