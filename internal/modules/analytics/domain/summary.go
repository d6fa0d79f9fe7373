package domain

import (
	"sort"
	"time"
)

// Summary is the backend's aggregate view of every scan it has graded.
// The client only displays it.
type Summary struct {
	Status               string
	TotalScans           int
	DaingScans           int
	NonDaingScans        int
	FishTypeDistribution map[string]int
	AverageConfidence    map[string]float64
	DailyScans           map[string]int
	ColorConsistency     *ColorStats
}

type ColorStats struct {
	AverageScore      float64
	GradeDistribution map[string]int
}

// Zero is the summary shown when the backend cannot be read. Maps are
// allocated so renderers never branch on nil.
func Zero() Summary {
	return Summary{
		FishTypeDistribution: map[string]int{},
		AverageConfidence:    map[string]float64{},
		DailyScans:           map[string]int{},
	}
}

// Clone returns a copy that shares no maps with s.
func (s Summary) Clone() Summary {
	out := s
	out.FishTypeDistribution = cloneMap(s.FishTypeDistribution)
	out.AverageConfidence = cloneMap(s.AverageConfidence)
	out.DailyScans = cloneMap(s.DailyScans)
	if s.ColorConsistency != nil {
		color := *s.ColorConsistency
		color.GradeDistribution = cloneMap(s.ColorConsistency.GradeDistribution)
		out.ColorConsistency = &color
	}
	return out
}

func cloneMap[V any](in map[string]V) map[string]V {
	if in == nil {
		return nil
	}
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s Summary) IsZero() bool {
	return s.TotalScans == 0 && len(s.FishTypeDistribution) == 0 && len(s.DailyScans) == 0 && s.ColorConsistency == nil
}

// DaingRatio is the share of scans recognised as dried fish, 0 when there
// are no scans.
func (s Summary) DaingRatio() float64 {
	if s.TotalScans <= 0 {
		return 0
	}
	return float64(s.DaingScans) / float64(s.TotalScans)
}

type FishTypeStat struct {
	Name              string
	Count             int
	AverageConfidence float64
}

// FishTypes merges the distribution and confidence maps, most scanned first.
func (s Summary) FishTypes() []FishTypeStat {
	names := make(map[string]struct{}, len(s.FishTypeDistribution))
	for name := range s.FishTypeDistribution {
		names[name] = struct{}{}
	}
	for name := range s.AverageConfidence {
		names[name] = struct{}{}
	}
	out := make([]FishTypeStat, 0, len(names))
	for name := range names {
		out = append(out, FishTypeStat{Name: name, Count: s.FishTypeDistribution[name], AverageConfidence: s.AverageConfidence[name]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

type DayCount struct {
	Date  string
	Day   time.Time
	Count int
}

// Days lists daily scan counts oldest first. Keys that are not ISO dates
// keep a zero Day and sort after the dated ones.
func (s Summary) Days() []DayCount {
	out := make([]DayCount, 0, len(s.DailyScans))
	for key, count := range s.DailyScans {
		dc := DayCount{Date: key, Count: count}
		if day, err := time.Parse(time.DateOnly, key); err == nil {
			dc.Day = day
		}
		out = append(out, dc)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Day.IsZero() != b.Day.IsZero() {
			return !a.Day.IsZero()
		}
		if !a.Day.Equal(b.Day) {
			return a.Day.Before(b.Day)
		}
		return a.Date < b.Date
	})
	return out
}

type GradeCount struct {
	Grade string
	Count int
}

func (c ColorStats) Grades() []GradeCount {
	out := make([]GradeCount, 0, len(c.GradeDistribution))
	for grade, count := range c.GradeDistribution {
		out = append(out, GradeCount{Grade: grade, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Grade < out[j].Grade
	})
	return out
}
