package dto

type SummaryInput struct {
	Refresh bool
}

type FishTypeStat struct {
	Name              string
	Count             int
	AverageConfidence float64
}

type DayCount struct {
	Date  string
	Count int
}

type GradeCount struct {
	Grade string
	Count int
}

type SummaryOutput struct {
	Status        string
	TotalScans    int
	DaingScans    int
	NonDaingScans int
	DaingRatio    float64
	FishTypes     []FishTypeStat
	Days          []DayCount
	HasColor      bool
	ColorAverage  float64
	ColorGrades   []GradeCount
	Empty         bool
	Cached        bool
}
