package dto

import "time"

type AnalyzeInput struct {
	ImagePath string
	AutoSave  bool
	OutPath   string
}

type AnalyzeOutput struct {
	RecordID        string
	IsDaing         bool
	FishType        string
	Confidence      float64
	Grade           string
	HasColor        bool
	ColorScore      float64
	ColorGrade      string
	Message         string
	SavedToDataset  bool
	Attempts        int
	ResultImageSize int
	AnnotatedPath   string
}

type UploadInput struct {
	ImagePath string
	FishType  string
	Condition string
}

type UploadOutput struct {
	Success   bool
	Message   string
	FishType  string
	Condition string
}

type ScanRecordOutput struct {
	ID             string
	ImagePath      string
	IsDaing        bool
	FishType       string
	Confidence     float64
	Grade          string
	SavedToDataset bool
	Attempts       int
	ErrorKind      string
	ErrorMessage   string
	CreatedAt      time.Time
}
