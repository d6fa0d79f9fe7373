package out

import (
	"context"

	"daing/internal/modules/scan/domain"
)

type ImageStore interface {
	Load(ctx context.Context, path string) (domain.Image, error)
	SaveAnnotated(ctx context.Context, path string, data []byte) (string, error)
}

// Analyzer returns the number of attempts it made along with the outcome.
type Analyzer interface {
	Analyze(ctx context.Context, image domain.Image, autoSave bool) (domain.ScanResult, int, error)
	Endpoint(autoSave bool) string
}

type SampleUploader interface {
	Upload(ctx context.Context, image domain.Image, fishType domain.FishType, condition domain.Condition) (domain.UploadResult, error)
}

type ScanJournal interface {
	Append(ctx context.Context, record domain.ScanRecord) error
	ListRecent(ctx context.Context, limit int) ([]domain.ScanRecord, error)
}
