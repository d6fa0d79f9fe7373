package out

import (
	"context"

	"daing/internal/modules/settings/domain"
)

type Store interface {
	// Load reports found=false when nothing has been saved yet.
	Load(ctx context.Context) (settings domain.Settings, found bool, err error)
	Save(ctx context.Context, settings domain.Settings) error
	Path() string
}
