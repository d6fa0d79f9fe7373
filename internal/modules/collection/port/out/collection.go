package out

import (
	"context"

	"daing/internal/modules/collection/domain"
)

// Gateway is the backend's view of a collection. Fetch reports failures;
// degrading them to an empty list is the service's decision.
type Gateway interface {
	Fetch(ctx context.Context, kind domain.Kind) ([]domain.Entry, error)
	Delete(ctx context.Context, kind domain.Kind, id string) error
}
