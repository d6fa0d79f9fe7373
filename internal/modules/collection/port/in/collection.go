package in

import (
	"context"

	"daing/internal/modules/collection/dto"
)

type Usecase interface {
	List(ctx context.Context, input dto.ListInput) (dto.CollectionOutput, error)
	Delete(ctx context.Context, input dto.DeleteInput) error
	DeleteBatch(ctx context.Context, input dto.DeleteBatchInput) (dto.DeleteBatchOutput, error)
}
