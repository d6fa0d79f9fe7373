package in

import (
	"context"

	"daing/internal/modules/collection/dto"
	collectionin "daing/internal/modules/collection/port/in"
)

type CLIHandler struct {
	usecase collectionin.Usecase
}

func NewCLIHandler(usecase collectionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context, kind string) (dto.CollectionOutput, error) {
	return h.usecase.List(ctx, dto.ListInput{Kind: kind})
}

func (h CLIHandler) Delete(ctx context.Context, kind, id string) error {
	return h.usecase.Delete(ctx, dto.DeleteInput{Kind: kind, ID: id})
}

func (h CLIHandler) DeleteBatch(ctx context.Context, kind string, ids []string) (dto.DeleteBatchOutput, error) {
	return h.usecase.DeleteBatch(ctx, dto.DeleteBatchInput{Kind: kind, IDs: ids})
}
