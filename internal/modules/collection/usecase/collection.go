package usecase

import (
	"context"

	"daing/internal/modules/collection/domain"
	"daing/internal/modules/collection/dto"
	collectionin "daing/internal/modules/collection/port/in"
	"daing/internal/modules/collection/service"
	"daing/internal/platform/clock"
)

type Interactor struct {
	svc   *service.CollectionService
	clock clock.Clock
}

func NewInteractor(svc *service.CollectionService, clk clock.Clock) collectionin.Usecase {
	return &Interactor{svc: svc, clock: clk}
}

func (i *Interactor) List(ctx context.Context, input dto.ListInput) (dto.CollectionOutput, error) {
	kind := domain.Kind(input.Kind)
	entries, err := i.svc.Fetch(ctx, kind)
	if err != nil {
		return dto.CollectionOutput{}, err
	}
	return dto.CollectionOutput{
		Kind:     string(kind),
		Entries:  toEntryOutputs(entries),
		Sections: toSectionOutputs(domain.GroupByLocalDate(entries, i.clock.Location(), domain.RowWidth)),
	}, nil
}

func (i *Interactor) Delete(ctx context.Context, input dto.DeleteInput) error {
	return i.svc.Delete(ctx, domain.Kind(input.Kind), input.ID)
}

// DeleteBatch returns the per-id outcomes together with the batch error. When
// only some deletes landed the collection is fetched again and returned as the
// authoritative state. If that fetch fails too, Reconciled stays false and the
// caller removes only the confirmed ids.
func (i *Interactor) DeleteBatch(ctx context.Context, input dto.DeleteBatchInput) (dto.DeleteBatchOutput, error) {
	kind := domain.Kind(input.Kind)
	result, batchErr := i.svc.DeleteBatch(ctx, kind, input.IDs)
	out := dto.DeleteBatchOutput{Deleted: result.Deleted()}
	for _, failed := range result.Failed() {
		out.Failed = append(out.Failed, dto.DeleteFailure{ID: failed.ID, Err: failed.Err})
	}
	if batchErr == nil || !result.Partial() {
		return out, batchErr
	}
	entries, err := i.svc.Reconcile(ctx, kind)
	if err == nil {
		out.Reconciled = true
		out.Entries = toEntryOutputs(entries)
	}
	return out, batchErr
}

func toEntryOutputs(entries []domain.Entry) []dto.EntryOutput {
	out := make([]dto.EntryOutput, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toEntryOutput(entry))
	}
	return out
}

func toEntryOutput(entry domain.Entry) dto.EntryOutput {
	return dto.EntryOutput{
		ID:           entry.ID,
		URL:          entry.URL,
		Timestamp:    entry.Timestamp,
		RawTimestamp: entry.RawTimestamp,
		Folder:       entry.Folder,
	}
}

func toSectionOutputs(sections []domain.Section) []dto.SectionOutput {
	out := make([]dto.SectionOutput, 0, len(sections))
	for _, section := range sections {
		rows := make([][]dto.CellOutput, 0, len(section.Rows))
		for _, row := range section.Rows {
			cells := make([]dto.CellOutput, 0, len(row))
			for _, cell := range row {
				if cell.Placeholder {
					cells = append(cells, dto.CellOutput{Placeholder: true})
					continue
				}
				cells = append(cells, dto.CellOutput{Entry: toEntryOutput(cell.Entry)})
			}
			rows = append(rows, cells)
		}
		out = append(out, dto.SectionOutput{
			Key:   string(section.Key),
			Date:  section.Date,
			Count: len(section.Entries),
			Rows:  rows,
		})
	}
	return out
}
