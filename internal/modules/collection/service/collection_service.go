package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"

	"daing/internal/modules/collection/domain"
	collectionout "daing/internal/modules/collection/port/out"
	apperrors "daing/internal/platform/errors"
)

const maxParallelDeletes = 8

type CollectionService struct {
	gateway collectionout.Gateway
	logger  log.Interface
}

func NewCollectionService(gateway collectionout.Gateway, logger log.Interface) *CollectionService {
	return &CollectionService{gateway: gateway, logger: logger}
}

// Fetch never reports a backend failure: the lists feed browse screens where
// an empty grid is preferred to an alert, so any failure degrades to no
// entries and a logged warning.
func (s *CollectionService) Fetch(ctx context.Context, kind domain.Kind) ([]domain.Entry, error) {
	if err := kind.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	entries, err := s.gateway.Fetch(ctx, kind)
	if err != nil {
		s.logger.WithFields(log.Fields{
			"collection": kind,
			"kind":       apperrors.KindOf(err),
		}).WithError(err).Warn("collection fetch failed, showing empty list")
		return []domain.Entry{}, nil
	}
	return entries, nil
}

// Reconcile reads the server's copy after a partly failed batch. It reports
// failures instead of degrading: an empty list here would drop entries the
// server still holds.
func (s *CollectionService) Reconcile(ctx context.Context, kind domain.Kind) ([]domain.Entry, error) {
	if err := kind.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	entries, err := s.gateway.Fetch(ctx, kind)
	if err != nil {
		s.logger.WithFields(log.Fields{
			"collection": kind,
			"kind":       apperrors.KindOf(err),
		}).WithError(err).Warn("reconcile fetch failed, keeping local copy")
		return nil, fmt.Errorf("reconcile %s: %w", kind, err)
	}
	return entries, nil
}

func (s *CollectionService) Delete(ctx context.Context, kind domain.Kind, id string) error {
	if err := kind.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: entry id is required", apperrors.ErrInvalidInput)
	}
	if err := s.gateway.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	s.logger.WithFields(log.Fields{"collection": kind, "id": id}).Info("entry deleted")
	return nil
}

// DeleteBatch issues one delete per distinct id concurrently and waits for
// all of them. Deletes are not cancelled when a sibling fails, so every
// outcome is known. The returned error is the first failure observed.
func (s *CollectionService) DeleteBatch(ctx context.Context, kind domain.Kind, ids []string) (domain.BatchResult, error) {
	if err := kind.Validate(); err != nil {
		return domain.BatchResult{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	unique := dedupe(ids)
	if len(unique) == 0 {
		return domain.BatchResult{}, fmt.Errorf("%w: no entries selected", apperrors.ErrInvalidInput)
	}

	outcomes := make([]domain.DeleteOutcome, len(unique))
	var g errgroup.Group
	g.SetLimit(maxParallelDeletes)
	for i, id := range unique {
		g.Go(func() error {
			err := s.gateway.Delete(ctx, kind, id)
			outcomes[i] = domain.DeleteOutcome{ID: id, Err: err}
			if err != nil {
				return fmt.Errorf("delete %s %s: %w", kind, id, err)
			}
			return nil
		})
	}
	firstErr := g.Wait()

	result := domain.BatchResult{Outcomes: outcomes}
	entry := s.logger.WithFields(log.Fields{
		"collection": kind,
		"requested":  len(unique),
		"deleted":    len(result.Deleted()),
		"failed":     len(result.Failed()),
	})
	if failed := result.FailedIDs(); len(failed) > 0 {
		entry = entry.WithField("failed_ids", strings.Join(failed, ","))
	}
	if firstErr != nil {
		entry.WithError(firstErr).Warn("batch delete failed")
		return result, firstErr
	}
	entry.Info("batch delete completed")
	return result, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
