package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"

	"daing/internal/modules/scan/domain"
	scanout "daing/internal/modules/scan/port/out"
	"daing/internal/platform/clock"
	apperrors "daing/internal/platform/errors"
	"daing/internal/platform/id"
)

const defaultRecentLimit = 20

type ScanService struct {
	clock    clock.Clock
	idGen    id.Generator
	images   scanout.ImageStore
	analyzer scanout.Analyzer
	uploader scanout.SampleUploader
	journal  scanout.ScanJournal
	logger   log.Interface
}

func NewScanService(
	clk clock.Clock,
	idGen id.Generator,
	images scanout.ImageStore,
	analyzer scanout.Analyzer,
	uploader scanout.SampleUploader,
	journal scanout.ScanJournal,
	logger log.Interface,
) *ScanService {
	return &ScanService{
		clock:    clk,
		idGen:    idGen,
		images:   images,
		analyzer: analyzer,
		uploader: uploader,
		journal:  journal,
		logger:   logger,
	}
}

// Analyze grades one photo. Every call that reaches the backend is written to
// the journal, failures included; a journal error is logged and never hides
// the analysis outcome.
func (s *ScanService) Analyze(ctx context.Context, imagePath string, autoSave bool) (domain.ScanResult, domain.ScanRecord, error) {
	image, err := s.load(ctx, imagePath)
	if err != nil {
		return domain.ScanResult{}, domain.ScanRecord{}, err
	}

	result, attempts, err := s.analyzer.Analyze(ctx, image, autoSave)
	record := domain.ScanRecord{
		ID:        s.idGen.New(),
		ImagePath: image.Path,
		Endpoint:  s.analyzer.Endpoint(autoSave),
		Attempts:  attempts,
		CreatedAt: s.clock.Now(),
	}
	if err != nil {
		record.ErrorKind = string(apperrors.KindOf(err))
		record.ErrorMessage = err.Error()
	} else {
		record.IsDaing = result.IsDaing
		record.FishType = result.FishType
		record.Confidence = result.Confidence
		record.Grade = result.Grade
		record.SavedToDataset = result.SavedToDataset
	}
	if journalErr := s.journal.Append(ctx, record); journalErr != nil {
		s.logger.WithField("record_id", record.ID).WithError(journalErr).Warn("scan journal write failed")
	}

	entry := s.logger.WithFields(log.Fields{"image": image.Path, "attempts": attempts, "auto_save": autoSave})
	if err != nil {
		entry.WithError(err).Warn("analysis failed")
		return domain.ScanResult{}, record, fmt.Errorf("analyze %s: %w", image.Name, err)
	}
	entry.WithFields(log.Fields{"fish_type": result.FishType, "confidence": result.Confidence}).Info("analysis completed")
	return result, record, nil
}

// SaveAnnotated writes the backend's annotated image next to the caller's
// chosen path.
func (s *ScanService) SaveAnnotated(ctx context.Context, path string, result domain.ScanResult) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	if len(result.ResultImage) == 0 {
		return "", fmt.Errorf("%w: backend returned no annotated image", apperrors.ErrInvalidInput)
	}
	return s.images.SaveAnnotated(ctx, path, result.ResultImage)
}

// Upload sends one labelled sample. It is never retried: a repeated upload
// would add a duplicate to the training set.
func (s *ScanService) Upload(ctx context.Context, imagePath, rawFishType, rawCondition string) (domain.UploadResult, domain.FishType, domain.Condition, error) {
	fishType, err := domain.ParseFishType(rawFishType)
	if err != nil {
		return domain.UploadResult{}, "", "", fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	condition, err := domain.ParseCondition(rawCondition)
	if err != nil {
		return domain.UploadResult{}, "", "", fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	image, err := s.load(ctx, imagePath)
	if err != nil {
		return domain.UploadResult{}, "", "", err
	}
	if !fishType.Known() {
		s.logger.WithField("fish_type", fishType).Warn("uploading sample with an unlisted fish type")
	}

	result, err := s.uploader.Upload(ctx, image, fishType, condition)
	if err != nil {
		s.logger.WithFields(log.Fields{"image": image.Path, "fish_type": fishType}).WithError(err).Warn("dataset upload failed")
		return domain.UploadResult{}, fishType, condition, fmt.Errorf("upload %s: %w", image.Name, err)
	}
	s.logger.WithFields(log.Fields{
		"image":     image.Path,
		"fish_type": fishType,
		"condition": condition,
		"success":   result.Success,
	}).Info("dataset upload finished")
	return result, fishType, condition, nil
}

func (s *ScanService) Recent(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.journal.ListRecent(ctx, limit)
}

func (s *ScanService) load(ctx context.Context, imagePath string) (domain.Image, error) {
	if strings.TrimSpace(imagePath) == "" {
		return domain.Image{}, fmt.Errorf("%w: image path is required", apperrors.ErrInvalidInput)
	}
	image, err := s.images.Load(ctx, imagePath)
	if err != nil {
		return domain.Image{}, err
	}
	if err := image.Validate(); err != nil {
		return domain.Image{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return image, nil
}
