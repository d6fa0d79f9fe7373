package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/apex/log"

	"daing/internal/modules/settings/domain"
	settingsout "daing/internal/modules/settings/port/out"
	"daing/internal/platform/config"
	apperrors "daing/internal/platform/errors"
)

// SettingsService owns the current configuration snapshot. Every change
// persists first and then swaps in a new immutable Config.
type SettingsService struct {
	store  settingsout.Store
	logger log.Interface

	mu  sync.RWMutex
	cfg config.Config
}

func NewSettingsService(cfg config.Config, store settingsout.Store, logger log.Interface) *SettingsService {
	return &SettingsService{cfg: cfg, store: store, logger: logger}
}

func (s *SettingsService) Current() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *SettingsService) StorePath() string { return s.store.Path() }

func (s *SettingsService) SetServerURL(ctx context.Context, raw string) (config.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.cfg.WithServerURL(raw)
	if err != nil {
		return config.Config{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if err := s.persist(ctx, next); err != nil {
		return config.Config{}, err
	}
	s.logger.WithFields(log.Fields{"from": s.cfg.ServerURL, "to": next.ServerURL}).Info("server url changed")
	s.cfg = next
	return next, nil
}

func (s *SettingsService) SetAutoSave(ctx context.Context, enabled bool) (config.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cfg.WithAutoSave(enabled)
	if err := s.persist(ctx, next); err != nil {
		return config.Config{}, err
	}
	s.logger.WithField("auto_save_dataset", enabled).Info("auto-save setting changed")
	s.cfg = next
	return next, nil
}

func (s *SettingsService) persist(ctx context.Context, cfg config.Config) error {
	if err := s.store.Save(ctx, domain.Settings{ServerURL: cfg.ServerURL, AutoSaveDataset: cfg.AutoSaveDataset}); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
