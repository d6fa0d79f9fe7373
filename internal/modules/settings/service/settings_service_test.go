package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	settingsout "daing/internal/modules/settings/adapter/out"
	"daing/internal/modules/settings/dto"
	"daing/internal/modules/settings/service"
	"daing/internal/modules/settings/usecase"
	"daing/internal/platform/config"
	apperrors "daing/internal/platform/errors"
	"daing/internal/platform/logging"
)

func TestSettingsPersistAndReload(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	svc := service.NewSettingsService(cfg, settingsout.NewYAMLStore(cfg.SettingsPath), logging.Discard())
	uc := usecase.NewInteractor(svc)
	ctx := context.Background()

	out, err := uc.SetServerURL(ctx, dto.SetServerURLInput{URL: "  http://10.0.0.5:8000/// "})
	if err != nil {
		t.Fatalf("set server: %v", err)
	}
	if out.ServerURL != "http://10.0.0.5:8000" || out.History != "http://10.0.0.5:8000/history" {
		t.Fatalf("unexpected output %+v", out)
	}
	out, err = uc.SetAutoSave(ctx, dto.SetAutoSaveInput{Enabled: true})
	if err != nil {
		t.Fatalf("set auto-save: %v", err)
	}
	if !out.AutoSaveDataset || out.Analyze != "http://10.0.0.5:8000/analyze?auto_save_dataset=true" {
		t.Fatalf("unexpected output %+v", out)
	}
	if out.Path != filepath.Join(dir, "settings.yaml") {
		t.Fatalf("unexpected settings path %q", out.Path)
	}

	reloaded, err := config.Load(dir, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ServerURL != "http://10.0.0.5:8000" || !reloaded.AutoSaveDataset {
		t.Fatalf("settings not persisted: %+v", reloaded)
	}
}

func TestSetServerURLRejectsInvalid(t *testing.T) {
	t.Parallel()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	svc := service.NewSettingsService(cfg, settingsout.NewYAMLStore(cfg.SettingsPath), logging.Discard())
	for _, raw := range []string{"", "ftp://host", "http://"} {
		if _, err := svc.SetServerURL(context.Background(), raw); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("%q: expected invalid input, got %v", raw, err)
		}
	}
	if svc.Current().ServerURL != config.DefaultServerURL {
		t.Fatalf("rejected url must not change config")
	}
}
