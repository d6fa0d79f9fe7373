package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"daing/internal/platform/config"
)

func TestNewRequiresDataDir(t *testing.T) {
	t.Parallel()
	if _, err := config.New(""); err == nil {
		t.Fatalf("expected data dir error")
	}
	cfg, err := config.New("/tmp/daing")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join("/tmp/daing", "daing.db") || cfg.Retry.Attempts != 3 || cfg.Retry.Delay != time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadLayersSettingsEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	settings := "server_url: \"http://10.0.0.5:8000//\"\nauto_save_dataset: true\ntimeouts:\n  fetch: 4s\n"
	if err := os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte(settings), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	cfg, err := config.Load(dir, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "http://10.0.0.5:8000" || !cfg.AutoSaveDataset || cfg.Timeouts.Fetch != 4*time.Second {
		t.Fatalf("settings file not applied: %+v", cfg)
	}

	t.Setenv("DAING_SERVER_URL", "http://env-host:9000/")
	cfg, err = config.Load(dir, nil)
	if err != nil {
		t.Fatalf("load with env: %v", err)
	}
	if cfg.ServerURL != "http://env-host:9000" {
		t.Fatalf("env should override settings file, got %s", cfg.ServerURL)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server", "", "")
	flags.String("log-level", "", "")
	if err := flags.Parse([]string{"--server", "https://flag-host"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err = config.Load(dir, flags)
	if err != nil {
		t.Fatalf("load with flags: %v", err)
	}
	if cfg.ServerURL != "https://flag-host" {
		t.Fatalf("flag should win, got %s", cfg.ServerURL)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unchanged flag must not clobber default, got %q", cfg.LogLevel)
	}
}

func TestWithServerURLValidates(t *testing.T) {
	t.Parallel()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	for _, bad := range []string{"", "   /", "ftp://host", "http://", "10.0.0.5:8000"} {
		if _, err := cfg.WithServerURL(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
	next, err := cfg.WithServerURL(" http://10.0.0.5:8000/ ")
	if err != nil {
		t.Fatalf("valid url rejected: %v", err)
	}
	if next.ServerURL != "http://10.0.0.5:8000" || cfg.ServerURL != config.DefaultServerURL {
		t.Fatalf("WithServerURL must copy: next=%s orig=%s", next.ServerURL, cfg.ServerURL)
	}
	if next.Endpoints().History() != "http://10.0.0.5:8000/history" {
		t.Fatalf("unexpected history endpoint %s", next.Endpoints().History())
	}
}
