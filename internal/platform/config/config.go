package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"daing/internal/platform/endpoint"
)

// DefaultServerURL is a placeholder local-network address; the backend is
// expected to run next to the phone during development.
const DefaultServerURL = "http://192.168.1.10:8000"

const (
	KeyServerURL       = "server_url"
	KeyAutoSaveDataset = "auto_save_dataset"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"

	keyAnalyzeTimeout = "timeouts.analyze"
	keyUploadTimeout  = "timeouts.upload"
	keyFetchTimeout   = "timeouts.fetch"
	keyDeleteTimeout  = "timeouts.delete"
	keyRetryAttempts  = "retry.attempts"
	keyRetryDelay     = "retry.delay"
	keyAnalyticsTTL   = "analytics.cache_ttl"

	envPrefix        = "DAING"
	settingsFileName = "settings.yaml"
	dbFileName       = "daing.db"
	logFileName      = "daing.log"
)

type Timeouts struct {
	Analyze time.Duration
	Upload  time.Duration
	Fetch   time.Duration
	Delete  time.Duration
}

type Retry struct {
	Attempts int
	Delay    time.Duration
}

// Config is an immutable snapshot threaded into every component at
// construction. Changing a setting means building a new Config.
type Config struct {
	ServerURL       string
	AutoSaveDataset bool
	DataDir         string
	DBPath          string
	SettingsPath    string
	LogPath         string
	LogLevel        string
	LogFormat       string
	Timeouts        Timeouts
	Retry           Retry
	AnalyticsTTL    time.Duration
}

// New returns the defaults rooted at dataDir.
func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		ServerURL:    DefaultServerURL,
		DataDir:      dataDir,
		DBPath:       filepath.Join(dataDir, dbFileName),
		SettingsPath: filepath.Join(dataDir, settingsFileName),
		LogPath:      filepath.Join(dataDir, logFileName),
		LogLevel:     "info",
		LogFormat:    "text",
		Timeouts: Timeouts{
			Analyze: 30 * time.Second,
			Upload:  30 * time.Second,
			Fetch:   10 * time.Second,
			Delete:  10 * time.Second,
		},
		Retry:        Retry{Attempts: 3, Delay: time.Second},
		AnalyticsTTL: 30 * time.Second,
	}, nil
}

// Load layers defaults, the settings file, .env, DAING_* environment and
// changed flags, in increasing priority. flags may be nil.
func Load(dataDir string, flags *pflag.FlagSet) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault(KeyServerURL, cfg.ServerURL)
	v.SetDefault(KeyAutoSaveDataset, false)
	v.SetDefault(KeyLogLevel, cfg.LogLevel)
	v.SetDefault(KeyLogFormat, cfg.LogFormat)
	v.SetDefault(keyAnalyzeTimeout, cfg.Timeouts.Analyze)
	v.SetDefault(keyUploadTimeout, cfg.Timeouts.Upload)
	v.SetDefault(keyFetchTimeout, cfg.Timeouts.Fetch)
	v.SetDefault(keyDeleteTimeout, cfg.Timeouts.Delete)
	v.SetDefault(keyRetryAttempts, cfg.Retry.Attempts)
	v.SetDefault(keyRetryDelay, cfg.Retry.Delay)
	v.SetDefault(keyAnalyticsTTL, cfg.AnalyticsTTL)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, statErr := os.Stat(cfg.SettingsPath); statErr == nil {
		v.SetConfigFile(cfg.SettingsPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read settings %s: %w", cfg.SettingsPath, err)
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return Config{}, fmt.Errorf("stat settings: %w", statErr)
	}

	if flags != nil {
		for key, name := range map[string]string{
			KeyServerURL:       "server",
			KeyAutoSaveDataset: "auto-save",
			KeyLogLevel:        "log-level",
			KeyLogFormat:       "log-format",
		} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg.ServerURL = v.GetString(KeyServerURL)
	cfg.AutoSaveDataset = v.GetBool(KeyAutoSaveDataset)
	cfg.LogLevel = v.GetString(KeyLogLevel)
	cfg.LogFormat = v.GetString(KeyLogFormat)
	cfg.Timeouts = Timeouts{
		Analyze: v.GetDuration(keyAnalyzeTimeout),
		Upload:  v.GetDuration(keyUploadTimeout),
		Fetch:   v.GetDuration(keyFetchTimeout),
		Delete:  v.GetDuration(keyDeleteTimeout),
	}
	cfg.Retry = Retry{Attempts: v.GetInt(keyRetryAttempts), Delay: v.GetDuration(keyRetryDelay)}
	cfg.AnalyticsTTL = v.GetDuration(keyAnalyticsTTL)
	return cfg.WithServerURL(cfg.ServerURL)
}

// WithServerURL returns a copy pointing at a validated, normalized base URL.
func (c Config) WithServerURL(raw string) (Config, error) {
	normalized, err := ValidateServerURL(raw)
	if err != nil {
		return Config{}, err
	}
	c.ServerURL = normalized
	return c, nil
}

func (c Config) WithAutoSave(enabled bool) Config {
	c.AutoSaveDataset = enabled
	return c
}

func (c Config) Endpoints() endpoint.Endpoints {
	return endpoint.New(c.ServerURL)
}

// ValidateServerURL normalizes raw and requires an http(s) URL with a host.
func ValidateServerURL(raw string) (string, error) {
	normalized := endpoint.NormalizeBaseURL(raw)
	if normalized == "" {
		return "", fmt.Errorf("server url is required")
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("server url must use http or https, got %q", normalized)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server url %q has no host", normalized)
	}
	return normalized, nil
}
