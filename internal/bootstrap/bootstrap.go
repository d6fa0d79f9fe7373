package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/apex/log"
	tea "github.com/charmbracelet/bubbletea"

	analyticsinadapter "daing/internal/modules/analytics/adapter/in"
	analyticsoutadapter "daing/internal/modules/analytics/adapter/out"
	analyticsservice "daing/internal/modules/analytics/service"
	analyticsusecase "daing/internal/modules/analytics/usecase"
	collectioninadapter "daing/internal/modules/collection/adapter/in"
	collectionoutadapter "daing/internal/modules/collection/adapter/out"
	collectionservice "daing/internal/modules/collection/service"
	collectionusecase "daing/internal/modules/collection/usecase"
	scaninadapter "daing/internal/modules/scan/adapter/in"
	scanoutadapter "daing/internal/modules/scan/adapter/out"
	scanport "daing/internal/modules/scan/port/out"
	scanservice "daing/internal/modules/scan/service"
	scanusecase "daing/internal/modules/scan/usecase"
	settingsinadapter "daing/internal/modules/settings/adapter/in"
	settingsoutadapter "daing/internal/modules/settings/adapter/out"
	settingsservice "daing/internal/modules/settings/service"
	settingsusecase "daing/internal/modules/settings/usecase"
	"daing/internal/platform/clock"
	"daing/internal/platform/config"
	"daing/internal/platform/httpclient"
	"daing/internal/platform/id"
	uiapp "daing/internal/ui/app"
)

// Version is stamped into the User-Agent header.
var Version = "dev"

// App holds the CLI handlers bound to one server configuration. Reconnect
// rebinds them after the settings change.
type App struct {
	clock    clock.Clock
	ids      id.Generator
	logger   log.Interface
	settings *settingsservice.SettingsService
	journal  scanport.ScanJournal
	closers  []io.Closer

	mu            sync.RWMutex
	cfg           config.Config
	ScanCLI       scaninadapter.CLIHandler
	CollectionCLI collectioninadapter.CLIHandler
	AnalyticsCLI  analyticsinadapter.CLIHandler
	SettingsCLI   settingsinadapter.CLIHandler
}

func New(cfg config.Config, logger log.Interface) (*App, error) {
	journal, err := scanoutadapter.NewSQLiteScanJournal(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open scan journal: %w", err)
	}
	settingsSvc := settingsservice.NewSettingsService(cfg, settingsoutadapter.NewYAMLStore(cfg.SettingsPath), logger)

	app := &App{
		clock:       clock.SystemClock{},
		ids:         id.UUID{},
		logger:      logger,
		settings:    settingsSvc,
		journal:     journal,
		SettingsCLI: settingsinadapter.NewCLIHandler(settingsusecase.NewInteractor(settingsSvc)),
	}
	if closer, ok := journal.(io.Closer); ok {
		app.closers = append(app.closers, closer)
	}
	app.connect(cfg)
	return app, nil
}

// connect builds every server-bound component from cfg.
func (a *App) connect(cfg config.Config) {
	client := httpclient.New(
		httpclient.WithLogger(a.logger),
		httpclient.WithUserAgent("daing/"+Version),
		httpclient.WithIDGenerator(a.ids),
	)

	scanSvc := scanservice.NewScanService(
		a.clock,
		a.ids,
		scanoutadapter.NewLocalImageStore(),
		scanoutadapter.NewHTTPAnalyzer(client, cfg),
		scanoutadapter.NewHTTPSampleUploader(client, cfg),
		a.journal,
		a.logger,
	)
	collectionSvc := collectionservice.NewCollectionService(collectionoutadapter.NewHTTPGateway(client, cfg), a.logger)
	analyticsSvc := analyticsservice.NewAnalyticsService(analyticsoutadapter.NewHTTPSummarySource(client, cfg), cfg.AnalyticsTTL, a.logger)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg = cfg
	a.ScanCLI = scaninadapter.NewCLIHandler(scanusecase.NewInteractor(scanSvc))
	a.CollectionCLI = collectioninadapter.NewCLIHandler(collectionusecase.NewInteractor(collectionSvc, a.clock))
	a.AnalyticsCLI = analyticsinadapter.NewCLIHandler(analyticsusecase.NewInteractor(analyticsSvc))
}

// Reconnect rebinds every component to the configuration last saved through
// the settings handler.
func (a *App) Reconnect() (uiapp.Ports, error) {
	a.connect(a.settings.Current())
	return a.Ports(), nil
}

func (a *App) Config() config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

func (a *App) Ports() uiapp.Ports {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return uiapp.Ports{
		Scan:         a.ScanCLI,
		Collection:   a.CollectionCLI,
		Analytics:    a.AnalyticsCLI,
		Settings:     a.SettingsCLI,
		ServerURL:    a.cfg.ServerURL,
		AutoSave:     a.cfg.AutoSaveDataset,
		AnnotatedDir: filepath.Join(a.cfg.DataDir, "annotated"),
	}
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.Ports(), app.Reconnect, app.clock.Location())
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
