package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	cataloginadapter "trackboard/internal/modules/catalog/adapter/in"
	catalogoutadapter "trackboard/internal/modules/catalog/adapter/out"
	catalogservice "trackboard/internal/modules/catalog/service"
	catalogusecase "trackboard/internal/modules/catalog/usecase"
	sessioninadapter "trackboard/internal/modules/session/adapter/in"
	sessionoutadapter "trackboard/internal/modules/session/adapter/out"
	sessionout "trackboard/internal/modules/session/port/out"
	sessionservice "trackboard/internal/modules/session/service"
	sessionusecase "trackboard/internal/modules/session/usecase"
	statsinadapter "trackboard/internal/modules/stats/adapter/in"
	statsusecase "trackboard/internal/modules/stats/usecase"
	"trackboard/internal/platform/clock"
	"trackboard/internal/platform/config"
	"trackboard/internal/platform/logging"
	uiapp "trackboard/internal/ui/app"
)

type App struct {
	Config     config.Config
	Logger     *slog.Logger
	SessionCLI sessioninadapter.CLIHandler
	SessionTUI sessioninadapter.TUIHandler
	CatalogCLI cataloginadapter.CLIHandler
	StatsCLI   statsinadapter.CLIHandler

	closers []io.Closer
}

type kvStore interface {
	sessionout.KVStore
	io.Closer
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	kv, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	catalog, err := catalogservice.Load(ctx, catalogoutadapter.NewYAMLSource(cfg.CatalogPath))
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	catalogUC := catalogusecase.NewInteractor(catalog)

	tracker := sessionservice.NewTracker(clock.SystemClock{}, sessionservice.NewJSONStore(kv, logger), logger)
	if err := tracker.Restore(ctx); err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("restore state: %w", err)
	}
	sessionUC := sessionusecase.NewInteractor(tracker, catalogUC)
	statsUC := statsusecase.NewInteractor(sessionUC, catalogUC)

	logger.Debug("app ready", "store", cfg.Store, "dir", cfg.Dir, "tracks", len(catalog.Tracks()))
	return &App{
		Config:     cfg,
		Logger:     logger,
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		SessionTUI: sessioninadapter.NewTUIHandler(sessionUC),
		CatalogCLI: cataloginadapter.NewCLIHandler(catalogUC),
		StatsCLI:   statsinadapter.NewCLIHandler(statsUC),
		closers:    []io.Closer{kv},
	}, nil
}

func openStore(cfg config.Config) (kvStore, error) {
	switch cfg.Store {
	case config.StoreFile:
		return sessionoutadapter.NewFileKVStore(cfg.KVDir), nil
	case config.StoreSQLite, "":
		store, err := sessionoutadapter.OpenSQLiteKVStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Close releases the durable store. Every write has already been committed by
// the time a command returns, so Close never flushes.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.Config.Dir, app.SessionTUI, app.CatalogCLI, app.StatsCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
