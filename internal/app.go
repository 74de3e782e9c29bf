// Package internal contains core application functionality
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"

	"voicero/internal/config"
	"voicero/internal/database"
	"voicero/internal/jobs"
	"voicero/internal/reports"
)

// Application holds the long-lived components shared by the daemon and the
// admin CLI.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	DBManager *database.DBManager
	Reports   *reports.Service
	Scheduler *jobs.Scheduler
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	return NewAppWithConfig(config.GetConfig())
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := cartridge.NewLogger(cfg, nil)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	service := reports.NewService(dbManager, logger, time.Duration(cfg.CatalogCacheTTLSeconds)*time.Second)

	return &Application{
		Config:    cfg,
		Logger:    logger,
		DBManager: dbManager,
		Reports:   service,
		Scheduler: jobs.NewScheduler(dbManager, logger, cfg, service),
	}, nil
}

// StartAsync starts the background jobs and returns immediately.
func (a *Application) StartAsync() error {
	return a.Scheduler.Start()
}

// Shutdown stops the background jobs and flushes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.Scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := a.DBManager.CheckpointWAL("TRUNCATE"); err != nil {
		a.Logger.Warn("Failed to checkpoint WAL on shutdown", slog.Any("error", err))
	}
	return nil
}
