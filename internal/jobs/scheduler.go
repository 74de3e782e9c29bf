package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/karloscodes/cartridge"

	"voicero/internal/config"
	"voicero/internal/reports"
)

// Scheduler is responsible for running background jobs
type Scheduler struct {
	dbManager cartridge.DBManager
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	enabled   bool
	isRunning bool
	cfg       *config.Config

	// Mutex to prevent concurrent job executions
	processingMutex sync.Mutex
	isProcessing    bool

	refreshJob *RefreshJob
	cleanupJob *CleanupJob

	refreshTicker *time.Ticker
	cleanupTicker *time.Ticker
}

func NewScheduler(dbManager cartridge.DBManager, logger *slog.Logger, cfg *config.Config, service *reports.Service) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		dbManager:  dbManager,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		enabled:    true,
		cfg:        cfg,
		refreshJob: NewRefreshJob(dbManager, logger, cfg, service),
		cleanupJob: NewCleanupJob(dbManager, logger, cfg),
	}
}

// executeJobSafely runs a job only if no other job is currently executing
func (s *Scheduler) executeJobSafely(jobName string, jobFunc func() error) {
	s.processingMutex.Lock()
	if s.isProcessing {
		s.logger.Debug("Skipping job execution - previous job still running", slog.String("job", jobName))
		s.processingMutex.Unlock()
		return
	}
	s.isProcessing = true
	s.processingMutex.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic recovered in background job",
				slog.String("job", jobName),
				slog.Any("panic", r))
		}

		s.processingMutex.Lock()
		s.isProcessing = false
		s.processingMutex.Unlock()
	}()

	if err := jobFunc(); err != nil {
		s.logger.Error("Error executing job", slog.String("job", jobName), slog.Any("error", err))
	}
}

// Start begins all background jobs
func (s *Scheduler) Start() error {
	if !s.enabled {
		s.logger.Info("Background jobs are disabled.")
		return nil
	}

	if s.isRunning {
		s.logger.Info("Background jobs already running.")
		return nil
	}

	s.logger.Info("Starting background jobs...")
	s.isRunning = true

	s.refreshTicker = s.startJob("refresh", time.Duration(s.cfg.JobIntervalSeconds)*time.Second, s.refreshRun)
	s.cleanupTicker = s.startJob("cleanup", 24*time.Hour, s.cleanupJob.Run)

	s.logger.Info("Background jobs started",
		slog.Bool("enabled", s.enabled),
		slog.Bool("isRunning", s.isRunning))

	return nil
}

func (s *Scheduler) refreshRun() error {
	_, err := s.refreshJob.RunContext(s.ctx)
	return err
}

// startJob runs jobFunc once right away and then on every tick.
func (s *Scheduler) startJob(name string, interval time.Duration, jobFunc func() error) *time.Ticker {
	s.logger.Info("Starting job", slog.String("job", name), slog.Duration("interval", interval))
	ticker := time.NewTicker(interval)

	go func() {
		s.executeJobSafely(name, jobFunc)

		for {
			select {
			case <-ticker.C:
				s.executeJobSafely(name, jobFunc)
			case <-s.ctx.Done():
				s.logger.Info("Job stopped", slog.String("job", name))
				return
			}
		}
	}()

	return ticker
}

// Stop halts all background jobs.
// Implements cartridge.BackgroundWorker interface.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background jobs...")
	s.enabled = false

	if s.refreshTicker != nil {
		s.refreshTicker.Stop()
	}
	if s.cleanupTicker != nil {
		s.cleanupTicker.Stop()
	}

	s.cancel()
	s.isRunning = false
	s.logger.Info("Background jobs stopped")
}

// IsRunning returns whether jobs are currently running
func (s *Scheduler) IsRunning() bool {
	return s.isRunning
}

// RefreshNow runs the refresh job outside the schedule.
func (s *Scheduler) RefreshNow() error {
	if !s.enabled {
		return nil
	}
	var err error
	s.executeJobSafely("refresh", func() error {
		err = s.refreshRun()
		return err
	})
	return err
}
