package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/karloscodes/cartridge"

	"voicero/internal/analytics"
	"voicero/internal/config"
	"voicero/internal/pkg/async"
	"voicero/internal/reports"
	"voicero/internal/timeframe"
	"voicero/internal/websites"
)

// RefreshJob rebuilds the cached conversation report of every website over
// the rolling refresh window.
type RefreshJob struct {
	dbManager    cartridge.DBManager
	logger       *slog.Logger
	cfg          *config.Config
	service      *reports.Service
	timeProvider timeframe.TimeProvider
}

func NewRefreshJob(dbManager cartridge.DBManager, logger *slog.Logger, cfg *config.Config, service *reports.Service, provider ...timeframe.TimeProvider) *RefreshJob {
	var tp timeframe.TimeProvider = &timeframe.DefaultTimeProvider{}
	if len(provider) > 0 && provider[0] != nil {
		tp = provider[0]
	}
	return &RefreshJob{
		dbManager:    dbManager,
		logger:       logger,
		cfg:          cfg,
		service:      service,
		timeProvider: tp,
	}
}

// RefreshResult summarizes one run.
type RefreshResult struct {
	Refreshed int
	Failed    int
}

func (j *RefreshJob) Run() error {
	_, err := j.RunContext(context.Background())
	return err
}

// RunContext refreshes all websites, several at a time. A website that fails
// does not stop the others; the returned error reports how many failed.
func (j *RefreshJob) RunContext(ctx context.Context) (RefreshResult, error) {
	start := time.Now()
	now := j.timeProvider.Now(time.UTC)
	tf := timeframe.NewRollingTimeFrame(now, j.cfg.RefreshWindowDays)

	all, err := websites.ListWebsites(j.dbManager.GetConnection())
	if err != nil {
		return RefreshResult{}, err
	}
	if len(all) == 0 {
		j.logger.Debug("No websites to refresh")
		return RefreshResult{}, nil
	}

	tasks := make([]async.Task[*analytics.Report], 0, len(all))
	for _, website := range all {
		websiteID := website.ID
		tasks = append(tasks, async.Task[*analytics.Report]{
			Name: strconv.FormatUint(uint64(websiteID), 10),
			Execute: func(ctx context.Context) (*analytics.Report, error) {
				return j.service.Refresh(ctx, websiteID, tf, now)
			},
		})
	}

	pool := async.NewPool[*analytics.Report](j.cfg.GetRefreshWorkers())
	results := pool.Execute(ctx, tasks)

	var result RefreshResult
	for _, task := range tasks {
		r, ok := results[task.Name]
		switch {
		case !ok:
			result.Failed++
		case r.Err != nil:
			result.Failed++
			j.logger.Error("Failed to refresh conversation stats",
				slog.String("website_id", task.Name),
				slog.Any("error", r.Err))
		default:
			result.Refreshed++
		}
	}

	j.logger.Info("Refreshed conversation stats",
		slog.Int("refreshed", result.Refreshed),
		slog.Int("failed", result.Failed),
		slog.Int("window_days", j.cfg.RefreshWindowDays),
		slog.Duration("duration", time.Since(start)))

	if result.Failed > 0 {
		return result, fmt.Errorf("failed to refresh %d of %d websites", result.Failed, len(tasks))
	}
	return result, nil
}
