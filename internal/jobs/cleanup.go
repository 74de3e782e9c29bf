package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"

	"voicero/internal/config"
	"voicero/internal/conversations"
)

// CleanupJob removes conversation headers that never received a message
type CleanupJob struct {
	dbManager cartridge.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewCleanupJob(dbManager cartridge.DBManager, logger *slog.Logger, cfg *config.Config) *CleanupJob {
	return &CleanupJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run deletes empty headers older than the retention period.
func (j *CleanupJob) Run() error {
	return j.RunAt(time.Now().UTC())
}

func (j *CleanupJob) RunAt(now time.Time) error {
	retentionDays := j.cfg.EmptyConversationRetentionDays
	cutoffDate := now.AddDate(0, 0, -retentionDays)

	j.logger.Info("Starting cleanup of empty conversations",
		slog.Int("retention_days", retentionDays),
		slog.Time("cutoff_date", cutoffDate))

	deleted, err := conversations.DeleteEmptyConversations(context.Background(), j.dbManager.GetConnection(), cutoffDate)
	if err != nil {
		j.logger.Error("Failed to delete empty conversations",
			slog.Any("error", err),
			slog.Int64("deleted_so_far", deleted))
		return err
	}

	if deleted == 0 {
		j.logger.Debug("No empty conversations to clean up")
		return nil
	}

	j.logger.Info("Cleaned up empty conversations",
		slog.Int64("deleted_count", deleted),
		slog.Int("retention_days", retentionDays))
	return nil
}
