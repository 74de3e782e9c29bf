package websites

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"voicero/internal/models"
)

// SaveConversationStats stores a generated report on the website together
// with the time it was generated.
func SaveConversationStats(logger *slog.Logger, db *gorm.DB, websiteID uint, report any, generatedAt time.Time) error {
	doc, err := models.NewJSON(report)
	if err != nil {
		return err
	}

	return models.PerformWrite(logger, db, func(tx *gorm.DB) error {
		result := tx.Model(&Website{}).
			Where("id = ?", websiteID).
			Updates(map[string]any{
				"conversation_stats":              doc,
				"conversation_stats_generated_at": generatedAt.UTC(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to save conversation stats for website %d: %w", websiteID, result.Error)
		}
		if result.RowsAffected == 0 {
			return &WebsiteNotFoundError{ID: websiteID}
		}
		return nil
	})
}

// CachedConversationStats decodes the stored report of a website into out.
// It returns the generation time, or nil when no report was stored yet.
func CachedConversationStats(db *gorm.DB, websiteID uint, out any) (*time.Time, error) {
	website, err := GetWebsite(db, websiteID)
	if err != nil {
		return nil, err
	}
	if len(website.ConversationStats) == 0 || website.ConversationStatsGeneratedAt == nil {
		return nil, nil
	}
	if err := website.ConversationStats.Decode(out); err != nil {
		return nil, fmt.Errorf("failed to decode conversation stats for website %d: %w", websiteID, err)
	}
	return website.ConversationStatsGeneratedAt, nil
}

// StatsStale reports whether the cached report is missing or older than maxAge.
func (w *Website) StatsStale(now time.Time, maxAge time.Duration) bool {
	if w.ConversationStatsGeneratedAt == nil || len(w.ConversationStats) == 0 {
		return true
	}
	return now.Sub(*w.ConversationStatsGeneratedAt) > maxAge
}
