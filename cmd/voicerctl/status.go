package main

import (
	"fmt"
	"time"

	"github.com/karloscodes/cartridge/cache"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"voicero/internal/analytics"
	"voicero/internal/conversations"
	"voicero/internal/websites"
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(purgeCacheCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows database and cached report status",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		db := app.DBManager.GetConnection()

		var threadCount, textCount, voiceCount int64
		if err := db.Model(&conversations.AiThread{}).Count(&threadCount).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		db.Model(&conversations.TextConversation{}).Count(&textCount)
		db.Model(&conversations.VoiceConversation{}).Count(&voiceCount)

		all, err := websites.ListWebsites(db)
		if err != nil {
			return err
		}

		fmt.Println("System Status:")
		fmt.Println("- Database: Connected")
		fmt.Printf("- Conversations: %d ai threads, %d text, %d voice\n", threadCount, textCount, voiceCount)
		fmt.Printf("- Websites: %d\n", len(all))

		maxAge := 2 * time.Duration(app.Config.JobIntervalSeconds) * time.Second
		now := time.Now().UTC()
		for _, w := range all {
			line, err := websiteStatusLine(db, w, now, maxAge)
			if err != nil {
				return err
			}
			fmt.Println(line)
		}
		return nil
	},
}

// websiteStatusLine describes a website together with the totals of its
// cached report.
func websiteStatusLine(db *gorm.DB, w websites.Website, now time.Time, maxAge time.Duration) (string, error) {
	var cached analytics.Report
	generatedAt, err := websites.CachedConversationStats(db, w.ID, &cached)
	if err != nil {
		return "", err
	}

	state := "fresh"
	if w.StatsStale(now, maxAge) {
		state = "stale"
	}
	if generatedAt == nil {
		return fmt.Sprintf("  %d %s (%s): stats never, %s", w.ID, w.Domain, w.Platform, state), nil
	}
	return fmt.Sprintf("  %d %s (%s): stats %s, %s, %d threads, revenue %.2f",
		w.ID, w.Domain, w.Platform, generatedAt.UTC().Format(time.RFC3339), state,
		cached.Stats.TotalThreads, cached.Stats.Revenue.Amount), nil
}

var purgeCacheCmd = &cobra.Command{
	Use:   "purge-cache",
	Short: "Removes persisted cache records",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		rows, err := cache.PurgeAllCaches(app.DBManager.GetConnection())
		if err != nil {
			return err
		}
		app.Reports.InvalidatePrices()
		fmt.Printf("Purged %d cache records\n", rows)
		return nil
	},
}
