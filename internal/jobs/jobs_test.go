package jobs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicero/internal/analytics"
	"voicero/internal/config"
	"voicero/internal/conversations"
	"voicero/internal/jobs"
	"voicero/internal/reports"
	"voicero/internal/testsupport"
	"voicero/internal/websites"
)

type fixedClock struct {
	at time.Time
}

func (c *fixedClock) Now(loc *time.Location) time.Time {
	return c.at.In(loc)
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:                    config.Test,
		RefreshWindowDays:              7,
		RefreshWorkers:                 2,
		JobIntervalSeconds:             3600,
		EmptyConversationRetentionDays: 7,
	}
}

func TestRefreshJobStoresEveryWebsite(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	dbManager := testsupport.NewTestDBManager(db)
	logger := testsupport.GetLogger()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	first := testsupport.CreateTestWebsite(db, "one.example.com")
	second := testsupport.CreateTestWebsite(db, "two.example.com")

	testsupport.CreateTextConversation(t, db, first.ID, now.Add(-time.Hour),
		conversations.TextChat{MessageType: conversations.MessageTypeUser, Content: "hi", CreatedAt: now.Add(-time.Hour)},
	)
	testsupport.CreateTextConversation(t, db, first.ID, now.AddDate(0, 0, -20),
		conversations.TextChat{MessageType: conversations.MessageTypeUser, Content: "too old", CreatedAt: now.AddDate(0, 0, -20)},
	)

	service := reports.NewService(dbManager, logger, time.Minute)
	job := jobs.NewRefreshJob(dbManager, logger, testConfig(), service, &fixedClock{at: now})

	result, err := job.RunContext(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Refreshed)
	assert.Equal(t, 0, result.Failed)

	var report analytics.Report
	generatedAt, err := websites.CachedConversationStats(db, first.ID, &report)
	require.NoError(t, err)
	require.NotNil(t, generatedAt)
	assert.True(t, now.Equal(*generatedAt))
	assert.Equal(t, 1, report.Stats.TotalThreads)
	assert.Len(t, report.Series, 7)

	generatedAt, err = websites.CachedConversationStats(db, second.ID, &report)
	require.NoError(t, err)
	assert.NotNil(t, generatedAt)
}

func TestRefreshJobNoWebsites(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	dbManager := testsupport.NewTestDBManager(db)
	logger := testsupport.GetLogger()

	service := reports.NewService(dbManager, logger, time.Minute)
	job := jobs.NewRefreshJob(dbManager, logger, testConfig(), service)

	result, err := job.RunContext(t.Context())
	require.NoError(t, err)
	assert.Equal(t, jobs.RefreshResult{}, result)
}

func TestCleanupJob(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	dbManager := testsupport.NewTestDBManager(db)
	website := testsupport.CreateTestWebsite(db, "example.com")

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	testsupport.CreateVoiceConversation(t, db, website.ID, now.AddDate(0, 0, -30))
	testsupport.CreateVoiceConversation(t, db, website.ID, now.AddDate(0, 0, -1))

	job := jobs.NewCleanupJob(dbManager, testsupport.GetLogger(), testConfig())
	require.NoError(t, job.RunAt(now))

	var count int64
	require.NoError(t, db.Model(&conversations.VoiceConversation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSchedulerStartStop(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	dbManager := testsupport.NewTestDBManager(db)
	logger := testsupport.GetLogger()

	service := reports.NewService(dbManager, logger, time.Minute)
	scheduler := jobs.NewScheduler(dbManager, logger, testConfig(), service)

	require.NoError(t, scheduler.Start())
	assert.True(t, scheduler.IsRunning())

	scheduler.Stop()
	assert.False(t, scheduler.IsRunning())
	assert.NoError(t, scheduler.RefreshNow())
}
