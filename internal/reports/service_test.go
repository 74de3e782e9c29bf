package reports_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicero/internal/analytics"
	"voicero/internal/conversations"
	"voicero/internal/reports"
	"voicero/internal/testsupport"
	"voicero/internal/timeframe"
	"voicero/internal/websites"
)

var day = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func seedStore(t *testing.T) (*testsupport.TestDBManager, websites.Website) {
	db := testsupport.SetupTestDB(t)
	website := testsupport.CreateTestWebsite(db, "shop.example.com")
	testsupport.CreateProduct(t, db, website.ID, "red-shoe", "Red Shoe", 80)

	testsupport.CreateTextConversation(t, db, website.ID, day,
		conversations.TextChat{MessageType: conversations.MessageTypeUser, Content: "add the red shoe", CreatedAt: day},
		conversations.TextChat{
			MessageType: "ai",
			Content:     "Added!",
			Action:      testsupport.Ptr("add_to_cart"),
			ActionType:  testsupport.Ptr(`{"handle":"red-shoe"}`),
			CreatedAt:   day.Add(time.Minute),
		},
	)
	testsupport.CreateVoiceConversation(t, db, website.ID, day.Add(24*time.Hour),
		conversations.VoiceChat{MessageType: conversations.MessageTypeUser, Content: "where are hats", CreatedAt: day.Add(24 * time.Hour)},
		conversations.VoiceChat{
			MessageType: "ai",
			Content:     `{"action":"redirect","action_context":{"url":"https://shop.example.com/collections/hats"}}`,
			CreatedAt:   day.Add(24*time.Hour + time.Minute),
		},
	)

	return testsupport.NewTestDBManager(db), website
}

func frame(t *testing.T) *timeframe.TimeFrame {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	tf, err := timeframe.NewTimeFrame(from, to, timeframe.BucketSizeDay, time.UTC)
	require.NoError(t, err)
	return tf
}

func TestServiceBuild(t *testing.T) {
	dbManager, website := seedStore(t)
	service := reports.NewService(dbManager, testsupport.GetLogger(), time.Minute)

	report, err := service.Build(t.Context(), website.ID, frame(t))
	require.NoError(t, err)

	assert.Equal(t, website.ID, report.Scope.WebsiteID)
	assert.Equal(t, 2, report.Stats.TotalThreads)
	assert.Equal(t, 1, report.Stats.TotalTextChats)
	assert.Equal(t, 1, report.Stats.TotalVoiceChats)
	assert.Equal(t, 1, report.Stats.TotalAiRedirects)
	assert.Equal(t, 1, report.Stats.TotalAiPurchases)
	assert.Equal(t, 80.0, report.Stats.Revenue.Amount)
	assert.Equal(t, map[string]int{"hats": 1}, report.Stats.Redirects.Collections)

	require.Len(t, report.Series, 3)
	assert.Equal(t, 0, report.Series[0].TotalThreads)
	assert.Equal(t, 80.0, report.Series[1].Revenue)
	assert.Equal(t, 1, report.Series[2].TotalAiRedirects)
}

func TestServiceBuildOutsideWindow(t *testing.T) {
	dbManager, website := seedStore(t)
	service := reports.NewService(dbManager, testsupport.GetLogger(), time.Minute)

	tf, err := timeframe.NewTimeFrame(day.AddDate(0, 1, 0), day.AddDate(0, 1, 1), timeframe.BucketSizeDay, time.UTC)
	require.NoError(t, err)

	report, err := service.Build(t.Context(), website.ID, tf)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Stats.TotalThreads)
	assert.Equal(t, 0.0, report.Stats.Revenue.Amount)
	assert.NotNil(t, report.Stats.Cart)
}

func TestServicePriceIndexCache(t *testing.T) {
	dbManager, website := seedStore(t)
	service := reports.NewService(dbManager, testsupport.GetLogger(), time.Hour)

	index, err := service.PriceIndex(website.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, index.Len())

	testsupport.CreateProduct(t, dbManager.GetConnection(), website.ID, "blue-hat", "Blue Hat", 25)

	service.InvalidatePrices()
	index, err = service.PriceIndex(website.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, index.Len())
}

func TestServiceRefreshStoresReport(t *testing.T) {
	dbManager, website := seedStore(t)
	service := reports.NewService(dbManager, testsupport.GetLogger(), time.Minute)
	now := time.Date(2025, 6, 4, 1, 0, 0, 0, time.UTC)

	_, err := service.Refresh(t.Context(), website.ID, frame(t), now)
	require.NoError(t, err)

	var cached analytics.Report
	generatedAt, err := websites.CachedConversationStats(dbManager.GetConnection(), website.ID, &cached)
	require.NoError(t, err)
	require.NotNil(t, generatedAt)
	assert.True(t, now.Equal(*generatedAt))
	assert.Equal(t, 2, cached.Stats.TotalThreads)
	assert.Equal(t, 80.0, cached.Stats.Revenue.Amount)
}

func TestServiceSummaryDocument(t *testing.T) {
	dbManager, website := seedStore(t)
	service := reports.NewService(dbManager, testsupport.GetLogger(), time.Minute)

	doc, err := service.SummaryDocument(t.Context(), website.ID, frame(t))
	require.NoError(t, err)
	require.Len(t, doc.Threads, 2)
	assert.Equal(t, 2, doc.Stats.TotalThreads)
	assert.Equal(t, "text_conversation", string(doc.Threads[0].SourceKind))
}
