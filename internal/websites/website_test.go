package websites_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicero/internal/config"
	"voicero/internal/testsupport"
	"voicero/internal/websites"
)

func TestMain(m *testing.M) {
	os.Setenv("VOICERO_ENV", config.Test)
	config.Reset()
	os.Exit(m.Run())
}

func TestGetWebsiteByDomain(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	testWebsite := testsupport.CreateTestWebsite(db, "example.com")

	t.Run("Exact hostname match", func(t *testing.T) {
		website, err := websites.GetWebsiteByDomain(db, "example.com")

		require.NoError(t, err)
		assert.Equal(t, testWebsite.ID, website.ID)
	})

	t.Run("Subdomain resolves to base domain", func(t *testing.T) {
		website, err := websites.GetWebsiteByDomain(db, "shop.example.com")

		require.NoError(t, err)
		assert.Equal(t, testWebsite.ID, website.ID)
	})

	t.Run("No match for non-existent domain", func(t *testing.T) {
		website, err := websites.GetWebsiteByDomain(db, "unknown-domain.com")

		assert.Error(t, err)
		assert.Nil(t, website)

		var websiteNotFoundErr *websites.WebsiteNotFoundError
		assert.ErrorAs(t, err, &websiteNotFoundErr)
		assert.Equal(t, "unknown-domain.com", websiteNotFoundErr.Domain)
	})
}

func TestCreateWebsite(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	website := &websites.Website{Domain: "www.Store.co.uk"}
	require.NoError(t, websites.CreateWebsite(db, website))
	assert.Equal(t, "store.co.uk", website.Domain)
	assert.Equal(t, websites.PlatformCustom, website.Platform)

	err := websites.CreateWebsite(db, &websites.Website{Domain: "bad.com", Platform: "magento"})
	assert.Error(t, err)

	all, err := websites.ListWebsites(db)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, website.ID, all[0].ID)
}

func TestBaseDomainForHost(t *testing.T) {
	tests := []struct {
		name     string
		hostname string
		expected string
	}{
		{"Simple subdomain", "www.example.com", "example.com"},
		{"Multiple subdomains", "api.v1.example.com", "example.com"},
		{"No subdomain", "example.com", "example.com"},
		{"Country code TLD", "www.example.co.uk", "example.co.uk"},
		{"Localhost", "localhost", "localhost"},
		{"Localhost subdomain", "shop.localhost", "localhost"},
		{"Single part domain", "example", "example"},
		{"Uppercase", "WWW.Example.COM", "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, websites.BaseDomainForHost(tt.hostname))
		})
	}
}

type cachedReport struct {
	TotalThreads int `json:"totalThreads"`
}

func TestConversationStats(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	website := testsupport.CreateTestWebsite(db, "example.com")

	t.Run("missing report", func(t *testing.T) {
		var out cachedReport
		generatedAt, err := websites.CachedConversationStats(db, website.ID, &out)
		require.NoError(t, err)
		assert.Nil(t, generatedAt)
	})

	t.Run("save and read back", func(t *testing.T) {
		now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, websites.SaveConversationStats(logger, db, website.ID, cachedReport{TotalThreads: 7}, now))

		var out cachedReport
		generatedAt, err := websites.CachedConversationStats(db, website.ID, &out)
		require.NoError(t, err)
		require.NotNil(t, generatedAt)
		assert.True(t, now.Equal(*generatedAt))
		assert.Equal(t, 7, out.TotalThreads)
	})

	t.Run("unknown website", func(t *testing.T) {
		err := websites.SaveConversationStats(logger, db, 9999, cachedReport{}, time.Now())
		var notFound *websites.WebsiteNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestStatsStale(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	generated := now.Add(-2 * time.Hour)

	empty := websites.Website{}
	assert.True(t, empty.StatsStale(now, time.Hour))

	fresh := websites.Website{ConversationStats: []byte(`{}`), ConversationStatsGeneratedAt: &generated}
	assert.False(t, fresh.StatsStale(now, 3*time.Hour))
	assert.True(t, fresh.StatsStale(now, time.Hour))
}
