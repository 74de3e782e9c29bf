package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge"
	ctestsupport "github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"voicero/internal/catalog"
	"voicero/internal/config"
	"voicero/internal/conversations"
	"voicero/internal/database"
	"voicero/internal/websites"
)

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// TestDBManager wraps cartridge's TestDBManager
type TestDBManager struct {
	*ctestsupport.TestDBManager
}

// NewTestDBManager creates a TestDBManager that implements cartridge.DBManager
func NewTestDBManager(db *gorm.DB) *TestDBManager {
	return &TestDBManager{
		TestDBManager: ctestsupport.NewTestDBManager(db),
	}
}

var _ cartridge.DBManager = (*TestDBManager)(nil)

// SetupTestDB creates a test database with all models migrated.
// Uses a named in-memory database with cache=shared to allow multiple connections
// to share the same database within a test. Caches the database by test name
// so multiple calls within the same test return the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testName := t.Name()

	// Use root test name for caching so subtests share the parent database
	rootName := testName
	if idx := strings.Index(testName, "/"); idx > 0 {
		rootName = testName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupTestDBManager creates a test DB manager using cartridge's testsupport
func SetupTestDBManager(t *testing.T) (*TestDBManager, *slog.Logger) {
	cfg := config.GetConfig()

	// SAFETY CHECK: Ensure we're in test environment
	if cfg.Environment != config.Test {
		t.Fatalf("CRITICAL: Tests must run in test environment! Current: %s. Set VOICERO_ENV=test", cfg.Environment)
	}

	db := SetupTestDB(t)
	return NewTestDBManager(db), GetLogger()
}

// CleanAllTables clears all non-system tables in the database
func CleanAllTables(db *gorm.DB) {
	var tableNames []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&tableNames)

	if len(tableNames) == 0 {
		return
	}

	db.Exec("PRAGMA foreign_keys = OFF")
	defer db.Exec("PRAGMA foreign_keys = ON")

	db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tableNames {
			tx.Exec("DELETE FROM " + table)
			tx.Exec("DELETE FROM sqlite_sequence WHERE name=?", table)
		}
		return nil
	})
}

// CreateTestWebsite creates a test website in the database. The domain is
// stored as given, so subdomains stay distinct.
func CreateTestWebsite(db *gorm.DB, domain string) websites.Website {
	var website websites.Website
	if db.Where("domain = ?", domain).First(&website).Error != nil {
		website = websites.Website{Domain: domain, Platform: websites.PlatformShopify, CreatedAt: time.Now().UTC()}
		db.Create(&website)
	}
	return website
}

// CreateProduct inserts a catalog product for a website.
func CreateProduct(t *testing.T, db *gorm.DB, websiteID uint, handle, title string, price float64) catalog.Product {
	t.Helper()

	now := time.Now().UTC()
	product := catalog.Product{
		ID:        uuid.NewString(),
		WebsiteID: websiteID,
		Handle:    handle,
		Title:     title,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

// CreateAiThread inserts a legacy thread with its messages. Blank message ids
// and thread ids are filled in.
func CreateAiThread(t *testing.T, db *gorm.DB, websiteID uint, createdAt time.Time, messages ...conversations.AiMessage) conversations.AiThread {
	t.Helper()

	thread := conversations.AiThread{ID: uuid.NewString(), WebsiteID: websiteID, CreatedAt: createdAt.UTC()}
	for i := range messages {
		if messages[i].ID == "" {
			messages[i].ID = uuid.NewString()
		}
		messages[i].ThreadID = thread.ID
		last := messages[i].CreatedAt
		thread.LastMessageAt = &last
	}
	thread.Messages = messages
	require.NoError(t, db.Create(&thread).Error)
	return thread
}

// CreateTextConversation inserts a typed conversation with its chats.
func CreateTextConversation(t *testing.T, db *gorm.DB, websiteID uint, createdAt time.Time, chats ...conversations.TextChat) conversations.TextConversation {
	t.Helper()

	conversation := conversations.TextConversation{ID: uuid.NewString(), WebsiteID: websiteID, CreatedAt: createdAt.UTC()}
	for i := range chats {
		if chats[i].ID == "" {
			chats[i].ID = uuid.NewString()
		}
		chats[i].ConversationID = conversation.ID
		last := chats[i].CreatedAt
		conversation.MostRecentConversationAt = &last
	}
	conversation.Chats = chats
	require.NoError(t, db.Create(&conversation).Error)
	return conversation
}

// CreateVoiceConversation inserts a spoken conversation with its chats.
func CreateVoiceConversation(t *testing.T, db *gorm.DB, websiteID uint, createdAt time.Time, chats ...conversations.VoiceChat) conversations.VoiceConversation {
	t.Helper()

	conversation := conversations.VoiceConversation{ID: uuid.NewString(), WebsiteID: websiteID, CreatedAt: createdAt.UTC()}
	for i := range chats {
		if chats[i].ID == "" {
			chats[i].ID = uuid.NewString()
		}
		chats[i].ConversationID = conversation.ID
		last := chats[i].CreatedAt
		conversation.MostRecentConversationAt = &last
	}
	conversation.Chats = chats
	require.NoError(t, db.Create(&conversation).Error)
	return conversation
}

// Ptr returns a pointer to s, for the optional string columns.
func Ptr(s string) *string {
	return &s
}

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}
