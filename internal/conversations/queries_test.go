package conversations_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicero/internal/conversations"
	"voicero/internal/testsupport"
)

func TestLoadSnapshot(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	website := testsupport.CreateTestWebsite(db, "example.com")
	other := testsupport.CreateTestWebsite(db, "other.com")

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	from := day
	to := day.Add(24*time.Hour - time.Nanosecond)

	text := testsupport.CreateTextConversation(t, db, website.ID, day.Add(time.Hour),
		conversations.TextChat{MessageType: conversations.MessageTypeUser, Content: "hi", CreatedAt: day.Add(time.Hour)},
		conversations.TextChat{MessageType: "ai", Content: "hello", CreatedAt: day.Add(time.Hour + time.Minute)},
		conversations.TextChat{MessageType: conversations.MessageTypeUser, Content: "tomorrow", CreatedAt: day.Add(30 * time.Hour)},
	)
	voice := testsupport.CreateVoiceConversation(t, db, website.ID, day.Add(2*time.Hour),
		conversations.VoiceChat{MessageType: conversations.MessageTypeUser, Content: "spoken", CreatedAt: day.Add(2 * time.Hour)},
	)
	ai := testsupport.CreateAiThread(t, db, website.ID, day.Add(3*time.Hour),
		conversations.AiMessage{Role: "user", Content: "legacy", Type: testsupport.Ptr("text"), CreatedAt: day.Add(3 * time.Hour)},
	)
	testsupport.CreateTextConversation(t, db, website.ID, day.Add(-48*time.Hour),
		conversations.TextChat{MessageType: conversations.MessageTypeUser, Content: "old", CreatedAt: day.Add(-48 * time.Hour)},
	)
	testsupport.CreateTextConversation(t, db, other.ID, day.Add(time.Hour),
		conversations.TextChat{MessageType: conversations.MessageTypeUser, Content: "foreign", CreatedAt: day.Add(time.Hour)},
	)

	snapshot, err := conversations.LoadSnapshot(t.Context(), db, website.ID, from, to)
	require.NoError(t, err)

	require.Len(t, snapshot.TextConversations, 1)
	assert.Equal(t, text.ID, snapshot.TextConversations[0].ID)
	require.Len(t, snapshot.TextConversations[0].Chats, 2, "rows outside the window are dropped")
	assert.Equal(t, "hi", snapshot.TextConversations[0].Chats[0].Content)

	require.Len(t, snapshot.VoiceConversations, 1)
	assert.Equal(t, voice.ID, snapshot.VoiceConversations[0].ID)

	require.Len(t, snapshot.AiThreads, 1)
	assert.Equal(t, ai.ID, snapshot.AiThreads[0].ID)

	assert.Equal(t, 4, snapshot.MessageCount())
}

func TestLoadSnapshotOpenWindow(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	website := testsupport.CreateTestWebsite(db, "example.com")

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testsupport.CreateTextConversation(t, db, website.ID, at,
		conversations.TextChat{MessageType: conversations.MessageTypeUser, Content: "a", CreatedAt: at},
	)

	snapshot, err := conversations.LoadSnapshot(t.Context(), db, website.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, snapshot.TextConversations, 1)
	assert.Empty(t, snapshot.AiThreads)
	assert.Empty(t, snapshot.VoiceConversations)
}

func TestLoadSnapshotAttachesRowsAcrossHeaderBatches(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	website := testsupport.CreateTestWebsite(db, "example.com")

	// One more header than fits in a single IN batch.
	const count = 501
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	created := make([]conversations.VoiceConversation, 0, count)
	for i := range count {
		at := start.Add(time.Duration(i) * time.Minute)
		created = append(created, testsupport.CreateVoiceConversation(t, db, website.ID, at,
			conversations.VoiceChat{MessageType: conversations.MessageTypeUser, Content: fmt.Sprintf("chat %d", i), CreatedAt: at},
		))
	}

	snapshot, err := conversations.LoadSnapshot(t.Context(), db, website.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, snapshot.VoiceConversations, count)

	for i, conversation := range snapshot.VoiceConversations {
		assert.Equal(t, created[i].ID, conversation.ID)
		require.Len(t, conversation.Chats, 1)
		assert.Equal(t, conversation.ID, conversation.Chats[0].ConversationID)
		assert.Equal(t, fmt.Sprintf("chat %d", i), conversation.Chats[0].Content)
	}
}

func TestDeleteEmptyConversations(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	website := testsupport.CreateTestWebsite(db, "example.com")

	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	old := now.Add(-10 * 24 * time.Hour)

	testsupport.CreateTextConversation(t, db, website.ID, old)
	testsupport.CreateVoiceConversation(t, db, website.ID, old)
	testsupport.CreateAiThread(t, db, website.ID, old)
	testsupport.CreateTextConversation(t, db, website.ID, now)
	kept := testsupport.CreateTextConversation(t, db, website.ID, old,
		conversations.TextChat{MessageType: conversations.MessageTypeUser, Content: "x", CreatedAt: old},
	)

	deleted, err := conversations.DeleteEmptyConversations(t.Context(), db, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	var remaining []conversations.TextConversation
	require.NoError(t, db.Order("created_at ASC").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	assert.Equal(t, kept.ID, remaining[0].ID)
}
