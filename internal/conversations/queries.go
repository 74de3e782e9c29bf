package conversations

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// headerBatchSize keeps IN (...) lists well below SQLite's bound-variable limit.
const headerBatchSize = 500

// LoadSnapshot reads every conversation row of the website created inside
// [from, to] together with the headers that own them. A zero to means no upper
// bound. Headers with no rows in the window are not returned.
//
// Each shape costs two queries regardless of how many conversations match.
func LoadSnapshot(ctx context.Context, db *gorm.DB, websiteID uint, from, to time.Time) (*Snapshot, error) {
	tx := db.WithContext(ctx)
	snapshot := &Snapshot{WebsiteID: websiteID}

	aiThreads, err := loadShape(tx, aiThreadShape, websiteID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load ai threads: %w", err)
	}
	snapshot.AiThreads = aiThreads

	textConversations, err := loadShape(tx, textConversationShape, websiteID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load text conversations: %w", err)
	}
	snapshot.TextConversations = textConversations

	voiceConversations, err := loadShape(tx, voiceConversationShape, websiteID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load voice conversations: %w", err)
	}
	snapshot.VoiceConversations = voiceConversations

	return snapshot, nil
}

// shape describes how the rows of one conversation shape point at their
// header.
type shape[H, R any] struct {
	parentColumn string
	parentID     func(R) string
	headerID     func(H) string
	attach       func(*H, []R)
}

var (
	aiThreadShape = shape[AiThread, AiMessage]{
		parentColumn: "thread_id",
		parentID:     func(m AiMessage) string { return m.ThreadID },
		headerID:     func(t AiThread) string { return t.ID },
		attach:       func(t *AiThread, rows []AiMessage) { t.Messages = rows },
	}
	textConversationShape = shape[TextConversation, TextChat]{
		parentColumn: "conversation_id",
		parentID:     func(c TextChat) string { return c.ConversationID },
		headerID:     func(c TextConversation) string { return c.ID },
		attach:       func(c *TextConversation, rows []TextChat) { c.Chats = rows },
	}
	voiceConversationShape = shape[VoiceConversation, VoiceChat]{
		parentColumn: "conversation_id",
		parentID:     func(c VoiceChat) string { return c.ConversationID },
		headerID:     func(c VoiceConversation) string { return c.ID },
		attach:       func(c *VoiceConversation, rows []VoiceChat) { c.Chats = rows },
	}
)

// loadShape reads the windowed rows of the website's headers, groups them by
// parent, then fetches the parents in batches. Headers keep creation order.
func loadShape[H, R any](tx *gorm.DB, s shape[H, R], websiteID uint, from, to time.Time) ([]H, error) {
	owned := tx.Model(new(H)).Select("id").Where("website_id = ?", websiteID)

	var rows []R
	err := window(tx.Where(s.parentColumn+" IN (?)", owned), from, to).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byParent := make(map[string][]R)
	ids := make([]string, 0)
	for _, r := range rows {
		parent := s.parentID(r)
		if _, seen := byParent[parent]; !seen {
			ids = append(ids, parent)
		}
		byParent[parent] = append(byParent[parent], r)
	}

	var headers []H
	for _, batch := range chunk(ids, headerBatchSize) {
		var page []H
		if err := tx.Where("id IN ?", batch).Order("created_at ASC, id ASC").Find(&page).Error; err != nil {
			return nil, err
		}
		headers = append(headers, page...)
	}

	for i := range headers {
		s.attach(&headers[i], byParent[s.headerID(headers[i])])
	}
	return headers, nil
}

// DeleteEmptyConversations removes headers of every shape that own no rows and
// were created before cutoff. It returns the number of headers deleted.
func DeleteEmptyConversations(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	tx := db.WithContext(ctx)
	var deleted int64

	result := tx.Where("created_at < ? AND NOT EXISTS (SELECT 1 FROM ai_messages WHERE ai_messages.thread_id = ai_threads.id)", cutoff).
		Delete(&AiThread{})
	if result.Error != nil {
		return deleted, fmt.Errorf("failed to delete empty ai threads: %w", result.Error)
	}
	deleted += result.RowsAffected

	result = tx.Where("created_at < ? AND NOT EXISTS (SELECT 1 FROM text_chats WHERE text_chats.conversation_id = text_conversations.id)", cutoff).
		Delete(&TextConversation{})
	if result.Error != nil {
		return deleted, fmt.Errorf("failed to delete empty text conversations: %w", result.Error)
	}
	deleted += result.RowsAffected

	result = tx.Where("created_at < ? AND NOT EXISTS (SELECT 1 FROM voice_chats WHERE voice_chats.conversation_id = voice_conversations.id)", cutoff).
		Delete(&VoiceConversation{})
	if result.Error != nil {
		return deleted, fmt.Errorf("failed to delete empty voice conversations: %w", result.Error)
	}
	deleted += result.RowsAffected

	return deleted, nil
}

func window(q *gorm.DB, from, to time.Time) *gorm.DB {
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from.UTC())
	}
	if !to.IsZero() {
		q = q.Where("created_at <= ?", to.UTC())
	}
	return q
}

func chunk(ids []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
