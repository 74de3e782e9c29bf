// Package conversations holds the stored chat transcripts in their three native
// shapes and the queries that read them for a website and time window.
package conversations

import "time"

// MessageTypeUser is the TextChat/VoiceChat messageType value for visitor-authored rows.
// Any other value is an assistant row.
const MessageTypeUser = "user"

// AiThread is the legacy thread header. Its messages carry role, type and
// navigation metadata directly.
type AiThread struct {
	ID            string    `gorm:"primaryKey;size:64"`
	WebsiteID     uint      `gorm:"index:idx_ai_thread_website;not null"`
	Title         string    `gorm:"size:255"`
	CreatedAt     time.Time `gorm:"index:idx_ai_thread_website"`
	LastMessageAt *time.Time
	Messages      []AiMessage `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE"`
}

// AiMessage is one row of an AiThread.
type AiMessage struct {
	ID           string    `gorm:"primaryKey;size:64"`
	ThreadID     string    `gorm:"index:idx_ai_message_thread_time;size:64;not null"`
	Role         string    `gorm:"size:16;not null"`
	Content      string    `gorm:"type:text"`
	Type         *string   `gorm:"size:16"`
	PageURL      *string   `gorm:"type:text"`
	ScrollToText *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"index:idx_ai_message_thread_time"`
}

// TextConversation is the header of a typed widget conversation.
type TextConversation struct {
	ID                       string    `gorm:"primaryKey;size:64"`
	WebsiteID                uint      `gorm:"index:idx_text_conversation_website;not null"`
	CreatedAt                time.Time `gorm:"index:idx_text_conversation_website"`
	MostRecentConversationAt *time.Time
	Chats                    []TextChat `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// TextChat is one row of a TextConversation. Action and ActionType are
// stored verbatim as the assistant produced them.
type TextChat struct {
	ID             string    `gorm:"primaryKey;size:64"`
	ConversationID string    `gorm:"index:idx_text_chat_conversation_time;size:64;not null"`
	MessageType    string    `gorm:"size:16;not null"`
	Content        string    `gorm:"type:text"`
	Action         *string   `gorm:"size:64"`
	ActionType     *string   `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"index:idx_text_chat_conversation_time"`
}

// VoiceConversation is the header of a spoken widget conversation.
type VoiceConversation struct {
	ID                       string    `gorm:"primaryKey;size:64"`
	WebsiteID                uint      `gorm:"index:idx_voice_conversation_website;not null"`
	CreatedAt                time.Time `gorm:"index:idx_voice_conversation_website"`
	MostRecentConversationAt *time.Time
	Chats                    []VoiceChat `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// VoiceChat is one row of a VoiceConversation; same columns as TextChat.
type VoiceChat struct {
	ID             string    `gorm:"primaryKey;size:64"`
	ConversationID string    `gorm:"index:idx_voice_chat_conversation_time;size:64;not null"`
	MessageType    string    `gorm:"size:16;not null"`
	Content        string    `gorm:"type:text"`
	Action         *string   `gorm:"size:64"`
	ActionType     *string   `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"index:idx_voice_chat_conversation_time"`
}

// Snapshot is the set of rows read for one website and window. Each header
// only carries the rows that fell inside the window, ordered by CreatedAt.
type Snapshot struct {
	WebsiteID          uint
	AiThreads          []AiThread
	TextConversations  []TextConversation
	VoiceConversations []VoiceConversation
}

// MessageCount returns the number of rows in the snapshot across all shapes.
func (s *Snapshot) MessageCount() int {
	n := 0
	for _, t := range s.AiThreads {
		n += len(t.Messages)
	}
	for _, c := range s.TextConversations {
		n += len(c.Chats)
	}
	for _, c := range s.VoiceConversations {
		n += len(c.Chats)
	}
	return n
}
