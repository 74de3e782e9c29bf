// Package threads defines the canonical conversation model shared by every
// storage shape and the normalizers that produce it.
package threads

import (
	"time"
)

// SourceKind identifies which storage shape a thread was read from.
type SourceKind string

const (
	SourceAIThread          SourceKind = "ai_thread"
	SourceTextConversation  SourceKind = "text_conversation"
	SourceVoiceConversation SourceKind = "voice_conversation"
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageType is the channel of a message. The empty value means no type,
// which is always the case for assistant rows of text and voice conversations.
type MessageType string

const (
	TypeNone  MessageType = ""
	TypeText  MessageType = "text"
	TypeVoice MessageType = "voice"
	TypeAI    MessageType = "ai"
)

// Message is one normalized conversation turn.
type Message struct {
	ID           string      `json:"id"`
	Role         Role        `json:"role"`
	Content      string      `json:"content"`
	Type         MessageType `json:"type,omitempty"`
	PageURL      string      `json:"pageUrl,omitempty"`
	ScrollToText string      `json:"scrollToText,omitempty"`
	Action       string      `json:"action,omitempty"`
	ActionType   string      `json:"actionType,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// IsAssistant reports whether the message was written by the assistant.
func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// HasStructuredAction reports whether the row carried action columns.
func (m Message) HasStructuredAction() bool {
	return m.Action != "" || m.ActionType != ""
}

// Thread is one normalized conversation. Messages are in ascending CreatedAt
// order and never empty once produced by a normalizer.
type Thread struct {
	ID            string     `json:"id"`
	SourceKind    SourceKind `json:"sourceKind"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastMessageAt time.Time  `json:"lastMessageAt"`
	Messages      []Message  `json:"messages"`
}

// Key identifies the thread within a scope. Ids are only unique per storage
// shape, so the key is qualified with the source kind.
func (t Thread) Key() string {
	return string(t.SourceKind) + ":" + t.ID
}

// HasUserMessageType reports whether any user message has the given type.
func (t Thread) HasUserMessageType(mt MessageType) bool {
	for _, m := range t.Messages {
		if m.Role == RoleUser && m.Type == mt {
			return true
		}
	}
	return false
}

// Window bounds the messages kept by the normalizers. A zero From or To
// leaves that side open.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && t.After(w.To) {
		return false
	}
	return true
}
