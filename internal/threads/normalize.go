package threads

import (
	"sort"
	"strings"
	"time"

	"voicero/internal/conversations"
)

// NormalizeAIThread converts a legacy AiThread and its messages. It returns
// false when no message falls inside the window.
func NormalizeAIThread(header conversations.AiThread, w Window) (Thread, bool) {
	createdAt := firstValidTime(&header.CreatedAt, firstAiMessageTime(header.Messages))

	messages := make([]Message, 0, len(header.Messages))
	for _, row := range header.Messages {
		m := Message{
			ID:           row.ID,
			Role:         parseRole(row.Role),
			Content:      row.Content,
			Type:         parseMessageType(deref(row.Type)),
			PageURL:      deref(row.PageURL),
			ScrollToText: deref(row.ScrollToText),
			CreatedAt:    firstValidTime(&row.CreatedAt, &createdAt),
		}
		if w.Contains(m.CreatedAt) {
			messages = append(messages, m)
		}
	}

	return build(header.ID, SourceAIThread, createdAt, header.LastMessageAt, messages)
}

// NormalizeTextConversation converts a typed conversation. User rows become
// text messages; every other row is an assistant message without a type.
func NormalizeTextConversation(header conversations.TextConversation, w Window) (Thread, bool) {
	rows := make([]chatRow, 0, len(header.Chats))
	for _, c := range header.Chats {
		rows = append(rows, chatRow{c.ID, c.MessageType, c.Content, c.Action, c.ActionType, c.CreatedAt})
	}
	return normalizeChats(header.ID, SourceTextConversation, TypeText, header.CreatedAt, header.MostRecentConversationAt, rows, w)
}

// NormalizeVoiceConversation converts a spoken conversation. User rows become
// voice messages; every other row is an assistant message without a type.
func NormalizeVoiceConversation(header conversations.VoiceConversation, w Window) (Thread, bool) {
	rows := make([]chatRow, 0, len(header.Chats))
	for _, c := range header.Chats {
		rows = append(rows, chatRow{c.ID, c.MessageType, c.Content, c.Action, c.ActionType, c.CreatedAt})
	}
	return normalizeChats(header.ID, SourceVoiceConversation, TypeVoice, header.CreatedAt, header.MostRecentConversationAt, rows, w)
}

// NormalizeSnapshot normalizes every header of the snapshot and returns the
// non-empty threads ordered by CreatedAt, then Key.
func NormalizeSnapshot(s *conversations.Snapshot, w Window) []Thread {
	if s == nil {
		return nil
	}

	out := make([]Thread, 0, len(s.AiThreads)+len(s.TextConversations)+len(s.VoiceConversations))
	for _, h := range s.AiThreads {
		if t, ok := NormalizeAIThread(h, w); ok {
			out = append(out, t)
		}
	}
	for _, h := range s.TextConversations {
		if t, ok := NormalizeTextConversation(h, w); ok {
			out = append(out, t)
		}
	}
	for _, h := range s.VoiceConversations {
		if t, ok := NormalizeVoiceConversation(h, w); ok {
			out = append(out, t)
		}
	}

	SortThreads(out)
	return out
}

// SortThreads orders threads by CreatedAt, then Key, in place.
func SortThreads(ts []Thread) {
	sort.SliceStable(ts, func(i, j int) bool {
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.Before(ts[j].CreatedAt)
		}
		return ts[i].Key() < ts[j].Key()
	})
}

type chatRow struct {
	id          string
	messageType string
	content     string
	action      *string
	actionType  *string
	createdAt   time.Time
}

func normalizeChats(id string, kind SourceKind, userType MessageType, headerCreatedAt time.Time, mostRecent *time.Time, rows []chatRow, w Window) (Thread, bool) {
	var earliest *time.Time
	if len(rows) > 0 {
		earliest = &rows[0].createdAt
	}
	createdAt := firstValidTime(&headerCreatedAt, earliest)

	messages := make([]Message, 0, len(rows))
	for _, row := range rows {
		m := Message{
			ID:         row.id,
			Content:    row.content,
			Action:     strings.TrimSpace(deref(row.action)),
			ActionType: strings.TrimSpace(deref(row.actionType)),
			CreatedAt:  firstValidTime(&row.createdAt, &createdAt),
		}
		if strings.EqualFold(strings.TrimSpace(row.messageType), conversations.MessageTypeUser) {
			m.Role = RoleUser
			m.Type = userType
		} else {
			m.Role = RoleAssistant
		}
		if w.Contains(m.CreatedAt) {
			messages = append(messages, m)
		}
	}

	return build(id, kind, createdAt, mostRecent, messages)
}

func build(id string, kind SourceKind, createdAt time.Time, lastActivity *time.Time, messages []Message) (Thread, bool) {
	if len(messages) == 0 {
		return Thread{}, false
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	lastMessageAt := firstValidTime(lastActivity, &createdAt)
	if lastMessageAt.Before(createdAt) {
		lastMessageAt = createdAt
	}

	return Thread{
		ID:            id,
		SourceKind:    kind,
		CreatedAt:     createdAt,
		LastMessageAt: lastMessageAt,
		Messages:      messages,
	}, true
}

func parseRole(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), string(RoleUser)) {
		return RoleUser
	}
	return RoleAssistant
}

func parseMessageType(raw string) MessageType {
	switch MessageType(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeText:
		return TypeText
	case TypeVoice:
		return TypeVoice
	case TypeAI:
		return TypeAI
	default:
		return TypeNone
	}
}

func firstAiMessageTime(messages []conversations.AiMessage) *time.Time {
	if len(messages) == 0 {
		return nil
	}
	return &messages[0].CreatedAt
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
