package actions

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"voicero/internal/purchases"
)

// TryParseJSON decodes message content as a JSON object. A leading ```json
// fence and its closing fence are stripped first. Content that is not a
// single well-formed object yields false.
func TryParseJSON(content string) (map[string]any, bool) {
	return decodeObject(stripFence(content))
}

// RepairJSON decodes the first object-looking span of free text, repairing
// truncated or sloppy JSON on the way. It is the last resort for payloads
// embedded in prose.
func RepairJSON(content string) (map[string]any, bool) {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return nil, false
	}
	repaired, err := jsonrepair.JSONRepair(content[start:])
	if err != nil {
		return nil, false
	}
	return decodeObject(repaired)
}

func stripFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

func decodeObject(body string) (map[string]any, bool) {
	if !strings.HasPrefix(body, "{") {
		return nil, false
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, false
	}
	// Trailing content means the text was not a single JSON document.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return payload, true
}

// stringField returns the first non-empty value among keys. Numbers are
// rendered without loss so that numeric product ids survive.
func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func objectField(m map[string]any, key string) map[string]any {
	obj, _ := m[key].(map[string]any)
	return obj
}

// detailOf returns action_context when present, otherwise the payload itself.
func detailOf(payload map[string]any) map[string]any {
	if ctx := objectField(payload, "action_context"); ctx != nil {
		return ctx
	}
	return payload
}

func productRef(detail map[string]any) purchases.Ref {
	return purchases.Ref{
		URL:         stringField(detail, "url", "product_url"),
		Handle:      stringField(detail, "handle", "product_handle"),
		ProductID:   stringField(detail, "product_id", "id"),
		ProductName: stringField(detail, "product_name", "title"),
	}
}

// productRefFromActionType reads the product detail stored in the actionType
// column of an add_to_cart row: a JSON payload, or a bare product name.
func productRefFromActionType(actionType string) purchases.Ref {
	actionType = strings.TrimSpace(actionType)
	if actionType == "" {
		return purchases.Ref{}
	}
	if payload, ok := TryParseJSON(actionType); ok {
		return productRef(detailOf(payload))
	}
	if strings.HasPrefix(actionType, "{") {
		if payload, ok := RepairJSON(actionType); ok {
			return productRef(detailOf(payload))
		}
		return purchases.Ref{}
	}
	if _, isVerb := Categorize(actionType); isVerb {
		return purchases.Ref{}
	}
	return purchases.Ref{ProductName: actionType}
}
