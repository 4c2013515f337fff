package models

import "time"

// ChatRequest is the body posted to EndpointChat
type ChatRequest struct {
	Message string `json:"message"`
}

// HistoryEntry is one element of the "messages" array returned by
// EndpointHistory. Only Role and Content are required.
type HistoryEntry struct {
	ID             int64  `json:"id,omitempty"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// timestampLayouts covers Python's isoformat() with and without
// microseconds and zone, plus RFC 3339.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a backend timestamp. Naive timestamps are UTC.
// The zero time is returned when the value is empty or unparseable.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ToMessage converts a history entry into a view message without a Seq
func (e HistoryEntry) ToMessage() Message {
	return Message{
		Role:      ParseServerRole(e.Role),
		Content:   e.Content,
		Timestamp: ParseTimestamp(e.Timestamp),

		ServerID:       e.ID,
		ConversationID: e.ConversationID,
	}
}
