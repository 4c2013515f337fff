// Package api provides the HTTP client for the chat backend.
package api

// GJSON paths for extracting values from backend responses.
const (
	// POST /api/chat success: {"reply": "..."}
	PathReply = "reply"

	// any non-2xx: {"error": "..."}
	PathError = "error"

	// GET /api/history: {"messages": [{...}, ...]}
	PathMessages = "messages"

	// History entry fields (relative to an element of PathMessages)
	PathEntryID             = "id"
	PathEntryRole           = "role"
	PathEntryContent        = "content"
	PathEntryTimestamp      = "timestamp"
	PathEntryConversationID = "conversation_id"
)
