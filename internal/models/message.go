package models

import (
	"strings"
	"time"
)

// Role classifies where a message came from
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleError is a client-side failure notice; it never reaches the server
	RoleError Role = "error"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleError:
		return true
	default:
		return false
	}
}

// ParseServerRole maps a role name from the backend history onto a Role.
// The backend stores replies as "ai"; anything that is not the user is
// treated as the assistant, since error notices are never persisted.
func ParseServerRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "human":
		return RoleUser
	default:
		return RoleAssistant
	}
}

// Message is one entry of the chat view
type Message struct {
	// Seq identifies the message within a controller. It is assigned when
	// the message enters the list and is never reused.
	Seq     int    `json:"seq"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// ReplyTo is the Seq of the user message that produced this reply or
	// error, zero when the message was not produced by a submission.
	ReplyTo   int       `json:"reply_to,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	// ServerID and ConversationID are set for messages loaded from history
	ServerID       int64  `json:"server_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// IsError reports whether the message is a client-side error notice
func (m Message) IsError() bool {
	return m.Role == RoleError
}
