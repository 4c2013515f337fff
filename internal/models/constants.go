// Package models contains data types and constants for the ai29 chat client.
package models

// Endpoints served by the chat backend, relative to the server base URL
const (
	EndpointHistory      = "/api/history"
	EndpointChat         = "/api/chat"
	EndpointClearHistory = "/api/history/clear"
)

// DefaultServerURL is used when neither config nor environment name a server
const DefaultServerURL = "http://localhost:5000"

// SessionCookieName is the cookie the backend uses to identify a conversation
const SessionCookieName = "session"

// Fixed texts shown by the chat view
const (
	// WelcomeText is the single message shown after a new chat starts
	WelcomeText = "Heyya! Your AI29 assistant here. How can I help you today?"

	// ConnectFailureText is shown when the backend cannot be reached
	// or answers with something that is not a JSON payload
	ConnectFailureText = "Failed to connect to the server. Please try again later."

	// UnknownErrorText is shown for a non-2xx JSON reply without an error field
	UnknownErrorText = "An unknown error occurred"

	// NewChatFailureText is shown when clearing the history fails
	NewChatFailureText = "Failed to start a new chat. Please try again."
)

// UserAgent identifies the client to the backend (version set at build time)
var UserAgent = "ai29/0.1.0"

// DefaultHeaders returns the headers sent with every backend request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":     "application/json",
		"User-Agent": UserAgent,
	}
}
