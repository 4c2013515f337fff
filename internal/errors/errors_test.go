package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(429, "/api/chat", "rate limited")

	expected := "API error [429] at /api/chat: rate limited"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	noStatus := NewAPIError(0, "/api/chat", "")
	if noStatus.Error() != "API error at /api/chat: request failed" {
		t.Errorf("Error() = %s", noStatus.Error())
	}
}

func TestNetworkError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkErrorWithEndpoint("send message", "/api/chat", cause)

	if !errors.Is(err, cause) {
		t.Error("NetworkError should unwrap to its cause")
	}
	if err.Error() != "network error during send message at /api/chat: connection refused" {
		t.Errorf("Error() = %s", err.Error())
	}
}

func TestParseError_Is(t *testing.T) {
	err := NewParseError("missing field", "reply")

	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("ParseError should match ErrInvalidResponse")
	}
	wrapped := fmt.Errorf("decode: %w", err)
	if !IsParseError(wrapped) {
		t.Error("IsParseError should see through wrapping")
	}
}

func TestIsTimeoutError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"typed", NewTimeoutError("60s"), true},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", NewNetworkError("fetch", context.DeadlineExceeded), true},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTimeoutError(tt.err); got != tt.want {
				t.Errorf("IsTimeoutError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"network", NewNetworkError("send", errors.New("reset")), true},
		{"timeout", NewTimeoutError(""), true},
		{"server error", NewAPIError(503, "/api/chat", "unavailable"), true},
		{"client error", NewAPIError(400, "/api/chat", "No message provided"), false},
		{"parse", NewParseError("bad json", ""), false},
		{"cancelled", NewNetworkError("send", context.Canceled), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetters(t *testing.T) {
	apiErr := NewAPIErrorWithBody(500, "/api/history", "db down", `{"error":"db down"}`, true)
	wrapped := fmt.Errorf("fetch history: %w", apiErr)

	if GetHTTPStatus(wrapped) != 500 {
		t.Errorf("GetHTTPStatus() = %d", GetHTTPStatus(wrapped))
	}
	if GetEndpoint(wrapped) != "/api/history" {
		t.Errorf("GetEndpoint() = %s", GetEndpoint(wrapped))
	}
	if GetResponseBody(wrapped) != `{"error":"db down"}` {
		t.Errorf("GetResponseBody() = %s", GetResponseBody(wrapped))
	}

	netErr := NewNetworkErrorWithEndpoint("clear", "/api/history/clear", errors.New("eof"))
	if GetEndpoint(netErr) != "/api/history/clear" {
		t.Errorf("GetEndpoint() = %s", GetEndpoint(netErr))
	}
	if GetHTTPStatus(netErr) != 0 {
		t.Error("network errors have no status")
	}
}

func TestServerMessage(t *testing.T) {
	const unknown, connect = "unknown", "connect"

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server text", NewAPIErrorWithBody(429, "/api/chat", "rate limited", `{"error":"rate limited"}`, true), "rate limited"},
		{"json without error", NewAPIErrorWithBody(500, "/api/chat", "", `{}`, true), unknown},
		{"html error page", NewAPIErrorWithBody(502, "/api/chat", "", "<html>bad gateway</html>", false), connect},
		{"transport", NewNetworkError("send", errors.New("refused")), connect},
		{"parse", NewParseError("not json", ""), connect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ServerMessage(tt.err, unknown, connect); got != tt.want {
				t.Errorf("ServerMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
