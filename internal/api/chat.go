package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/ai29/internal/errors"
	"github.com/diogo/ai29/internal/models"
)

// FetchHistory returns the stored conversation for the current session,
// oldest first. A payload without a messages array yields an empty history.
func (c *Client) FetchHistory(ctx context.Context) ([]models.Message, error) {
	resp, err := c.do(ctx, http.MethodGet, models.EndpointHistory, "fetch history", nil)
	if err != nil {
		return nil, err
	}
	return parseHistory(resp.body)
}

// SendMessage posts text to the chat endpoint and returns the reply
func (c *Client) SendMessage(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apierrors.ErrEmptyMessage
	}

	payload, err := json.Marshal(models.ChatRequest{Message: text})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, models.EndpointChat, "send message", payload)
	if err != nil {
		return "", err
	}
	return parseReply(resp.body)
}

// ClearHistory asks the backend to drop the current conversation
func (c *Client) ClearHistory(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, models.EndpointClearHistory, "clear history", nil)
	return err
}

// parseReply extracts the reply text from a chat response
func parseReply(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("response is not valid JSON", "")
	}
	reply := gjson.GetBytes(body, PathReply)
	if !reply.Exists() {
		return "", apierrors.NewParseError("reply field missing", PathReply)
	}
	return reply.String(), nil
}

// parseHistory converts a history response into messages without Seq
func parseHistory(body []byte) ([]models.Message, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	messages := gjson.GetBytes(body, PathMessages)
	if !messages.Exists() || messages.Type == gjson.Null {
		return nil, nil
	}
	if !messages.IsArray() {
		return nil, apierrors.NewParseError("messages is not an array", PathMessages)
	}

	var out []models.Message
	for _, item := range messages.Array() {
		if !item.IsObject() {
			continue
		}
		entry := models.HistoryEntry{
			ID:             item.Get(PathEntryID).Int(),
			Role:           item.Get(PathEntryRole).String(),
			Content:        item.Get(PathEntryContent).String(),
			Timestamp:      item.Get(PathEntryTimestamp).String(),
			ConversationID: item.Get(PathEntryConversationID).String(),
		}
		out = append(out, entry.ToMessage())
	}
	return out, nil
}

// newAPIError builds the error for a non-2xx answer, keeping the
// backend's error text when the body is a JSON object.
func newAPIError(status int, endpoint string, body []byte) error {
	parsed := gjson.ParseBytes(body)
	structured := gjson.ValidBytes(body) && parsed.IsObject()

	var message string
	if structured {
		message = parsed.Get(PathError).String()
	}

	raw := string(body)
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}

	return apierrors.NewAPIErrorWithBody(status, endpoint, message, raw, structured)
}
