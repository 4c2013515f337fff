package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/diogo/ai29/internal/errors"
	"github.com/diogo/ai29/internal/models"
)

func sampleHistory() []models.Message {
	return []models.Message{
		{Role: models.RoleUser, Content: "What is Go?"},
		{Role: models.RoleAssistant, Content: "A programming language. See https://go.dev"},
	}
}

func TestHistory_Markdown(t *testing.T) {
	env := newTestEnv(t)
	env.client.History = sampleHistory()

	out, _, err := env.execute("", "history", "--title", "Go talk")
	require.NoError(t, err)
	assert.Contains(t, out, "# Go talk")
	assert.Contains(t, out, "**Server:** "+env.cfg.ServerURL)
	assert.Contains(t, out, "What is Go?")
	assert.Contains(t, out, "A programming language.")
	assert.NotContains(t, out, models.WelcomeText)
}

func TestHistory_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.client.History = sampleHistory()

	out, _, err := env.execute("", "history", "--format", "json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), "not JSON: %s", out)
	assert.Contains(t, out, `"What is Go?"`)
}

func TestHistory_Empty(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.execute("", "history")
	require.NoError(t, err)
	assert.Equal(t, "No messages in this conversation.\n", out)
}

func TestHistory_Failure(t *testing.T) {
	env := newTestEnv(t)
	env.client.HistoryErr = apierrors.NewAPIError(500, models.EndpointHistory, "boom")

	_, _, err := env.execute("", "history")
	assert.ErrorContains(t, err, "failed to load history")
}

func TestHistory_ExportFile(t *testing.T) {
	env := newTestEnv(t)
	env.client.History = sampleHistory()
	path := filepath.Join(t.TempDir(), "out", "chat.html")

	out, errOut, err := env.execute("", "history", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Exported 2 messages")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<div class="chat-messages">`)
	assert.Contains(t, string(data), `<a href="https://go.dev"`)
}

func TestHistory_BadFormat(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.execute("", "history", "--format", "pdf")
	assert.ErrorContains(t, err, "unknown export format")
	assert.Zero(t, env.clients)
}

func TestNewChat(t *testing.T) {
	env := newTestEnv(t)

	out, errOut, err := env.execute("", "new")
	require.NoError(t, err)
	assert.Equal(t, models.WelcomeText+"\n", out)
	assert.Contains(t, errOut, "Started a new chat")
	assert.Equal(t, 1, env.client.ClearCalls())
}

func TestNewChat_Failure(t *testing.T) {
	env := newTestEnv(t)
	env.client.ClearErr = apierrors.NewAPIError(503, models.EndpointClearHistory, "")

	out, errOut, err := env.execute("", "new")
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Equal(t, models.NewChatFailureText+"\n", errOut)
}
