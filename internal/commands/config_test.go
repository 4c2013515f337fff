package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/ai29/internal/browser"
	"github.com/diogo/ai29/internal/config"
	"github.com/diogo/ai29/internal/models"
)

func newConfigEnv(t *testing.T) *testEnv {
	env := newTestEnv(t)
	env.deps.LoadConfig = config.LoadConfig
	return env
}

func TestConfig_Show(t *testing.T) {
	env := newConfigEnv(t)

	out, _, err := env.execute("", "config")
	require.NoError(t, err)
	for _, key := range config.Keys() {
		assert.Contains(t, out, key)
	}
	assert.Contains(t, out, models.DefaultServerURL)

	shown, _, err := env.execute("", "config", "show")
	require.NoError(t, err)
	assert.Equal(t, out, shown)
}

func TestConfig_SetGet(t *testing.T) {
	env := newConfigEnv(t)

	out, _, err := env.execute("", "config", "set", "server_url", "http://chat.example:9000/")
	require.NoError(t, err)
	assert.Contains(t, out, "server_url")

	out, _, err = env.execute("", "config", "get", "server_url")
	require.NoError(t, err)
	assert.Equal(t, "http://chat.example:9000\n", out)

	_, _, err = env.execute("", "config", "set", "serialize_submissions", "true")
	require.NoError(t, err)
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.SerializeSubmissions)
	assert.Equal(t, "http://chat.example:9000", cfg.ServerURL)
}

func TestConfig_SetRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown key", key: "model", value: "x"},
		{name: "not a number", key: "timeout_seconds", value: "soon"},
		{name: "bad url", key: "server_url", value: "ftp://chat.example"},
		{name: "negative retries", key: "max_retries", value: "-1"},
		{name: "unknown theme", key: "tui_theme", value: "neon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newConfigEnv(t)
			_, _, err := env.execute("", "config", "set", "--", tt.key, tt.value)
			assert.Error(t, err)

			path, _ := config.GetConfigPath()
			_, statErr := os.Stat(path)
			assert.True(t, os.IsNotExist(statErr), "config file should not be written")
		})
	}
}

func TestConfig_GetUnknownKey(t *testing.T) {
	env := newConfigEnv(t)
	_, _, err := env.execute("", "config", "get", "nope")
	assert.ErrorContains(t, err, "unknown config key")
}

func TestConfig_Path(t *testing.T) {
	env := newConfigEnv(t)
	out, _, err := env.execute("", "config", "path")
	require.NoError(t, err)

	want, err := config.GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(out))
}

func TestImportSession_File(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"session": "abc123"}`), 0o600))

	out, _, err := env.execute("", "import-session", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Session imported")

	stored, err := config.LoadSession(env.cfg.ServerURL)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "abc123", stored[0].Value)
}

func TestImportSession_FileMissingCookie(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"other": "x"}`), 0o600))

	_, _, err := env.execute("", "import-session", path)
	assert.ErrorContains(t, err, "missing required cookie: session")
}

func TestImportSession_Browser(t *testing.T) {
	env := newTestEnv(t)

	var gotBrowser browser.SupportedBrowser
	var gotServer, gotName string
	env.deps.ExtractSessionCookie = func(_ context.Context, b browser.SupportedBrowser, serverURL, name string) (*browser.ExtractResult, error) {
		gotBrowser, gotServer, gotName = b, serverURL, name
		return &browser.ExtractResult{
			Cookie:      config.SessionCookie{Name: name, Value: "from-browser", Domain: "localhost", Path: "/"},
			BrowserName: "firefox",
		}, nil
	}

	out, _, err := env.execute("", "import-session", "--browser", "firefox", "--server", "http://localhost:5000")
	require.NoError(t, err)
	assert.Contains(t, out, "Session imported from firefox")
	assert.Equal(t, browser.BrowserFirefox, gotBrowser)
	assert.Equal(t, "http://localhost:5000", gotServer)
	assert.Equal(t, models.SessionCookieName, gotName)

	stored, err := config.LoadSession("http://localhost:5000")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "from-browser", stored[0].Value)
}

func TestImportSession_BrowserFailure(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.execute("", "import-session", "--browser", "chrome")
	assert.ErrorContains(t, err, "failed to read session from browser")
}

func TestImportSession_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.execute("", "import-session")
	assert.ErrorContains(t, err, "give a cookie file or --browser")

	_, _, err = env.execute("", "import-session", "--browser", "netscape")
	assert.ErrorContains(t, err, "unsupported browser")
}

func TestImportSession_Clear(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, config.SaveSession(env.cfg.ServerURL, []config.SessionCookie{{Name: "session", Value: "x"}}))

	out, _, err := env.execute("", "import-session", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Stored session removed")

	stored, err := config.LoadSession(env.cfg.ServerURL)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
