// Package config handles configuration and session persistence for ai29.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/diogo/ai29/internal/models"
)

// Environment variables that override config file values
const (
	EnvHome       = "AI29_HOME"
	EnvServerURL  = "AI29_SERVER_URL"
	EnvTimeout    = "AI29_TIMEOUT"
	EnvMaxRetries = "AI29_MAX_RETRIES"
	EnvLogLevel   = "AI29_LOG_LEVEL"
	EnvTheme      = "AI29_THEME"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // glamour style name or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// ServerURL is the base URL of the chat backend
	ServerURL string `json:"server_url"`
	// TimeoutSeconds bounds each request attempt
	TimeoutSeconds int `json:"timeout_seconds"`
	// MaxRetries is the number of extra attempts after a retryable failure.
	// Zero keeps every call a single best-effort attempt.
	MaxRetries     int `json:"max_retries"`
	RetryBackoffMS int `json:"retry_backoff_ms"`
	// SerializeSubmissions queues chat submissions so replies arrive in order
	SerializeSubmissions bool `json:"serialize_submissions"`
	// PersistSession keeps the backend session cookie between runs so the
	// same conversation continues
	PersistSession  bool           `json:"persist_session"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	LogLevel        string         `json:"log_level,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "ai29",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		ServerURL:            models.DefaultServerURL,
		TimeoutSeconds:       60,
		MaxRetries:           0,
		RetryBackoffMS:       500,
		SerializeSubmissions: false,
		PersistSession:       true,
		CopyToClipboard:      false,
		TUITheme:             "ai29",
		LogLevel:             "warn",
		Markdown:             DefaultMarkdownConfig(),
	}
}

// Timeout returns the per-attempt request timeout
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryBackoff returns the base delay between attempts
func (c Config) RetryBackoff() time.Duration {
	if c.RetryBackoffMS < 0 {
		return 0
	}
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

// Validate checks the values a client cannot work without
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return fmt.Errorf("server_url is empty")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server_url %q: scheme must be http or https", c.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid server_url %q: missing host", c.ServerURL)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	return nil
}

// GetConfigDir returns the configuration directory path.
// AI29_HOME overrides the default ~/.ai29.
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".ai29"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the directory holds the session cookie
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetSessionPath returns the path to the session cookie file
func GetSessionPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "session.json"), nil
}

// GetLogPath returns the path of the log file used while the TUI runs
func GetLogPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "ai29.log"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with AI29_* environment variables
func ApplyEnv(cfg Config) (Config, error) {
	if v := os.Getenv(EnvServerURL); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		cfg.TimeoutSeconds = n
	}
	if v := os.Getenv(EnvMaxRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", EnvMaxRetries, err)
		}
		cfg.MaxRetries = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvTheme); v != "" {
		cfg.TUITheme = v
	}
	return cfg, nil
}

// Load reads .env, the config file and the environment, in that order of
// increasing precedence.
func Load() (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return DefaultConfig(), err
	}
	cfg, err := LoadConfig()
	if err != nil {
		return cfg, err
	}
	return ApplyEnv(cfg)
}

// Keys returns the settable config keys in display order
func Keys() []string {
	return []string{
		"server_url",
		"timeout_seconds",
		"max_retries",
		"retry_backoff_ms",
		"serialize_submissions",
		"persist_session",
		"copy_to_clipboard",
		"tui_theme",
		"log_level",
		"markdown.style",
	}
}

// Get returns the string form of a config key
func (c Config) Get(key string) (string, error) {
	switch key {
	case "server_url":
		return c.ServerURL, nil
	case "timeout_seconds":
		return strconv.Itoa(c.TimeoutSeconds), nil
	case "max_retries":
		return strconv.Itoa(c.MaxRetries), nil
	case "retry_backoff_ms":
		return strconv.Itoa(c.RetryBackoffMS), nil
	case "serialize_submissions":
		return strconv.FormatBool(c.SerializeSubmissions), nil
	case "persist_session":
		return strconv.FormatBool(c.PersistSession), nil
	case "copy_to_clipboard":
		return strconv.FormatBool(c.CopyToClipboard), nil
	case "tui_theme":
		return c.TUITheme, nil
	case "log_level":
		return c.LogLevel, nil
	case "markdown.style":
		return c.Markdown.Style, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Set parses value into the field named by key
func (c *Config) Set(key, value string) error {
	var err error
	switch key {
	case "server_url":
		c.ServerURL = strings.TrimRight(value, "/")
	case "timeout_seconds":
		c.TimeoutSeconds, err = strconv.Atoi(value)
	case "max_retries":
		c.MaxRetries, err = strconv.Atoi(value)
	case "retry_backoff_ms":
		c.RetryBackoffMS, err = strconv.Atoi(value)
	case "serialize_submissions":
		c.SerializeSubmissions, err = strconv.ParseBool(value)
	case "persist_session":
		c.PersistSession, err = strconv.ParseBool(value)
	case "copy_to_clipboard":
		c.CopyToClipboard, err = strconv.ParseBool(value)
	case "tui_theme":
		c.TUITheme = value
	case "log_level":
		c.LogLevel = value
	case "markdown.style":
		c.Markdown.Style = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}
