package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/ai29/internal/api"
	"github.com/diogo/ai29/internal/browser"
	"github.com/diogo/ai29/internal/config"
	"github.com/diogo/ai29/internal/logging"
	"github.com/diogo/ai29/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, ctrl tui.ChatController, bridge *tui.Bridge, opts tui.Options) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// LoadConfig reads the effective configuration (.env, file, environment).
	LoadConfig func() (config.Config, error)

	// NewClient builds the backend client for cfg.
	NewClient func(cfg config.Config, logger zerolog.Logger) (api.ChatAPI, error)

	// TUI is the terminal user interface.
	TUI TUIInterface

	// CopyToClipboard writes text to the system clipboard.
	CopyToClipboard func(string) error

	// IsTTY reports whether stdout is a terminal.
	IsTTY func() bool

	// TerminalWidth returns the width of stdout.
	TerminalWidth func() int

	// ExtractSessionCookie reads the session cookie from a browser profile.
	ExtractSessionCookie func(ctx context.Context, b browser.SupportedBrowser, serverURL, name string) (*browser.ExtractResult, error)

	// LogWriter, when set, receives all log output (tests).
	LogWriter io.Writer
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctx context.Context, ctrl tui.ChatController, bridge *tui.Bridge, opts tui.Options) error {
	return tui.RunChat(ctx, ctrl, bridge, opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		LoadConfig:      config.Load,
		NewClient:       newHTTPClient,
		TUI:             &DefaultTUI{},
		CopyToClipboard: clipboard.WriteAll,
		IsTTY:           isStdoutTTY,
		TerminalWidth:   getTerminalWidth,

		ExtractSessionCookie: browser.ExtractSessionCookie,
	}
}

// newHTTPClient builds the production client, restoring the stored session
// cookie when session persistence is enabled.
func newHTTPClient(cfg config.Config, logger zerolog.Logger) (api.ChatAPI, error) {
	opts := []api.ClientOption{
		api.WithTimeout(cfg.Timeout()),
		api.WithRetry(cfg.MaxRetries, cfg.RetryBackoff()),
		api.WithLogger(logging.Component(logger, "api")),
	}

	if cfg.PersistSession {
		cookies, err := config.LoadSession(cfg.ServerURL)
		if err != nil {
			logger.Warn().Err(err).Msg("ignoring stored session")
		} else if len(cookies) > 0 {
			opts = append(opts, api.WithSessionCookies(cookies))
		}
	}

	client, err := api.NewClient(cfg.ServerURL, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// sessionHolder is implemented by clients that carry a backend session
type sessionHolder interface {
	SessionCookies() []config.SessionCookie
}

// runtime is what a command needs to talk to the backend
type runtime struct {
	cfg     config.Config
	logger  zerolog.Logger
	client  api.ChatAPI
	closers []func() error
}

// logMode selects where diagnostics go while a command runs
type logMode int

const (
	logToConsole logMode = iota
	logToFile
)

// loadSettings resolves the configuration and applies the global flags.
func loadSettings(cmd *cobra.Command, deps *Dependencies) (config.Config, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("server"); v != "" {
		cfg.ServerURL = v
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds, _ = flags.GetInt("timeout")
	}
	if flags.Changed("retries") {
		cfg.MaxRetries, _ = flags.GetInt("retries")
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// openRuntime loads config, builds the logger and the client.
// The caller must call close.
func openRuntime(cmd *cobra.Command, deps *Dependencies, mode logMode) (*runtime, error) {
	cfg, err := loadSettings(cmd, deps)
	if err != nil {
		return nil, err
	}

	logOpts := logging.Options{Level: cfg.LogLevel, Writer: deps.LogWriter}
	if mode == logToFile && deps.LogWriter == nil {
		if path, err := config.GetLogPath(); err == nil {
			logOpts.File = path
		}
	}
	logger, closeLog, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	client, err := deps.NewClient(cfg, logger)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logger, client: client}
	rt.closers = append(rt.closers, closeLog)
	return rt, nil
}

// close persists the session cookie and releases resources
func (r *runtime) close() {
	if holder, ok := r.client.(sessionHolder); ok && r.cfg.PersistSession {
		if cookies := holder.SessionCookies(); len(cookies) > 0 {
			if err := config.SaveSession(r.cfg.ServerURL, cookies); err != nil {
				r.logger.Warn().Err(err).Msg("failed to save session")
			}
		}
	}
	if c, ok := r.client.(interface{ Close() }); ok {
		c.Close()
	}
	for i := len(r.closers) - 1; i >= 0; i-- {
		_ = r.closers[i]()
	}
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
