package commands

import (
	"github.com/spf13/cobra"

	"github.com/diogo/ai29/internal/controller"
	"github.com/diogo/ai29/internal/logging"
	"github.com/diogo/ai29/internal/render"
	"github.com/diogo/ai29/internal/tui"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the AI29 assistant.

The conversation is kept by the server and loaded on start. Commands:
/new starts a new chat, /copy copies the last reply, /export <file>
saves the transcript. Type 'exit', 'quit', or press Ctrl+C to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps)
		},
	}
}

func runChat(cmd *cobra.Command, deps *Dependencies) error {
	// The TUI owns the terminal, so diagnostics go to the log file
	rt, err := openRuntime(cmd, deps, logToFile)
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.cfg.TUITheme != "" && !render.SetTUITheme(rt.cfg.TUITheme) {
		rt.logger.Warn().Str("theme", rt.cfg.TUITheme).Msg("unknown TUI theme, using default")
	}
	tui.UpdateTheme()

	bridge := tui.NewBridge()
	ctrl := controller.New(rt.client,
		controller.WithView(bridge),
		controller.WithLogger(logging.Component(rt.logger, "controller")),
		controller.WithSerializedSubmissions(rt.cfg.SerializeSubmissions),
	)

	return deps.TUI.RunChat(cmd.Context(), ctrl, bridge, tui.Options{
		ServerURL: rt.cfg.ServerURL,
		Markdown:  render.OptionsFromConfig(rt.cfg.Markdown, deps.TerminalWidth()),
		CopyFunc:  deps.CopyToClipboard,
		Logger:    logging.Component(rt.logger, "tui"),
	})
}
