package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/ai29/internal/controller"
	"github.com/diogo/ai29/internal/history"
	"github.com/diogo/ai29/internal/logging"
	"github.com/diogo/ai29/internal/models"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd(deps *Dependencies) *cobra.Command {
	var (
		formatFlag string
		outputFlag string
		titleFlag  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or export the current conversation",
		Long: `Load the conversation the server keeps for this session and print it.

Formats: markdown (default), json, html. With --output the transcript is
written to a file; the format then defaults to the file extension.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := history.ExportFormatMarkdown
			switch {
			case formatFlag != "":
				f, err := history.ParseFormat(formatFlag)
				if err != nil {
					return err
				}
				format = f
			case outputFlag != "":
				format = history.FormatForPath(outputFlag)
			}
			return runHistory(cmd, deps, format, outputFlag, titleFlag)
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "", "Output format (markdown, json, html)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the transcript to a file")
	cmd.Flags().StringVar(&titleFlag, "title", "", "Transcript title")
	return cmd
}

func runHistory(cmd *cobra.Command, deps *Dependencies, format history.ExportFormat, output, title string) error {
	rt, err := openRuntime(cmd, deps, logToConsole)
	if err != nil {
		return err
	}
	defer rt.close()

	ctrl := controller.New(rt.client,
		controller.WithLogger(logging.Component(rt.logger, "controller")),
		controller.WithoutPlaceholder(),
	)
	if err := ctrl.Initialize(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	messages := ctrl.Messages()
	if len(messages) == 0 && output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No messages in this conversation.")
		return nil
	}

	opts := history.DefaultExportOptions()
	opts.Format = format
	opts.ServerURL = rt.cfg.ServerURL
	if title != "" {
		opts.Title = title
	}

	if output != "" {
		if err := history.ExportToFile(output, messages, opts); err != nil {
			return fmt.Errorf("failed to export history: %w", err)
		}
		printNotice(cmd.ErrOrStderr(), deps.IsTTY(), fmt.Sprintf("Exported %d messages to %s", len(messages), output))
		return nil
	}

	data, err := history.Export(messages, opts)
	if err != nil {
		return fmt.Errorf("failed to export history: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// NewNewChatCmd creates the command that starts a new conversation
func NewNewChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new conversation",
		Long:  `Ask the server to clear the conversation kept for this session.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd, deps, logToConsole)
			if err != nil {
				return err
			}
			defer rt.close()

			ctrl := controller.New(rt.client,
				controller.WithLogger(logging.Component(rt.logger, "controller")),
				controller.WithoutPlaceholder(),
			)
			if err := ctrl.NewChat(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), models.NewChatFailureText)
				return fmt.Errorf("failed to start a new chat: %w", err)
			}

			printNotice(cmd.ErrOrStderr(), deps.IsTTY(), "Started a new chat")
			fmt.Fprintln(cmd.OutOrStdout(), models.WelcomeText)
			return nil
		},
	}
}
