package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/ai29/internal/controller"
	apierrors "github.com/diogo/ai29/internal/errors"
	"github.com/diogo/ai29/internal/logging"
	"github.com/diogo/ai29/internal/render"
)

// Colors follow the web widget
var (
	colorText     = render.AI29Theme.Text
	colorTextDim  = render.AI29Theme.TextDim
	colorTextMute = render.AI29Theme.TextMute
	colorSuccess  = render.AI29Theme.Accent
	colorPrimary  = render.AI29Theme.UserBubble
	colorError    = render.AI29Theme.Error
)

var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(render.AI29Theme.Border).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)

	errorBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorError).
				Foreground(colorError).
				Padding(0, 1)
)

// sendOptions are the output flags shared by the root command and send
type sendOptions struct {
	output string
	raw    bool
	copy   bool
	html   bool
}

func addSendFlags(cmd *cobra.Command, opts *sendOptions) {
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save reply to file")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print only the reply text")
	cmd.Flags().BoolVarP(&opts.copy, "copy", "c", false, "Copy the reply to the clipboard")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Print the reply as an HTML fragment")
}

// NewSendCmd creates the one-shot send command
func NewSendCmd(deps *Dependencies) *cobra.Command {
	var (
		fileFlag string
		opts     sendOptions
	)

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send one message and print the reply",
		Long: `Send a single message to the chat server and print the reply.

The message is taken from the argument, --file or stdin. The reply is
rendered as markdown on a terminal and printed verbatim otherwise. An error
reply is printed to stderr and the command exits non-zero.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, ok, err := readInput(cmd, fileFlag, args)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no message given")
			}
			return runSend(cmd, deps, text, opts)
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read message from file")
	addSendFlags(cmd, &opts)
	return cmd
}

// runSend submits a single message through the controller and prints the
// reply. Decoration is used only on a terminal without --raw or --html.
func runSend(cmd *cobra.Command, deps *Dependencies, text string, opts sendOptions) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("message cannot be empty")
	}

	rt, err := openRuntime(cmd, deps, logToConsole)
	if err != nil {
		return err
	}
	defer rt.close()

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	decorated := !opts.raw && !opts.html && deps.IsTTY()

	ctrl := controller.New(rt.client,
		controller.WithLogger(logging.Component(rt.logger, "controller")),
		controller.WithoutPlaceholder(),
	)

	var typing *typingIndicator
	if decorated {
		typing = newTypingIndicator(stderr, "AI29 is typing")
		typing.run()
	}

	startTime := time.Now()
	reply, err := ctrl.Submit(cmd.Context(), text)
	rt.logger.Debug().Dur("took", time.Since(startTime)).Int("reply_to", reply.ReplyTo).Msg("send finished")

	if err != nil {
		if decorated {
			typing.abort()
			fmt.Fprintln(stderr, errorBubbleStyle.Render(reply.Content))
			fmt.Fprintln(stderr, formatErrorMessage(err, "Send failed"))
		} else {
			fmt.Fprintln(stderr, reply.Content)
		}
		return fmt.Errorf("send failed: %w", err)
	}
	if decorated {
		typing.finish("Reply received")
	}

	body := reply.Content
	if opts.html {
		body = render.RenderMessage(reply.Role, reply.Content)
	}

	if opts.copy || rt.cfg.CopyToClipboard {
		if err := deps.CopyToClipboard(body); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(stderr, warnMsg)
		} else if decorated {
			clipMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard")
			fmt.Fprintln(stderr, clipMsg)
		}
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(body), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if decorated {
			successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Reply saved to %s", opts.output),
			)
			fmt.Fprintln(stderr, successMsg)
		}
		return nil
	}

	if !decorated {
		fmt.Fprintln(stdout, body)
		return nil
	}

	bubbleWidth := deps.TerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(stdout, assistantLabelStyle.Render("✦ AI29"))

	renderOpts := render.OptionsFromConfig(rt.cfg.Markdown, contentWidth)
	rendered, err := render.Markdown(body, renderOpts)
	if err != nil {
		rendered = body
	}
	rendered = strings.TrimRight(rendered, "\n")

	fmt.Fprintln(stdout, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
	return nil
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}
	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	switch {
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Try again or raise --timeout"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Is the chat server running? Check it with 'ai29 config get server_url'"))
	case apierrors.IsParseError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The server did not answer with JSON"))
	}

	return sb.String()
}

// printNotice writes a success line, styled on a terminal
func printNotice(w io.Writer, decorated bool, msg string) {
	if decorated {
		msg = lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ " + msg)
	}
	fmt.Fprintln(w, msg)
}
