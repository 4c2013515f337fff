// Package commands provides CLI commands for ai29.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/ai29/internal/models"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}

	var (
		fileFlag string
		sendOpts sendOptions
	)

	cmd := &cobra.Command{
		Use:   "ai29 [message]",
		Short: "Terminal client for the AI29 chat assistant",
		Long: `ai29 talks to an AI29 chat server over the same endpoints the web widget
uses. The server keeps the conversation; ai29 keeps the session cookie so
the CLI and the widget can continue the same chat.

Examples:
  ai29 chat                           Start interactive chat
  ai29 "What is Go?"                  Send a single message
  ai29 -f prompt.md                   Read the message from a file
  cat prompt.md | ai29                Read the message from stdin
  ai29 "Hello" -o reply.md            Save the reply to a file
  ai29 history --format html -o chat.html
  ai29 new                            Start a new conversation
  ai29 import-session --browser firefox`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check for version flag
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "ai29 %s (built %s)\n", Version, BuildTime)
				return nil
			}

			text, ok, err := readInput(cmd, fileFlag, args)
			if err != nil {
				return err
			}
			if !ok {
				// No input - show help
				return cmd.Help()
			}
			return runSend(cmd, deps, text, sendOpts)
		},
	}

	cmd.PersistentFlags().String("server", "", "Chat server URL (default from config, "+models.DefaultServerURL+")")
	cmd.PersistentFlags().Int("timeout", 0, "Request timeout in seconds")
	cmd.PersistentFlags().Int("retries", 0, "Retries after a network failure or 5xx reply")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error, disabled)")

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read message from file")
	addSendFlags(cmd, &sendOpts)
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	// Add subcommands
	cmd.AddCommand(NewChatCmd(deps))
	cmd.AddCommand(NewSendCmd(deps))
	cmd.AddCommand(NewHistoryCmd(deps))
	cmd.AddCommand(NewNewChatCmd(deps))
	cmd.AddCommand(NewConfigCmd(deps))
	cmd.AddCommand(NewImportSessionCmd(deps))

	return cmd
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(nil)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		os.Exit(1)
	}
}

// readInput returns the message from --file, piped stdin or the positional
// argument, in that order. ok is false when none was given.
func readInput(cmd *cobra.Command, file string, args []string) (string, bool, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	in := cmd.InOrStdin()
	if f, isFile := in.(*os.File); isFile {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", false, nil
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", false, fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(data) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}
