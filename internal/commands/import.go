package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/ai29/internal/browser"
	"github.com/diogo/ai29/internal/config"
	"github.com/diogo/ai29/internal/models"
)

// NewImportSessionCmd creates the command that imports the session cookie
func NewImportSessionCmd(deps *Dependencies) *cobra.Command {
	var (
		browserFlag string
		nameFlag    string
		listFlag    bool
		clearFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "import-session [path]",
		Short: "Continue the web widget's conversation in the CLI",
		Long: `Import the chat server's session cookie so ai29 continues the
conversation you started in the browser.

Either read it from a browser profile with --browser, or from a JSON file:
1. A list of objects: [{"name": "session", "value": "..."}]
2. A simple dictionary: {"session": "..."}

--clear forgets the stored session; the next run starts a fresh one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			switch {
			case listFlag:
				browsers := browser.ListAvailableBrowsers(cmd.Context())
				if len(browsers) == 0 {
					fmt.Fprintln(out, "No browser cookie stores found.")
					return nil
				}
				for _, b := range browsers {
					fmt.Fprintln(out, b)
				}
				return nil

			case clearFlag:
				if err := config.ClearSession(); err != nil {
					return err
				}
				printNotice(out, deps.IsTTY(), "Stored session removed")
				return nil
			}

			cfg, err := loadSettings(cmd, deps)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				if err := config.ImportSession(args[0], cfg.ServerURL, nameFlag); err != nil {
					return fmt.Errorf("failed to import session: %w", err)
				}
				path, _ := config.GetSessionPath()
				printNotice(out, deps.IsTTY(), fmt.Sprintf("Session imported to %s", path))
				return nil
			}

			if browserFlag == "" {
				return fmt.Errorf("give a cookie file or --browser")
			}
			target, err := browser.ParseBrowser(browserFlag)
			if err != nil {
				return err
			}

			result, err := deps.ExtractSessionCookie(cmd.Context(), target, cfg.ServerURL, nameFlag)
			if err != nil {
				return fmt.Errorf("failed to read session from browser: %w", err)
			}
			if err := config.SaveSession(cfg.ServerURL, []config.SessionCookie{result.Cookie}); err != nil {
				return err
			}
			printNotice(out, deps.IsTTY(), fmt.Sprintf("Session imported from %s", result.BrowserName))
			return nil
		},
	}

	cmd.Flags().StringVarP(&browserFlag, "browser", "b", "",
		"Read the cookie from a browser (auto, chrome, firefox, edge, chromium, opera)")
	cmd.Flags().StringVar(&nameFlag, "cookie-name", models.SessionCookieName, "Name of the session cookie")
	cmd.Flags().BoolVar(&listFlag, "list-browsers", false, "List browsers with cookie stores")
	cmd.Flags().BoolVar(&clearFlag, "clear", false, "Remove the stored session")
	return cmd
}
