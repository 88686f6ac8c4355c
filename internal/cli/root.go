package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reqman-cli/internal/api"
	"reqman-cli/internal/config"
	"reqman-cli/internal/format"
	"reqman-cli/internal/session"
	"reqman-cli/internal/tui"
)

type App struct {
	BaseURL    string
	ConfigDir  string
	Format     string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "reqman",
		Short:        "Request approval workflow CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  reqman

  # Scriptable commands
  reqman login --username ana --password s3cret
  reqman requests list --queue manager
  reqman requests approve 42 --comment "budget confirmed"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.BaseURL, "url", envOr("REQMAN_BASE_URL", ""), "Backend API root (overrides REQMAN_BASE_URL)")
	cmd.PersistentFlags().StringVar(&app.ConfigDir, "config-dir", envOr("REQMAN_CONFIG_DIR", ""), "Session/config directory (default: ~/.reqman)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("REQMAN_FORMAT", "json"), "Output format (json)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newRequestsCmd(app))
	cmd.AddCommand(newAssigneesCmd(app))

	return cmd
}

func runTUI(app *App) error {
	client, cfg, err := loadClient(app)
	if err != nil {
		return err
	}
	return tui.Run(client, cfg)
}

// loadClient builds the API client from environment config, the root
// flags, and whatever session is on disk. A missing session is not an
// error here; commands that need one call requireSession.
func loadClient(app *App) (*api.Client, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, err
	}
	if app.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(strings.TrimSpace(app.BaseURL), "/")
	}

	dir := app.ConfigDir
	if dir == "" {
		dir, err = session.ConfigDir()
		if err != nil {
			return nil, config.Config{}, err
		}
	}
	store := session.Store{Dir: dir}
	sess, err := store.Load()
	if err != nil {
		return nil, config.Config{}, err
	}
	return api.New(cfg, store, sess), cfg, nil
}

var errNotLoggedIn = errors.New("not logged in; run `reqman login --username <user> --password <pass>`")

func requireSession(client *api.Client) error {
	if client.Session() == nil {
		return errNotLoggedIn
	}
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	var auth api.AuthError
	if errors.As(err, &auth) {
		fmt.Fprintln(cmd.ErrOrStderr(), "run `reqman login` to sign in again")
	}
	return err
}
