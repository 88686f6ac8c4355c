package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout())
			defer cancel()

			sess, err := client.Authenticate(ctx, strings.TrimSpace(username), password)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sess.User})
		},
	}

	cmd.Flags().StringVar(&username, "username", envOr("REQMAN_USERNAME", ""), "Login name")
	cmd.Flags().StringVar(&password, "password", envOr("REQMAN_PASSWORD", ""), "Password (prefer REQMAN_PASSWORD over the flag)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Discard the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := client.Logout(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"loggedOut": true}})
		},
	}
	return cmd
}

func newWhoamiCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := requireSession(client); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": client.Session().User})
		},
	}
	return cmd
}
