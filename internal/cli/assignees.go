package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newAssigneesCmd(app *App) *cobra.Command {
	var page int
	var count int

	cmd := &cobra.Command{
		Use:   "assignees",
		Short: "List users who can be assigned a request",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := requireSession(client); err != nil {
				return writeErr(cmd, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout())
			defer cancel()

			users, err := client.Assignees(ctx, page, count)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": users})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&count, "count", 100, "Records per page")
	return cmd
}
