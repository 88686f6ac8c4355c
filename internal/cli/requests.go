package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reqman-cli/internal/api"
	"reqman-cli/internal/lifecycle"
)

func newRequestsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Request commands",
	}
	cmd.AddCommand(newRequestsCreateCmd(app))
	cmd.AddCommand(newRequestsListCmd(app))
	cmd.AddCommand(newRequestsApproveCmd(app))
	cmd.AddCommand(newRequestsRejectCmd(app))
	cmd.AddCommand(newRequestsCloseCmd(app))
	return cmd
}

func newRequestsCreateCmd(app *App) *cobra.Command {
	var description string
	var assigneeID int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a request",
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

			desc := strings.TrimSpace(description)
			if err := client.CreateRequest(ctx, desc, assigneeID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"created": true, "assigneeId": assigneeID},
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", fmt.Sprintf("Request description (%d-%d characters)", api.MinDescriptionLen, api.MaxDescriptionLen))
	cmd.Flags().IntVar(&assigneeID, "assignee", 0, "Assignee user id")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("assignee")
	return cmd
}

func newRequestsListCmd(app *App) *cobra.Command {
	var queueName string
	var page int
	var pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a queue page (mine|manager|assignee)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := requireSession(client); err != nil {
				return writeErr(cmd, err)
			}

			role := lifecycle.Role(strings.TrimSpace(queueName))
			if !role.Valid() {
				return writeErr(cmd, fmt.Errorf("unknown queue %q (want mine, manager or assignee)", queueName))
			}
			if pageSize <= 0 {
				pageSize = cfg.PageSize
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout())
			defer cancel()

			qp, err := client.Queue(ctx, role, page, pageSize)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"queue":    role,
					"page":     page,
					"count":    pageSize,
					"total":    qp.Total,
					"requests": qp.Records,
				},
			})
		},
	}

	cmd.Flags().StringVar(&queueName, "queue", string(lifecycle.RoleMine), "Queue to list (mine|manager|assignee)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Records per page (default: REQMAN_PAGE_SIZE)")
	return cmd
}

func newRequestsApproveCmd(app *App) *cobra.Command {
	return newTransitionCmd(app, "approve", "Approve a pending request (manager only)", lifecycle.ActionApprove)
}

func newRequestsRejectCmd(app *App) *cobra.Command {
	return newTransitionCmd(app, "reject", "Reject a pending request (manager only)", lifecycle.ActionReject)
}

func newTransitionCmd(app *App, verb, short string, action lifecycle.Action) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   verb + " <request-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := requireSession(client); err != nil {
				return writeErr(cmd, err)
			}
			id, err := parseRequestID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout())
			defer cancel()

			if err := client.ApplyTransition(ctx, id, action, comment); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"requestId": id, "action": action},
			})
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "Optional comment recorded with the decision")
	return cmd
}

func newRequestsCloseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close <request-id>",
		Short: "Close an approved request (assignee only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := requireSession(client); err != nil {
				return writeErr(cmd, err)
			}
			id, err := parseRequestID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout())
			defer cancel()

			if err := client.CloseRequest(ctx, id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"requestId": id, "action": lifecycle.ActionClose},
			})
		},
	}
	return cmd
}

func parseRequestID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid request id %q", s)
	}
	return id, nil
}
