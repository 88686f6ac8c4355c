package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"reqman-cli/internal/api"
	"reqman-cli/internal/lifecycle"
	"reqman-cli/internal/model"
	"reqman-cli/internal/session"
)

type loginDoneMsg struct {
	sess *session.Session
	err  error
}

// queueResultMsg carries one fetch outcome back to the queue that issued
// it. The tag lets the view model drop results that lost a race.
type queueResultMsg struct {
	role lifecycle.Role
	tag  int
	page model.QueuePage
	err  error
}

type assigneesDoneMsg struct {
	users []model.UserMeta
	err   error
}

type createDoneMsg struct {
	err error
}

type mutationDoneMsg struct {
	action    lifecycle.Action
	requestID int
	err       error
}

func (m appModel) callCtx() (context.Context, context.CancelFunc) {
	// The http client enforces its own timeout; the context is a backstop
	// so an abandoned command goroutine cannot linger forever.
	return context.WithTimeout(context.Background(), m.client.Timeout()+5*time.Second)
}

func (m appModel) loginCmd(user, pass string) tea.Cmd {
	client := m.client
	ctx, cancel := m.callCtx()
	return func() tea.Msg {
		defer cancel()
		sess, err := client.Authenticate(ctx, user, pass)
		return loginDoneMsg{sess: sess, err: err}
	}
}

func (m appModel) fetchQueueCmd(role lifecycle.Role, tag, page, pageSize int) tea.Cmd {
	client := m.client
	ctx, cancel := m.callCtx()
	return func() tea.Msg {
		defer cancel()
		p, err := client.Queue(ctx, role, page, pageSize)
		return queueResultMsg{role: role, tag: tag, page: p, err: err}
	}
}

func (m appModel) fetchAssigneesCmd() tea.Cmd {
	client := m.client
	ctx, cancel := m.callCtx()
	return func() tea.Msg {
		defer cancel()
		// One generous page; the backend caps it server-side.
		users, err := client.Assignees(ctx, 1, 100)
		return assigneesDoneMsg{users: users, err: err}
	}
}

func (m appModel) createRequestCmd(description string, assigneeID int) tea.Cmd {
	client := m.client
	ctx, cancel := m.callCtx()
	return func() tea.Msg {
		defer cancel()
		return createDoneMsg{err: client.CreateRequest(ctx, description, assigneeID)}
	}
}

func (m appModel) applyTransitionCmd(requestID int, action lifecycle.Action, comment string) tea.Cmd {
	client := m.client
	ctx, cancel := m.callCtx()
	return func() tea.Msg {
		defer cancel()
		return mutationDoneMsg{
			action:    action,
			requestID: requestID,
			err:       client.ApplyTransition(ctx, requestID, action, comment),
		}
	}
}

func (m appModel) closeRequestCmd(requestID int) tea.Cmd {
	client := m.client
	ctx, cancel := m.callCtx()
	return func() tea.Msg {
		defer cancel()
		return mutationDoneMsg{
			action:    lifecycle.ActionClose,
			requestID: requestID,
			err:       client.CloseRequest(ctx, requestID),
		}
	}
}

// isAuthFailure reports whether an error means the session was torn down
// and the user must re-authenticate.
func isAuthFailure(err error) bool {
	if err == nil {
		return false
	}
	var authErr api.AuthError
	return errors.As(err, &authErr)
}
