package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"reqman-cli/internal/api"
	"reqman-cli/internal/lifecycle"
	"reqman-cli/internal/model"
)

// Both action dialogs follow the same protocol: show the request context
// read-only, collect input, disable input while the call is in flight,
// close and refetch on success, stay open with the backend's message on
// failure.

func (m *appModel) openApproveReject(req model.Request, action lifecycle.Action, preset bool) {
	m.modal = modalApproveReject
	r := req
	m.modalReq = &r
	m.dlgAction = action
	m.dlgPreset = preset
	m.dlgComment.Reset()
	m.dlgComment.Focus()
	m.dlgErr = ""
	m.dlgBusy = false
}

func (m *appModel) openClose(req model.Request) {
	m.modal = modalClose
	r := req
	m.modalReq = &r
	m.dlgConfirmFocus = 0
	m.dlgErr = ""
	m.dlgBusy = false
}

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.modalReq = nil
	m.dlgErr = ""
	m.dlgBusy = false
	m.dlgComment.Blur()
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalDetail:
		switch msg.String() {
		case "esc", "enter", "q":
			m.closeModal()
		}
		return m, nil
	case modalApproveReject:
		return m.updateApproveReject(msg)
	case modalClose:
		return m.updateClose(msg)
	}
	return m, nil
}

func (m appModel) updateApproveReject(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dlgBusy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.closeModal()
		return m, nil
	case "tab":
		// Mutually exclusive Approved/Rejected choice, visible only when
		// the action was not pre-selected.
		if !m.dlgPreset {
			if m.dlgAction == lifecycle.ActionApprove {
				m.dlgAction = lifecycle.ActionReject
			} else {
				m.dlgAction = lifecycle.ActionApprove
			}
		}
		return m, nil
	case "ctrl+s":
		m.dlgBusy = true
		m.dlgErr = ""
		return m, m.applyTransitionCmd(m.modalReq.RequestID, m.dlgAction, m.dlgComment.Value())
	}

	var cmd tea.Cmd
	m.dlgComment, cmd = m.dlgComment.Update(msg)
	return m, cmd
}

func (m appModel) updateClose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dlgBusy {
		return m, nil
	}
	switch msg.String() {
	case "esc", "n":
		m.closeModal()
		return m, nil
	case "tab", "left", "right":
		m.dlgConfirmFocus = 1 - m.dlgConfirmFocus
		return m, nil
	case "y":
		m.dlgBusy = true
		m.dlgErr = ""
		return m, m.closeRequestCmd(m.modalReq.RequestID)
	case "enter":
		if m.dlgConfirmFocus == 1 {
			m.closeModal()
			return m, nil
		}
		m.dlgBusy = true
		m.dlgErr = ""
		return m, m.closeRequestCmd(m.modalReq.RequestID)
	}
	return m, nil
}

func (m appModel) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	if isAuthFailure(msg.err) {
		m.routeToLogin("session expired; sign in again")
		return m, nil
	}

	q := m.currentQueue()
	if msg.err != nil {
		// Leave the dialog open, re-enable input, show the backend's
		// message verbatim.
		m.dlgBusy = false
		m.dlgErr = msg.err.Error()

		var conflict api.ConflictError
		if errors.As(msg.err, &conflict) {
			// The request changed under us; refetch so the grid shows
			// current truth behind the dialog.
			tag := q.Invalidate()
			return m, m.fetchQueueCmd(m.role, tag, q.Page, q.PageSize)
		}
		return m, nil
	}

	// Success: close the dialog and refetch the same page. The visible
	// grid always reflects authoritative post-mutation state; the local
	// list is never patched.
	m.closeModal()
	m.statusMsg = fmt.Sprintf("request #%d: %s applied", msg.requestID, strings.ToLower(msg.action.Label()))
	tag := q.Invalidate()
	return m, m.fetchQueueCmd(m.role, tag, q.Page, q.PageSize)
}

func (m appModel) overlayModal(string) string {
	var content string
	switch m.modal {
	case modalDetail:
		content = m.viewDetailModal()
	case modalApproveReject:
		content = m.viewApproveRejectModal()
	case modalClose:
		content = m.viewCloseModal()
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		boxStyle.Render(content))
}

func (m appModel) modalContext() string {
	req := m.modalReq
	var b strings.Builder
	b.WriteString(styleMuted().Render(fmt.Sprintf("Request #%d", req.RequestID)) + "\n")
	b.WriteString(truncate(firstLine(req.Request), 64) + "\n")
	return b.String()
}

func (m appModel) viewApproveRejectModal() string {
	var b strings.Builder
	title := "Approve/Reject request"
	if m.dlgPreset {
		title = m.dlgAction.Label() + " request"
	}
	b.WriteString(styleTitle().Render(title) + "\n\n")
	b.WriteString(m.modalContext() + "\n")

	if !m.dlgPreset {
		approve := "( ) Approve"
		reject := "( ) Reject"
		if m.dlgAction == lifecycle.ActionApprove {
			approve = "(•) Approve"
		} else {
			reject = "(•) Reject"
		}
		b.WriteString(approve + "   " + reject + "\n\n")
	}

	b.WriteString("Comment (optional)\n")
	b.WriteString(m.dlgComment.View() + "\n\n")

	if m.dlgBusy {
		b.WriteString(m.spin.View() + " submitting…\n")
	} else if m.dlgErr != "" {
		b.WriteString(styleError().Render(m.dlgErr) + "\n")
	}

	help := []string{"ctrl+s: submit", "esc: cancel"}
	if !m.dlgPreset {
		help = append([]string{"tab: choice"}, help...)
	}
	b.WriteString("\n" + m.footerHelp(help...))
	return b.String()
}

func (m appModel) viewCloseModal() string {
	var b strings.Builder
	b.WriteString(styleTitle().Render("Close request") + "\n\n")
	b.WriteString(m.modalContext() + "\n")
	b.WriteString("Close this request? This cannot be undone.\n\n")

	confirm := "[ Close request ]"
	cancel := "[ Cancel ]"
	active := lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	if m.dlgConfirmFocus == 0 {
		confirm = active.Render(confirm)
	} else {
		cancel = active.Render(cancel)
	}
	b.WriteString(confirm + "  " + cancel + "\n")

	if m.dlgBusy {
		b.WriteString("\n" + m.spin.View() + " closing…\n")
	} else if m.dlgErr != "" {
		b.WriteString("\n" + styleError().Render(m.dlgErr) + "\n")
	}

	b.WriteString("\n" + m.footerHelp("enter: select", "tab: focus", "esc: cancel"))
	return b.String()
}
