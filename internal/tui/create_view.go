package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"reqman-cli/internal/api"
	"reqman-cli/internal/lifecycle"
)

// roleAfterCreate is where a successful create lands: the requestor's own
// queue, where the new request is visible.
const roleAfterCreate = lifecycle.RoleMine

// The create form validates locally before touching the network: a too
// short/long description or a missing assignee never costs a round trip.

func (m appModel) enterCreate() (tea.Model, tea.Cmd) {
	m.view = viewCreate
	m.createDesc.Reset()
	m.createDesc.Focus()
	m.createFocus = 0
	m.createErr = ""
	m.assigneesErr = ""
	m.createBusy = false
	m.statusMsg = ""
	m.assigneeList.SetItems(nil)
	return m, m.fetchAssigneesCmd()
}

func (m appModel) handleAssigneesDone(msg assigneesDoneMsg) (tea.Model, tea.Cmd) {
	if isAuthFailure(msg.err) {
		m.routeToLogin("session expired; sign in again")
		return m, nil
	}
	if msg.err != nil {
		m.assigneesErr = msg.err.Error()
		return m, nil
	}
	items := make([]list.Item, 0, len(msg.users))
	for _, u := range msg.users {
		items = append(items, assigneeItem{user: u})
	}
	m.assigneeList.SetItems(items)
	if len(items) > 0 {
		m.assigneeList.Select(0)
	}
	return m, nil
}

func (m appModel) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.createBusy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.view = viewMenu
		return m, nil
	case "tab", "shift+tab":
		m.createFocus = 1 - m.createFocus
		if m.createFocus == 0 {
			m.createDesc.Focus()
		} else {
			m.createDesc.Blur()
		}
		return m, nil
	case "ctrl+s":
		desc := strings.TrimSpace(m.createDesc.Value())
		if err := api.ValidateDescription(desc); err != nil {
			m.createErr = err.Error()
			return m, nil
		}
		it, ok := m.assigneeList.SelectedItem().(assigneeItem)
		if !ok {
			m.createErr = "select an assignee"
			return m, nil
		}
		m.createBusy = true
		m.createErr = ""
		return m, m.createRequestCmd(desc, it.user.ID)
	}

	var cmd tea.Cmd
	if m.createFocus == 0 {
		m.createDesc, cmd = m.createDesc.Update(msg)
	} else {
		m.assigneeList, cmd = m.assigneeList.Update(msg)
	}
	return m, cmd
}

func (m appModel) handleCreateDone(msg createDoneMsg) (tea.Model, tea.Cmd) {
	if isAuthFailure(msg.err) {
		m.routeToLogin("session expired; sign in again")
		return m, nil
	}
	m.createBusy = false
	if msg.err != nil {
		m.createErr = msg.err.Error()
		return m, nil
	}
	// Land on "My requests" so the new request is immediately visible.
	m.statusMsg = "request created"
	next, cmd := m.enterQueue(roleAfterCreate)
	return next, cmd
}

func (m appModel) viewCreate() string {
	var b strings.Builder
	b.WriteString(titleBar("Create request", "") + "\n\n")

	b.WriteString("Description\n")
	b.WriteString(m.createDesc.View() + "\n\n")

	b.WriteString("Assignee\n")
	switch {
	case m.assigneesErr != "":
		b.WriteString(styleError().Render("could not load assignees: "+m.assigneesErr) + "\n")
	case len(m.assigneeList.Items()) == 0:
		b.WriteString(m.spin.View() + " loading assignees…\n")
	default:
		b.WriteString(m.assigneeList.View() + "\n")
	}
	b.WriteString("\n")

	if m.createBusy {
		b.WriteString(m.spin.View() + " creating…\n")
	} else if m.createErr != "" {
		b.WriteString(styleError().Render(m.createErr) + "\n")
	}

	b.WriteString("\n" + m.footerHelp("ctrl+s: create", "tab: switch field", "esc: back"))
	return b.String()
}
