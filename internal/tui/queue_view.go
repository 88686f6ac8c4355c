package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"reqman-cli/internal/lifecycle"
	"reqman-cli/internal/model"
)

var queueTitles = map[lifecycle.Role]string{
	lifecycle.RoleMine:     "My requests",
	lifecycle.RoleManager:  "Manager queue",
	lifecycle.RoleAssignee: "Assignee queue",
}

func (m appModel) enterQueue(role lifecycle.Role) (tea.Model, tea.Cmd) {
	m.view = viewQueue
	m.role = role
	m.statusMsg = ""
	q := m.currentQueue()
	tag := q.SetPage(q.Page)
	m.syncQueueList()
	return m, m.fetchQueueCmd(role, tag, q.Page, q.PageSize)
}

func (m appModel) handleQueueResult(msg queueResultMsg) (tea.Model, tea.Cmd) {
	if isAuthFailure(msg.err) {
		m.routeToLogin("session expired; sign in again")
		return m, nil
	}
	q, ok := m.queues[msg.role]
	if !ok {
		// The queue was torn down (logout) before the response arrived.
		return m, nil
	}
	if !q.ApplyResult(msg.tag, msg.page, msg.err) {
		// Stale response from an abandoned fetch.
		return m, nil
	}
	if msg.role == m.role {
		m.syncQueueList()
	}
	return m, nil
}

// syncQueueList rebuilds the bubbles list from the active queue's records.
// Selection is preserved by request id across refetches where possible.
func (m *appModel) syncQueueList() {
	q := m.currentQueue()

	prevID := 0
	if it, ok := m.reqList.SelectedItem().(requestItem); ok {
		prevID = it.req.RequestID
	}

	items := make([]list.Item, 0, len(q.Records))
	select_ := 0
	for i, r := range q.Records {
		items = append(items, requestItem{req: r})
		if r.RequestID == prevID {
			select_ = i
		}
	}
	m.reqList.SetItems(items)
	if len(items) > 0 {
		m.reqList.Select(select_)
	}
}

func (m *appModel) selectedRequest() (model.Request, bool) {
	it, ok := m.reqList.SelectedItem().(requestItem)
	if !ok {
		return model.Request{}, false
	}
	return it.req, true
}

func (m appModel) updateQueue(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	q := m.currentQueue()

	switch msg.String() {
	case "esc", "backspace":
		m.view = viewMenu
		return m, nil
	case "q":
		return m, tea.Quit
	case "r":
		tag := q.Invalidate()
		return m, m.fetchQueueCmd(m.role, tag, q.Page, q.PageSize)
	case "left", "[", "h":
		if q.Page > 1 {
			tag := q.SetPage(q.Page - 1)
			return m, m.fetchQueueCmd(m.role, tag, q.Page, q.PageSize)
		}
		return m, nil
	case "right", "]", "l":
		if q.Page < q.PageCount() {
			tag := q.SetPage(q.Page + 1)
			return m, m.fetchQueueCmd(m.role, tag, q.Page, q.PageSize)
		}
		return m, nil
	case "enter":
		if req, ok := m.selectedRequest(); ok {
			m.modal = modalDetail
			r := req
			m.modalReq = &r
		}
		return m, nil
	case "a", "x":
		// Approve/reject shortcuts, offered only where the policy allows.
		req, ok := m.selectedRequest()
		if !ok || !lifecycle.Allowed(m.role, req.Status, lifecycle.ActionApprove) {
			return m, nil
		}
		action := lifecycle.ActionApprove
		if msg.String() == "x" {
			action = lifecycle.ActionReject
		}
		m.openApproveReject(req, action, true)
		return m, nil
	case "t":
		// Full dialog with the action choice visible, Approved default.
		req, ok := m.selectedRequest()
		if !ok || !lifecycle.Allowed(m.role, req.Status, lifecycle.ActionApprove) {
			return m, nil
		}
		m.openApproveReject(req, lifecycle.ActionApprove, false)
		return m, nil
	case "c":
		req, ok := m.selectedRequest()
		if !ok || !lifecycle.Allowed(m.role, req.Status, lifecycle.ActionClose) {
			return m, nil
		}
		m.openClose(req)
		return m, nil
	}

	var cmd tea.Cmd
	m.reqList, cmd = m.reqList.Update(msg)
	return m, cmd
}

func (m appModel) viewQueue() string {
	q := m.queues[m.role]
	var b strings.Builder

	sub := fmt.Sprintf("%d request(s)  ·  page %d/%d", q.Total, q.Page, q.PageCount())
	b.WriteString(titleBar(queueTitles[m.role], sub) + "\n\n")

	switch {
	case q.FirstLoad() && q.Loading:
		b.WriteString(m.spin.View() + " loading…\n")
	case q.FirstLoad() && q.Err != nil:
		b.WriteString(styleError().Render("could not load requests: "+q.Err.Error()) + "\n")
		b.WriteString(styleMuted().Render("press r to retry") + "\n")
	case len(q.Records) == 0:
		b.WriteString(styleMuted().Render("no requests on this page") + "\n")
	default:
		b.WriteString(m.reqList.View() + "\n")
	}

	// A refresh failure keeps the stale page on screen with the error
	// underneath, so the user keeps their context.
	if !q.FirstLoad() && q.Err != nil {
		b.WriteString(styleError().Render(q.Err.Error()) + "\n")
	}
	if !q.FirstLoad() && q.Loading {
		b.WriteString(styleMuted().Render("refreshing…") + "\n")
	}

	help := []string{"enter: details", "[/]: page", "r: refresh", "esc: back"}
	switch m.role {
	case lifecycle.RoleManager:
		help = append([]string{"a: approve", "x: reject", "t: approve/reject…"}, help...)
	case lifecycle.RoleAssignee:
		help = append([]string{"c: close"}, help...)
	}
	b.WriteString("\n" + m.footerHelp(help...))
	return b.String()
}
