// Package tui is the interactive front end: a login view, the three
// role-scoped queue views, a create-request form, and the modals that
// apply lifecycle transitions. All server state flows through the api
// client; each queue view owns a queue.Model and refetches it after every
// successful mutation.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"reqman-cli/internal/api"
	"reqman-cli/internal/config"
	"reqman-cli/internal/lifecycle"
	"reqman-cli/internal/model"
	"reqman-cli/internal/queue"
)

type view int

const (
	viewLogin view = iota
	viewMenu
	viewQueue
	viewCreate
)

type modalKind int

const (
	modalNone modalKind = iota
	modalDetail
	modalApproveReject
	modalClose
)

type menuEntry struct {
	label string
	role  lifecycle.Role // empty for non-queue entries
	create bool
}

type appModel struct {
	client *api.Client
	cfg    config.Config

	width  int
	height int

	view  view
	modal modalKind

	// login
	loginUser textinput.Model
	loginPass textinput.Model
	loginFocus int
	loginBusy  bool
	loginErr   string

	// menu
	menuEntries []menuEntry
	menuIdx     int

	// queue
	role       lifecycle.Role
	queues     map[lifecycle.Role]*queue.Model
	reqList    list.Model
	spin       spinner.Model

	// create form
	createDesc   textarea.Model
	assigneeList list.Model
	createFocus  int // 0 description, 1 assignee list
	createBusy   bool
	createErr    string
	assigneesErr string

	// modal state (detail / approve-reject / close)
	modalReq     *model.Request
	dlgAction    lifecycle.Action
	dlgPreset    bool // action was pre-selected (a/x shortcut), hide the choice
	dlgComment   textarea.Model
	dlgBusy      bool
	dlgErr       string
	dlgConfirmFocus int // close modal: 0 confirm, 1 cancel

	statusMsg string
}

func newAppModel(client *api.Client, cfg config.Config) appModel {
	m := appModel{
		client: client,
		cfg:    cfg,
		queues: map[lifecycle.Role]*queue.Model{},
	}

	m.loginUser = textinput.New()
	m.loginUser.Placeholder = "username"
	m.loginUser.Focus()
	m.loginPass = textinput.New()
	m.loginPass.Placeholder = "password"
	m.loginPass.EchoMode = textinput.EchoPassword

	m.menuEntries = []menuEntry{
		{label: "My requests", role: lifecycle.RoleMine},
		{label: "Manager queue", role: lifecycle.RoleManager},
		{label: "Assignee queue", role: lifecycle.RoleAssignee},
		{label: "Create request", create: true},
	}

	m.reqList = newRequestList()
	m.assigneeList = newAssigneeList()

	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot

	m.createDesc = textarea.New()
	m.createDesc.Placeholder = "Describe the request (3-2000 characters)"
	m.createDesc.CharLimit = api.MaxDescriptionLen

	m.dlgComment = textarea.New()
	m.dlgComment.Placeholder = "Comment (optional)"

	if client.Session() != nil {
		m.view = viewMenu
	} else {
		m.view = viewLogin
	}
	return m
}

// Run starts the interactive program.
func Run(client *api.Client, cfg config.Config) error {
	m := newAppModel(client, cfg)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m appModel) Init() tea.Cmd { return m.spin.Tick }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case loginDoneMsg:
		return m.handleLoginDone(msg)
	case queueResultMsg:
		return m.handleQueueResult(msg)
	case assigneesDoneMsg:
		return m.handleAssigneesDone(msg)
	case createDoneMsg:
		return m.handleCreateDone(msg)
	case mutationDoneMsg:
		return m.handleMutationDone(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		switch m.view {
		case viewLogin:
			return m.updateLogin(msg)
		case viewMenu:
			return m.updateMenu(msg)
		case viewQueue:
			return m.updateQueue(msg)
		case viewCreate:
			return m.updateCreate(msg)
		}
	}
	return m, nil
}

func (m appModel) View() string {
	var body string
	switch m.view {
	case viewLogin:
		body = m.viewLogin()
	case viewMenu:
		body = m.viewMenu()
	case viewQueue:
		body = m.viewQueue()
	case viewCreate:
		body = m.viewCreate()
	}
	if m.modal != modalNone {
		body = m.overlayModal(body)
	}
	return body
}

func (m *appModel) resize() {
	listH := m.height - 6
	if listH < 3 {
		listH = 3
	}
	w := m.width
	if w > maxContentW {
		w = maxContentW
	}
	m.reqList.SetSize(w, listH)
	m.assigneeList.SetSize(w, listH/2)
	m.createDesc.SetWidth(minInt(w-4, 72))
	m.dlgComment.SetWidth(minInt(w-8, 64))
}

const maxContentW = 100

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// routeToLogin drops back to the unauthenticated entry point after a
// forced session teardown. The api client has already cleared the
// persisted session; everything view-local is reset here.
func (m *appModel) routeToLogin(reason string) {
	m.view = viewLogin
	m.modal = modalNone
	m.modalReq = nil
	m.dlgBusy = false
	m.loginBusy = false
	m.queues = map[lifecycle.Role]*queue.Model{}
	m.reqList.SetItems(nil)
	m.loginPass.SetValue("")
	m.loginErr = reason
	m.loginFocus = 0
	m.loginUser.Focus()
	m.loginPass.Blur()
}

// currentQueue returns the view model for the active role, creating it on
// first use.
func (m *appModel) currentQueue() *queue.Model {
	q, ok := m.queues[m.role]
	if !ok {
		nq := queue.New(m.role, m.cfg.PageSize)
		q = &nq
		m.queues[m.role] = q
	}
	return q
}

func (m appModel) footerHelp(parts ...string) string {
	return styleMuted().Render(strings.Join(parts, "   "))
}

func titleBar(title, sub string) string {
	out := styleTitle().Render(title)
	if sub != "" {
		out += "  " + styleMuted().Render(sub)
	}
	return out
}

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorBorder).
	Padding(1, 2)
