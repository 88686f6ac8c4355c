package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loginBusy {
		// Inputs are disabled while the call is in flight.
		return m, nil
	}

	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.loginUser.Focus()
			m.loginPass.Blur()
		} else {
			m.loginPass.Focus()
			m.loginUser.Blur()
		}
		return m, nil
	case "enter":
		user := strings.TrimSpace(m.loginUser.Value())
		pass := strings.TrimSpace(m.loginPass.Value())
		if user == "" || pass == "" {
			m.loginErr = "username and password are required"
			return m, nil
		}
		m.loginBusy = true
		m.loginErr = ""
		return m, m.loginCmd(user, pass)
	case "esc":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.loginUser, cmd = m.loginUser.Update(msg)
	} else {
		m.loginPass, cmd = m.loginPass.Update(msg)
	}
	return m, cmd
}

func (m appModel) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.loginBusy = false
	if msg.err != nil {
		// Show the backend's message inline; credentials failures are
		// never retried automatically.
		m.loginErr = msg.err.Error()
		return m, nil
	}
	m.loginErr = ""
	m.loginPass.SetValue("")
	m.view = viewMenu
	m.menuIdx = 0
	return m, nil
}

func (m appModel) viewLogin() string {
	var b strings.Builder
	b.WriteString(titleBar("Request Manager", "sign in") + "\n\n")
	b.WriteString("Username\n")
	b.WriteString(m.loginUser.View() + "\n\n")
	b.WriteString("Password\n")
	b.WriteString(m.loginPass.View() + "\n\n")
	if m.loginBusy {
		b.WriteString(m.spin.View() + " signing in…\n")
	} else if m.loginErr != "" {
		b.WriteString(styleError().Render(m.loginErr) + "\n")
	}
	b.WriteString("\n" + m.footerHelp("enter: sign in", "tab: switch field", "esc: quit"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		boxStyle.Render(b.String()))
}

func (m appModel) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k", "ctrl+p":
		if m.menuIdx > 0 {
			m.menuIdx--
		}
	case "down", "j", "ctrl+n":
		if m.menuIdx < len(m.menuEntries)-1 {
			m.menuIdx++
		}
	case "enter":
		entry := m.menuEntries[m.menuIdx]
		if entry.create {
			return m.enterCreate()
		}
		return m.enterQueue(entry.role)
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m appModel) viewMenu() string {
	var b strings.Builder
	user := ""
	if sess := m.client.Session(); sess != nil {
		user = sess.User.UserName
	}
	b.WriteString(titleBar("Request Manager", user) + "\n\n")
	for i, entry := range m.menuEntries {
		line := "  " + entry.label
		if i == m.menuIdx {
			line = lipgloss.NewStyle().
				Foreground(colorSelectedFg).
				Background(colorSelectedBg).
				Bold(true).
				Render("> " + entry.label)
		}
		b.WriteString(line + "\n")
	}
	if m.statusMsg != "" {
		b.WriteString("\n" + styleMuted().Render(m.statusMsg) + "\n")
	}
	b.WriteString("\n" + m.footerHelp("enter: open", "q: quit"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		boxStyle.Render(b.String()))
}
