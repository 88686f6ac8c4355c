package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"reqman-cli/internal/format"
	"reqman-cli/internal/model"
)

type requestItem struct {
	req model.Request
}

func (i requestItem) Title() string {
	return fmt.Sprintf("#%d %s", i.req.RequestID, firstLine(i.req.Request))
}
func (i requestItem) Description() string { return "" }
func (i requestItem) FilterValue() string {
	return fmt.Sprintf("#%d %s %s", i.req.RequestID, i.req.Request, i.req.Requestor.DisplayName())
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		s = s[:idx]
	}
	return s
}

type assigneeItem struct {
	user model.UserMeta
}

func (i assigneeItem) Title() string       { return i.user.DisplayName() }
func (i assigneeItem) Description() string { return i.user.Email }
func (i assigneeItem) FilterValue() string { return i.user.DisplayName() + " " + i.user.Email }

func newRequestList() list.Model {
	l := list.New(nil, requestDelegate{}, 0, 0)
	configureList(&l)
	l.SetStatusBarItemName("request", "requests")
	return l
}

func newAssigneeList() list.Model {
	l := list.New(nil, assigneeDelegate{}, 0, 0)
	configureList(&l)
	l.SetStatusBarItemName("assignee", "assignees")
	return l
}

func configureList(l *list.Model) {
	// The app renders its own title/footer chrome; keep the list minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	// ESC is "back", never "quit".
	l.KeyMap.Quit.SetKeys("ctrl+c")
	// Emacs-style aliases.
	up := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(up, "ctrl+p")...)
	down := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(down, "ctrl+n")...)
}

// requestDelegate renders one request per row:
//
//	#42  pending   new laptop for dev team        Ana Lee → Bo Diaz    2d
type requestDelegate struct{}

func (d requestDelegate) Height() int                             { return 1 }
func (d requestDelegate) Spacing() int                            { return 0 }
func (d requestDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d requestDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 10 {
		fmt.Fprint(w, "")
		return
	}
	it, ok := item.(requestItem)
	if !ok {
		return
	}
	req := it.req

	id := fmt.Sprintf("#%-5d", req.RequestID)
	status := statusStyle(req.Status).Render(fmt.Sprintf("%-9s", statusLabel(req.Status)))
	age := format.Age(req.UpdatedAt, time.Now())
	people := req.Requestor.DisplayName() + " → " + req.Assignee.DisplayName()

	// Fixed-width right side; description takes the rest.
	right := fmt.Sprintf("  %-30s %5s", truncate(people, 30), age)
	descW := contentW - xansi.StringWidth(id) - 10 - xansi.StringWidth(right)
	if descW < 8 {
		descW = 8
	}
	desc := truncate(firstLine(req.Request), descW)

	line := id + status + " " + pad(desc, descW) + right

	style := lipgloss.NewStyle()
	if index == m.Index() {
		style = style.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	}
	fmt.Fprint(w, style.Render(fit(line, contentW)))
}

type assigneeDelegate struct{}

func (d assigneeDelegate) Height() int                             { return 1 }
func (d assigneeDelegate) Spacing() int                            { return 0 }
func (d assigneeDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d assigneeDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 10 {
		fmt.Fprint(w, "")
		return
	}
	it, ok := item.(assigneeItem)
	if !ok {
		return
	}
	line := it.user.DisplayName()
	if it.user.Email != "" {
		line += "  " + styleMuted().Render("<"+it.user.Email+">")
	}
	style := lipgloss.NewStyle()
	if index == m.Index() {
		style = style.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	}
	fmt.Fprint(w, style.Render(fit(line, contentW)))
}

func truncate(s string, w int) string {
	if xansi.StringWidth(s) <= w {
		return s
	}
	if w <= 1 {
		return xansi.Cut(s, 0, w)
	}
	return xansi.Cut(s, 0, w-1) + "…"
}

func pad(s string, w int) string {
	if n := xansi.StringWidth(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

// fit pads or cuts a rendered line to exactly w cells.
func fit(line string, w int) string {
	n := xansi.StringWidth(line)
	if n < w {
		return line + strings.Repeat(" ", w-n)
	}
	if n > w {
		return xansi.Cut(line, 0, w)
	}
	return line
}
