package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"reqman-cli/internal/format"
	"reqman-cli/internal/model"
)

var (
	mdRendererMu sync.Mutex
	// Cache renderers by wrap width. WithAutoStyle can trigger terminal
	// capability queries that block on some terminals, so a fixed style
	// is used and renderers are reused.
	mdRenderers = map[int]*glamour.TermRenderer{}
)

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	mdRendererMu.Lock()
	r := mdRenderers[width]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(glamourStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			mdRendererMu.Unlock()
			return md
		}
		mdRenderers[width] = rr
		r = rr
	}
	mdRendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func glamourStyle() string {
	if termenvDark() {
		return "dark"
	}
	return "light"
}

func (m appModel) viewDetailModal() string {
	req := m.modalReq
	var b strings.Builder
	b.WriteString(styleTitle().Render(fmt.Sprintf("Request #%d", req.RequestID)) + "  ")
	b.WriteString(statusStyle(req.Status).Render(statusLabel(req.Status)) + "\n\n")

	w := minInt(m.width-12, 72)
	b.WriteString(renderMarkdown(req.Request, w) + "\n\n")

	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(styleMuted().Render(fmt.Sprintf("%-10s", label)) + value + "\n")
	}
	row("Requestor", userLine(req.Requestor))
	row("Assignee", userLine(req.Assignee))
	if req.Approver != nil {
		row("Approver", userLine(*req.Approver))
	}
	row("Created", format.Timestamp(req.CreatedAt))
	row("Updated", format.Timestamp(req.UpdatedAt))

	b.WriteString("\n" + m.footerHelp("esc: close"))
	return b.String()
}

func userLine(u model.UserMeta) string {
	name := u.DisplayName()
	if u.Email != "" {
		return name + " " + styleMuted().Render("<"+u.Email+">")
	}
	return name
}
