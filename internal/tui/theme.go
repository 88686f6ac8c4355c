package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"reqman-cli/internal/model"
)

// The TUI must stay readable on both light and dark terminal backgrounds,
// so every color is an AdaptiveColor pair and "faint" styling is applied
// only on dark backgrounds (faint on light terminals often becomes
// illegible).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted      = ac("240", "243")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")
	colorBorder     = ac("250", "243")
	colorAccent     = ac("27", "75")
	colorError      = ac("124", "203")

	// Status colors follow the usual traffic-light reading: pending is a
	// warning, approved is good, rejected is bad, closed is inert.
	colorStatusPending  = ac("130", "214")
	colorStatusApproved = ac("28", "78")
	colorStatusRejected = ac("124", "203")
	colorStatusClosed   = ac("245", "243")
)

func termenvDark() bool { return termenv.HasDarkBackground() }

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if termenvDark() {
		return st.Faint(true)
	}
	return st
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError)
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
}

func statusStyle(s model.Status) lipgloss.Style {
	st := lipgloss.NewStyle()
	switch s {
	case model.StatusPendingApproval:
		return st.Foreground(colorStatusPending)
	case model.StatusApproved:
		return st.Foreground(colorStatusApproved)
	case model.StatusRejected:
		return st.Foreground(colorStatusRejected)
	case model.StatusClosed:
		return st.Foreground(colorStatusClosed)
	}
	return st
}

// statusLabel is the short spelling used in one-line list rows.
func statusLabel(s model.Status) string {
	switch s {
	case model.StatusPendingApproval:
		return "pending"
	case model.StatusApproved:
		return "approved"
	case model.StatusRejected:
		return "rejected"
	case model.StatusClosed:
		return "closed"
	}
	return string(s)
}
