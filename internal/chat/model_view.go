package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/adamavenir/weft/internal/render"
)

func (m *Model) View() string {
	lines := []string{m.viewport.View(), m.noticeLine()}
	if m.inputOpen {
		lines = append(lines, m.renderInput())
	}
	lines = append(lines, m.statusLine())
	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// noticeLine is the margin row above the status line. While the user is
// scrolled away it carries the new-entry indicator.
func (m *Model) noticeLine() string {
	if m.newEntries == 0 || m.engine.Scroll().Attached() {
		return ""
	}
	text := fmt.Sprintf("%d new %s ↓ · End to jump", m.newEntries, plural(m.newEntries, "entry", "entries"))
	bar := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("24")).
		Padding(0, 1)
	if m.width > 0 {
		bar = bar.Width(m.width)
	}
	return bar.Render(text)
}

func (m *Model) renderInput() string {
	style := lipgloss.NewStyle()
	if m.width > 0 {
		style = style.Width(m.width)
	}
	return style.Render(m.input.View())
}

func (m *Model) statusLine() string {
	theme := render.ThemeByID(m.themeID)

	left := m.breadcrumb()
	if m.status != "" {
		left = m.status + " · " + left
	}

	right := "⇣ live"
	if !m.engine.Scroll().Attached() {
		right = "↑ scrolled"
	}
	if !m.inputOpen {
		right += " · / commands"
	}

	return theme.Meta.Render(alignStatusLine(left, right, m.width))
}

func (m *Model) breadcrumb() string {
	title := m.session.Title()
	id := m.sessionID
	switch {
	case title != "" && id != "":
		return title + " (" + shortID(id) + ")"
	case title != "":
		return title
	case id != "":
		return shortID(id)
	default:
		return "waiting for session"
	}
}

func alignStatusLine(left, right string, width int) string {
	if width <= 0 || right == "" {
		return left
	}
	leftWidth := ansi.StringWidth(left)
	rightWidth := ansi.StringWidth(right)
	if leftWidth+rightWidth+1 > width {
		return left
	}
	return left + strings.Repeat(" ", width-leftWidth-rightWidth) + right
}

func shortID(id string) string {
	if len(id) <= 10 {
		return id
	}
	return id[:10]
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
