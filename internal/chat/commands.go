package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamavenir/weft/internal/render"
)

// runCommand executes one slash command line from the input.
func (m *Model) runCommand(line string) (tea.Model, tea.Cmd) {
	if line == "" || !strings.HasPrefix(line, "/") {
		return m, nil
	}
	name, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "theme":
		m.commandTheme(rest)
	case "find":
		m.findEntry(rest)
	case "stats":
		m.status = m.statsLine()
	case "copy":
		m.copyLastText()
	case "help":
		m.status = helpLine
	case "quit", "q":
		return m, tea.Quit
	default:
		m.status = "unknown command /" + name
	}
	return m, nil
}

const helpLine = "u history · x expand · y/n permission · c copy · G bottom · /theme /find /stats /quit"

func (m *Model) commandTheme(id string) {
	if id == "" {
		m.status = "themes: " + strings.Join(render.ThemeIDs(), ", ")
		return
	}
	if !render.KnownTheme(id) {
		m.status = "unknown theme " + id + " (try " + strings.Join(render.ThemeIDs(), ", ") + ")"
		return
	}
	m.themeID = id
	m.reapply()
	m.status = "theme " + id
}

func (m *Model) statsLine() string {
	stats := m.engine.Stats()
	hits, misses := m.engine.CacheStats()
	return fmt.Sprintf("cycles %d · rows %d rendered / %d skipped · highlights %d · cache %d hit / %d miss",
		stats.Cycles, stats.RowsRendered, stats.RowsSkipped, stats.HighlightJobs, hits, misses)
}
