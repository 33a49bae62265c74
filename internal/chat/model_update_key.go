package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamavenir/weft/internal/timeline"
)

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inputOpen {
		return m.handleInputKey(msg)
	}
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.openInput("/")
		return m, nil
	case "ctrl+f":
		m.openInput("/find ")
		return m, nil
	case "y":
		m.resolvePermission(true)
		return m, nil
	case "n":
		m.resolvePermission(false)
		return m, nil
	case "u":
		m.loadOlder()
		return m, nil
	case "x":
		m.toggleLastTool()
		return m, nil
	case "c":
		m.copyLastText()
		return m, nil
	case "G", "end":
		m.issueScroll("", timeline.AnchorBottom)
		return m, nil
	case "g", "home":
		m.scrollTop()
		return m, nil
	case "esc":
		m.status = ""
		return m, nil
	default:
		return m.forwardScrollKey(msg)
	}
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "enter":
		line := strings.TrimSpace(m.input.Value())
		m.closeInput()
		return m.runCommand(line)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) openInput(prefill string) {
	m.inputOpen = true
	m.input.Reset()
	m.input.SetValue(prefill)
	m.input.CursorEnd()
	m.input.Focus()
	m.resize()
	m.refreshSink()
}

func (m *Model) closeInput() {
	m.inputOpen = false
	m.input.Blur()
	m.input.Reset()
	m.resize()
	m.refreshSink()
}

// resolvePermission answers the oldest pending permission prompt.
func (m *Model) resolvePermission(approved bool) {
	if !m.haveCycle {
		return
	}
	for _, entry := range m.lastCycle.Entries {
		perm, ok := entry.(timeline.Permission)
		if !ok {
			continue
		}
		if m.session.ResolvePermission(perm.ID, approved) {
			if approved {
				m.status = "allowed " + perm.Tool
			} else {
				m.status = "denied " + perm.Tool
			}
		}
		return
	}
}

// toggleLastTool flips expansion on the most recent tool row.
func (m *Model) toggleLastTool() {
	if !m.haveCycle {
		return
	}
	for i := len(m.lastCycle.Entries) - 1; i >= 0; i-- {
		if tool, ok := m.lastCycle.Entries[i].(timeline.ToolCall); ok {
			m.engine.ToggleExpanded(tool.ID)
			m.refreshSink()
			return
		}
	}
}

// loadOlder pulls the next batch of spooled history, keeping the viewed
// content in place when the prepended rows land.
func (m *Model) loadOlder() {
	if !m.haveCycle || m.lastCycle.HiddenCount <= 0 {
		return
	}
	m.restoreHeight = m.viewport.TotalLineCount()
	m.restoreOffset = m.viewport.YOffset
	m.pendingRestore = true
	if _, err := m.session.LoadOlder(0); err != nil {
		m.pendingRestore = false
		m.status = err.Error()
	}
}

func (m *Model) scrollTop() {
	before := m.viewport.YOffset
	m.viewport.GotoTop()
	m.engine.Scroll().ObserveUser(m.distanceFromBottom(), -before)
}

// forwardScrollKey hands unclaimed keys to the viewport and records any
// movement as a user scroll.
func (m *Model) forwardScrollKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.viewport.YOffset
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	if m.viewport.YOffset != before {
		m.engine.Scroll().ObserveUser(m.distanceFromBottom(), m.viewport.YOffset-before)
		if m.engine.Scroll().Attached() {
			m.newEntries = 0
		}
	}
	return m, cmd
}
