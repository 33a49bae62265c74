package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamavenir/weft/internal/timeline"
)

func (m *Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Shift {
		return m, nil
	}
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if m.handleMouseClick(msg) {
			return m, nil
		}
	}
	isWheel := msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown
	if !isWheel {
		return m, nil
	}

	before := m.viewport.YOffset
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	if m.viewport.YOffset != before {
		m.engine.Scroll().ObserveUser(m.distanceFromBottom(), m.viewport.YOffset-before)
		if m.engine.Scroll().Attached() {
			m.newEntries = 0
		}
	}
	if msg.Button == tea.MouseButtonWheelUp && m.nearTop() {
		m.loadOlder()
	}
	return m, cmd
}

func (m *Model) handleMouseClick(msg tea.MouseMsg) bool {
	for _, id := range m.sink.order {
		if !m.zones.Get(id).InBounds(msg) {
			continue
		}
		return m.clickRow(id)
	}
	return false
}

// clickRow dispatches on what kind of row was clicked: the history rule
// loads more, tool rows toggle, text rows copy.
func (m *Model) clickRow(id string) bool {
	if id == timeline.LoadMoreID {
		m.loadOlder()
		return true
	}
	entry, ok := m.entryByID(id)
	if !ok {
		return false
	}
	switch entry.(type) {
	case timeline.ToolCall:
		m.engine.ToggleExpanded(id)
		m.refreshSink()
		return true
	default:
		m.copyEntry(id)
		return true
	}
}

// entryByID finds the live entry value behind a row id. Later occurrences
// win, matching snapshot identity.
func (m *Model) entryByID(id string) (timeline.Entry, bool) {
	if !m.haveCycle {
		return nil, false
	}
	for i := len(m.lastCycle.Entries) - 1; i >= 0; i-- {
		if m.lastCycle.Entries[i].EntryID() == id {
			return m.lastCycle.Entries[i], true
		}
	}
	return nil, false
}

func (m *Model) nearTop() bool {
	return m.viewport.YOffset <= 5
}
