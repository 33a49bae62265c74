package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamavenir/weft/internal/timeline"
)

// cycleMsg carries one session cycle into the update loop.
type cycleMsg struct {
	cycle timeline.Cycle
}

// engineMsg carries one background completion (fetch result, retry timer,
// highlight) for the engine.
type engineMsg struct {
	value any
}

// sourceErrMsg surfaces a non-fatal stream error on the status line.
type sourceErrMsg struct {
	err error
}

type cyclesClosedMsg struct{}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	case cycleMsg:
		return m.handleCycleMsg(msg)
	case engineMsg:
		return m.handleEngineMsg(msg)
	case sourceErrMsg:
		return m.handleSourceErrMsg(msg)
	case cyclesClosedMsg:
		return m, nil
	default:
		if m.inputOpen {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.resize()
	m.engine.SetWidth(m.contentWidth())
	m.refreshSink()
	return m, nil
}

func (m *Model) handleCycleMsg(msg cycleMsg) (tea.Model, tea.Cmd) {
	m.applyCycle(msg.cycle)
	return m, m.listenCycles()
}

func (m *Model) handleEngineMsg(msg engineMsg) (tea.Model, tea.Cmd) {
	m.engine.HandleMsg(msg.value)
	m.refreshSink()
	return m, m.listenEngine()
}

func (m *Model) handleSourceErrMsg(msg sourceErrMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = msg.err.Error()
		if m.log != nil {
			m.log.WithError(msg.err).Warn("stream error")
		}
	}
	return m, m.listenErrors()
}

// listenCycles waits for the next session cycle.
func (m *Model) listenCycles() tea.Cmd {
	return func() tea.Msg {
		c, ok := <-m.session.Cycles()
		if !ok {
			return cyclesClosedMsg{}
		}
		return cycleMsg{cycle: c}
	}
}

// listenEngine waits for the next background completion.
func (m *Model) listenEngine() tea.Cmd {
	return func() tea.Msg {
		v, ok := <-m.engine.Results()
		if !ok {
			return cyclesClosedMsg{}
		}
		return engineMsg{value: v}
	}
}

// listenErrors waits for the next stream error, if a stream is wired.
func (m *Model) listenErrors() tea.Cmd {
	if m.errors == nil {
		return nil
	}
	return func() tea.Msg {
		err, ok := <-m.errors
		if !ok {
			return cyclesClosedMsg{}
		}
		return sourceErrMsg{err: err}
	}
}

// applyCycle overlays UI-owned cycle fields (theme, scroll command) onto a
// session cycle, books new entries, and runs the engine.
func (m *Model) applyCycle(c timeline.Cycle) {
	if c.SessionID != m.sessionID {
		m.sessionID = c.SessionID
		m.known = make(map[string]bool)
		m.notified = make(map[string]bool)
		m.newEntries = 0
		m.scrollCmd = nil
	}

	c.ThemeID = m.themeID
	c.Scroll = m.scrollCmd
	m.lastCycle = c
	m.haveCycle = true

	fresh, autoIDs := m.bookEntries(c)
	if fresh > 0 && !m.engine.Scroll().Attached() {
		m.newEntries += fresh
	}

	m.engine.ApplyCycle(c)
	for _, id := range autoIDs {
		m.engine.ToggleExpanded(id)
	}
	m.refreshSink()
}

// reapply re-runs the engine on the last cycle with the current overlay,
// after a UI-side change such as a theme switch or a new scroll command.
func (m *Model) reapply() {
	if !m.haveCycle {
		return
	}
	c := m.lastCycle
	c.ThemeID = m.themeID
	c.Scroll = m.scrollCmd
	m.lastCycle = c
	m.engine.ApplyCycle(c)
	m.refreshSink()
}

// bookEntries registers ids not seen before in this session. It returns
// how many arrived and which tool rows should start expanded.
func (m *Model) bookEntries(c timeline.Cycle) (fresh int, autoIDs []string) {
	for _, entry := range c.Entries {
		id := entry.EntryID()
		if m.known[id] {
			continue
		}
		m.known[id] = true
		fresh++
		switch v := entry.(type) {
		case timeline.ToolCall:
			if m.autoExpand != nil && m.autoExpand(v.Name) {
				autoIDs = append(autoIDs, id)
			}
		case timeline.Permission:
			m.maybeNotify(v)
		}
	}
	return fresh, autoIDs
}

// issueScroll stamps a fresh scroll command into the cycle overlay. The
// engine consumes each nonce once, so replaying the cycle cannot scroll
// twice.
func (m *Model) issueScroll(targetID string, anchor timeline.Anchor) {
	m.scrollNonce++
	m.scrollCmd = &timeline.ScrollCommand{Nonce: m.scrollNonce, TargetID: targetID, Anchor: anchor}
	m.reapply()
}
