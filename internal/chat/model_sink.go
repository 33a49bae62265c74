package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/adamavenir/weft/internal/render"
	"github.com/adamavenir/weft/internal/timeline"
)

// rowSink collects engine row mutations between composes. The engine calls
// it synchronously during ApplyCycle and HandleMsg; the model folds the
// buffered state into the viewport afterwards via refreshSink.
type rowSink struct {
	rows  map[string]render.Row
	order []string
	dirty bool

	wantBottom bool
	wantTarget string
	wantAnchor timeline.Anchor
}

func newRowSink() *rowSink {
	return &rowSink{rows: make(map[string]render.Row)}
}

func (s *rowSink) UpsertRow(id string, row render.Row) {
	s.rows[id] = row
	s.dirty = true
}

func (s *rowSink) RemoveRow(id string) {
	delete(s.rows, id)
	s.dirty = true
}

func (s *rowSink) SetOrder(ids []string) {
	s.order = ids
	s.dirty = true
}

func (s *rowSink) ScrollTo(id string, anchor timeline.Anchor) {
	if id == "" {
		s.wantBottom = true
		s.wantTarget = ""
		return
	}
	s.wantTarget = id
	s.wantAnchor = anchor
}

// composeRows joins the ordered rows with a blank separator line, marking
// each row as a click zone.
func (m *Model) composeRows() string {
	parts := make([]string, 0, len(m.sink.order))
	for _, id := range m.sink.order {
		if row, ok := m.sink.rows[id]; ok {
			parts = append(parts, m.zones.Mark(id, row.Text))
		}
	}
	return strings.Join(parts, "\n\n")
}

// refreshSink folds buffered sink state into the viewport: recompose when
// rows changed, honor scroll intents, then report the resulting position
// to the attachment controller as layout movement.
func (m *Model) refreshSink() {
	if !m.sink.dirty && !m.sink.wantBottom && m.sink.wantTarget == "" {
		return
	}

	padTop := 0
	recomposed := false
	if m.sink.dirty {
		content := m.composeRows()
		// Keep content taller than the viewport so scrolling stays active.
		// Works around Bubble Tea renderer bug #1232 where an exact height
		// match cuts off the first line.
		if h := lipgloss.Height(content); content != "" && h <= m.viewport.Height {
			content = "\n" + content
			padTop = 1
		}
		m.viewport.SetContent(content)
		m.sink.dirty = false
		recomposed = true
	}

	switch {
	case m.sink.wantBottom:
		m.viewport.GotoBottom()
		m.newEntries = 0
	case m.sink.wantTarget != "":
		m.scrollToRow(m.sink.wantTarget, m.sink.wantAnchor, padTop)
	case recomposed && m.pendingRestore:
		delta := m.viewport.TotalLineCount() - m.restoreHeight
		if delta > 0 {
			m.viewport.SetYOffset(m.restoreOffset + delta)
		}
	case m.engine.Scroll().Attached():
		m.viewport.GotoBottom()
	default:
		if off := m.maxYOffset(); m.viewport.YOffset > off {
			m.viewport.SetYOffset(off)
		}
	}
	m.sink.wantBottom = false
	m.sink.wantTarget = ""
	if recomposed {
		m.pendingRestore = false
	}

	m.engine.Scroll().ObserveLayout(m.distanceFromBottom())
	if m.engine.Scroll().Attached() {
		m.newEntries = 0
	}
}

// scrollToRow positions the viewport so the row sits at the requested
// anchor. Offsets are recomputed from the live rows; a row that has since
// left the timeline leaves the viewport where it is.
func (m *Model) scrollToRow(id string, anchor timeline.Anchor, padTop int) {
	line := padTop
	found := false
	rowHeight := 0
	for _, rowID := range m.sink.order {
		row, ok := m.sink.rows[rowID]
		if !ok {
			continue
		}
		h := lipgloss.Height(row.Text)
		if rowID == id {
			found = true
			rowHeight = h
			break
		}
		line += h + 1
	}
	if !found {
		return
	}

	offset := line
	switch anchor {
	case timeline.AnchorCenter:
		offset = line - (m.viewport.Height-rowHeight)/2
	case timeline.AnchorBottom:
		offset = line - m.viewport.Height + rowHeight
	}
	if off := m.maxYOffset(); offset > off {
		offset = off
	}
	if offset < 0 {
		offset = 0
	}
	m.viewport.SetYOffset(offset)
}

func (m *Model) maxYOffset() int {
	off := m.viewport.TotalLineCount() - m.viewport.Height
	if off < 0 {
		off = 0
	}
	return off
}

// distanceFromBottom measures how many lines the viewport sits above the
// live edge.
func (m *Model) distanceFromBottom() int {
	return m.maxYOffset() - m.viewport.YOffset
}
