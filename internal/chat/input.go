package chat

import "github.com/charmbracelet/bubbles/textarea"

const inputPadding = 2

func newInputModel() textarea.Model {
	input := textarea.New()
	input.CharLimit = 0
	input.ShowLineNumbers = false
	input.MaxHeight = 1
	input.SetHeight(1)
	input.Placeholder = "/theme · /find · /stats · /help"
	input.SetPromptFunc(2, func(int) string {
		return "› "
	})
	return input
}

// contentWidth is the row rendering width.
func (m *Model) contentWidth() int {
	return m.width
}

// chromeHeight counts the fixed lines below the viewport: the notice
// margin, the status line, and the command input when open.
func (m *Model) chromeHeight() int {
	h := 2
	if m.inputOpen {
		h++
	}
	return h
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.viewport.Width = m.width
	vh := m.height - m.chromeHeight()
	if vh < 1 {
		vh = 1
	}
	if vh != m.viewport.Height {
		m.viewport.Height = vh
		m.sink.dirty = true
	}
	iw := m.width - inputPadding
	if iw < 1 {
		iw = 1
	}
	m.input.SetWidth(iw)
}
