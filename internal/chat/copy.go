package chat

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/adamavenir/weft/internal/timeline"
)

// copyEntry puts the plain text of a row on the system clipboard.
func (m *Model) copyEntry(id string) {
	entry, ok := m.entryByID(id)
	if !ok {
		return
	}
	text := timeline.PlainText(entry)
	if text == "" {
		return
	}
	if err := copyToClipboard(text); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "copied #" + shortID(id)
}

// copyLastText copies the newest text entry on the timeline.
func (m *Model) copyLastText() {
	if !m.haveCycle {
		return
	}
	for i := len(m.lastCycle.Entries) - 1; i >= 0; i-- {
		switch m.lastCycle.Entries[i].(type) {
		case timeline.AssistantText, timeline.UserText, timeline.Thinking:
			m.copyEntry(m.lastCycle.Entries[i].EntryID())
			return
		}
	}
}

func copyToClipboard(text string) error {
	cmd, err := clipboardCommand()
	if err != nil {
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func clipboardCommand() (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("pbcopy"), nil
	case "windows":
		return exec.Command("cmd", "/c", "clip"), nil
	default:
		if path, err := exec.LookPath("xclip"); err == nil {
			return exec.Command(path, "-selection", "clipboard"), nil
		}
		if path, err := exec.LookPath("xsel"); err == nil {
			return exec.Command(path, "--clipboard", "--input"), nil
		}
		return nil, fmt.Errorf("clipboard tool not found (install xclip or xsel)")
	}
}
