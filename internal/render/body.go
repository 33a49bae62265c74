package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// outputClampBytes bounds how much fetched output a body renders. Oversized
// output is cut with a note rather than stalling the render path.
const outputClampBytes = 64 * 1024

var (
	diffAddStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("71"))
	diffDelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	diffHunkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	todoDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("71")).Strikethrough(true)
)

// toolBody renders the expanded body of a tool row for its fetch state and
// body spec.
func (r *Renderer) toolBody(spec BodySpec, view View) string {
	switch view.OutputState {
	case OutputPending:
		return indent(r.Theme.Meta.Render("loading output…"))
	case OutputEmpty:
		return indent(r.Theme.Meta.Render("(no output)"))
	case OutputReady:
	default:
		return ""
	}

	output, clipped := clampOutput(view.Output)
	var body string
	switch spec.Mode() {
	case ModeBash:
		body = r.bashBody(output)
	case ModeDiff:
		body = r.diffBody(output)
	case ModeCode:
		body = r.highlightCached(output, spec.Lang())
	case ModeMarkdown:
		body = r.wrapTo(r.md.Render(output, r.Theme), r.Width-2)
	case ModeTodo:
		body = r.todoBody(output)
	case ModeMedia:
		body = r.Theme.Meta.Render(fmt.Sprintf("media · %s · open externally", humanize.Bytes(uint64(len(view.Output)))))
	default:
		body = r.Theme.ToolBody.Render(r.wrapTo(output, r.Width-2))
	}
	if clipped > 0 {
		body += "\n" + r.Theme.Meta.Render(fmt.Sprintf("… clipped %s", humanize.Bytes(uint64(clipped))))
	}
	return indent(body)
}

func (r *Renderer) bashBody(output string) string {
	lines := strings.Split(output, "\n")
	styled := make([]string, len(lines))
	for i, line := range lines {
		if strings.HasPrefix(line, "$ ") {
			styled[i] = r.Theme.Accent.Render(line)
			continue
		}
		styled[i] = r.Theme.ToolBody.Render(line)
	}
	return strings.Join(styled, "\n")
}

func (r *Renderer) diffBody(output string) string {
	lines := strings.Split(output, "\n")
	styled := make([]string, len(lines))
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			styled[i] = diffAddStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			styled[i] = diffDelStyle.Render(line)
		case strings.HasPrefix(line, "@@"):
			styled[i] = diffHunkStyle.Render(line)
		default:
			styled[i] = r.Theme.ToolBody.Render(line)
		}
	}
	return strings.Join(styled, "\n")
}

func (r *Renderer) todoBody(output string) string {
	lines := strings.Split(output, "\n")
	styled := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "[x]"), strings.HasPrefix(trimmed, "[X]"):
			styled = append(styled, todoDoneStyle.Render("✓ "+strings.TrimSpace(trimmed[3:])))
		case strings.HasPrefix(trimmed, "[ ]"):
			styled = append(styled, r.Theme.ToolBody.Render("· "+strings.TrimSpace(trimmed[3:])))
		default:
			styled = append(styled, r.Theme.ToolBody.Render(trimmed))
		}
	}
	return strings.Join(styled, "\n")
}

// highlightCached highlights finalized code through the artifact cache.
func (r *Renderer) highlightCached(code, lang string) string {
	if r.Cache == nil {
		return HighlightCode(code, lang, r.Theme.Chroma)
	}
	key := HighlightKey(code, lang, r.Theme.Chroma)
	if v, ok := r.Cache.Get(key); ok {
		return v.(string)
	}
	out := HighlightCode(code, lang, r.Theme.Chroma)
	r.Cache.Put(key, out)
	return out
}

func clampOutput(output string) (string, int) {
	if len(output) <= outputClampBytes {
		return output, 0
	}
	cut := output[:outputClampBytes]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i]
	}
	return cut, len(output) - len(cut)
}

func indent(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
