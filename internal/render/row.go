package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/adamavenir/weft/internal/timeline"
)

// OutputState is the fetch lifecycle of an expanded tool body.
type OutputState string

const (
	OutputNone    OutputState = "none"    // collapsed, nothing requested
	OutputPending OutputState = "pending" // fetch in flight or awaiting retry
	OutputReady   OutputState = "ready"   // output loaded
	OutputEmpty   OutputState = "empty"   // retries exhausted, nothing came back
)

// View carries the per-row display state that is not part of the entry
// value itself: expansion, streaming, fetched output if any, and the
// pre-rendered rich content regions.
type View struct {
	Expanded    bool
	Streaming   bool
	Output      string
	OutputState OutputState
	Regions     []string
}

// Row is the materialized rendering of one timeline entry.
type Row struct {
	ID   string
	Text string
}

// Renderer turns entries into styled rows at a fixed width and theme. The
// coordinating goroutine owns it; it is not safe for concurrent use.
type Renderer struct {
	Width int
	Theme Theme
	Cache *Cache

	md *Markdown
}

// NewRenderer creates a renderer. A nil cache disables artifact caching.
func NewRenderer(width int, theme Theme, cache *Cache) *Renderer {
	return &Renderer{Width: width, Theme: theme, Cache: cache, md: NewMarkdown()}
}

// Entry materializes one entry. The switch is total over the entry union;
// anything unknown degrades to the fallback row.
func (r *Renderer) Entry(e timeline.Entry, view View) Row {
	switch v := e.(type) {
	case timeline.UserText:
		return r.userRow(v)
	case timeline.AssistantText:
		return r.assistantRow(v, view)
	case timeline.Thinking:
		return r.thinkingRow(v, view)
	case timeline.ToolCall:
		return r.toolRow(v, view)
	case timeline.AudioClip:
		return r.audioRow(v)
	case timeline.Permission:
		return r.permissionRow(v)
	case timeline.PermissionResolved:
		return r.resolvedRow(v)
	case timeline.SystemNote:
		return r.systemRow(v)
	case timeline.ErrorNote:
		return r.errorRow(v)
	case timeline.LoadMore:
		return r.loadMoreRow(v)
	case timeline.Working:
		return r.workingRow()
	default:
		return r.Fallback(e.EntryID())
	}
}

// Fallback stands in for an id whose entry cannot be rendered.
func (r *Renderer) Fallback(id string) Row {
	return Row{ID: id, Text: r.Theme.Meta.Render("⚠ entry unavailable " + shortID(id))}
}

func (r *Renderer) userRow(v timeline.UserText) Row {
	tag := r.Theme.UserTag.Render(" you ")
	body := r.Theme.User.Render(r.wrap(v.Text))
	return Row{ID: v.ID, Text: tag + "\n" + body + "\n" + r.meta(v.ID, v.TS)}
}

func (r *Renderer) assistantRow(v timeline.AssistantText, view View) Row {
	tag := r.Theme.AgentTag.Render(" weft ")
	body := strings.Join(view.Regions, "\n\n")
	if len(view.Regions) == 0 && v.Text != "" {
		body = r.md.Render(v.Text, r.Theme)
	}
	if view.Streaming {
		body += r.Theme.Accent.Render("▌")
		return Row{ID: v.ID, Text: tag + "\n" + body}
	}
	return Row{ID: v.ID, Text: tag + "\n" + body + "\n" + r.meta(v.ID, v.TS)}
}

func (r *Renderer) thinkingRow(v timeline.Thinking, view View) Row {
	header := r.Theme.Thinking.Render("✳ thinking")
	body := strings.Join(view.Regions, "\n\n")
	if len(view.Regions) == 0 {
		body = r.Theme.Thinking.Render(r.wrap(v.Text))
	}
	if view.Streaming {
		body += r.Theme.Thinking.Render("▌")
	}
	return Row{ID: v.ID, Text: header + "\n" + body}
}

var toolGlyphs = map[timeline.ToolStatus]string{
	timeline.ToolRunning: "…",
	timeline.ToolOK:      "✓",
	timeline.ToolFailed:  "✗",
}

func (r *Renderer) toolRow(v timeline.ToolCall, view View) Row {
	glyph := toolGlyphs[v.Status]
	if glyph == "" {
		glyph = "?"
	}
	header := fmt.Sprintf("⚒ %s(%s) %s", v.Name, v.Input, glyph)
	if !view.Expanded && v.Preview != "" {
		header += "  " + v.Preview
	}
	header = truncateLine(header, r.Width)
	text := r.Theme.Tool.Render(header)

	if !view.Expanded && v.OutputBytes > 0 {
		text += " " + r.Theme.Meta.Render("["+humanize.Bytes(uint64(v.OutputBytes))+"]")
	}
	if view.Expanded {
		if body := r.toolBody(BodySpecFor(v.Name, v.Input), view); body != "" {
			text += "\n" + body
		}
	}
	return Row{ID: v.ID, Text: text}
}

func (r *Renderer) audioRow(v timeline.AudioClip) Row {
	dur := fmt.Sprintf("%d:%02d", v.Seconds/60, v.Seconds%60)
	line := fmt.Sprintf("♪ %s · %s", v.Title, dur)
	if v.SizeBytes > 0 {
		line += " · " + humanize.Bytes(uint64(v.SizeBytes))
	}
	return Row{ID: v.ID, Text: r.Theme.Accent.Render(line)}
}

func (r *Renderer) permissionRow(v timeline.Permission) Row {
	title := r.Theme.Accent.Render("permission required: " + v.Tool)
	request := r.Theme.Tool.Render(r.wrapTo(v.Request, r.Width-2))
	keys := r.Theme.Meta.Render("[y] allow   [n] deny")
	return Row{ID: v.ID, Text: title + "\n" + request + "\n" + keys}
}

func (r *Renderer) resolvedRow(v timeline.PermissionResolved) Row {
	if v.Approved {
		return Row{ID: v.ID, Text: r.Theme.Meta.Render("✓ " + v.Tool + " allowed")}
	}
	return Row{ID: v.ID, Text: r.Theme.Meta.Render("✗ " + v.Tool + " denied")}
}

func (r *Renderer) systemRow(v timeline.SystemNote) Row {
	return Row{ID: v.ID, Text: r.Theme.Meta.Italic(true).Render(r.wrap(v.Text))}
}

func (r *Renderer) errorRow(v timeline.ErrorNote) Row {
	return Row{ID: v.ID, Text: r.Theme.Error.Render("✗ " + r.wrap(v.Text))}
}

func (r *Renderer) loadMoreRow(v timeline.LoadMore) Row {
	label := fmt.Sprintf("── %s earlier %s · click or press u to load ──",
		humanize.Comma(int64(v.Count)), plural(v.Count, "entry", "entries"))
	return Row{ID: timeline.LoadMoreID, Text: r.Theme.Meta.Render(label)}
}

func (r *Renderer) workingRow() Row {
	return Row{ID: timeline.WorkingID, Text: r.Theme.Thinking.Render("✳ working…")}
}

func (r *Renderer) meta(id string, ts int64) string {
	meta := "#" + shortID(id)
	if ts > 0 {
		meta += " · " + humanize.Time(time.Unix(ts, 0))
	}
	return r.Theme.Meta.Render(meta)
}

func (r *Renderer) wrap(text string) string {
	return r.wrapTo(text, r.Width)
}

func (r *Renderer) wrapTo(text string, width int) string {
	if width <= 0 {
		return text
	}
	return ansi.Wrap(text, width, "")
}

// EntrySignature fingerprints everything a row render depends on. Derived
// artifacts (highlighted regions) are deliberately excluded; they refine an
// already rendered row without changing its identity.
func EntrySignature(e timeline.Entry, view View, themeID string, width int) Signature {
	sig := Hash("entry", fmt.Sprintf("%T %+v", e, e))
	sig = sig.HashBool("expanded", view.Expanded)
	sig = sig.HashBool("streaming", view.Streaming)
	sig = sig.With("outstate", string(view.OutputState))
	sig = sig.With("out", fmt.Sprintf("%016x", uint64(Hash(view.Output))))
	sig = sig.With("theme", themeID)
	sig = sig.HashInt("width", width)
	return sig
}

func shortID(id string) string {
	if len(id) <= 10 {
		return id
	}
	return id[:10]
}

func truncateLine(value string, maxLen int) string {
	if maxLen <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= maxLen {
		return value
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
