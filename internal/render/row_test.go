package render

import (
	"strings"
	"testing"

	"github.com/adamavenir/weft/internal/timeline"
)

func testRenderer() *Renderer {
	return NewRenderer(80, ThemeByID("mono"), nil)
}

func TestUserRow(t *testing.T) {
	r := testRenderer()
	row := r.Entry(timeline.UserText{ID: "user-entry-1234", TS: 1700000000, Text: "hello"}, View{})

	if row.ID != "user-entry-1234" {
		t.Fatalf("id: got %q", row.ID)
	}
	if !strings.Contains(row.Text, "hello") {
		t.Fatalf("missing body: %q", row.Text)
	}
	if !strings.Contains(row.Text, "#user-entry") {
		t.Fatalf("missing short id: %q", row.Text)
	}
}

func TestAssistantRowStreaming(t *testing.T) {
	r := testRenderer()

	row := r.Entry(timeline.AssistantText{ID: "a1", Text: "partial"}, View{Streaming: true})
	if !strings.Contains(row.Text, "▌") {
		t.Fatal("expected streaming cursor")
	}
	if strings.Contains(row.Text, "#a1") {
		t.Fatal("streaming row should not carry the meta line yet")
	}

	row = r.Entry(timeline.AssistantText{ID: "a1", Text: "final"}, View{})
	if strings.Contains(row.Text, "▌") {
		t.Fatal("finalized row should drop the cursor")
	}
	if !strings.Contains(row.Text, "#a1") {
		t.Fatal("expected meta line on finalized row")
	}
}

func TestAssistantRowPrefersRegions(t *testing.T) {
	r := testRenderer()
	view := View{Regions: []string{"region one", "region two"}}
	row := r.Entry(timeline.AssistantText{ID: "a1", Text: "raw markdown"}, view)

	if !strings.Contains(row.Text, "region one\n\nregion two") {
		t.Fatalf("expected regions joined with a blank line: %q", row.Text)
	}
	if strings.Contains(row.Text, "raw markdown") {
		t.Fatal("raw text should not render once regions exist")
	}
}

func TestToolRowCollapsed(t *testing.T) {
	r := testRenderer()
	tool := timeline.ToolCall{
		ID: "t1", Name: "bash", Input: "ls", Status: timeline.ToolOK,
		Preview: "3 files", OutputBytes: 500,
	}
	row := r.Entry(tool, View{})

	if !strings.Contains(row.Text, "⚒ bash(ls) ✓") {
		t.Fatalf("header: %q", row.Text)
	}
	if !strings.Contains(row.Text, "3 files") {
		t.Fatal("expected preview on collapsed row")
	}
	if !strings.Contains(row.Text, "[500 B]") {
		t.Fatalf("expected output size marker: %q", row.Text)
	}
}

func TestToolRowExpanded(t *testing.T) {
	r := testRenderer()
	tool := timeline.ToolCall{ID: "t1", Name: "bash", Input: "ls", Status: timeline.ToolOK, Preview: "3 files", OutputBytes: 500}

	row := r.Entry(tool, View{Expanded: true, OutputState: OutputPending})
	if !strings.Contains(row.Text, "loading output…") {
		t.Fatalf("pending body: %q", row.Text)
	}
	if strings.Contains(row.Text, "3 files") {
		t.Fatal("expanded row should drop the preview")
	}

	row = r.Entry(tool, View{Expanded: true, OutputState: OutputReady, Output: "$ ls\nmain.go"})
	if !strings.Contains(row.Text, "$ ls") || !strings.Contains(row.Text, "main.go") {
		t.Fatalf("ready body: %q", row.Text)
	}

	row = r.Entry(tool, View{Expanded: true, OutputState: OutputEmpty})
	if !strings.Contains(row.Text, "(no output)") {
		t.Fatalf("empty body: %q", row.Text)
	}
}

func TestToolRowStatusGlyphs(t *testing.T) {
	r := testRenderer()
	row := r.Entry(timeline.ToolCall{ID: "t", Name: "bash", Status: timeline.ToolRunning}, View{})
	if !strings.Contains(row.Text, "…") {
		t.Fatalf("running glyph: %q", row.Text)
	}
	row = r.Entry(timeline.ToolCall{ID: "t", Name: "bash", Status: timeline.ToolFailed}, View{})
	if !strings.Contains(row.Text, "✗") {
		t.Fatalf("failed glyph: %q", row.Text)
	}
}

func TestPermissionRows(t *testing.T) {
	r := testRenderer()
	row := r.Entry(timeline.Permission{ID: "p1", Tool: "edit", Request: "write main.go"}, View{})
	if !strings.Contains(row.Text, "permission required: edit") {
		t.Fatalf("title: %q", row.Text)
	}
	if !strings.Contains(row.Text, "[y] allow") {
		t.Fatalf("keys: %q", row.Text)
	}

	row = r.Entry(timeline.PermissionResolved{ID: "p1", Tool: "edit", Approved: true}, View{})
	if !strings.Contains(row.Text, "✓ edit allowed") {
		t.Fatalf("approved: %q", row.Text)
	}
	row = r.Entry(timeline.PermissionResolved{ID: "p1", Tool: "edit"}, View{})
	if !strings.Contains(row.Text, "✗ edit denied") {
		t.Fatalf("denied: %q", row.Text)
	}
}

func TestAudioRow(t *testing.T) {
	r := testRenderer()
	row := r.Entry(timeline.AudioClip{ID: "c1", Title: "standup", Seconds: 65}, View{})
	if !strings.Contains(row.Text, "♪ standup · 1:05") {
		t.Fatalf("audio row: %q", row.Text)
	}
}

func TestSentinelRows(t *testing.T) {
	r := testRenderer()

	row := r.Entry(timeline.LoadMore{Count: 1234}, View{})
	if row.ID != timeline.LoadMoreID {
		t.Fatalf("id: got %q", row.ID)
	}
	if !strings.Contains(row.Text, "1,234 earlier entries") {
		t.Fatalf("load more: %q", row.Text)
	}
	row = r.Entry(timeline.LoadMore{Count: 1}, View{})
	if !strings.Contains(row.Text, "1 earlier entry") {
		t.Fatalf("load more singular: %q", row.Text)
	}

	row = r.Entry(timeline.Working{}, View{})
	if row.ID != timeline.WorkingID || !strings.Contains(row.Text, "working") {
		t.Fatalf("working row: %+v", row)
	}
}

func TestFallbackRow(t *testing.T) {
	r := testRenderer()
	row := r.Fallback("mystery-id-123456")
	if !strings.Contains(row.Text, "entry unavailable mystery-id") {
		t.Fatalf("fallback: %q", row.Text)
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncateLine("0123456789A", 10); got != "012345678…" {
		t.Fatalf("got %q", got)
	}
	if got := truncateLine("anything", 0); got != "anything" {
		t.Fatalf("zero width: got %q", got)
	}
}

func TestClampOutput(t *testing.T) {
	out, clipped := clampOutput("small")
	if out != "small" || clipped != 0 {
		t.Fatalf("got %q %d", out, clipped)
	}

	big := strings.Repeat("line\n", outputClampBytes/5+10)
	out, clipped = clampOutput(big)
	if clipped == 0 {
		t.Fatal("expected clipping")
	}
	if len(out)+clipped != len(big) {
		t.Fatal("clipped byte count should account for the cut")
	}
	if strings.HasSuffix(out, "\n") {
		t.Fatal("expected cut at a line boundary")
	}
}
