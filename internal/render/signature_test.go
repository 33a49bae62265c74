package render

import (
	"testing"

	"github.com/adamavenir/weft/internal/timeline"
)

func TestHashPartBoundaries(t *testing.T) {
	if Hash("ab", "c") == Hash("a", "bc") {
		t.Fatal("expected part boundaries to participate in the hash")
	}
	if Hash("x") != Hash("x") {
		t.Fatal("expected identical input to hash identically")
	}
}

func TestSignatureFolding(t *testing.T) {
	base := Hash("entry")
	if base.HashBool("f", true) == base.HashBool("f", false) {
		t.Fatal("expected flag value to matter")
	}
	if base.HashInt("w", 80) == base.HashInt("w", 81) {
		t.Fatal("expected int value to matter")
	}
	if base.With("a", "b") == base.With("ab", "") {
		t.Fatal("expected name/value boundary to matter")
	}
}

func TestEntrySignatureDeterministic(t *testing.T) {
	entry := timeline.AssistantText{ID: "a", Text: "hello"}
	view := View{Expanded: false, OutputState: OutputNone}

	first := EntrySignature(entry, view, "dusk", 80)
	second := EntrySignature(entry, view, "dusk", 80)
	if first != second {
		t.Fatal("expected identical inputs to produce identical signatures")
	}
}

func TestEntrySignatureSensitivity(t *testing.T) {
	entry := timeline.ToolCall{ID: "t", Name: "bash", Status: timeline.ToolOK, OutputBytes: 10}
	view := View{OutputState: OutputNone}
	base := EntrySignature(entry, view, "dusk", 80)

	changed := entry
	changed.Status = timeline.ToolFailed
	if EntrySignature(changed, view, "dusk", 80) == base {
		t.Fatal("expected entry value to participate")
	}

	expanded := view
	expanded.Expanded = true
	if EntrySignature(entry, expanded, "dusk", 80) == base {
		t.Fatal("expected expansion to participate")
	}

	streaming := view
	streaming.Streaming = true
	if EntrySignature(entry, streaming, "dusk", 80) == base {
		t.Fatal("expected streaming flag to participate")
	}

	ready := view
	ready.Output = "data"
	ready.OutputState = OutputReady
	if EntrySignature(entry, ready, "dusk", 80) == base {
		t.Fatal("expected output state to participate")
	}

	if EntrySignature(entry, view, "mono", 80) == base {
		t.Fatal("expected theme to participate")
	}
	if EntrySignature(entry, view, "dusk", 100) == base {
		t.Fatal("expected width to participate")
	}
}

func TestEntrySignatureExcludesRegions(t *testing.T) {
	entry := timeline.AssistantText{ID: "a", Text: "```go\ncode\n```"}
	plain := View{Regions: []string{"plain code"}}
	highlighted := View{Regions: []string{"highlighted code"}}

	if EntrySignature(entry, plain, "dusk", 80) != EntrySignature(entry, highlighted, "dusk", 80) {
		t.Fatal("derived regions must not change a row's identity")
	}
}
