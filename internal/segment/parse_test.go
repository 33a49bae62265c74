package segment

import (
	"strings"
	"testing"
)

func TestParseParagraphs(t *testing.T) {
	segs := Parse("first paragraph\nstill first\n\nsecond paragraph")
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Kind != KindText || segs[0].Text != "first paragraph\nstill first" {
		t.Fatalf("first segment: %+v", segs[0])
	}
	if segs[1].Text != "second paragraph" {
		t.Fatalf("second segment: %+v", segs[1])
	}
}

func TestParseEmpty(t *testing.T) {
	if segs := Parse(""); segs != nil {
		t.Fatalf("expected nil, got %v", segs)
	}
	if segs := Parse("   \n\n  "); len(segs) != 0 {
		t.Fatalf("expected no segments for blank content, got %v", segs)
	}
}

func TestParseFencedCode(t *testing.T) {
	segs := Parse("intro\n\n```go\nfmt.Println(\"hi\")\n```\n\noutro")
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	code := segs[1]
	if code.Kind != KindCode {
		t.Fatalf("expected code segment, got %v", code.Kind)
	}
	if code.Lang != "go" {
		t.Fatalf("lang: got %q", code.Lang)
	}
	if code.Text != "fmt.Println(\"hi\")" {
		t.Fatalf("code body: got %q", code.Text)
	}
	if code.Open {
		t.Fatal("closed fence must not be open")
	}
}

func TestParseUnterminatedFence(t *testing.T) {
	segs := Parse("before\n```python\nprint(1)\nprint(2)")
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	code := segs[1]
	if code.Kind != KindCode || !code.Open {
		t.Fatalf("expected open code segment, got %+v", code)
	}
	if code.Lang != "python" {
		t.Fatalf("lang: got %q", code.Lang)
	}
	if code.Text != "print(1)\nprint(2)" {
		t.Fatalf("code body: got %q", code.Text)
	}
}

func TestParseFenceVariants(t *testing.T) {
	fence, lang, ok := parseFence("```go")
	if !ok || fence != "```" || lang != "go" {
		t.Fatalf("got %q %q %v", fence, lang, ok)
	}
	fence, lang, ok = parseFence("  ~~~~ rust extra")
	if !ok || fence != "~~~~" || lang != "rust" {
		t.Fatalf("got %q %q %v", fence, lang, ok)
	}
	if _, _, ok := parseFence("``"); ok {
		t.Fatal("two backticks are not a fence")
	}
	if _, _, ok := parseFence("plain text"); ok {
		t.Fatal("plain text is not a fence")
	}
}

func TestParseLongerClosingFence(t *testing.T) {
	segs := Parse("```\ncode\n`````")
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].Open {
		t.Fatal("a longer run of the fence char still closes the block")
	}
	if segs[0].Text != "code" {
		t.Fatalf("code body: got %q", segs[0].Text)
	}
}

func TestParseRule(t *testing.T) {
	segs := Parse("above\n\n---\n\nbelow")
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	if segs[1].Kind != KindRule {
		t.Fatalf("expected rule, got %v", segs[1].Kind)
	}

	if isRule("--") {
		t.Fatal("two dashes are not a rule")
	}
	if isRule("-*-") {
		t.Fatal("mixed characters are not a rule")
	}
	if !isRule("  ***  ") {
		t.Fatal("expected padded asterisks to be a rule")
	}
}

func TestParseTable(t *testing.T) {
	segs := Parse("| Name | Size |\n|------|-----:|\n| a | 1 |\n| b | 2 |\n\nafter")
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	table := segs[0]
	if table.Kind != KindTable {
		t.Fatalf("expected table, got %v", table.Kind)
	}
	if table.Header != "Name\tSize" {
		t.Fatalf("header: got %q", table.Header)
	}
	if table.Text != "a\t1\nb\t2" {
		t.Fatalf("rows: got %q", table.Text)
	}
	if segs[1].Text != "after" {
		t.Fatalf("trailing text: got %q", segs[1].Text)
	}
}

func TestParseTableNeedsSeparator(t *testing.T) {
	segs := Parse("| not | a table |\njust text")
	if len(segs) != 1 || segs[0].Kind != KindText {
		t.Fatalf("expected plain text without a separator row, got %+v", segs)
	}
}

func TestParseOversizedContent(t *testing.T) {
	content := strings.Repeat("x", maxParseBytes+1)
	segs := Parse(content)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].Kind != KindText || segs[0].Text != content {
		t.Fatal("oversized content should come back as one opaque text segment")
	}
}

func TestKindsOf(t *testing.T) {
	segs := Parse("text\n\n```\ncode\n```")
	kinds := KindsOf(segs)
	if len(kinds) != 2 || kinds[0] != KindText || kinds[1] != KindCode {
		t.Fatalf("unexpected kinds: %v", kinds)
	}
}
