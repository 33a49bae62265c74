// Package segment splits rich text content into block segments and
// reconciles successive versions of the same content while it streams in,
// so that unchanged blocks keep their rendered regions (and any in-flight
// highlighting) across updates.
package segment

// Kind discriminates segment variants.
type Kind string

const (
	KindText  Kind = "text"
	KindCode  Kind = "code"
	KindTable Kind = "table"
	KindRule  Kind = "rule"
)

// Segment is one block of rich content. Segments are comparable values:
// table cells are flattened into tab-joined rows so equality stays a plain
// struct compare.
type Segment struct {
	Kind   Kind
	Text   string // KindText: raw markdown; KindCode: code body; KindTable: tab-joined data rows, newline-separated
	Lang   string // KindCode only
	Header string // KindTable only, tab-joined header cells
	Open   bool   // KindCode only: fence not yet terminated (streaming tail)
}

// KindsOf returns the kind-only sequence of a segmentation. Structural
// change is detected on this sequence alone, independent of content edits
// inside a block.
func KindsOf(segs []Segment) []Kind {
	kinds := make([]Kind, len(segs))
	for i, seg := range segs {
		kinds[i] = seg.Kind
	}
	return kinds
}

// kindsEqual reports whether two kind sequences match exactly. Any
// difference, including a new block appearing at the tail, is a structural
// change.
func kindsEqual(prev, next []Kind) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if prev[i] != next[i] {
			return false
		}
	}
	return true
}
