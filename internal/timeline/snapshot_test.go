package timeline

import "testing"

func TestBuildSnapshotKeepsLastOccurrence(t *testing.T) {
	snap := BuildSnapshot([]Entry{
		UserText{ID: "a", Text: "first"},
		UserText{ID: "b", Text: "middle"},
		UserText{ID: "a", Text: "second"},
	}, SnapshotOptions{})

	if !EqualIDs(snap.IDs, []string{"b", "a"}) {
		t.Fatalf("unexpected order: %v", snap.IDs)
	}
	got, ok := snap.Entries["a"].(UserText)
	if !ok {
		t.Fatal("expected user entry for a")
	}
	if got.Text != "second" {
		t.Fatalf("expected last occurrence to win, got %q", got.Text)
	}
}

func TestBuildSnapshotLoadMoreSentinel(t *testing.T) {
	snap := BuildSnapshot([]Entry{UserText{ID: "a"}}, SnapshotOptions{HiddenCount: 40})

	if !EqualIDs(snap.IDs, []string{LoadMoreID, "a"}) {
		t.Fatalf("unexpected order: %v", snap.IDs)
	}
	lm, ok := snap.Entries[LoadMoreID].(LoadMore)
	if !ok {
		t.Fatal("expected load-more entry")
	}
	if lm.Count != 40 {
		t.Fatalf("count: got %d", lm.Count)
	}

	snap = BuildSnapshot([]Entry{UserText{ID: "a"}}, SnapshotOptions{})
	if snap.Contains(LoadMoreID) {
		t.Fatal("expected no load-more sentinel when nothing is hidden")
	}
}

func TestBuildSnapshotWorkingSentinel(t *testing.T) {
	snap := BuildSnapshot([]Entry{UserText{ID: "a"}}, SnapshotOptions{Busy: true})
	if !EqualIDs(snap.IDs, []string{"a", WorkingID}) {
		t.Fatalf("unexpected order: %v", snap.IDs)
	}

	snap = BuildSnapshot([]Entry{AssistantText{ID: "a"}}, SnapshotOptions{Busy: true, StreamingID: "a"})
	if snap.Contains(WorkingID) {
		t.Fatal("expected no working sentinel while an entry is streaming")
	}

	snap = BuildSnapshot([]Entry{UserText{ID: "a"}}, SnapshotOptions{})
	if snap.Contains(WorkingID) {
		t.Fatal("expected no working sentinel when idle")
	}
}

func TestBuildSnapshotEmpty(t *testing.T) {
	snap := BuildSnapshot(nil, SnapshotOptions{})
	if snap.Len() != 0 {
		t.Fatalf("expected empty snapshot, got %d rows", snap.Len())
	}
}

func TestDiffValueChanges(t *testing.T) {
	prev := BuildSnapshot([]Entry{
		AssistantText{ID: "a", Text: "hel"},
		UserText{ID: "b", Text: "same"},
		ToolCall{ID: "c", Name: "bash", Status: ToolRunning},
	}, SnapshotOptions{})
	next := BuildSnapshot([]Entry{
		AssistantText{ID: "a", Text: "hello"},
		UserText{ID: "b", Text: "same"},
		ToolCall{ID: "c", Name: "bash", Status: ToolOK},
	}, SnapshotOptions{})

	changed := Diff(prev, next, nil)
	if !changed.Has("a") {
		t.Fatal("expected streaming append to register")
	}
	if !changed.Has("c") {
		t.Fatal("expected status flip to register")
	}
	if changed.Has("b") {
		t.Fatal("unchanged entry should not register")
	}
}

func TestDiffForced(t *testing.T) {
	prev := BuildSnapshot([]Entry{UserText{ID: "a", Text: "x"}}, SnapshotOptions{})
	next := BuildSnapshot([]Entry{UserText{ID: "a", Text: "x"}}, SnapshotOptions{})

	changed := Diff(prev, next, []string{"a", "gone"})
	if !changed.Has("a") {
		t.Fatal("expected forced id to register")
	}
	if changed.Has("gone") {
		t.Fatal("forced id absent from next should be filtered out")
	}
}

func TestDiffSentinelCountChange(t *testing.T) {
	prev := BuildSnapshot(nil, SnapshotOptions{HiddenCount: 50})
	next := BuildSnapshot(nil, SnapshotOptions{HiddenCount: 20})

	changed := Diff(prev, next, nil)
	if !changed.Has(LoadMoreID) {
		t.Fatal("expected hidden count change to register on the sentinel")
	}
}

func TestEqualIDs(t *testing.T) {
	if !EqualIDs([]string{"a", "b"}, []string{"a", "b"}) {
		t.Fatal("expected equal")
	}
	if EqualIDs([]string{"a", "b"}, []string{"b", "a"}) {
		t.Fatal("expected order to matter")
	}
	if EqualIDs([]string{"a"}, []string{"a", "b"}) {
		t.Fatal("expected length to matter")
	}
	if !EqualIDs(nil, []string{}) {
		t.Fatal("expected nil and empty to compare equal")
	}
}

func TestPlainText(t *testing.T) {
	if got := PlainText(ToolCall{ID: "t", Name: "bash", Input: "ls", Preview: "ok"}); got != "bash ls ok" {
		t.Fatalf("tool text: got %q", got)
	}
	if got := PlainText(Permission{ID: "p", Tool: "edit", Request: "main.go"}); got != "edit main.go" {
		t.Fatalf("permission text: got %q", got)
	}
	if got := PlainText(Working{}); got != "" {
		t.Fatalf("expected empty text for sentinel, got %q", got)
	}
}
