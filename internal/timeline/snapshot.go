package timeline

// SnapshotOptions controls the synthetic rows injected while building a
// snapshot.
type SnapshotOptions struct {
	HiddenCount int
	Busy        bool
	StreamingID string
}

// Snapshot is an ordered, deduplicated view of the timeline for one cycle.
// IDs holds the display order; Entries maps each id to its value. Snapshots
// are built fresh every cycle and never mutated afterwards.
type Snapshot struct {
	IDs     []string
	Entries map[string]Entry
}

// BuildSnapshot orders incoming entries, keeping only the last occurrence
// of any duplicated id while preserving the relative order of the rest.
// A load-more sentinel is prepended when entries are hidden, and a working
// sentinel is appended when the session is busy with nothing streaming.
func BuildSnapshot(incoming []Entry, opts SnapshotOptions) Snapshot {
	last := make(map[string]int, len(incoming))
	for i, entry := range incoming {
		last[entry.EntryID()] = i
	}

	ids := make([]string, 0, len(last)+2)
	entries := make(map[string]Entry, len(last)+2)

	if opts.HiddenCount > 0 {
		ids = append(ids, LoadMoreID)
		entries[LoadMoreID] = LoadMore{Count: opts.HiddenCount}
	}
	for i, entry := range incoming {
		id := entry.EntryID()
		if last[id] != i {
			continue
		}
		ids = append(ids, id)
		entries[id] = entry
	}
	if opts.Busy && opts.StreamingID == "" {
		ids = append(ids, WorkingID)
		entries[WorkingID] = Working{}
	}

	return Snapshot{IDs: ids, Entries: entries}
}

// Contains reports whether id is present in the snapshot.
func (s Snapshot) Contains(id string) bool {
	_, ok := s.Entries[id]
	return ok
}

// Len returns the number of rows in the snapshot, sentinels included.
func (s Snapshot) Len() int {
	return len(s.IDs)
}

// IDSet is a set of entry ids.
type IDSet map[string]struct{}

// Add inserts id into the set.
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Diff returns the ids whose value differs between prev and next, plus any
// forced ids that are present in next. Entries compare by value, so a
// streaming append, a tool status flip, or a sentinel count change all
// register; unchanged entries never do.
func Diff(prev, next Snapshot, forced []string) IDSet {
	changed := make(IDSet)
	for id, entry := range next.Entries {
		before, ok := prev.Entries[id]
		if ok && before != entry {
			changed.Add(id)
		}
	}
	for _, id := range forced {
		if next.Contains(id) {
			changed.Add(id)
		}
	}
	return changed
}

// EqualIDs reports whether two id slices hold the same ids in the same
// order.
func EqualIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
