package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adamavenir/weft/internal/timeline"
)

func writeRecording(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stream.jsonl")
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}
	return path
}

func waitForEntries(t *testing.T, s *Session, n int) timeline.Cycle {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case c := <-s.Cycles():
			if len(c.Entries) >= n {
				return c
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %d entries", n)
		}
	}
}

func TestPlayerReplaysRecording(t *testing.T) {
	path := writeRecording(t,
		`{"kind":"session","session":"s1","title":"replayed"}`,
		`{"kind":"add","entry":{"type":"user","id":"u1","text":"hi"}}`,
		`{oops not json`,
		``,
		`{"kind":"add","entry":{"type":"assistant","id":"a1","text":"hello"}}`,
	)
	s := newTestSession(t, 0, 0)

	p := NewPlayer(s, path, 0, false, nil)
	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		_ = p.Close()
	})

	c := waitForEntries(t, s, 2)
	if c.SessionID != "s1" {
		t.Fatalf("session: got %q", c.SessionID)
	}
	if c.Entries[0].EntryID() != "u1" || c.Entries[1].EntryID() != "a1" {
		t.Fatalf("entries: %v", c.Entries)
	}
}

func TestPlayerFollowsAppends(t *testing.T) {
	path := writeRecording(t,
		`{"kind":"session","session":"s1"}`,
		`{"kind":"add","entry":{"type":"user","id":"u1","text":"hi"}}`,
	)
	s := newTestSession(t, 0, 0)

	p := NewPlayer(s, path, 0, true, nil)
	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		_ = p.Close()
	})

	waitForEntries(t, s, 1)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open for append: %v", err)
	}
	if _, err := f.WriteString(`{"kind":"add","entry":{"type":"user","id":"u2","text":"more"}}` + "\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	c := waitForEntries(t, s, 2)
	if c.Entries[1].EntryID() != "u2" {
		t.Fatalf("entries: %v", c.Entries)
	}
}

func TestPlayerMissingRecording(t *testing.T) {
	s := newTestSession(t, 0, 0)
	p := NewPlayer(s, filepath.Join(t.TempDir(), "absent.jsonl"), 0, false, nil)
	if err := p.Start(); err == nil {
		t.Fatal("expected open error")
	}
}
