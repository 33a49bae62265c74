package source

import (
	"testing"

	"github.com/adamavenir/weft/internal/timeline"
)

func TestDecodeEntryKinds(t *testing.T) {
	cases := []struct {
		rec  EntryRecord
		want timeline.Entry
	}{
		{EntryRecord{Type: RecordUser, ID: "u1", Text: "hi"}, timeline.UserText{ID: "u1", Text: "hi"}},
		{EntryRecord{Type: RecordAssistant, ID: "a1", TS: 5, Text: "yo"}, timeline.AssistantText{ID: "a1", TS: 5, Text: "yo"}},
		{EntryRecord{Type: RecordThinking, ID: "th1", Text: "hm"}, timeline.Thinking{ID: "th1", Text: "hm"}},
		{
			EntryRecord{Type: RecordTool, ID: "t1", Name: "bash", Input: "ls", Status: "ok", Preview: "2 files", Bytes: 9},
			timeline.ToolCall{ID: "t1", Name: "bash", Input: "ls", Status: timeline.ToolOK, Preview: "2 files", OutputBytes: 9},
		},
		{
			EntryRecord{Type: RecordAudio, ID: "c1", Title: "standup", Seconds: 65, Size: 2000},
			timeline.AudioClip{ID: "c1", Title: "standup", Seconds: 65, SizeBytes: 2000},
		},
		{
			EntryRecord{Type: RecordPermission, ID: "p1", Tool: "edit", Request: "main.go"},
			timeline.Permission{ID: "p1", Tool: "edit", Request: "main.go"},
		},
		{
			EntryRecord{Type: RecordPermissionResolved, ID: "p1", Tool: "edit", Approved: true},
			timeline.PermissionResolved{ID: "p1", Tool: "edit", Approved: true},
		},
		{EntryRecord{Type: RecordSystem, ID: "n1", Text: "compacted"}, timeline.SystemNote{ID: "n1", Text: "compacted"}},
		{EntryRecord{Type: RecordError, ID: "x1", Text: "boom"}, timeline.ErrorNote{ID: "x1", Text: "boom"}},
	}
	for _, tc := range cases {
		got, err := DecodeEntry(tc.rec)
		if err != nil {
			t.Fatalf("decode %s: %v", tc.rec.Type, err)
		}
		if got != tc.want {
			t.Fatalf("decode %s: got %+v, want %+v", tc.rec.Type, got, tc.want)
		}
	}
}

func TestDecodeEntryDefaultsToolStatus(t *testing.T) {
	entry, err := DecodeEntry(EntryRecord{Type: RecordTool, ID: "t1", Name: "bash"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tool := entry.(timeline.ToolCall)
	if tool.Status != timeline.ToolRunning {
		t.Fatalf("status: got %q", tool.Status)
	}
}

func TestDecodeEntryRejectsBadRecords(t *testing.T) {
	if _, err := DecodeEntry(EntryRecord{Type: RecordUser}); err == nil {
		t.Fatal("expected missing id to be rejected")
	}
	if _, err := DecodeEntry(EntryRecord{Type: "mystery", ID: "x"}); err == nil {
		t.Fatal("expected unknown type to be rejected")
	}
}

func TestEncodeEntryRejectsSentinels(t *testing.T) {
	if _, err := EncodeEntry(timeline.LoadMore{Count: 3}); err == nil {
		t.Fatal("expected sentinel rejection")
	}
	if _, err := EncodeEntry(timeline.Working{}); err == nil {
		t.Fatal("expected sentinel rejection")
	}
}

func TestEntrySpoolRoundTrip(t *testing.T) {
	want := timeline.ToolCall{
		ID: "t1", TS: 42, Name: "bash", Input: "ls -la",
		Status: timeline.ToolFailed, Preview: "err", OutputBytes: 12,
	}
	data, err := MarshalEntry(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalEntry(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != timeline.Entry(want) {
		t.Fatalf("round trip: got %+v", got)
	}
}

func TestUnmarshalEntryRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalEntry([]byte("{nope")); err == nil {
		t.Fatal("expected parse error")
	}
}
