// Package source produces timeline cycles from a recorded or live event
// stream. A Session folds events into ordered entries, spilling history
// beyond the window to a spool, and serves tool output fetches; replay
// feeds it from a JSONL file, optionally tailing for appended events.
package source

import (
	"encoding/json"
	"fmt"

	"github.com/adamavenir/weft/internal/timeline"
)

// Event kinds accepted by Session.Apply.
const (
	EventSession = "session" // start (or switch to) a session
	EventAdd     = "add"     // append or replace one entry
	EventUpdate  = "update"  // same as add; reads better in recordings
	EventStream  = "stream"  // append a text delta to an entry and mark it streaming
	EventFinish  = "finish"  // stop streaming an entry
	EventBusy    = "busy"    // set or clear the busy flag
	EventOutput  = "output"  // tool output became fetchable
)

// Event is one line of a recorded session stream.
type Event struct {
	Kind    string       `json:"kind"`
	Session string       `json:"session,omitempty"`
	Title   string       `json:"title,omitempty"`
	ID      string       `json:"id,omitempty"`
	Delta   string       `json:"delta,omitempty"`
	Busy    *bool        `json:"busy,omitempty"`
	Entry   *EntryRecord `json:"entry,omitempty"`
	Text    string       `json:"text,omitempty"`
	AtMS    int64        `json:"at_ms,omitempty"` // replay pacing offset from stream start
}

// EntryRecord is the wire form of a timeline entry. One flat struct with a
// type tag keeps recorded files hand-editable.
type EntryRecord struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	TS       int64  `json:"ts,omitempty"`
	Text     string `json:"text,omitempty"`
	Name     string `json:"name,omitempty"`
	Input    string `json:"input,omitempty"`
	Status   string `json:"status,omitempty"`
	Preview  string `json:"preview,omitempty"`
	Bytes    int    `json:"bytes,omitempty"`
	Title    string `json:"title,omitempty"`
	Seconds  int    `json:"seconds,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Tool     string `json:"tool,omitempty"`
	Request  string `json:"request,omitempty"`
	Approved bool   `json:"approved,omitempty"`
}

// Entry record type tags.
const (
	RecordUser               = "user"
	RecordAssistant          = "assistant"
	RecordThinking           = "thinking"
	RecordTool               = "tool"
	RecordAudio              = "audio"
	RecordPermission         = "permission"
	RecordPermissionResolved = "permission_resolved"
	RecordSystem             = "system"
	RecordError              = "error"
)

// DecodeEntry converts a record into a timeline entry.
func DecodeEntry(rec EntryRecord) (timeline.Entry, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("entry record %q has no id", rec.Type)
	}
	switch rec.Type {
	case RecordUser:
		return timeline.UserText{ID: rec.ID, TS: rec.TS, Text: rec.Text}, nil
	case RecordAssistant:
		return timeline.AssistantText{ID: rec.ID, TS: rec.TS, Text: rec.Text}, nil
	case RecordThinking:
		return timeline.Thinking{ID: rec.ID, TS: rec.TS, Text: rec.Text}, nil
	case RecordTool:
		status := timeline.ToolStatus(rec.Status)
		if status == "" {
			status = timeline.ToolRunning
		}
		return timeline.ToolCall{
			ID:          rec.ID,
			TS:          rec.TS,
			Name:        rec.Name,
			Input:       rec.Input,
			Status:      status,
			Preview:     rec.Preview,
			OutputBytes: rec.Bytes,
		}, nil
	case RecordAudio:
		return timeline.AudioClip{
			ID:        rec.ID,
			TS:        rec.TS,
			Title:     rec.Title,
			Seconds:   rec.Seconds,
			SizeBytes: rec.Size,
		}, nil
	case RecordPermission:
		return timeline.Permission{ID: rec.ID, TS: rec.TS, Tool: rec.Tool, Request: rec.Request}, nil
	case RecordPermissionResolved:
		return timeline.PermissionResolved{ID: rec.ID, TS: rec.TS, Tool: rec.Tool, Approved: rec.Approved}, nil
	case RecordSystem:
		return timeline.SystemNote{ID: rec.ID, TS: rec.TS, Text: rec.Text}, nil
	case RecordError:
		return timeline.ErrorNote{ID: rec.ID, TS: rec.TS, Text: rec.Text}, nil
	default:
		return nil, fmt.Errorf("unknown entry record type %q", rec.Type)
	}
}

// EncodeEntry converts a timeline entry into its wire record. Sentinels
// are synthetic and never encoded.
func EncodeEntry(e timeline.Entry) (EntryRecord, error) {
	switch v := e.(type) {
	case timeline.UserText:
		return EntryRecord{Type: RecordUser, ID: v.ID, TS: v.TS, Text: v.Text}, nil
	case timeline.AssistantText:
		return EntryRecord{Type: RecordAssistant, ID: v.ID, TS: v.TS, Text: v.Text}, nil
	case timeline.Thinking:
		return EntryRecord{Type: RecordThinking, ID: v.ID, TS: v.TS, Text: v.Text}, nil
	case timeline.ToolCall:
		return EntryRecord{
			Type:    RecordTool,
			ID:      v.ID,
			TS:      v.TS,
			Name:    v.Name,
			Input:   v.Input,
			Status:  string(v.Status),
			Preview: v.Preview,
			Bytes:   v.OutputBytes,
		}, nil
	case timeline.AudioClip:
		return EntryRecord{
			Type:    RecordAudio,
			ID:      v.ID,
			TS:      v.TS,
			Title:   v.Title,
			Seconds: v.Seconds,
			Size:    v.SizeBytes,
		}, nil
	case timeline.Permission:
		return EntryRecord{Type: RecordPermission, ID: v.ID, TS: v.TS, Tool: v.Tool, Request: v.Request}, nil
	case timeline.PermissionResolved:
		return EntryRecord{Type: RecordPermissionResolved, ID: v.ID, TS: v.TS, Tool: v.Tool, Approved: v.Approved}, nil
	case timeline.SystemNote:
		return EntryRecord{Type: RecordSystem, ID: v.ID, TS: v.TS, Text: v.Text}, nil
	case timeline.ErrorNote:
		return EntryRecord{Type: RecordError, ID: v.ID, TS: v.TS, Text: v.Text}, nil
	default:
		return EntryRecord{}, fmt.Errorf("entry %s has no wire record", e.EntryID())
	}
}

// MarshalEntry encodes an entry as one JSON record for the spool.
func MarshalEntry(e timeline.Entry) ([]byte, error) {
	rec, err := EncodeEntry(e)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal entry record: %w", err)
	}
	return data, nil
}

// UnmarshalEntry decodes one spooled JSON record back into an entry.
func UnmarshalEntry(data []byte) (timeline.Entry, error) {
	var rec EntryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal entry record: %w", err)
	}
	return DecodeEntry(rec)
}
