package timeline

// Sentinel ids for the synthetic rows injected while building a snapshot.
// Real entry ids never carry the "weft:" prefix.
const (
	LoadMoreID = "weft:load-more"
	WorkingID  = "weft:working"
)

// ToolStatus represents tool call lifecycle state.
type ToolStatus string

const (
	ToolRunning ToolStatus = "running"
	ToolOK      ToolStatus = "ok"
	ToolFailed  ToolStatus = "failed"
)

// Entry is one logical item in a session timeline. Every implementation is
// a comparable value struct (scalar and string fields only), so two Entry
// values compare with ==. Entries are produced upstream and are read-only
// to the rendering side.
type Entry interface {
	EntryID() string
	entry()
}

// AssistantText is a markdown-capable assistant reply. Text grows while the
// entry is the streaming target.
type AssistantText struct {
	ID   string `json:"id"`
	TS   int64  `json:"ts,omitempty"`
	Text string `json:"text"`
}

// UserText is a message authored by the local user.
type UserText struct {
	ID   string `json:"id"`
	TS   int64  `json:"ts,omitempty"`
	Text string `json:"text"`
}

// Thinking is interim assistant reasoning, rendered muted.
type Thinking struct {
	ID   string `json:"id"`
	TS   int64  `json:"ts,omitempty"`
	Text string `json:"text"`
}

// ToolCall describes one tool invocation. The collapsed row shows Input and
// Preview; full output is fetched on demand once the row is expanded.
type ToolCall struct {
	ID          string     `json:"id"`
	TS          int64      `json:"ts,omitempty"`
	Name        string     `json:"name"`
	Input       string     `json:"input,omitempty"`
	Status      ToolStatus `json:"status"`
	Preview     string     `json:"preview,omitempty"`
	OutputBytes int        `json:"output_bytes,omitempty"`
}

// AudioClip is a recorded audio attachment.
type AudioClip struct {
	ID        string `json:"id"`
	TS        int64  `json:"ts,omitempty"`
	Title     string `json:"title"`
	Seconds   int    `json:"seconds"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// Permission is an approval request awaiting a decision.
type Permission struct {
	ID      string `json:"id"`
	TS      int64  `json:"ts,omitempty"`
	Tool    string `json:"tool"`
	Request string `json:"request"`
}

// PermissionResolved records the outcome of a permission request.
type PermissionResolved struct {
	ID       string `json:"id"`
	TS       int64  `json:"ts,omitempty"`
	Tool     string `json:"tool"`
	Approved bool   `json:"approved"`
}

// SystemNote is a system or compaction notice.
type SystemNote struct {
	ID   string `json:"id"`
	TS   int64  `json:"ts,omitempty"`
	Text string `json:"text"`
}

// ErrorNote is a non-fatal error surfaced on the timeline.
type ErrorNote struct {
	ID   string `json:"id"`
	TS   int64  `json:"ts,omitempty"`
	Text string `json:"text"`
}

// LoadMore is the synthetic row standing in for entries not currently
// loaded. Count is the number of hidden entries behind it.
type LoadMore struct {
	Count int
}

// Working is the synthetic activity row appended while the session is busy
// and nothing is streaming.
type Working struct{}

func (e AssistantText) EntryID() string      { return e.ID }
func (e UserText) EntryID() string           { return e.ID }
func (e Thinking) EntryID() string           { return e.ID }
func (e ToolCall) EntryID() string           { return e.ID }
func (e AudioClip) EntryID() string          { return e.ID }
func (e Permission) EntryID() string         { return e.ID }
func (e PermissionResolved) EntryID() string { return e.ID }
func (e SystemNote) EntryID() string         { return e.ID }
func (e ErrorNote) EntryID() string          { return e.ID }
func (e LoadMore) EntryID() string           { return LoadMoreID }
func (e Working) EntryID() string            { return WorkingID }

func (AssistantText) entry()      {}
func (UserText) entry()           {}
func (Thinking) entry()           {}
func (ToolCall) entry()           {}
func (AudioClip) entry()          {}
func (Permission) entry()         {}
func (PermissionResolved) entry() {}
func (SystemNote) entry()         {}
func (ErrorNote) entry()          {}
func (LoadMore) entry()           {}
func (Working) entry()            {}

// PlainText returns the searchable text content of an entry, without any
// styling. Sentinels and resolved permissions yield short labels.
func PlainText(e Entry) string {
	switch v := e.(type) {
	case AssistantText:
		return v.Text
	case UserText:
		return v.Text
	case Thinking:
		return v.Text
	case ToolCall:
		return v.Name + " " + v.Input + " " + v.Preview
	case AudioClip:
		return v.Title
	case Permission:
		return v.Tool + " " + v.Request
	case PermissionResolved:
		return v.Tool
	case SystemNote:
		return v.Text
	case ErrorNote:
		return v.Text
	default:
		return ""
	}
}
