package source

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adamavenir/weft/internal/spool"
	"github.com/adamavenir/weft/internal/timeline"
)

// Session folds events into the current timeline state and emits a cycle
// after every change. Cycles coalesce latest-wins: a slow consumer sees
// the newest state, never a backlog. Entries beyond the window spill to
// the spool and come back through LoadOlder.
type Session struct {
	mu sync.Mutex

	log      *logrus.Entry
	store    *spool.Store
	window   int
	loadStep int

	id        string
	title     string
	entries   []timeline.Entry
	streaming string
	busy      bool
	outputs   map[string]string
	hidden    int
	closed    bool

	cycles chan timeline.Cycle
}

// NewSession creates a session spilling to store. window bounds the
// in-memory entry count; loadStep is the default LoadOlder batch size.
func NewSession(store *spool.Store, window, loadStep int, log *logrus.Entry) *Session {
	if window <= 0 {
		window = 200
	}
	if loadStep <= 0 {
		loadStep = 50
	}
	s := &Session{
		log:      log,
		store:    store,
		window:   window,
		loadStep: loadStep,
		outputs:  make(map[string]string),
		cycles:   make(chan timeline.Cycle, 1),
	}
	if n, err := store.Count(); err == nil {
		s.hidden = n
	}
	return s
}

// Cycles returns the coalesced cycle stream.
func (s *Session) Cycles() <-chan timeline.Cycle {
	return s.cycles
}

// SessionID returns the active session id.
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Title returns the session title, if the stream provided one.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Apply folds one event and emits a cycle.
func (s *Session) Apply(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	switch ev.Kind {
	case EventSession:
		s.applySession(ev)
	case EventAdd, EventUpdate:
		if ev.Entry == nil {
			return nil
		}
		entry, err := DecodeEntry(*ev.Entry)
		if err != nil {
			return err
		}
		s.upsert(entry)
		s.spill()
	case EventStream:
		s.applyStream(ev)
	case EventFinish:
		if s.streaming == ev.ID {
			s.streaming = ""
		}
	case EventBusy:
		if ev.Busy != nil {
			s.busy = *ev.Busy
		}
	case EventOutput:
		s.applyOutput(ev)
	default:
		if s.log != nil {
			s.log.WithField("kind", ev.Kind).Warn("unknown event kind, skipped")
		}
		return nil
	}

	s.emit()
	return nil
}

func (s *Session) applySession(ev Event) {
	if ev.Session == s.id && s.id != "" {
		s.title = ev.Title
		return
	}
	s.id = ev.Session
	s.title = ev.Title
	s.entries = nil
	s.streaming = ""
	s.busy = false
	s.outputs = make(map[string]string)
	s.hidden = 0
	if err := s.store.Clear(); err != nil && s.log != nil {
		s.log.WithError(err).Warn("spool clear failed on session switch")
	}
}

func (s *Session) applyStream(ev Event) {
	if ev.ID == "" {
		return
	}
	i := s.index(ev.ID)
	if i < 0 {
		s.entries = append(s.entries, timeline.AssistantText{
			ID:   ev.ID,
			TS:   time.Now().UnixMilli(),
			Text: ev.Delta,
		})
		s.streaming = ev.ID
		return
	}
	switch v := s.entries[i].(type) {
	case timeline.AssistantText:
		v.Text += ev.Delta
		s.entries[i] = v
	case timeline.Thinking:
		v.Text += ev.Delta
		s.entries[i] = v
	default:
		if s.log != nil {
			s.log.WithField("id", ev.ID).Warn("stream delta for non-text entry, skipped")
		}
		return
	}
	s.streaming = ev.ID
}

func (s *Session) applyOutput(ev Event) {
	if ev.ID == "" {
		return
	}
	s.outputs[ev.ID] = ev.Text
	if i := s.index(ev.ID); i >= 0 {
		if tool, ok := s.entries[i].(timeline.ToolCall); ok && tool.OutputBytes == 0 {
			tool.OutputBytes = len(ev.Text)
			s.entries[i] = tool
		}
	}
}

// ResolvePermission replaces a pending permission prompt with its outcome,
// keeping the same id so the row updates in place. Reports whether a
// pending prompt was found.
func (s *Session) ResolvePermission(id string, approved bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return false
	}
	perm, ok := s.entries[i].(timeline.Permission)
	if !ok {
		return false
	}
	s.entries[i] = timeline.PermissionResolved{
		ID:       perm.ID,
		TS:       time.Now().UnixMilli(),
		Tool:     perm.Tool,
		Approved: approved,
	}
	s.emit()
	return true
}

// LoadOlder restores up to n spooled entries (the default batch when n
// is 0) to the front of the window. Returns how many came back.
func (s *Session) LoadOlder(n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 {
		n = s.loadStep
	}
	records, err := s.store.TakeNewest(n)
	if err != nil {
		return 0, err
	}
	restored := make([]timeline.Entry, 0, len(records))
	for _, data := range records {
		entry, err := UnmarshalEntry(data)
		if err != nil {
			if s.log != nil {
				s.log.WithError(err).Warn("corrupt spool record, skipped")
			}
			continue
		}
		restored = append(restored, entry)
	}
	s.entries = append(restored, s.entries...)
	if count, err := s.store.Count(); err == nil {
		s.hidden = count
	} else {
		s.hidden -= len(records)
		if s.hidden < 0 {
			s.hidden = 0
		}
	}
	s.emit()
	return len(restored), nil
}

// Fetch serves tool output for the loader. Output not yet announced by an
// output event reads as empty, which the loader retries.
func (s *Session) Fetch(ctx context.Context, sessionID, itemID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sessionID != s.id {
		return "", nil
	}
	return s.outputs[itemID], nil
}

// Close stops accepting events and closes the spool.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.store.Close()
}

func (s *Session) index(id string) int {
	for i, e := range s.entries {
		if e.EntryID() == id {
			return i
		}
	}
	return -1
}

func (s *Session) upsert(entry timeline.Entry) {
	if i := s.index(entry.EntryID()); i >= 0 {
		s.entries[i] = entry
		return
	}
	s.entries = append(s.entries, entry)
}

func (s *Session) spill() {
	if len(s.entries) <= s.window {
		return
	}
	evict := s.entries[:len(s.entries)-s.window]
	spilled := 0
	for _, entry := range evict {
		data, err := MarshalEntry(entry)
		if err != nil {
			break
		}
		if err := s.store.Append(data); err != nil {
			if s.log != nil {
				s.log.WithError(err).Warn("spool append failed, keeping entries in memory")
			}
			break
		}
		spilled++
	}
	if spilled == 0 {
		return
	}
	s.hidden += spilled
	s.entries = append([]timeline.Entry(nil), s.entries[spilled:]...)
}

// emit publishes the current state, replacing any unconsumed cycle.
// Callers hold the lock.
func (s *Session) emit() {
	cycle := timeline.Cycle{
		Entries:     append([]timeline.Entry(nil), s.entries...),
		HiddenCount: s.hidden,
		Busy:        s.busy,
		StreamingID: s.streaming,
		SessionID:   s.id,
	}
	for {
		select {
		case s.cycles <- cycle:
			return
		default:
		}
		select {
		case <-s.cycles:
		default:
		}
	}
}
