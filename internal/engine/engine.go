// Package engine reconciles timeline cycles against rendered rows. It owns
// the snapshot diff, the per-row signature gate, the streaming content
// reconcilers, and the output loader, and pushes minimal row mutations to a
// Sink. All state is owned by the coordinating goroutine; background work
// reports back through the results channel and is applied via HandleMsg.
package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/adamavenir/weft/internal/loader"
	"github.com/adamavenir/weft/internal/render"
	"github.com/adamavenir/weft/internal/segment"
	"github.com/adamavenir/weft/internal/timeline"
)

// Sink receives row mutations from the engine. The terminal UI implements
// it over a viewport; tests implement it with a recorder.
type Sink interface {
	UpsertRow(id string, row render.Row)
	RemoveRow(id string)
	SetOrder(ids []string)
	ScrollTo(id string, anchor timeline.Anchor)
}

// Options configures a new engine.
type Options struct {
	Width     int
	ThemeID   string
	CacheSize int
	Fetcher   loader.Fetcher
	Retry     loader.RetryPolicy

	// Scroll attachment thresholds in lines; zero values take defaults.
	ScrollEnter int
	ScrollExit  int
	ScrollFar   int

	Log *logrus.Entry
}

// Stats counts engine work across cycles.
type Stats struct {
	Cycles        uint64
	RowsRendered  uint64
	RowsSkipped   uint64
	FallbackRows  uint64
	HighlightJobs uint64
	Teardowns     uint64
}

// Engine applies timeline cycles to a sink with minimal recomputation.
type Engine struct {
	sink     Sink
	renderer *render.Renderer
	cache    *render.Cache
	loader   *loader.Loader
	scroll   *timeline.Attachment
	log      *logrus.Entry

	session     string
	themeID     string
	prev        timeline.Snapshot
	streamingID string
	hiddenCount int
	lastNonce   uint64

	sigs     map[string]render.Signature
	recs     map[string]*segment.Reconciler
	expanded map[string]bool
	hljobs   map[jobKey]*Handle

	results chan any
	parse   func(string) []segment.Segment
	stats   Stats
}

// New creates an engine rendering into sink.
func New(sink Sink, opts Options) *Engine {
	cache := render.NewCache(opts.CacheSize)
	theme := render.ThemeByID(opts.ThemeID)
	results := make(chan any, 64)
	e := &Engine{
		sink:     sink,
		renderer: render.NewRenderer(opts.Width, theme, cache),
		cache:    cache,
		scroll:   timeline.NewAttachment(opts.ScrollEnter, opts.ScrollExit, opts.ScrollFar),
		log:      opts.Log,
		themeID:  theme.ID,
		sigs:     make(map[string]render.Signature),
		recs:     make(map[string]*segment.Reconciler),
		expanded: make(map[string]bool),
		hljobs:   make(map[jobKey]*Handle),
		results:  results,
		parse:    segment.Parse,
	}
	e.loader = loader.New(opts.Fetcher, opts.Retry, results, opts.Log)
	return e
}

// Results is the channel background work reports on. The host forwards
// each value to HandleMsg on the coordinating goroutine.
func (e *Engine) Results() <-chan any {
	return e.results
}

// Scroll exposes the attachment state machine for viewport observations.
func (e *Engine) Scroll() *timeline.Attachment {
	return e.scroll
}

// ThemeID returns the active theme.
func (e *Engine) ThemeID() string {
	return e.themeID
}

// Stats returns a copy of the work counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// CacheStats returns artifact cache hit and miss counts.
func (e *Engine) CacheStats() (hits, misses uint64) {
	return e.cache.Stats()
}

// ApplyCycle reconciles one timeline cycle against the rendered state.
// Applying the same cycle twice is a no-op for the sink.
func (e *Engine) ApplyCycle(c timeline.Cycle) {
	e.stats.Cycles++

	if c.SessionID != e.session {
		if e.session != "" {
			e.teardown()
			if e.log != nil {
				e.log.WithField("session", c.SessionID).Debug("session changed, rendering state reset")
			}
		}
		e.session = c.SessionID
		e.loader.SetSession(c.SessionID)
	}

	themeChanged := false
	if c.ThemeID != "" && c.ThemeID != e.themeID {
		theme := render.ThemeByID(c.ThemeID)
		e.themeID = theme.ID
		e.renderer.Theme = theme
		e.resetRegions()
		themeChanged = true
	}

	next := timeline.BuildSnapshot(c.Entries, timeline.SnapshotOptions{
		HiddenCount: c.HiddenCount,
		Busy:        c.Busy,
		StreamingID: c.StreamingID,
	})

	var forced []string
	if themeChanged {
		forced = next.IDs
	} else {
		if c.StreamingID != "" {
			forced = append(forced, c.StreamingID)
		}
		if e.streamingID != "" && e.streamingID != c.StreamingID {
			forced = append(forced, e.streamingID)
		}
		if c.HiddenCount != e.hiddenCount {
			forced = append(forced, timeline.LoadMoreID)
		}
	}
	changed := timeline.Diff(e.prev, next, forced)

	for _, id := range e.prev.IDs {
		if !next.Contains(id) {
			e.dropRow(id)
		}
	}

	orderChanged := !timeline.EqualIDs(e.prev.IDs, next.IDs)
	e.prev = next
	e.streamingID = c.StreamingID
	e.hiddenCount = c.HiddenCount

	e.syncLoader(next)

	for _, id := range next.IDs {
		if _, seen := e.sigs[id]; seen && !changed.Has(id) {
			continue
		}
		e.renderRow(id, next, c.StreamingID == id)
	}

	if orderChanged {
		e.sink.SetOrder(append([]string(nil), next.IDs...))
	}

	if c.Scroll != nil && c.Scroll.Nonce > e.lastNonce {
		e.lastNonce = c.Scroll.Nonce
		e.applyScroll(*c.Scroll, next)
	}

	if e.scroll.Attached() && (len(changed) > 0 || orderChanged) {
		e.sink.ScrollTo("", timeline.AnchorBottom)
	}
}

// HandleMsg applies one background completion on the coordinating
// goroutine. Reports whether the message was recognized.
func (e *Engine) HandleMsg(msg any) bool {
	switch m := msg.(type) {
	case loader.Result:
		switch e.loader.Resolve(m, e.prev.Contains(m.ID)) {
		case loader.DispositionApply:
			e.renderRow(m.ID, e.prev, e.streamingID == m.ID)
		case loader.DispositionEmptyOutput:
			if e.loader.GaveUp(m.ID) {
				e.renderRow(m.ID, e.prev, e.streamingID == m.ID)
			}
		}
		return true
	case loader.RetryDue:
		e.loader.RetryReady(m.ID)
		if e.expanded[m.ID] && e.prev.Contains(m.ID) {
			e.loader.LoadIfNeeded(m.ID)
		}
		return true
	case HighlightDone:
		e.applyHighlight(m)
		return true
	}
	return false
}

// ToggleExpanded flips the expansion state of id, starting or cancelling
// output work as needed. Reports the new state.
func (e *Engine) ToggleExpanded(id string) bool {
	now := !e.expanded[id]
	if now {
		e.expanded[id] = true
	} else {
		delete(e.expanded, id)
	}
	entry, ok := e.prev.Entries[id]
	if !ok {
		return now
	}
	if tool, isTool := entry.(timeline.ToolCall); isTool {
		if now && wantsFetch(tool) {
			if _, have := e.loader.Output(id); !have {
				e.loader.LoadIfNeeded(id)
			}
		}
		if !now {
			e.loader.CancelWork(id)
		}
	}
	e.renderRow(id, e.prev, e.streamingID == id)
	return now
}

// SetWidth re-renders every row at a new width. Regions are rebuilt since
// wrapping and frames depend on width.
func (e *Engine) SetWidth(width int) {
	if width <= 0 || width == e.renderer.Width {
		return
	}
	e.renderer.Width = width
	e.resetRegions()
	for _, id := range e.prev.IDs {
		e.renderRow(id, e.prev, e.streamingID == id)
	}
}

func (e *Engine) renderRow(id string, snap timeline.Snapshot, streaming bool) {
	entry, ok := snap.Entries[id]
	if !ok {
		e.stats.FallbackRows++
		e.sink.UpsertRow(id, e.renderer.Fallback(id))
		return
	}

	view := e.viewShell(id, entry, streaming)
	sig := render.EntrySignature(entry, view, e.themeID, e.renderer.Width)
	if old, seen := e.sigs[id]; seen && old == sig {
		e.stats.RowsSkipped++
		return
	}

	switch v := entry.(type) {
	case timeline.AssistantText:
		view.Regions = e.richRegions(id, v.Text, streaming)
	case timeline.Thinking:
		view.Regions = e.richRegions(id, v.Text, streaming)
	}

	e.sigs[id] = sig
	e.stats.RowsRendered++
	e.sink.UpsertRow(id, e.renderer.Entry(entry, view))
}

// viewShell assembles the display state a signature depends on. Regions
// are filled in later, only when the row actually re-renders.
func (e *Engine) viewShell(id string, entry timeline.Entry, streaming bool) render.View {
	view := render.View{
		Expanded:    e.expanded[id],
		Streaming:   streaming,
		OutputState: render.OutputNone,
	}
	tool, isTool := entry.(timeline.ToolCall)
	if !isTool || !view.Expanded {
		return view
	}
	switch {
	case !wantsFetch(tool):
		view.OutputState = render.OutputEmpty
	default:
		if out, ok := e.loader.Output(id); ok {
			view.Output = out
			view.OutputState = render.OutputReady
		} else if e.loader.GaveUp(id) {
			view.OutputState = render.OutputEmpty
		} else {
			view.OutputState = render.OutputPending
		}
	}
	return view
}

// recompose refreshes a row after a highlight lands. The signature is
// untouched: highlights refine a row without changing its identity.
func (e *Engine) recompose(id string) {
	entry, ok := e.prev.Entries[id]
	if !ok {
		return
	}
	view := e.viewShell(id, entry, e.streamingID == id)
	if rec := e.recs[id]; rec != nil {
		view.Regions = rec.Regions()
	}
	e.sink.UpsertRow(id, e.renderer.Entry(entry, view))
}

// syncLoader starts fetches for expanded tool rows whose output is still
// missing. Running tools are left alone until their status settles.
func (e *Engine) syncLoader(snap timeline.Snapshot) {
	for id := range e.expanded {
		if !snap.Contains(id) {
			continue
		}
		tool, ok := snap.Entries[id].(timeline.ToolCall)
		if !ok || !wantsFetch(tool) {
			continue
		}
		if _, have := e.loader.Output(id); !have {
			e.loader.LoadIfNeeded(id)
		}
	}
}

// wantsFetch reports whether a tool row has output worth fetching: the
// call has settled and upstream reported a nonzero output size.
func wantsFetch(tool timeline.ToolCall) bool {
	return tool.Status != timeline.ToolRunning && tool.OutputBytes > 0
}

func (e *Engine) applyScroll(cmd timeline.ScrollCommand, snap timeline.Snapshot) {
	if cmd.TargetID == "" {
		e.scroll.AttachBottom()
		e.sink.ScrollTo("", timeline.AnchorBottom)
		return
	}
	if !snap.Contains(cmd.TargetID) {
		if e.log != nil {
			e.log.WithField("target", cmd.TargetID).Debug("scroll target not on timeline, command dropped")
		}
		return
	}
	anchor := cmd.Anchor
	if anchor == "" {
		anchor = timeline.AnchorTop
	}
	e.sink.ScrollTo(cmd.TargetID, anchor)
}

func (e *Engine) dropRow(id string) {
	e.sink.RemoveRow(id)
	delete(e.sigs, id)
	if _, ok := e.recs[id]; ok {
		e.cancelHighlights(id, -1)
		delete(e.recs, id)
	}
	delete(e.expanded, id)
	e.loader.Drop(id)
}

// teardown discards all rendering state when the session changes. Cached
// artifacts survive; they are keyed by content, not by session.
func (e *Engine) teardown() {
	for _, id := range e.prev.IDs {
		e.sink.RemoveRow(id)
	}
	for key, h := range e.hljobs {
		h.Cancel()
		delete(e.hljobs, key)
	}
	e.sigs = make(map[string]render.Signature)
	e.recs = make(map[string]*segment.Reconciler)
	e.expanded = make(map[string]bool)
	e.prev = timeline.Snapshot{}
	e.streamingID = ""
	e.hiddenCount = 0
	e.sink.SetOrder(nil)
	e.stats.Teardowns++
}
