package engine

import (
	"strings"
	"sync/atomic"

	"github.com/adamavenir/weft/internal/render"
	"github.com/adamavenir/weft/internal/segment"
)

// Handle cancels one background job cooperatively. Workers check it before
// posting a result; cancellation is advisory and never blocks.
type Handle struct {
	canceled atomic.Bool
}

// Cancel marks the job canceled.
func (h *Handle) Cancel() {
	h.canceled.Store(true)
}

// Canceled reports whether the job was canceled.
func (h *Handle) Canceled() bool {
	return h.canceled.Load()
}

type jobKey struct {
	id  string
	idx int
}

// HighlightDone delivers a finished background highlight. Gen and Session
// pin the result to the segment generation and session it was scheduled
// for; a mismatch on either drops it.
type HighlightDone struct {
	EntryID string
	Index   int
	Gen     uint64
	Session string
	Style   string
	Seg     segment.Segment
	Body    string
}

// richRegions runs content through the entry's reconciler and schedules
// highlighting for any changed code segments.
func (e *Engine) richRegions(id, content string, streaming bool) []string {
	rec := e.recs[id]
	if rec == nil {
		rec = segment.NewReconciler(e.renderer.Region)
		e.recs[id] = rec
	}
	outcome := rec.Apply(e.segmentsFor(content, streaming))
	if outcome.Rebuilt {
		e.cancelHighlights(id, -1)
	} else {
		for _, idx := range outcome.Changed {
			e.cancelHighlights(id, idx)
		}
	}
	e.scheduleHighlights(id, rec, outcome.Changed)
	return rec.Regions()
}

// segmentsFor parses content, reading through the artifact cache for
// finalized entries. Streaming content changes every delta and is parsed
// directly.
func (e *Engine) segmentsFor(content string, streaming bool) []segment.Segment {
	if streaming {
		return e.parse(content)
	}
	key := render.ParseKey(content)
	if v, ok := e.cache.Get(key); ok {
		if segs, ok := v.([]segment.Segment); ok {
			return segs
		}
	}
	segs := e.parse(content)
	e.cache.Put(key, segs)
	return segs
}

// scheduleHighlights upgrades changed code regions. Cached highlights are
// applied synchronously; the rest go to background jobs keyed by segment
// generation. Open fences are skipped: their content is still growing.
func (e *Engine) scheduleHighlights(id string, rec *segment.Reconciler, indexes []int) {
	segs := rec.Segments()
	for _, idx := range indexes {
		if idx < 0 || idx >= len(segs) {
			continue
		}
		seg := segs[idx]
		if seg.Kind != segment.KindCode || seg.Open || strings.TrimSpace(seg.Text) == "" {
			continue
		}

		style := e.renderer.Theme.Chroma
		key := render.HighlightKey(seg.Text, seg.Lang, style)
		if v, ok := e.cache.Get(key); ok {
			if body, ok := v.(string); ok {
				rec.SetRegion(idx, rec.Generation(idx), e.renderer.CodeRegion(seg, body))
				continue
			}
		}

		gen := rec.Generation(idx)
		h := &Handle{}
		e.hljobs[jobKey{id: id, idx: idx}] = h
		e.stats.HighlightJobs++
		session := e.session
		go func() {
			body := render.HighlightCode(seg.Text, seg.Lang, style)
			if h.Canceled() {
				return
			}
			e.results <- HighlightDone{
				EntryID: id,
				Index:   idx,
				Gen:     gen,
				Session: session,
				Style:   style,
				Seg:     seg,
				Body:    body,
			}
		}()
	}
}

// applyHighlight lands a finished highlight: cache it, then apply it to
// the live region if the entry, session, and generation still match.
func (e *Engine) applyHighlight(m HighlightDone) {
	delete(e.hljobs, jobKey{id: m.EntryID, idx: m.Index})
	e.cache.Put(render.HighlightKey(m.Seg.Text, m.Seg.Lang, m.Style), m.Body)

	if m.Session != e.session || !e.prev.Contains(m.EntryID) {
		return
	}
	rec := e.recs[m.EntryID]
	if rec == nil {
		return
	}
	if !rec.SetRegion(m.Index, m.Gen, e.renderer.CodeRegion(m.Seg, m.Body)) {
		return
	}
	e.recompose(m.EntryID)
}

// cancelHighlights cancels pending jobs for id; idx narrows to one
// segment, negative cancels them all.
func (e *Engine) cancelHighlights(id string, idx int) {
	for key, h := range e.hljobs {
		if key.id != id {
			continue
		}
		if idx >= 0 && key.idx != idx {
			continue
		}
		h.Cancel()
		delete(e.hljobs, key)
	}
}

// resetRegions cancels all highlight work and clears every reconciler.
// The next render pass rebuilds regions under the new theme or width.
func (e *Engine) resetRegions() {
	for key, h := range e.hljobs {
		h.Cancel()
		delete(e.hljobs, key)
	}
	for _, rec := range e.recs {
		rec.Reset()
	}
}
