// Package loader fetches expanded timeline content (tool output) on
// demand: at most one in-flight fetch per id, staleness dispositions on
// completion, and bounded exponential retries when a fetch comes back
// empty.
//
// All Loader methods run on the coordinating goroutine. Fetches run on
// worker goroutines and post Result values to the emit channel; retry
// timers post RetryDue the same way. Nothing here mutates loader state off
// the coordinator.
package loader

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// Fetcher produces expanded content for a timeline item.
type Fetcher interface {
	Fetch(ctx context.Context, sessionID, itemID string) (string, error)
}

// Disposition classifies a completed fetch. Only DispositionApply mutates
// cached output; every other disposition drops the result.
type Disposition string

const (
	DispositionApply        Disposition = "apply"
	DispositionCanceled     Disposition = "canceled"
	DispositionStaleSession Disposition = "stale_session"
	DispositionMissingItem  Disposition = "missing_item"
	DispositionEmptyOutput  Disposition = "empty_output"
)

// Result is posted to the coordinator when a fetch completes.
type Result struct {
	ID        string
	SessionID string
	Output    string
	Err       error
	Canceled  bool
}

// RetryDue is posted when a scheduled retry should run.
type RetryDue struct {
	ID string
}

// RetryPolicy bounds the empty-output retry schedule: base delay times
// growth per attempt, capped, up to an attempt ceiling.
type RetryPolicy struct {
	Base        time.Duration
	Growth      float64
	Cap         time.Duration
	MaxAttempts int
}

// DefaultRetryPolicy is used when config leaves the loader section empty.
var DefaultRetryPolicy = RetryPolicy{
	Base:        400 * time.Millisecond,
	Growth:      2.0,
	Cap:         5 * time.Second,
	MaxAttempts: 5,
}

// Delay returns the backoff before retry number attempt (1-based), so the
// first retry waits exactly Base.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	growth := p.Growth
	if growth < 1 {
		growth = 1
	}
	d := time.Duration(float64(p.Base) * math.Pow(growth, float64(attempt-1)))
	if p.Cap > 0 && d > p.Cap {
		d = p.Cap
	}
	return d
}

type state struct {
	loading  bool
	attempts int
	gaveUp   bool
	have     bool
	output   string
	cancel   context.CancelFunc
	retry    *time.Timer
}

// Loader tracks fetch state per item id.
type Loader struct {
	fetcher Fetcher
	policy  RetryPolicy
	emit    chan<- any
	log     *logrus.Entry
	session string
	states  map[string]*state

	// after schedules retry timers; swapped out in tests.
	after func(time.Duration, func()) *time.Timer
}

// New creates a loader posting completions to emit.
func New(fetcher Fetcher, policy RetryPolicy, emit chan<- any, log *logrus.Entry) *Loader {
	if policy.Base <= 0 {
		policy.Base = DefaultRetryPolicy.Base
	}
	if policy.Growth <= 0 {
		policy.Growth = DefaultRetryPolicy.Growth
	}
	if policy.Cap <= 0 {
		policy.Cap = DefaultRetryPolicy.Cap
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	return &Loader{
		fetcher: fetcher,
		policy:  policy,
		emit:    emit,
		log:     log,
		states:  make(map[string]*state),
		after:   time.AfterFunc,
	}
}

// SetSession adopts a new session id, dropping all state from the old one.
func (l *Loader) SetSession(sessionID string) {
	if sessionID == l.session {
		return
	}
	for id := range l.states {
		l.Drop(id)
	}
	l.session = sessionID
}

// LoadIfNeeded starts a fetch for id unless output is already cached, a
// fetch is in flight, a retry is pending, or retries are exhausted.
// Reports whether a fetch was started.
func (l *Loader) LoadIfNeeded(id string) bool {
	st := l.states[id]
	if st == nil {
		st = &state{}
		l.states[id] = st
	}
	if st.have || st.loading || st.gaveUp || st.retry != nil {
		return false
	}

	st.loading = true
	ctx, cancel := context.WithCancel(context.Background())
	st.cancel = cancel
	session := l.session
	go func() {
		output, err := l.fetcher.Fetch(ctx, session, id)
		l.emit <- Result{
			ID:        id,
			SessionID: session,
			Output:    output,
			Err:       err,
			Canceled:  ctx.Err() != nil,
		}
	}()
	return true
}

// Resolve classifies a completed fetch and applies its disposition.
// present reports whether the id is still in the current snapshot. Empty
// successes and transport errors share the retry path; errors additionally
// log at warn, never surfacing to the user.
func (l *Loader) Resolve(res Result, present bool) Disposition {
	st := l.states[res.ID]
	if st == nil || res.Canceled {
		return DispositionCanceled
	}
	st.loading = false
	st.cancel = nil
	if res.SessionID != l.session {
		return DispositionStaleSession
	}
	if !present {
		l.Drop(res.ID)
		return DispositionMissingItem
	}
	if res.Err != nil || res.Output == "" {
		if res.Err != nil && l.log != nil {
			l.log.WithError(res.Err).WithField("id", res.ID).Warn("fetch failed, treated as empty output")
		}
		st.attempts++
		if st.attempts >= l.policy.MaxAttempts {
			st.gaveUp = true
			return DispositionEmptyOutput
		}
		id := res.ID
		st.retry = l.after(l.policy.Delay(st.attempts), func() {
			l.emit <- RetryDue{ID: id}
		})
		return DispositionEmptyOutput
	}
	st.output = res.Output
	st.have = true
	return DispositionApply
}

// RetryReady clears the pending retry marker; the caller follows up with
// LoadIfNeeded, which re-checks eligibility.
func (l *Loader) RetryReady(id string) {
	if st := l.states[id]; st != nil {
		st.retry = nil
	}
}

// CancelWork stops in-flight and scheduled work for id but keeps cached
// output and the attempt count. Used when a row collapses while staying on
// the timeline.
func (l *Loader) CancelWork(id string) {
	st := l.states[id]
	if st == nil {
		return
	}
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	st.loading = false
	if st.retry != nil {
		st.retry.Stop()
		st.retry = nil
	}
}

// Drop cancels all work for id and forgets it entirely. Used when the id
// leaves the timeline or the session changes.
func (l *Loader) Drop(id string) {
	l.CancelWork(id)
	delete(l.states, id)
}

// Output returns cached output for id.
func (l *Loader) Output(id string) (string, bool) {
	st := l.states[id]
	if st == nil || !st.have {
		return "", false
	}
	return st.output, true
}

// Pending reports whether id has a fetch in flight or a retry scheduled.
func (l *Loader) Pending(id string) bool {
	st := l.states[id]
	return st != nil && (st.loading || st.retry != nil)
}

// GaveUp reports whether id exhausted its retry attempts.
func (l *Loader) GaveUp(id string) bool {
	st := l.states[id]
	return st != nil && st.gaveUp
}

// Attempts returns the failed attempt count for id.
func (l *Loader) Attempts(id string) int {
	st := l.states[id]
	if st == nil {
		return 0
	}
	return st.attempts
}
