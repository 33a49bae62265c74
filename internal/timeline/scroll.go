package timeline

// Attachment defaults, in whatever distance unit the caller measures in.
// The terminal UI constructs the controller with line-scale values from
// config; the defaults match the hysteresis band of the original client.
const (
	DefaultEnterThreshold = 120
	DefaultExitThreshold  = 200
	DefaultFarThreshold   = 600

	// Upward deltas at or below this are treated as deliberate scrolling.
	scrollIntentEpsilon = 2
)

// Attachment tracks whether the view follows new content at the bottom of
// the timeline. The enter/exit thresholds form a hysteresis band so
// attachment does not flap while layout settles near the bottom: attach
// while distance <= enter, and once attached, detach only past exit.
type Attachment struct {
	enter int
	exit  int
	far   int

	attached    bool
	interacting bool
	distance    int
}

// NewAttachment creates a controller that starts attached at the bottom.
// Non-positive thresholds fall back to the defaults; exit is raised to
// enter when the band would be inverted.
func NewAttachment(enter, exit, far int) *Attachment {
	if enter <= 0 {
		enter = DefaultEnterThreshold
	}
	if exit <= 0 {
		exit = DefaultExitThreshold
	}
	if exit < enter {
		exit = enter
	}
	if far <= 0 {
		far = DefaultFarThreshold
	}
	return &Attachment{enter: enter, exit: exit, far: far, attached: true}
}

// ObserveUser records a user-driven scroll. delta is the change in scroll
// offset (negative when scrolling up, away from the live edge). A
// deliberate upward scroll detaches immediately, bypassing hysteresis;
// otherwise the hysteresis band applies.
func (a *Attachment) ObserveUser(distance, delta int) {
	a.distance = distance
	a.interacting = true
	if delta < -scrollIntentEpsilon {
		a.attached = false
		return
	}
	if distance <= a.enter {
		a.attached = true
		return
	}
	if a.attached && distance > a.exit {
		a.attached = false
	}
}

// ObserveLayout records a programmatic position change (content growth or
// reflow). Layout movement can detach an attached view but never
// re-attaches a detached one; re-attachment requires an explicit command
// or a user gesture.
func (a *Attachment) ObserveLayout(distance int) {
	a.distance = distance
	a.interacting = false
	if a.attached && distance > a.exit {
		a.attached = false
	}
}

// AttachBottom re-attaches in response to an explicit jump to the bottom.
func (a *Attachment) AttachBottom() {
	a.attached = true
	a.interacting = false
	a.distance = 0
}

// Attached reports whether the view is following the bottom.
func (a *Attachment) Attached() bool {
	return a.attached
}

// Interacting reports whether the last observation came from the user.
func (a *Attachment) Interacting() bool {
	return a.interacting
}

// Distance returns the last observed distance from the bottom.
func (a *Attachment) Distance() int {
	return a.distance
}

// DetachedWhileStreaming reports whether content is growing while the user
// is scrolled away, the cue for the new-content indicator.
func (a *Attachment) DetachedWhileStreaming(streaming bool) bool {
	return streaming && !a.attached
}

// FarFromBottom reports whether the view is well away from the live edge.
func (a *Attachment) FarFromBottom() bool {
	return a.distance > a.far
}
