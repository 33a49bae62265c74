package timeline

// Anchor positions a scroll target within the viewport.
type Anchor string

const (
	AnchorTop    Anchor = "top"
	AnchorBottom Anchor = "bottom"
	AnchorCenter Anchor = "center"
)

// ScrollCommand requests a one-shot scroll. Nonces increase monotonically
// and are consumed at most once, so a replayed cycle carrying an old
// command does not scroll again.
type ScrollCommand struct {
	Nonce    uint64
	TargetID string // empty targets the bottom of the timeline
	Anchor   Anchor
}

// Cycle is one timeline update, assembled by the host from upstream state:
// the full entry list, how many older entries are hidden, activity flags,
// session and theme identity, and an optional scroll command.
type Cycle struct {
	Entries     []Entry
	HiddenCount int
	Busy        bool
	StreamingID string
	SessionID   string
	ThemeID     string
	Scroll      *ScrollCommand
}
