package chat

import (
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/adamavenir/weft/internal/timeline"
)

// maybeNotify raises a desktop notification for a permission prompt that
// arrived while the user is scrolled away from the live edge. Each prompt
// notifies at most once.
func (m *Model) maybeNotify(perm timeline.Permission) {
	if !m.cfg.Notify.Permissions || m.notified[perm.ID] {
		return
	}
	if m.engine.Scroll().Attached() {
		return
	}
	m.notified[perm.ID] = true

	title := "weft"
	if t := m.session.Title(); t != "" {
		title = "weft · " + t
	}
	body := truncateNotification("permission required: "+perm.Tool+" "+perm.Request, 100)
	if err := beeep.Notify(title, body, ""); err != nil && m.log != nil {
		m.log.WithError(err).Debug("desktop notification failed")
	}
}

func truncateNotification(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "…"
}
