package chat

import (
	"fmt"

	"github.com/sahilm/fuzzy"

	"github.com/adamavenir/weft/internal/timeline"
)

// findEntry jumps to the entry best matching query and reports how many
// entries matched at all.
func (m *Model) findEntry(query string) {
	if query == "" {
		m.status = "find: missing query"
		return
	}
	if !m.haveCycle {
		return
	}

	ids := make([]string, 0, len(m.lastCycle.Entries))
	texts := make([]string, 0, len(m.lastCycle.Entries))
	for _, entry := range m.lastCycle.Entries {
		text := timeline.PlainText(entry)
		if text == "" {
			continue
		}
		ids = append(ids, entry.EntryID())
		texts = append(texts, text)
	}

	matches := fuzzy.Find(query, texts)
	if len(matches) == 0 {
		m.status = "no match for " + query
		return
	}

	hit := ids[matches[0].Index]
	m.issueScroll(hit, timeline.AnchorCenter)
	m.status = fmt.Sprintf("%d %s · jumped to #%s",
		len(matches), plural(len(matches), "match", "matches"), shortID(hit))
}
