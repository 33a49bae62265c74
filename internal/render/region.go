package render

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/adamavenir/weft/internal/segment"
)

// Region renders the base (unhighlighted) text for one rich content
// segment. Code segments come back plain here; highlighted bodies are
// swapped in later via CodeRegion once a background job completes.
func (r *Renderer) Region(seg segment.Segment) string {
	switch seg.Kind {
	case segment.KindText:
		return r.wrap(r.md.Render(seg.Text, r.Theme))
	case segment.KindCode:
		return r.CodeRegion(seg, seg.Text)
	case segment.KindTable:
		return r.tableRegion(seg)
	case segment.KindRule:
		return r.ruleRegion()
	default:
		return seg.Text
	}
}

// CodeRegion frames a code body (plain or highlighted) with its language
// label. The frame is stable across the plain-to-highlighted swap so the
// region height only changes when the code itself does.
func (r *Renderer) CodeRegion(seg segment.Segment, body string) string {
	label := seg.Lang
	if label == "" {
		label = "code"
	}
	if seg.Open {
		label += " …"
	}
	lines := []string{r.Theme.CodeFrame.Render("╭ " + label)}
	for _, line := range strings.Split(body, "\n") {
		lines = append(lines, r.Theme.CodeFrame.Render("│ ")+line)
	}
	lines = append(lines, r.Theme.CodeFrame.Render("╰"))
	return strings.Join(lines, "\n")
}

func (r *Renderer) tableRegion(seg segment.Segment) string {
	header := strings.Split(seg.Header, "\t")
	var rows [][]string
	if seg.Text != "" {
		for _, raw := range strings.Split(seg.Text, "\n") {
			rows = append(rows, strings.Split(raw, "\t"))
		}
	}

	widths := make([]int, len(header))
	for i, cell := range header {
		widths[i] = runewidth.StringWidth(cell)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && runewidth.StringWidth(cell) > widths[i] {
				widths[i] = runewidth.StringWidth(cell)
			}
		}
	}

	var out []string
	out = append(out, r.Theme.Accent.Render(padRow(header, widths)))
	total := 0
	for _, w := range widths {
		total += w + 2
	}
	if total > 0 {
		out = append(out, r.Theme.Rule.Render(strings.Repeat("─", total)))
	}
	for _, row := range rows {
		out = append(out, padRow(row, widths))
	}
	return strings.Join(out, "\n")
}

func (r *Renderer) ruleRegion() string {
	width := r.Width
	if width <= 0 || width > 40 {
		width = 40
	}
	return r.Theme.Rule.Render(strings.Repeat("─", width))
}

// padRow pads cells to column widths measured in display cells, so wide
// runes line up.
func padRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		want := 0
		if i < len(widths) {
			want = widths[i]
		}
		pad := want - runewidth.StringWidth(cell)
		if pad < 0 {
			pad = 0
		}
		padded[i] = cell + strings.Repeat(" ", pad)
	}
	return strings.Join(padded, "  ")
}
