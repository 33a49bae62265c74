package segment

import "strings"

// maxParseBytes bounds segmentation cost on pathological input. Anything
// larger becomes a single opaque text segment.
const maxParseBytes = 128 * 1024

// Parse splits content into block segments: fenced code blocks, pipe
// tables, thematic breaks, and paragraph text. Paragraphs split on blank
// lines so a streaming append usually lands in the last segment or adds
// new ones after it. An unterminated trailing fence yields a code segment
// marked Open; it is always the final segment.
func Parse(content string) []Segment {
	if content == "" {
		return nil
	}
	if len(content) > maxParseBytes {
		return []Segment{{Kind: KindText, Text: content}}
	}

	lines := strings.Split(content, "\n")
	segs := make([]Segment, 0, 4)
	var para []string

	flush := func() {
		if len(para) == 0 {
			return
		}
		text := strings.Join(para, "\n")
		para = nil
		if strings.TrimSpace(text) == "" {
			return
		}
		segs = append(segs, Segment{Kind: KindText, Text: text})
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if fence, lang, ok := parseFence(line); ok {
			flush()
			end := findClosingFence(lines, i+1, fence)
			if end == -1 {
				code := strings.Join(lines[i+1:], "\n")
				segs = append(segs, Segment{Kind: KindCode, Lang: lang, Text: code, Open: true})
				return segs
			}
			code := strings.Join(lines[i+1:end], "\n")
			segs = append(segs, Segment{Kind: KindCode, Lang: lang, Text: code})
			i = end
			continue
		}

		if isRule(line) {
			flush()
			segs = append(segs, Segment{Kind: KindRule})
			continue
		}

		if isTableStart(lines, i) {
			flush()
			seg, consumed := parseTable(lines, i)
			segs = append(segs, seg)
			i += consumed - 1
			continue
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		para = append(para, line)
	}
	flush()
	return segs
}

func parseFence(line string) (string, string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) < 3 {
		return "", "", false
	}

	fenceChar := trimmed[0]
	if fenceChar != '`' && fenceChar != '~' {
		return "", "", false
	}

	count := 0
	for count < len(trimmed) && trimmed[count] == fenceChar {
		count++
	}
	if count < 3 {
		return "", "", false
	}

	fence := trimmed[:count]
	rest := strings.TrimSpace(trimmed[count:])
	lang := ""
	if rest != "" {
		parts := strings.Fields(rest)
		if len(parts) > 0 {
			lang = parts[0]
		}
	}

	return fence, lang, true
}

func findClosingFence(lines []string, start int, fence string) int {
	for i := start; i < len(lines); i++ {
		if isClosingFence(lines[i], fence) {
			return i
		}
	}
	return -1
}

func isClosingFence(line string, fence string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < len(fence) {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != fence[0] {
			return false
		}
	}
	return true
}

func isRule(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	ch := trimmed[0]
	if ch != '-' && ch != '*' && ch != '_' {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != ch {
			return false
		}
	}
	return true
}

// isTableStart reports whether lines[i] opens a pipe table: a header row
// containing a pipe followed by a separator row of dashes, colons and
// pipes.
func isTableStart(lines []string, i int) bool {
	if !strings.Contains(lines[i], "|") {
		return false
	}
	if i+1 >= len(lines) {
		return false
	}
	return isTableSeparator(lines[i+1])
}

func isTableSeparator(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || !strings.Contains(trimmed, "-") {
		return false
	}
	for _, r := range trimmed {
		switch r {
		case '-', ':', '|', ' ':
		default:
			return false
		}
	}
	return true
}

// parseTable consumes a pipe table starting at lines[i] and returns the
// flattened segment plus the number of lines consumed.
func parseTable(lines []string, i int) (Segment, int) {
	header := splitTableRow(lines[i])
	consumed := 2 // header + separator
	var rows []string
	for j := i + 2; j < len(lines); j++ {
		if !strings.Contains(lines[j], "|") || strings.TrimSpace(lines[j]) == "" {
			break
		}
		rows = append(rows, splitTableRow(lines[j]))
		consumed++
	}
	return Segment{Kind: KindTable, Header: header, Text: strings.Join(rows, "\n")}, consumed
}

// splitTableRow flattens one table row into tab-joined cells.
func splitTableRow(line string) string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")
	cells := strings.Split(trimmed, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return strings.Join(cells, "\t")
}
