package render

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	boldStyle   = lipgloss.NewStyle().Bold(true)
	italicStyle = lipgloss.NewStyle().Italic(true)
	strikeStyle = lipgloss.NewStyle().Strikethrough(true)
	linkStyle   = lipgloss.NewStyle().Underline(true)
)

var (
	brRe         = regexp.MustCompile(`<br\s*/?>`)
	headingRe    = regexp.MustCompile(`(?s)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	strongRe     = regexp.MustCompile(`(?s)<strong>(.*?)</strong>`)
	emRe         = regexp.MustCompile(`(?s)<em>(.*?)</em>`)
	delRe        = regexp.MustCompile(`(?s)<del>(.*?)</del>`)
	inlineCodeRe = regexp.MustCompile(`<code>([^<]*)</code>`)
	linkRe       = regexp.MustCompile(`(?s)<a href="([^"]*)"[^>]*>(.*?)</a>`)
	blockquoteRe = regexp.MustCompile(`(?s)<blockquote>(.*?)</blockquote>`)
	olRe         = regexp.MustCompile(`(?s)<ol[^>]*>(.*?)</ol>`)
	ulRe         = regexp.MustCompile(`(?s)<ul[^>]*>(.*?)</ul>`)
	liRe         = regexp.MustCompile(`(?s)<li>(.*?)</li>`)
	paraRe       = regexp.MustCompile(`(?s)<p>(.*?)</p>`)
	anyTagRe     = regexp.MustCompile(`<[^>]+>`)
	manyBlankRe  = regexp.MustCompile(`\n{3,}`)
)

// Markdown renders inline markdown (one text segment) to styled terminal
// text. Fenced code, tables and rules are split off by the segmenter before
// this runs, so only paragraphs, headings, emphasis, lists, quotes, links
// and inline code remain.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates the shared converter.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough),
			goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
		),
	}
}

// Render converts content and styles it with the theme. On conversion
// failure the raw content comes back unchanged.
func (r *Markdown) Render(content string, theme Theme) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return r.toTerminal(buf.String(), theme)
}

func (r *Markdown) toTerminal(doc string, theme Theme) string {
	out := brRe.ReplaceAllString(doc, "\n")

	out = headingRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := headingRe.FindStringSubmatch(m)
		if len(parts) < 3 {
			return m
		}
		return "\n" + theme.Accent.Render(html.UnescapeString(stripTags(parts[2]))) + "\n"
	})

	out = blockquoteRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := blockquoteRe.FindStringSubmatch(m)
		if len(parts) < 2 {
			return m
		}
		inner := strings.TrimSpace(stripTags(parts[1]))
		quoted := make([]string, 0, 2)
		for _, line := range strings.Split(inner, "\n") {
			quoted = append(quoted, theme.Meta.Render("│ "+html.UnescapeString(line)))
		}
		return "\n" + strings.Join(quoted, "\n") + "\n"
	})

	out = olRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := olRe.FindStringSubmatch(m)
		if len(parts) < 2 {
			return m
		}
		items := liRe.FindAllStringSubmatch(parts[1], -1)
		lines := make([]string, 0, len(items))
		for i, item := range items {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, strings.TrimSpace(item[1])))
		}
		return "\n" + strings.Join(lines, "\n") + "\n"
	})

	out = ulRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := ulRe.FindStringSubmatch(m)
		if len(parts) < 2 {
			return m
		}
		items := liRe.FindAllStringSubmatch(parts[1], -1)
		lines := make([]string, 0, len(items))
		for _, item := range items {
			lines = append(lines, "• "+strings.TrimSpace(item[1]))
		}
		return "\n" + strings.Join(lines, "\n") + "\n"
	})

	out = strongRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := strongRe.FindStringSubmatch(m)
		return boldStyle.Render(html.UnescapeString(parts[1]))
	})
	out = emRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := emRe.FindStringSubmatch(m)
		return italicStyle.Render(html.UnescapeString(parts[1]))
	})
	out = delRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := delRe.FindStringSubmatch(m)
		return strikeStyle.Render(html.UnescapeString(parts[1]))
	})
	out = inlineCodeRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := inlineCodeRe.FindStringSubmatch(m)
		return theme.CodeFrame.Render(html.UnescapeString(parts[1]))
	})
	out = linkRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := linkRe.FindStringSubmatch(m)
		label := html.UnescapeString(stripTags(parts[2]))
		href := parts[1]
		if label == href {
			return linkStyle.Render(href)
		}
		return linkStyle.Render(label) + theme.Meta.Render(" ("+href+")")
	})

	out = paraRe.ReplaceAllString(out, "$1\n")
	out = anyTagRe.ReplaceAllString(out, "")
	out = html.UnescapeString(out)
	out = manyBlankRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func stripTags(s string) string {
	return anyTagRe.ReplaceAllString(s, "")
}
