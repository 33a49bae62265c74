// Package render materializes timeline entries into styled terminal rows,
// with content-addressed caching for the expensive parts and per-row
// signatures that gate re-rendering.
package render

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a named set of styles for timeline rows. The ID participates in
// row signatures and cache keys, so switching themes invalidates exactly
// what it should.
type Theme struct {
	ID     string
	Chroma string // chroma style name for code highlighting

	User      lipgloss.Style
	UserTag   lipgloss.Style
	Assistant lipgloss.Style
	AgentTag  lipgloss.Style
	Thinking  lipgloss.Style
	Tool      lipgloss.Style
	ToolBody  lipgloss.Style
	Meta      lipgloss.Style
	Accent    lipgloss.Style
	Error     lipgloss.Style
	Rule      lipgloss.Style
	CodeFrame lipgloss.Style
}

var themes = map[string]Theme{
	"dusk": {
		ID:        "dusk",
		Chroma:    "dracula",
		User:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		UserTag:   lipgloss.NewStyle().Background(lipgloss.Color("110")).Foreground(lipgloss.Color("232")).Bold(true),
		Assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("254")),
		AgentTag:  lipgloss.NewStyle().Background(lipgloss.Color("176")).Foreground(lipgloss.Color("232")).Bold(true),
		Thinking:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		Tool:      lipgloss.NewStyle().Foreground(lipgloss.Color("150")),
		ToolBody:  lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
		Meta:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("215")).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Rule:      lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		CodeFrame: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	},
	"paper": {
		ID:        "paper",
		Chroma:    "friendly",
		User:      lipgloss.NewStyle().Foreground(lipgloss.Color("235")),
		UserTag:   lipgloss.NewStyle().Background(lipgloss.Color("68")).Foreground(lipgloss.Color("231")).Bold(true),
		Assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("233")),
		AgentTag:  lipgloss.NewStyle().Background(lipgloss.Color("97")).Foreground(lipgloss.Color("231")).Bold(true),
		Thinking:  lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Italic(true),
		Tool:      lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		ToolBody:  lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		Meta:      lipgloss.NewStyle().Foreground(lipgloss.Color("247")),
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("130")).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("124")),
		Rule:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		CodeFrame: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	},
	"mono": {
		ID:        "mono",
		Chroma:    "bw",
		User:      lipgloss.NewStyle(),
		UserTag:   lipgloss.NewStyle().Reverse(true).Bold(true),
		Assistant: lipgloss.NewStyle(),
		AgentTag:  lipgloss.NewStyle().Reverse(true),
		Thinking:  lipgloss.NewStyle().Faint(true).Italic(true),
		Tool:      lipgloss.NewStyle().Bold(true),
		ToolBody:  lipgloss.NewStyle(),
		Meta:      lipgloss.NewStyle().Faint(true),
		Accent:    lipgloss.NewStyle().Bold(true).Underline(true),
		Error:     lipgloss.NewStyle().Bold(true),
		Rule:      lipgloss.NewStyle().Faint(true),
		CodeFrame: lipgloss.NewStyle().Faint(true),
	},
}

// DefaultThemeID is used when no theme is configured.
const DefaultThemeID = "dusk"

// ThemeByID returns the named theme, falling back to the default for
// unknown ids.
func ThemeByID(id string) Theme {
	if theme, ok := themes[id]; ok {
		return theme
	}
	return themes[DefaultThemeID]
}

// KnownTheme reports whether id names a registered theme.
func KnownTheme(id string) bool {
	_, ok := themes[id]
	return ok
}

// ThemeIDs lists the registered theme ids, sorted.
func ThemeIDs() []string {
	ids := make([]string, 0, len(themes))
	for id := range themes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
