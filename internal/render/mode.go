package render

import (
	"fmt"
	"path"
	"strings"
)

// Mode selects how an expanded tool body is rendered.
type Mode string

const (
	ModeBash     Mode = "bash"
	ModeDiff     Mode = "diff"
	ModeCode     Mode = "code"
	ModeMarkdown Mode = "markdown"
	ModeTodo     Mode = "todo"
	ModeMedia    Mode = "media"
	ModePlain    Mode = "plain"
)

// BodySpec is the single decision point for how an expanded tool body is
// shown: the mode plus its payload slots. Build through NewBodySpec or
// BodySpecFor so invalid combinations cannot exist.
type BodySpec struct {
	mode Mode
	lang string
}

// NewBodySpec validates a mode/payload combination. Lang is only
// meaningful for ModeCode.
func NewBodySpec(mode Mode, lang string) (BodySpec, error) {
	switch mode {
	case ModeBash, ModeDiff, ModeMarkdown, ModeTodo, ModeMedia, ModePlain:
		if lang != "" {
			return BodySpec{}, fmt.Errorf("render: mode %q does not take a language", mode)
		}
	case ModeCode:
	default:
		return BodySpec{}, fmt.Errorf("render: unknown mode %q", mode)
	}
	return BodySpec{mode: mode, lang: lang}, nil
}

// Mode returns the render mode.
func (s BodySpec) Mode() Mode { return s.mode }

// Lang returns the code language, empty outside ModeCode.
func (s BodySpec) Lang() string { return s.lang }

// Key returns the mode/lang contribution to a row signature.
func (s BodySpec) Key() string {
	if s.lang == "" {
		return string(s.mode)
	}
	return string(s.mode) + ":" + s.lang
}

var mediaExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".mp3": true, ".wav": true, ".m4a": true, ".mp4": true, ".mov": true,
	".pdf": true,
}

// BodySpecFor maps a tool name and its input to a body spec. Unknown tools
// fall back to plain text.
func BodySpecFor(name, input string) BodySpec {
	switch normalizeTool(name) {
	case "bash", "shell", "exec", "run":
		return BodySpec{mode: ModeBash}
	case "edit", "write", "patch", "apply_patch", "diff":
		return BodySpec{mode: ModeDiff}
	case "read", "cat", "open":
		if mediaExts[strings.ToLower(path.Ext(firstField(input)))] {
			return BodySpec{mode: ModeMedia}
		}
		return BodySpec{mode: ModeCode, lang: langForPath(firstField(input))}
	case "todo", "todowrite", "plan", "tasks":
		return BodySpec{mode: ModeTodo}
	case "web_search", "websearch", "fetch", "web_fetch":
		return BodySpec{mode: ModeMarkdown}
	default:
		return BodySpec{mode: ModePlain}
	}
}

func normalizeTool(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func firstField(input string) string {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

var extLangs = map[string]string{
	".go":    "go",
	".py":    "python",
	".rb":    "ruby",
	".rs":    "rust",
	".js":    "javascript",
	".jsx":   "jsx",
	".ts":    "typescript",
	".tsx":   "tsx",
	".swift": "swift",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".java":  "java",
	".kt":    "kotlin",
	".sh":    "bash",
	".bash":  "bash",
	".zsh":   "bash",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".sql":   "sql",
	".md":    "markdown",
	".html":  "html",
	".css":   "css",
}

func langForPath(p string) string {
	return extLangs[strings.ToLower(path.Ext(p))]
}
