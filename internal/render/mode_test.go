package render

import "testing"

func TestNewBodySpec(t *testing.T) {
	spec, err := NewBodySpec(ModeCode, "go")
	if err != nil {
		t.Fatalf("code spec: %v", err)
	}
	if spec.Mode() != ModeCode || spec.Lang() != "go" {
		t.Fatalf("unexpected spec: %v %q", spec.Mode(), spec.Lang())
	}

	if _, err := NewBodySpec(ModeBash, "go"); err == nil {
		t.Fatal("expected language rejection outside code mode")
	}
	if _, err := NewBodySpec(Mode("nope"), ""); err == nil {
		t.Fatal("expected unknown mode rejection")
	}
}

func TestBodySpecKey(t *testing.T) {
	spec, _ := NewBodySpec(ModeCode, "go")
	if spec.Key() != "code:go" {
		t.Fatalf("key: got %q", spec.Key())
	}
	spec, _ = NewBodySpec(ModeBash, "")
	if spec.Key() != "bash" {
		t.Fatalf("key: got %q", spec.Key())
	}
}

func TestBodySpecFor(t *testing.T) {
	cases := []struct {
		name  string
		input string
		mode  Mode
		lang  string
	}{
		{"bash", "ls -la", ModeBash, ""},
		{"Bash", "", ModeBash, ""},
		{"edit", "main.go", ModeDiff, ""},
		{"apply_patch", "", ModeDiff, ""},
		{"read", "cmd/main.go", ModeCode, "go"},
		{"read", "notes.txt", ModeCode, ""},
		{"read", "photo.PNG", ModeMedia, ""},
		{"cat", "demo.mp4 extra", ModeMedia, ""},
		{"TodoWrite", "", ModeTodo, ""},
		{"web_search", "query", ModeMarkdown, ""},
		{"mystery", "", ModePlain, ""},
	}
	for _, tc := range cases {
		spec := BodySpecFor(tc.name, tc.input)
		if spec.Mode() != tc.mode {
			t.Fatalf("%s(%s): mode got %v, want %v", tc.name, tc.input, spec.Mode(), tc.mode)
		}
		if spec.Lang() != tc.lang {
			t.Fatalf("%s(%s): lang got %q, want %q", tc.name, tc.input, spec.Lang(), tc.lang)
		}
	}
}

func TestLangForPath(t *testing.T) {
	if got := langForPath("internal/render/row.go"); got != "go" {
		t.Fatalf("got %q", got)
	}
	if got := langForPath("script.ZSH"); got != "bash" {
		t.Fatalf("got %q", got)
	}
	if got := langForPath("README"); got != "" {
		t.Fatalf("expected no language, got %q", got)
	}
}
