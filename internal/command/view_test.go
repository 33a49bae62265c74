package command

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestViewRequiresStreamArg(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := NewRootCmd("test")

	_, err := executeCommand(cmd, "view")
	if err == nil {
		t.Fatalf("expected an argument error")
	}
	if !strings.Contains(err.Error(), "accepts 1 arg") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestViewMissingStream(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := NewRootCmd("test")

	_, err := executeCommand(cmd, "view", filepath.Join(t.TempDir(), "absent.jsonl"))
	if err == nil {
		t.Fatalf("expected an error for a missing recording")
	}
}

func TestViewRejectsUnknownTheme(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := NewRootCmd("test")

	_, err := executeCommand(cmd, "view", "--theme", "neon", "stream.jsonl")
	if err == nil || !strings.Contains(err.Error(), "unknown theme") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestViewMissingExplicitConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := NewRootCmd("test")

	badPath := filepath.Join(t.TempDir(), "absent.toml")
	_, err := executeCommand(cmd, "view", "--config", badPath, "stream.jsonl")
	if err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
