// Package logging configures the file-backed logger. The terminal UI owns
// the screen, so nothing may log to stdout or stderr; without a configured
// file all output is discarded.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Setup creates a logger writing to path at the given level. An empty path
// discards everything. The returned closer owns the log file.
func Setup(path, level string) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
		DisableColors:   true,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if path == "" {
		return log, nopCloser{}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return log, f, nil
}

// Component returns an entry tagged with a component field.
func Component(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("component", name)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
