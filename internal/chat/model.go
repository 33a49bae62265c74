// Package chat is the terminal timeline viewer. It folds session cycles
// through the rendering engine into a scrollable viewport, with mouse and
// keyboard control over expansion, history, search, and scrolling.
package chat

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/sirupsen/logrus"

	"github.com/adamavenir/weft/internal/config"
	"github.com/adamavenir/weft/internal/engine"
	"github.com/adamavenir/weft/internal/render"
	"github.com/adamavenir/weft/internal/source"
	"github.com/adamavenir/weft/internal/timeline"
)

// Options configure the viewer.
type Options struct {
	Session    *source.Session
	Config     config.Config
	AutoExpand func(toolName string) bool
	Errors     <-chan error
	Title      string
	Log        *logrus.Entry
}

// Run starts the viewer and blocks until it exits.
func Run(opts Options) error {
	model := NewModel(opts)

	title := "weft"
	if opts.Title != "" {
		title = "weft · " + opts.Title
	}
	fmt.Printf("\033]0;%s\007", title)

	program := tea.NewProgram(model, tea.WithMouseCellMotion())
	_, err := program.Run()
	model.Close()
	return err
}

// Model implements the viewer UI.
type Model struct {
	session *source.Session
	engine  *engine.Engine
	sink    *rowSink
	log     *logrus.Entry
	errors  <-chan error

	cfg        config.Config
	autoExpand func(string) bool

	viewport viewport.Model
	input    textarea.Model
	zones    *zone.Manager

	width  int
	height int

	lastCycle timeline.Cycle
	haveCycle bool
	sessionID string
	themeID   string

	// scrollNonce outlives session switches; the engine drops any nonce it
	// has already consumed.
	scrollNonce uint64
	scrollCmd   *timeline.ScrollCommand

	inputOpen bool
	status    string

	known      map[string]bool
	notified   map[string]bool
	newEntries int

	// Scroll restore across a load-older recompose, so prepended history
	// does not shove the viewed content off screen.
	pendingRestore bool
	restoreHeight  int
	restoreOffset  int
}

// NewModel creates the viewer model around a session.
func NewModel(opts Options) *Model {
	sink := newRowSink()

	themeID := opts.Config.Theme
	if !render.KnownTheme(themeID) {
		themeID = render.DefaultThemeID
	}

	eng := engine.New(sink, engine.Options{
		ThemeID:     themeID,
		CacheSize:   render.DefaultCacheSize,
		Fetcher:     opts.Session,
		Retry:       opts.Config.RetryPolicy(),
		ScrollEnter: opts.Config.Scroll.EnterLines,
		ScrollExit:  opts.Config.Scroll.ExitLines,
		ScrollFar:   opts.Config.Scroll.FarLines,
		Log:         opts.Log,
	})

	return &Model{
		session:    opts.Session,
		engine:     eng,
		sink:       sink,
		log:        opts.Log,
		errors:     opts.Errors,
		cfg:        opts.Config,
		autoExpand: opts.AutoExpand,
		viewport:   viewport.New(0, 0),
		input:      newInputModel(),
		zones:      zone.New(),
		themeID:    themeID,
		known:      make(map[string]bool),
		notified:   make(map[string]bool),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listenCycles(), m.listenEngine(), m.listenErrors(), textarea.Blink)
}

// Close releases the session. Run calls it after the program exits.
func (m *Model) Close() {
	if m.session != nil {
		_ = m.session.Close()
	}
}
