package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Player feeds a recorded JSONL event stream into a session. Events with
// an at_ms offset replay on the recorded clock; otherwise a fixed delay
// paces them. With follow enabled the player tails the file and applies
// events as they are appended.
type Player struct {
	sess   *Session
	path   string
	delay  time.Duration
	follow bool
	log    *logrus.Entry

	watcher *fsnotify.Watcher
	errs    chan error
	done    chan struct{}
}

// NewPlayer creates a player for path. delay paces events that carry no
// at_ms offset; zero replays them as fast as they parse.
func NewPlayer(sess *Session, path string, delay time.Duration, follow bool, log *logrus.Entry) *Player {
	return &Player{
		sess:   sess,
		path:   path,
		delay:  delay,
		follow: follow,
		log:    log,
		errs:   make(chan error, 10),
		done:   make(chan struct{}),
	}
}

// Errors returns the channel for replay errors.
func (p *Player) Errors() <-chan error {
	return p.errs
}

// Start opens the recording and begins applying events in the background.
func (p *Player) Start() error {
	f, err := os.Open(p.path)
	if err != nil {
		return fmt.Errorf("open recording: %w", err)
	}
	if p.follow {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			_ = f.Close()
			return fmt.Errorf("watch recording: %w", err)
		}
		if err := watcher.Add(p.path); err != nil {
			_ = watcher.Close()
			_ = f.Close()
			return fmt.Errorf("watch recording: %w", err)
		}
		p.watcher = watcher
	}

	go p.run(f)
	return nil
}

// Close stops the player. Call at most once.
func (p *Player) Close() error {
	close(p.done)
	if p.watcher != nil {
		return p.watcher.Close()
	}
	return nil
}

func (p *Player) run(f *os.File) {
	defer func() { _ = f.Close() }()

	reader := bufio.NewReader(f)
	start := time.Now()
	var carry []byte

	if !p.drain(reader, &carry, start) {
		return
	}
	if !p.follow {
		return
	}

	for {
		select {
		case <-p.done:
			return
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			if !p.drain(reader, &carry, start) {
				return
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			select {
			case p.errs <- err:
			default:
			}
		}
	}
}

// drain applies every complete line currently readable. A trailing partial
// line carries over to the next drain. Reports false once the player is
// closed.
func (p *Player) drain(reader *bufio.Reader, carry *[]byte, start time.Time) bool {
	for {
		chunk, err := reader.ReadBytes('\n')
		if len(chunk) > 0 {
			*carry = append(*carry, chunk...)
		}
		if err != nil {
			return true // at EOF; a write event resumes us
		}
		line := strings.TrimSpace(string(*carry))
		*carry = (*carry)[:0]
		if line == "" {
			continue
		}
		if !p.applyLine(line, start) {
			return false
		}
	}
}

func (p *Player) applyLine(line string, start time.Time) bool {
	var ev Event
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		if p.log != nil {
			p.log.WithError(err).Warn("malformed event line, skipped")
		}
		return true
	}

	if ev.AtMS > 0 {
		if !p.sleepUntil(start.Add(time.Duration(ev.AtMS) * time.Millisecond)) {
			return false
		}
	} else if !p.sleep(p.delay) {
		return false
	}

	if err := p.sess.Apply(ev); err != nil {
		if p.log != nil {
			p.log.WithError(err).Warn("event rejected, skipped")
		}
	}
	return true
}

func (p *Player) sleep(d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-p.done:
		return false
	}
}

func (p *Player) sleepUntil(t time.Time) bool {
	return p.sleep(time.Until(t))
}
