package hotkey

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/soocke/pixel-trigger-go/domain/action"
)

// LineSource reads one key name per line, e.g. from a terminal, and reports each as a
// press followed by a release. It is the hotkey source on platforms without a global
// keyboard hook.
type LineSource struct {
	r      io.Reader
	logger *slog.Logger

	once sync.Once
	done chan struct{}
}

// NewLineSource reads key names from r.
func NewLineSource(r io.Reader, logger *slog.Logger) *LineSource {
	return &LineSource{r: r, logger: logger, done: make(chan struct{})}
}

func (s *LineSource) Start(events chan<- Event) error {
	go s.read(events)
	return nil
}

// Stop ends delivery. A read blocked on the underlying reader is abandoned.
func (s *LineSource) Stop() { s.once.Do(func() { close(s.done) }) }

func (s *LineSource) read(events chan<- Event) {
	sc := bufio.NewScanner(s.r)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name == "" {
			continue
		}
		k, err := action.ParseKey(name)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("unknown key", "input", name)
			}
			continue
		}
		for _, down := range []bool{true, false} {
			select {
			case events <- Event{Key: k, Down: down}:
			case <-s.done:
				return
			}
		}
	}
	if err := sc.Err(); err != nil && s.logger != nil {
		s.logger.Warn("key input closed", "error", err)
	}
}
