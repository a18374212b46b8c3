package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/soocke/pixel-trigger-go/domain/action"
)

// ErrAlreadyStarted is returned by a second Start.
var ErrAlreadyStarted = errors.New("hotkey listener already started")

// Event is a single key transition observed by a Source.
type Event struct {
	Key      action.Key
	Down     bool
	Injected bool // synthesized by software, e.g. by this process's own injector
}

// Source delivers key events. Start must return registration failures synchronously
// and must never block on a full channel.
type Source interface {
	Start(events chan<- Event) error
	Stop()
}

// Target receives the bound commands.
type Target interface {
	Toggle() bool
	TestAction(ctx context.Context) error
	TestLeftClick(ctx context.Context) error
}

// Bindings maps keys to commands. A zero Key is unbound.
type Bindings struct {
	Toggle   action.Key
	Test     action.Key
	LeftTest action.Key
}

// Listener turns key-down events into commands on a dedicated goroutine, so toggling
// is independent of the sampling rate. Held keys are only acted on once per press and
// injected events are ignored.
type Listener struct {
	bindings Bindings
	source   Source
	target   Target
	logger   *slog.Logger

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewListener wires a Source to a Target.
func NewListener(b Bindings, src Source, target Target, logger *slog.Logger) *Listener {
	return &Listener{
		bindings: b,
		source:   src,
		target:   target,
		logger:   logger,
		events:   make(chan Event, 64),
		done:     make(chan struct{}),
	}
}

// Start registers with the source and begins dispatching. A registration failure is
// returned as is and leaves the listener unusable.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return ErrAlreadyStarted
	}
	if err := l.source.Start(l.events); err != nil {
		return fmt.Errorf("register hotkeys: %w", err)
	}
	l.started = true
	l.wg.Add(1)
	go l.loop()
	if l.logger != nil {
		l.logger.Info("hotkeys registered", "toggle", l.bindings.Toggle.String(), "test", l.bindings.Test.String(), "left_test", l.bindings.LeftTest.String())
	}
	return nil
}

// Stop unregisters from the source and waits for the dispatch goroutine to exit.
func (l *Listener) Stop() {
	l.mu.Lock()
	if !l.started || l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	l.mu.Unlock()
	l.source.Stop()
	close(l.done)
	l.wg.Wait()
}

func (l *Listener) loop() {
	defer l.wg.Done()
	held := make(map[uint16]bool)
	for {
		select {
		case <-l.done:
			return
		case ev := <-l.events:
			if ev.Injected || !ev.Key.Valid() {
				continue
			}
			if !ev.Down {
				delete(held, ev.Key.Code)
				continue
			}
			if held[ev.Key.Code] {
				continue
			}
			held[ev.Key.Code] = true
			l.dispatch(ev.Key)
		}
	}
}

func (l *Listener) dispatch(k action.Key) {
	defer func() {
		if r := recover(); r != nil && l.logger != nil {
			l.logger.Error("hotkey handler panic", "key", k.String(), "error", r, "stack", string(debug.Stack()))
		}
	}()
	b := l.bindings
	switch {
	case b.Toggle.Valid() && k.Code == b.Toggle.Code:
		l.target.Toggle()
	case b.Test.Valid() && k.Code == b.Test.Code:
		_ = l.target.TestAction(context.Background())
	case b.LeftTest.Valid() && k.Code == b.LeftTest.Code:
		_ = l.target.TestLeftClick(context.Background())
	}
}
