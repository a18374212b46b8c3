package hotkey

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/soocke/pixel-trigger-go/domain/action"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fakeSource struct {
	mu      sync.Mutex
	events  chan<- Event
	err     error
	stopped bool
}

func (f *fakeSource) Start(events chan<- Event) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.events = events
	f.mu.Unlock()
	return nil
}

func (f *fakeSource) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeSource) send(evs ...Event) {
	for _, ev := range evs {
		f.events <- ev
	}
}

type countingTarget struct {
	mu                    sync.Mutex
	enabled               bool
	toggles, tests, lefts int
}

func (c *countingTarget) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toggles++
	c.enabled = !c.enabled
	return c.enabled
}

func (c *countingTarget) TestAction(context.Context) error {
	c.mu.Lock()
	c.tests++
	c.mu.Unlock()
	return nil
}

func (c *countingTarget) TestLeftClick(context.Context) error {
	c.mu.Lock()
	c.lefts++
	c.mu.Unlock()
	return errors.New("rejected")
}

func (c *countingTarget) counts() (int, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toggles, c.tests, c.lefts
}

var testBindings = Bindings{
	Toggle:   action.MustParseKey("f8"),
	Test:     action.MustParseKey("f9"),
	LeftTest: action.MustParseKey("f10"),
}

func press(k action.Key) []Event { return []Event{{Key: k, Down: true}, {Key: k}} }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestListener_DispatchesBindings(t *testing.T) {
	src := &fakeSource{}
	tgt := &countingTarget{}
	l := NewListener(testBindings, src, tgt, discardLogger())
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()
	src.send(press(testBindings.Toggle)...)
	src.send(press(testBindings.Test)...)
	src.send(press(testBindings.LeftTest)...)
	src.send(press(action.MustParseKey("a"))...)
	waitFor(t, func() bool {
		a, b, c := tgt.counts()
		return a == 1 && b == 1 && c == 1
	})
}

func TestListener_SuppressesAutoRepeat(t *testing.T) {
	src := &fakeSource{}
	tgt := &countingTarget{}
	l := NewListener(testBindings, src, tgt, nil)
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()
	k := testBindings.Toggle
	src.send(Event{Key: k, Down: true}, Event{Key: k, Down: true}, Event{Key: k, Down: true}, Event{Key: k})
	src.send(press(k)...)
	src.send(press(testBindings.Test)...) // sentinel: processed after the toggles
	waitFor(t, func() bool { _, b, _ := tgt.counts(); return b == 1 })
	if a, _, _ := tgt.counts(); a != 2 {
		t.Fatalf("expected 2 toggles, got %d", a)
	}
}

func TestListener_IgnoresInjected(t *testing.T) {
	src := &fakeSource{}
	tgt := &countingTarget{}
	l := NewListener(testBindings, src, tgt, nil)
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()
	src.send(Event{Key: testBindings.Toggle, Down: true, Injected: true}, Event{Key: testBindings.Toggle, Injected: true})
	src.send(press(testBindings.Test)...)
	waitFor(t, func() bool { _, b, _ := tgt.counts(); return b == 1 })
	if a, _, _ := tgt.counts(); a != 0 {
		t.Fatalf("injected key toggled %d times", a)
	}
}

func TestListener_StartFailureIsReturned(t *testing.T) {
	boom := errors.New("hook refused")
	l := NewListener(testBindings, &fakeSource{err: boom}, &countingTarget{}, nil)
	if err := l.Start(); !errors.Is(err, boom) {
		t.Fatalf("expected registration error, got %v", err)
	}
	l.Stop() // no-op
}

func TestListener_DoubleStartAndStop(t *testing.T) {
	src := &fakeSource{}
	l := NewListener(testBindings, src, &countingTarget{}, nil)
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}
	if err := l.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
	l.Stop()
	l.Stop()
	src.mu.Lock()
	defer src.mu.Unlock()
	if !src.stopped {
		t.Fatal("source not stopped")
	}
}

func TestListener_ToggleDuringSlowTest(t *testing.T) {
	src := &fakeSource{}
	tgt := &countingTarget{}
	l := NewListener(testBindings, src, tgt, nil)
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()
	for i := 0; i < 10; i++ {
		src.send(press(testBindings.Toggle)...)
	}
	waitFor(t, func() bool { a, _, _ := tgt.counts(); return a == 10 })
	tgt.mu.Lock()
	defer tgt.mu.Unlock()
	if tgt.enabled {
		t.Fatal("even number of toggles must restore the initial value")
	}
}

func TestLineSource_EmitsPressAndRelease(t *testing.T) {
	src := NewLineSource(strings.NewReader("f8\n\nnot-a-key\nF9\n"), discardLogger())
	tgt := &countingTarget{}
	l := NewListener(testBindings, src, tgt, nil)
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()
	waitFor(t, func() bool {
		a, b, _ := tgt.counts()
		return a == 1 && b == 1
	})
}
