package action

import (
	"errors"
	"fmt"
)

// EventKind enumerates synthetic input events.
type EventKind int

const (
	KeyDown EventKind = iota
	KeyUp
	ButtonDown
	ButtonUp
)

func (k EventKind) String() string {
	switch k {
	case KeyDown:
		return "key_down"
	case KeyUp:
		return "key_up"
	case ButtonDown:
		return "button_down"
	case ButtonUp:
		return "button_up"
	default:
		return "unknown"
	}
}

// InputEvent is one press or release.
type InputEvent struct {
	Kind   EventKind
	Key    Key
	Button Button
}

var (
	// ErrInjectRejected means neither the primary nor the fallback mechanism accepted an event.
	ErrInjectRejected = errors.New("input event rejected")
	// ErrUnsupported is returned by platform facilities missing on this OS.
	ErrUnsupported = errors.New("not supported on this platform")
)

// Injector delivers a synthetic input event and returns how many events the OS accepted.
type Injector interface {
	Name() string
	Send(ev InputEvent) (int, error)
}

// LayeredInjector tries Primary first and falls back to Fallback when Primary accepts
// zero events or errors.
type LayeredInjector struct {
	Primary  Injector
	Fallback Injector
}

func (l *LayeredInjector) Name() string {
	return fmt.Sprintf("%s+%s", nameOf(l.Primary), nameOf(l.Fallback))
}

func nameOf(i Injector) string {
	if i == nil {
		return "none"
	}
	return i.Name()
}

// Send implements Injector.
func (l *LayeredInjector) Send(ev InputEvent) (int, error) {
	var errs []error
	for _, inj := range []Injector{l.Primary, l.Fallback} {
		if inj == nil {
			continue
		}
		n, err := inj.Send(ev)
		if err == nil && n > 0 {
			return n, nil
		}
		if err == nil {
			err = fmt.Errorf("%s accepted no events", inj.Name())
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no injector configured"))
	}
	return 0, fmt.Errorf("%w: %s via %s: %w", ErrInjectRejected, ev.Kind, l.Name(), errors.Join(errs...))
}

// PartialClickError reports a press/release pair where exactly one half was accepted.
type PartialClickError struct {
	What     string
	Pressed  bool
	Released bool
	Err      error
}

func (e *PartialClickError) Error() string {
	return fmt.Sprintf("partial %s: pressed=%t released=%t: %v", e.What, e.Pressed, e.Released, e.Err)
}

func (e *PartialClickError) Unwrap() error { return e.Err }
