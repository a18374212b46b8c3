package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Kind enumerates the side effects the executor can perform.
type Kind int

const (
	// KindApplyValue runs the command template with Value substituted.
	KindApplyValue Kind = iota
	// KindPressKey presses and releases Key.
	KindPressKey
	// KindClick presses and releases Button.
	KindClick
)

func (k Kind) String() string {
	switch k {
	case KindApplyValue:
		return "apply_value"
	case KindPressKey:
		return "press_key"
	case KindClick:
		return "click"
	default:
		return "unknown"
	}
}

// Action is a tagged union of the supported side effects.
type Action struct {
	Kind   Kind
	Value  int
	Key    Key
	Button Button
}

// ApplyValue returns an action that applies value through the command template.
func ApplyValue(value int) Action { return Action{Kind: KindApplyValue, Value: value} }

// PressKey returns a key press action.
func PressKey(k Key) Action { return Action{Kind: KindPressKey, Key: k} }

// Click returns a pointer click action.
func Click(b Button) Action { return Action{Kind: KindClick, Button: b} }

func (a Action) String() string {
	switch a.Kind {
	case KindApplyValue:
		return fmt.Sprintf("apply_value(%d)", a.Value)
	case KindPressKey:
		return fmt.Sprintf("press_key(%s)", a.Key)
	case KindClick:
		return fmt.Sprintf("click(%s)", a.Button)
	default:
		return "unknown"
	}
}

const (
	clickHold = 30 * time.Millisecond
	keyHold   = 40 * time.Millisecond
)

// Executor performs actions synchronously. It holds no mutable state and may be
// shared by the sampling loop and the hotkey listener.
type Executor struct {
	runner   CommandRunner
	injector Injector
	template string
	timeout  time.Duration
	logger   *slog.Logger
	sleep    func(time.Duration)
}

// ExecutorOptions configures NewExecutor.
type ExecutorOptions struct {
	Runner   CommandRunner
	Injector Injector
	Template string
	Timeout  time.Duration
	Logger   *slog.Logger
	// Sleep overrides time.Sleep between press and release.
	Sleep func(time.Duration)
}

// NewExecutor constructs an executor. A nil Runner defaults to ShellRunner.
func NewExecutor(opts ExecutorOptions) *Executor {
	e := &Executor{
		runner:   opts.Runner,
		injector: opts.Injector,
		template: opts.Template,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
		sleep:    opts.Sleep,
	}
	if e.runner == nil {
		e.runner = ShellRunner{}
	}
	if e.timeout <= 0 {
		e.timeout = 5 * time.Second
	}
	if e.sleep == nil {
		e.sleep = time.Sleep
	}
	return e
}

// Execute performs a. It blocks until the side effect completes or fails.
func (e *Executor) Execute(ctx context.Context, a Action) error {
	switch a.Kind {
	case KindApplyValue:
		return e.applyValue(ctx, a.Value)
	case KindPressKey:
		return e.pair(InputEvent{Kind: KeyDown, Key: a.Key}, InputEvent{Kind: KeyUp, Key: a.Key}, keyHold, a.String())
	case KindClick:
		return e.pair(InputEvent{Kind: ButtonDown, Button: a.Button}, InputEvent{Kind: ButtonUp, Button: a.Button}, clickHold, a.String())
	default:
		return fmt.Errorf("unknown action kind %d", a.Kind)
	}
}

// applyValue runs the rendered template. A blank template is a successful no-op.
func (e *Executor) applyValue(ctx context.Context, value int) error {
	if e.template == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	line := RenderCommand(e.template, value)
	if err := e.runner.Run(ctx, line); err != nil {
		return err
	}
	if e.logger != nil {
		e.logger.Debug("value command executed", "value", value, "command", line)
	}
	return nil
}

// pair emits press then release. The release is always attempted, even when the
// press was rejected, so a button is never left held down.
func (e *Executor) pair(down, up InputEvent, hold time.Duration, what string) error {
	if e.injector == nil {
		return fmt.Errorf("%s: %w", what, ErrUnsupported)
	}
	_, downErr := e.injector.Send(down)
	if downErr == nil {
		e.sleep(hold)
	}
	_, upErr := e.injector.Send(up)
	switch {
	case downErr == nil && upErr == nil:
		return nil
	case downErr != nil && upErr != nil:
		return fmt.Errorf("%s: %w", what, errors.Join(downErr, upErr))
	default:
		return &PartialClickError{What: what, Pressed: downErr == nil, Released: upErr == nil, Err: errors.Join(downErr, upErr)}
	}
}
