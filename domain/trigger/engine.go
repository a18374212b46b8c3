package trigger

import (
	"context"
	"image"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/soocke/pixel-trigger-go/domain/action"
	"github.com/soocke/pixel-trigger-go/domain/capture"
	"github.com/soocke/pixel-trigger-go/domain/color"
)

// Sampler captures the watched region.
type Sampler interface {
	Sample(r image.Rectangle) (capture.Frame, error)
}

// Executor performs an action.
type Executor interface {
	Execute(ctx context.Context, a action.Action) error
}

// StatusSink receives a snapshot after every tick. Publish must not block.
type StatusSink interface {
	Publish(Snapshot)
}

// failureLogEvery controls how often a sustained failure streak is re-logged.
const failureLogEvery = 100

// Options configures an Engine.
type Options struct {
	State    *State
	Policy   Policy
	Region   image.Rectangle
	Model    color.Model
	Sampler  Sampler
	Executor Executor
	FPS      float64
	Logger   *slog.Logger
	Sinks    []StatusSink
	Now      func() time.Time
}

// Engine runs the sampling loop: capture, classify, decide, act, publish.
// Tick and Run must be called from a single goroutine; State, TestAction and
// TestLeftClick may be used concurrently from others.
type Engine struct {
	state    *State
	policy   Policy
	region   image.Rectangle
	model    color.Model
	sampler  Sampler
	exec     Executor
	period   time.Duration
	logger   *slog.Logger
	sinks    []StatusSink
	now      func() time.Time
	captures streak
	actions  streak
}

// NewEngine builds an Engine. A nil State yields a fresh one.
func NewEngine(o Options) *Engine {
	if o.State == nil {
		o.State = NewState(o.Policy, "")
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &Engine{
		state:   o.State,
		policy:  o.Policy,
		region:  o.Region,
		model:   o.Model,
		sampler: o.Sampler,
		exec:    o.Executor,
		period:  Period(o.FPS),
		logger:  o.Logger,
		sinks:   o.Sinks,
		now:     o.Now,
	}
}

// Period returns the tick period for fps, treating values below 1 as 1.
func Period(fps float64) time.Duration {
	if fps < 1 {
		fps = 1
	}
	return time.Duration(float64(time.Second) / fps)
}

// State returns the shared RunState.
func (e *Engine) State() *State { return e.state }

// Period returns the tick period.
func (e *Engine) Period() time.Duration { return e.period }

// Region returns the watched rectangle.
func (e *Engine) Region() image.Rectangle { return e.region }

// Run ticks at a fixed rate until ctx is done. Ticks that cannot start on time
// are dropped rather than bunched.
func (e *Engine) Run(ctx context.Context) error {
	if e.logger != nil {
		e.logger.Info("sampling loop started", "region", e.region.String(), "period", e.period, "policy", e.policy.Kind.String())
	}
	ticker := time.NewTicker(e.period)
	defer ticker.Stop()
	for {
		e.safeTick(ctx, e.now())
		select {
		case <-ctx.Done():
			if e.logger != nil {
				e.logger.Info("sampling loop stopped", "ticks", e.state.Snapshot().Ticks)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (e *Engine) safeTick(ctx context.Context, now time.Time) {
	defer func() {
		if r := recover(); r != nil && e.logger != nil {
			e.logger.Error("tick panic", "error", r, "stack", string(debug.Stack()))
		}
	}()
	e.Tick(ctx, now)
}

// Tick runs one iteration. A failed capture skips the tick with RunState untouched.
func (e *Engine) Tick(ctx context.Context, now time.Time) {
	enabled := e.state.beginTick()
	matched := false
	if enabled {
		frame, err := e.sampler.Sample(e.region)
		if err != nil {
			e.state.recordCaptureFailure()
			e.captures.fail(e.logger, "capture failed", err)
			e.publish()
			return
		}
		e.captures.ok(e.logger, "capture recovered")
		matched = color.RegionMatches(frame.Pix, frame.Order, e.model)
		capture.Release(frame)
	}

	switch e.policy.Kind {
	case PolicyEdge:
		e.tickEdge(ctx, enabled && matched)
	default:
		e.tickLevel(ctx, enabled && matched, now)
	}
	e.publish()
}

func (e *Engine) tickLevel(ctx context.Context, matched bool, now time.Time) {
	p := e.policy
	s := e.state

	s.mu.Lock()
	var target int
	var notify action.Key
	switch {
	case matched && s.currentValue == p.TargetValue:
		s.indicator = IndicatorActive
		s.mu.Unlock()
		return
	case matched && !s.lastTrigger.IsZero() && now.Sub(s.lastTrigger) < p.Cooldown:
		s.indicator = IndicatorPending
		s.mu.Unlock()
		return
	case matched:
		target, notify = p.TargetValue, p.TargetKey
		s.indicator = IndicatorPending
		s.lastTrigger = now
	case s.currentValue != p.DefaultValue:
		target, notify = p.DefaultValue, p.DefaultKey
		s.indicator = IndicatorIdle
	default:
		s.indicator = IndicatorIdle
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	err := e.exec.Execute(ctx, action.ApplyValue(target))

	s.mu.Lock()
	if err != nil {
		s.actionFailures++
		if target == p.TargetValue && s.indicator == IndicatorPending {
			s.indicator = IndicatorIdle
		}
	} else {
		s.currentValue = target
		s.hasValue = true
		if target == p.TargetValue {
			s.triggerCount++
			s.indicator = IndicatorActive
		} else {
			s.indicator = IndicatorIdle
		}
	}
	s.mu.Unlock()

	if err != nil {
		e.actions.fail(e.logger, "apply value failed", err, "value", target)
		return
	}
	e.actions.ok(e.logger, "apply value recovered")
	if e.logger != nil {
		e.logger.Info("value applied", "value", target)
	}
	if notify.Valid() {
		if kerr := e.exec.Execute(ctx, action.PressKey(notify)); kerr != nil && e.logger != nil {
			e.logger.Warn("notification key failed", "key", notify.String(), "error", kerr)
		}
	}
}

func (e *Engine) tickEdge(ctx context.Context, detected bool) {
	s := e.state
	s.mu.Lock()
	changed := detected != s.detected
	s.detected = detected
	if detected {
		s.indicator = IndicatorActive
	} else {
		s.indicator = IndicatorIdle
	}
	if changed {
		s.triggerCount++
	}
	s.mu.Unlock()
	if !changed {
		return
	}

	if e.logger != nil {
		e.logger.Info("edge", "detected", detected, "action", e.policy.EdgeAction.String())
	}
	if err := e.exec.Execute(ctx, e.policy.EdgeAction); err != nil {
		s.mu.Lock()
		s.actionFailures++
		s.mu.Unlock()
		e.actions.fail(e.logger, "edge action failed", err)
		return
	}
	e.actions.ok(e.logger, "edge action recovered")
}

// Toggle flips enabled on the shared state and logs the new value.
func (e *Engine) Toggle() bool {
	enabled := e.state.Toggle()
	if e.logger != nil {
		e.logger.Info("toggled", "enabled", enabled)
	}
	return enabled
}

// TestAction fires the edge action outside the state machine and counts it.
func (e *Engine) TestAction(ctx context.Context) error {
	e.state.countTest(false)
	err := e.exec.Execute(ctx, e.policy.EdgeAction)
	e.logTest("test action", e.policy.EdgeAction, err)
	return err
}

// TestLeftClick performs a left click outside the state machine and counts it.
func (e *Engine) TestLeftClick(ctx context.Context) error {
	e.state.countTest(true)
	a := action.Click(action.ButtonLeft)
	err := e.exec.Execute(ctx, a)
	e.logTest("left test click", a, err)
	return err
}

func (e *Engine) logTest(msg string, a action.Action, err error) {
	if e.logger == nil {
		return
	}
	if err != nil {
		e.logger.Warn(msg+" failed", "action", a.String(), "error", err)
		return
	}
	e.logger.Info(msg, "action", a.String())
}

func (e *Engine) publish() {
	if len(e.sinks) == 0 {
		return
	}
	snap := e.state.Snapshot()
	for _, sink := range e.sinks {
		sink.Publish(snap)
	}
}

// streak rate-limits logging of a repeating failure: the first failure and every
// failureLogEvery-th are logged, and the recovery once.
type streak struct{ n int }

func (st *streak) fail(logger *slog.Logger, msg string, err error, args ...any) {
	st.n++
	if logger == nil || (st.n != 1 && st.n%failureLogEvery != 0) {
		return
	}
	logger.Warn(msg, append([]any{"error", err, "consecutive", st.n}, args...)...)
}

func (st *streak) ok(logger *slog.Logger, msg string) {
	if st.n > 0 && logger != nil {
		logger.Info(msg, "after", st.n)
	}
	st.n = 0
}
