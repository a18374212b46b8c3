package trigger

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/soocke/pixel-trigger-go/domain/action"
	"github.com/soocke/pixel-trigger-go/domain/capture"
	"github.com/soocke/pixel-trigger-go/domain/color"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

var goldModel = color.Model{HueMin: 35, HueMax: 60, SatMin: 0.4, ValMin: 0.4}

// scriptSampler returns a gold frame for true and a gray frame for false. An
// exhausted script keeps returning the last entry. Entries listed in fail error out.
type scriptSampler struct {
	mu     sync.Mutex
	script []bool
	fail   map[int]bool
	calls  int
}

func (s *scriptSampler) Sample(r image.Rectangle) (capture.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if s.fail[i] {
		return capture.Frame{}, capture.ErrCaptureFailed
	}
	hit := false
	if len(s.script) > 0 {
		if i < len(s.script) {
			hit = s.script[i]
		} else {
			hit = s.script[len(s.script)-1]
		}
	}
	px := []byte{128, 128, 128, 255}
	if hit {
		px = []byte{0, 215, 255, 255} // BGRA gold
	}
	pix := make([]byte, 0, 4*4)
	for k := 0; k < 4; k++ {
		pix = append(pix, px...)
	}
	return capture.Frame{Pix: pix, Order: color.OrderBGRA, Width: 2, Height: 2}, nil
}

type recordingExecutor struct {
	mu      sync.Mutex
	actions []action.Action
	errFor  func(action.Action) error
}

func (r *recordingExecutor) Execute(_ context.Context, a action.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
	if r.errFor != nil {
		return r.errFor(a)
	}
	return nil
}

func (r *recordingExecutor) recorded() []action.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]action.Action(nil), r.actions...)
}

func (r *recordingExecutor) values() []int {
	var out []int
	for _, a := range r.recorded() {
		if a.Kind == action.KindApplyValue {
			out = append(out, a.Value)
		}
	}
	return out
}

type captureSink struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (c *captureSink) Publish(s Snapshot) {
	c.mu.Lock()
	c.snaps = append(c.snaps, s)
	c.mu.Unlock()
}

const tick = 10 * time.Millisecond

func newLevelEngine(s Sampler, ex Executor, cooldown time.Duration) *Engine {
	return NewEngine(Options{
		Policy:   LevelTriggered(cooldown, 2000, 500),
		Region:   image.Rect(0, 0, 2, 2),
		Model:    goldModel,
		Sampler:  s,
		Executor: ex,
		FPS:      100,
		Logger:   discardLogger(),
	})
}

func newEdgeEngine(s Sampler, ex Executor) *Engine {
	return NewEngine(Options{
		Policy:   EdgeTriggered(action.Click(action.ButtonLeft)),
		Region:   image.Rect(0, 0, 2, 2),
		Model:    goldModel,
		Sampler:  s,
		Executor: ex,
		FPS:      100,
		Logger:   discardLogger(),
	})
}

func runTicks(e *Engine, n int) {
	start := time.Unix(1000, 0)
	for i := 0; i < n; i++ {
		e.Tick(context.Background(), start.Add(time.Duration(i)*tick))
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLevel_SwitchesOncePerRunWithinCooldown(t *testing.T) {
	ex := &recordingExecutor{}
	e := newLevelEngine(&scriptSampler{script: []bool{true, true, false, true}}, ex, time.Second)
	runTicks(e, 4)
	if got := ex.values(); !equalInts(got, []int{500, 2000}) {
		t.Fatalf("unexpected values %v", got)
	}
	snap := e.State().Snapshot()
	if snap.CurrentValue != 2000 || snap.Indicator != IndicatorPending {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.TriggerCount != 1 {
		t.Fatalf("trigger count %d", snap.TriggerCount)
	}
}

func TestLevel_ReentersAfterCooldown(t *testing.T) {
	ex := &recordingExecutor{}
	e := newLevelEngine(&scriptSampler{script: []bool{true, true, false, true}}, ex, tick)
	runTicks(e, 4)
	if got := ex.values(); !equalInts(got, []int{500, 2000, 500}) {
		t.Fatalf("unexpected values %v", got)
	}
	snap := e.State().Snapshot()
	if snap.CurrentValue != 500 || snap.Indicator != IndicatorActive {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestLevel_IdempotentAtTarget(t *testing.T) {
	ex := &recordingExecutor{}
	e := newLevelEngine(&scriptSampler{script: []bool{true}}, ex, 0)
	runTicks(e, 20)
	if got := ex.values(); !equalInts(got, []int{500}) {
		t.Fatalf("expected a single switch, got %v", got)
	}
}

func TestLevel_IdleNeverActs(t *testing.T) {
	ex := &recordingExecutor{}
	e := newLevelEngine(&scriptSampler{script: []bool{false}}, ex, 0)
	runTicks(e, 10)
	if len(ex.recorded()) != 0 {
		t.Fatalf("unexpected actions %v", ex.recorded())
	}
	if e.State().Snapshot().Indicator != IndicatorIdle {
		t.Fatal("expected idle")
	}
}

func TestLevel_DisabledRevertsAndSkipsCapture(t *testing.T) {
	ex := &recordingExecutor{}
	s := &scriptSampler{script: []bool{true}}
	e := newLevelEngine(s, ex, 0)
	runTicks(e, 1)
	e.State().SetEnabled(false)
	runTicks(e, 3)
	if got := ex.values(); !equalInts(got, []int{500, 2000}) {
		t.Fatalf("unexpected values %v", got)
	}
	if s.calls != 1 {
		t.Fatalf("expected no capture while disabled, got %d calls", s.calls)
	}
}

func TestLevel_FailedSwitchLeavesValueAndRetriesAfterCooldown(t *testing.T) {
	fail := true
	ex := &recordingExecutor{errFor: func(a action.Action) error {
		if fail {
			return errors.New("exit status 1")
		}
		return nil
	}}
	e := newLevelEngine(&scriptSampler{script: []bool{true}}, ex, 2*tick)
	runTicks(e, 1)
	snap := e.State().Snapshot()
	if snap.CurrentValue != 2000 || snap.ActionFailures != 1 {
		t.Fatalf("failed switch must not update value: %+v", snap)
	}
	fail = false
	// t=10ms is inside the cooldown, t=20ms is not
	e.Tick(context.Background(), time.Unix(1000, 0).Add(tick))
	if n := len(ex.values()); n != 1 {
		t.Fatalf("retry inside cooldown: %d attempts", n)
	}
	e.Tick(context.Background(), time.Unix(1000, 0).Add(2*tick))
	if got := ex.values(); !equalInts(got, []int{500, 500}) {
		t.Fatalf("unexpected attempts %v", got)
	}
	if e.State().Snapshot().CurrentValue != 500 {
		t.Fatal("expected target after retry")
	}
}

func TestLevel_NotificationKeys(t *testing.T) {
	ex := &recordingExecutor{}
	p := LevelTriggered(0, 2000, 500)
	p.TargetKey = action.MustParseKey("f20")
	p.DefaultKey = action.MustParseKey("f21")
	e := NewEngine(Options{Policy: p, Model: goldModel, Sampler: &scriptSampler{script: []bool{true, false}}, Executor: ex, FPS: 100})
	runTicks(e, 2)
	got := ex.recorded()
	if len(got) != 4 {
		t.Fatalf("expected 4 actions, got %v", got)
	}
	if got[1].Kind != action.KindPressKey || got[1].Key.Name != "f20" {
		t.Fatalf("expected f20 after target, got %v", got[1])
	}
	if got[3].Kind != action.KindPressKey || got[3].Key.Name != "f21" {
		t.Fatalf("expected f21 after default, got %v", got[3])
	}
}

func TestEdge_FiresOnEveryTransition(t *testing.T) {
	ex := &recordingExecutor{}
	e := newEdgeEngine(&scriptSampler{script: []bool{false, true, true, false, true}}, ex)
	runTicks(e, 5)
	if n := len(ex.recorded()); n != 3 {
		t.Fatalf("expected 3 actions, got %d", n)
	}
	snap := e.State().Snapshot()
	if snap.TriggerCount != 3 || !snap.Detected || snap.Indicator != IndicatorActive {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestEdge_DisableWhileDetectedFiresOnce(t *testing.T) {
	ex := &recordingExecutor{}
	e := newEdgeEngine(&scriptSampler{script: []bool{true}}, ex)
	runTicks(e, 2)
	e.State().Toggle()
	runTicks(e, 3)
	if n := len(ex.recorded()); n != 2 {
		t.Fatalf("expected 2 actions, got %d", n)
	}
	if e.State().Snapshot().Detected {
		t.Fatal("expected detected cleared while disabled")
	}
}

func TestEdge_CaptureFailureSkipsTick(t *testing.T) {
	ex := &recordingExecutor{}
	s := &scriptSampler{script: []bool{false, false, true}, fail: map[int]bool{1: true}}
	e := newEdgeEngine(s, ex)
	runTicks(e, 3)
	if n := len(ex.recorded()); n != 1 {
		t.Fatalf("expected exactly one action, got %d", n)
	}
	snap := e.State().Snapshot()
	if snap.TriggerCount != 1 || snap.CaptureFailures != 1 || snap.Ticks != 3 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestLevel_CaptureFailureKeepsTarget(t *testing.T) {
	ex := &recordingExecutor{}
	s := &scriptSampler{script: []bool{true}, fail: map[int]bool{1: true, 2: true}}
	e := newLevelEngine(s, ex, 0)
	runTicks(e, 3)
	if got := ex.values(); !equalInts(got, []int{500}) {
		t.Fatalf("failed capture must not revert: %v", got)
	}
}

func TestEdge_FailedActionStillCounts(t *testing.T) {
	ex := &recordingExecutor{errFor: func(action.Action) error { return action.ErrInjectRejected }}
	e := newEdgeEngine(&scriptSampler{script: []bool{true}}, ex)
	runTicks(e, 3)
	snap := e.State().Snapshot()
	if snap.TriggerCount != 1 || snap.ActionFailures != 1 || !snap.Detected {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestTestActions_BypassStateMachine(t *testing.T) {
	ex := &recordingExecutor{}
	e := newEdgeEngine(&scriptSampler{script: []bool{false}}, ex)
	if err := e.TestAction(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := e.TestLeftClick(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap := e.State().Snapshot()
	if snap.TestCount != 1 || snap.LeftTestCount != 1 || snap.TriggerCount != 0 || snap.Detected {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	got := ex.recorded()
	if len(got) != 2 || got[1].Kind != action.KindClick || got[1].Button != action.ButtonLeft {
		t.Fatalf("unexpected actions %v", got)
	}
}

func TestSinksReceiveEveryTick(t *testing.T) {
	sink := &captureSink{}
	e := NewEngine(Options{
		Policy:   EdgeTriggered(action.Click(action.ButtonLeft)),
		Model:    goldModel,
		Sampler:  &scriptSampler{script: []bool{true}, fail: map[int]bool{1: true}},
		Executor: &recordingExecutor{},
		Sinks:    []StatusSink{sink},
	})
	runTicks(e, 3)
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(sink.snaps))
	}
	if !sink.snaps[0].Detected {
		t.Fatal("first snapshot should show detection")
	}
}

func TestPeriod(t *testing.T) {
	if Period(100) != 10*time.Millisecond {
		t.Fatalf("got %v", Period(100))
	}
	if Period(0) != time.Second || Period(-5) != time.Second {
		t.Fatal("fps below 1 must clamp to 1")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := &scriptSampler{script: []bool{false}}
	e := NewEngine(Options{Policy: EdgeTriggered(action.Click(action.ButtonLeft)), Model: goldModel, Sampler: s, Executor: &recordingExecutor{}, FPS: 1000})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	deadline := time.Now().Add(2 * time.Second)
	for e.State().Snapshot().Ticks < 3 {
		if time.Now().After(deadline) {
			t.Fatal("loop did not tick")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("unexpected error %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

type panicSampler struct{}

func (panicSampler) Sample(image.Rectangle) (capture.Frame, error) { panic("boom") }

func TestRun_SurvivesTickPanic(t *testing.T) {
	e := NewEngine(Options{Policy: EdgeTriggered(action.Click(action.ButtonLeft)), Model: goldModel, Sampler: panicSampler{}, Executor: &recordingExecutor{}, FPS: 1000, Logger: discardLogger()})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	deadline := time.Now().Add(2 * time.Second)
	for e.State().Snapshot().Ticks < 3 {
		if time.Now().After(deadline) {
			t.Fatal("loop died after panic")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done
}

func TestToggleInterleavingIsConsistent(t *testing.T) {
	ex := &recordingExecutor{}
	e := newEdgeEngine(&scriptSampler{script: []bool{true}}, ex)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.Run(ctx)
	}()

	const toggles = 201
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < toggles; i++ {
			e.State().Toggle()
			time.Sleep(50 * time.Microsecond)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			snap := e.State().Snapshot()
			if snap.Detected && snap.Indicator != IndicatorActive {
				t.Errorf("torn snapshot %+v", snap)
				return
			}
		}
	}()
	wg.Wait()
	cancel()
	<-done

	snap := e.State().Snapshot()
	if snap.Enabled {
		t.Fatal("odd number of toggles must leave the loop disabled")
	}
	if int(snap.TriggerCount) != len(ex.recorded()) {
		t.Fatalf("trigger count %d but %d actions", snap.TriggerCount, len(ex.recorded()))
	}
}

func TestStatusText(t *testing.T) {
	level := Snapshot{Policy: PolicyLevel, Enabled: true, CurrentValue: 2000, HasValue: true}
	if got := level.StatusText(); got != "Enable: ON\nCurrent value: 2000" {
		t.Fatalf("got %q", got)
	}
	edge := Snapshot{Policy: PolicyEdge, Detected: true, TriggerCount: 4, TestCount: 1}
	want := "Enable: OFF\nDetected: yes\nTriggers: 4\nTests: 1  Left tests: 0"
	if got := edge.StatusText(); got != want {
		t.Fatalf("got %q", got)
	}
}
