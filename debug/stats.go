package debug

// Periodic runtime and trigger stats logger. Started only when config.Debug is true.
// Goroutine count, stack and heap usage and the resident set are logged next to the
// sampler and trigger counters, so a slow leak can be told apart from a busy loop.

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/soocke/pixel-trigger-go/domain/capture"
	"github.com/soocke/pixel-trigger-go/domain/trigger"
)

// SamplerStats exposes capture counters.
type SamplerStats interface{ Stats() capture.Stats }

// SnapshotSource exposes the trigger state.
type SnapshotSource interface{ Snapshot() trigger.Snapshot }

// StatsLogger collects one stats record per interval.
type StatsLogger struct {
	Interval time.Duration
	Logger   *slog.Logger
	Sampler  SamplerStats
	State    SnapshotSource

	rssErrLogged bool
}

// Start logs until ctx is done.
func (l *StatsLogger) Start(ctx context.Context) {
	if l == nil || l.Logger == nil {
		return
	}
	interval := l.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Logger.LogAttrs(ctx, slog.LevelInfo, "stats", l.Collect()...)
			}
		}
	}()
}

// Collect gathers one record.
func (l *StatsLogger) Collect() []slog.Attr {
	samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
	metrics.Read(samples)
	var goroutines uint64
	if samples[0].Value.Kind() == metrics.KindUint64 {
		goroutines = samples[0].Value.Uint64()
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	attrs := []slog.Attr{
		slog.Uint64("goroutines", goroutines),
		slog.Uint64("stack_inuse", ms.StackInuse),
		slog.Uint64("heap_alloc", ms.HeapAlloc),
		slog.Uint64("heap_inuse", ms.HeapInuse),
		slog.Uint64("num_gc", uint64(ms.NumGC)),
	}
	if rss, err := residentSetSize(); err == nil {
		attrs = append(attrs, slog.Uint64("rss", rss))
	} else if !l.rssErrLogged && l.Logger != nil {
		l.Logger.Debug("rss unavailable", "error", err)
		l.rssErrLogged = true
	}
	if l.Sampler != nil {
		s := l.Sampler.Stats()
		attrs = append(attrs, slog.Group("capture",
			slog.Uint64("captures", s.Captures),
			slog.Uint64("failures", s.Failures),
			slog.Float64("avg_us", s.AvgCaptureMicros),
		))
	}
	if l.State != nil {
		s := l.State.Snapshot()
		attrs = append(attrs, slog.Group("trigger",
			slog.Bool("enabled", s.Enabled),
			slog.String("indicator", s.Indicator.String()),
			slog.Uint64("ticks", s.Ticks),
			slog.Uint64("triggers", s.TriggerCount),
			slog.Uint64("capture_failures", s.CaptureFailures),
			slog.Uint64("action_failures", s.ActionFailures),
		))
	}
	return attrs
}
