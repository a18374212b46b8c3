package capture

import (
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// Sampler captures a fixed region on demand and keeps instrumentation counters.
// Sample is called from the tick goroutine; Stats may be read from any goroutine.
type Sampler struct {
	capturer     Capturer
	logger       *slog.Logger
	captures     atomic.Uint64
	failures     atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64
	lastCapture  atomic.Int64 // unix nanos
}

// NewSampler wraps capturer.
func NewSampler(capturer Capturer, logger *slog.Logger) *Sampler {
	return &Sampler{capturer: capturer, logger: logger}
}

// Sample captures r. Any failure, including a panic inside the backend or an empty
// buffer, is returned as an error wrapping ErrCaptureFailed.
func (s *Sampler) Sample(r image.Rectangle) (f Frame, err error) {
	if s == nil || s.capturer == nil {
		return Frame{}, fmt.Errorf("%w: no capturer", ErrCaptureFailed)
	}
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			if s.logger != nil {
				s.logger.Error("capture panic", "error", rec, "stack", string(debug.Stack()))
			}
			f, err = Frame{}, fmt.Errorf("%w: panic: %v", ErrCaptureFailed, rec)
		}
		if err != nil {
			s.failures.Add(1)
			return
		}
		s.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
		s.captures.Add(1)
		f.Sequence = s.sequence.Add(1)
		s.lastCapture.Store(f.CapturedAt.UnixNano())
	}()
	f, err = s.capturer.Capture(r)
	if err == nil && f.Empty() {
		err = fmt.Errorf("%w: empty frame", ErrCaptureFailed)
	}
	if f.CapturedAt.IsZero() {
		f.CapturedAt = time.Now()
	}
	return f, err
}

// Stats returns a snapshot of the counters.
func (s *Sampler) Stats() Stats {
	captures := s.captures.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	var last time.Time
	if ns := s.lastCapture.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}
	return Stats{
		Captures:         captures,
		Failures:         s.failures.Load(),
		AvgCapture:       avg,
		AvgCaptureMicros: avgMicros,
		LastCapture:      last,
		Sequence:         s.sequence.Load(),
	}
}
