package framectrl

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Mode describes how the FramePacer advances frames.
type Mode int

const (
	// RealTime paces frames against wall-clock time at the configured
	// interval, approximating a display refresh callback.
	RealTime Mode = iota
	// Accelerated delivers frames back-to-back as fast as the loop runs,
	// advancing the frame timestamp by the interval each time. Useful for
	// headless runs and replays.
	Accelerated
)

// FramePacer stands in for the external engine's per-frame callback when
// the engine runs headless: it invokes registered listeners once per frame
// at a display-style cadence.
//
// The clock is injectable so tests can step time deterministically.
type FramePacer struct {
	Interval time.Duration
	Mode     Mode

	clk clock.Clock

	mu        sync.RWMutex
	frame     int
	listeners []func(frame int, now time.Time)
}

// NewFramePacer constructs a pacer on the system clock.
func NewFramePacer(interval time.Duration, mode Mode) *FramePacer {
	return NewFramePacerWithClock(interval, mode, clock.New())
}

// NewFramePacerWithClock constructs a pacer on the provided clock.
func NewFramePacerWithClock(interval time.Duration, mode Mode, clk clock.Clock) *FramePacer {
	return &FramePacer{Interval: interval, Mode: mode, clk: clk}
}

// AddListener registers a callback invoked on every frame. Listeners are
// called in registration order on the pacer's goroutine.
func (fp *FramePacer) AddListener(fn func(frame int, now time.Time)) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.listeners = append(fp.listeners, fn)
}

// FrameCount returns the number of frames delivered so far.
func (fp *FramePacer) FrameCount() int {
	fp.mu.RLock()
	defer fp.mu.RUnlock()
	return fp.frame
}

// Start runs the pacer for the given duration in a separate goroutine and
// returns a channel closed when it finishes. A non-positive duration in
// Accelerated mode delivers no frames.
func (fp *FramePacer) Start(duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		switch fp.Mode {
		case Accelerated:
			fp.runAccelerated(duration)
		default:
			fp.runRealTime(duration)
		}
	}()
	return done
}

func (fp *FramePacer) runRealTime(duration time.Duration) {
	ticker := fp.clk.Ticker(fp.Interval)
	defer ticker.Stop()

	elapsed := time.Duration(0)
	for {
		if duration > 0 && elapsed >= duration {
			return
		}
		now := <-ticker.C
		elapsed += fp.Interval
		fp.deliver(now)
	}
}

func (fp *FramePacer) runAccelerated(duration time.Duration) {
	frames := int(duration / fp.Interval)
	now := fp.clk.Now()
	for i := 0; i < frames; i++ {
		now = now.Add(fp.Interval)
		fp.deliver(now)
	}
}

func (fp *FramePacer) deliver(now time.Time) {
	fp.mu.Lock()
	fp.frame++
	frame := fp.frame
	listeners := fp.listeners
	fp.mu.Unlock()

	for _, fn := range listeners {
		fn(frame, now)
	}
}
