package core

import (
	"context"
	"sync"
	"time"

	"github.com/signalsfoundry/ar-anchor/internal/logging"
	"github.com/signalsfoundry/ar-anchor/model"
)

// Tracker owns the session's continuous location subscription and the
// latest known user coordinate. It is the single writer of that state;
// everything else reads it through Latest.
//
// Updates are last-write-wins with no queuing: only the freshest fix
// matters for proximity checks. A location error never stops the
// subscription; the last good fix stays in effect until a new one arrives
// or the session ends.
type Tracker struct {
	log     logging.Logger
	metrics MetricsRecorder

	mu     sync.RWMutex
	loc    model.UserLocation
	hasFix bool
	cancel func()
}

// NewTracker creates a tracker. A nil logger or metrics recorder is
// replaced with a no-op implementation.
func NewTracker(log logging.Logger, metrics MetricsRecorder) *Tracker {
	if log == nil {
		log = logging.Noop()
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Tracker{log: log, metrics: metrics}
}

// Start subscribes to the location provider. It is called once per session;
// further calls are no-ops.
func (t *Tracker) Start(provider LocationProvider) {
	if provider == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	t.cancel = provider.Subscribe(t.onUpdate, t.onError)
}

// Stop cancels the subscription. Safe to call multiple times.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Latest returns the most recent fix. ok is false until the first
// successful update; callers must treat that as "user position unknown"
// and skip all proximity logic.
func (t *Tracker) Latest() (model.UserLocation, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loc, t.hasFix
}

func (t *Tracker) onUpdate(geo model.GeoPoint) {
	t.mu.Lock()
	t.loc = model.UserLocation{Geo: geo, Timestamp: time.Now()}
	t.hasFix = true
	t.mu.Unlock()

	t.metrics.LocationUpdated()
}

func (t *Tracker) onError(err error) {
	t.metrics.LocationErrored()
	t.log.Warn(context.Background(), "location update failed",
		logging.String("error", err.Error()))
}
