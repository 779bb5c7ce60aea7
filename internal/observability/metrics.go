package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineCollector bundles Prometheus metrics for the anchoring engine and
// satisfies the engine's MetricsRecorder seam, so controllers drive gauge
// and counter values directly from the frame loop.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	Frames         *prometheus.CounterVec
	FrameDurations *prometheus.HistogramVec
	HitTests       *prometheus.CounterVec

	AnchorCreateRequests prometheus.Counter
	AnchorCreates        prometheus.Counter
	AnchorCreateFailures prometheus.Counter
	AnchorReleases       prometheus.Counter
	AnchorsActive        prometheus.Gauge

	LocationUpdates prometheus.Counter
	LocationErrors  prometheus.Counter
}

// NewEngineCollector registers engine Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	frames := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ar_frames_total",
		Help: "Total number of tracking frames processed, labeled by placement mode.",
	}, []string{"mode"})
	frames, err := registerCounterVec(reg, frames, "ar_frames_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ar_frame_duration_seconds",
		Help:    "Per-frame engine processing time in seconds.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
	}, []string{"mode"})
	durations, err = registerHistogramVec(reg, durations, "ar_frame_duration_seconds")
	if err != nil {
		return nil, err
	}

	hitTests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ar_hit_tests_total",
		Help: "Hit-test queries consumed, labeled by whether a surface was found.",
	}, []string{"result"})
	hitTests, err = registerCounterVec(reg, hitTests, "ar_hit_tests_total")
	if err != nil {
		return nil, err
	}

	createRequests, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ar_anchor_create_requests_total",
		Help: "Anchor creation requests issued to the tracking session.",
	}), "ar_anchor_create_requests_total")
	if err != nil {
		return nil, err
	}
	creates, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ar_anchor_creates_total",
		Help: "Anchor creations that resolved successfully.",
	}), "ar_anchor_creates_total")
	if err != nil {
		return nil, err
	}
	createFailures, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ar_anchor_create_failures_total",
		Help: "Anchor creations rejected by the tracking session.",
	}), "ar_anchor_create_failures_total")
	if err != nil {
		return nil, err
	}
	releases, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ar_anchor_releases_total",
		Help: "Anchor release requests issued (best-effort).",
	}), "ar_anchor_releases_total")
	if err != nil {
		return nil, err
	}
	active, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ar_anchors_active",
		Help: "Number of objects currently bound to a live anchor.",
	}), "ar_anchors_active")
	if err != nil {
		return nil, err
	}

	locUpdates, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ar_location_updates_total",
		Help: "GPS fixes accepted by the tracker.",
	}), "ar_location_updates_total")
	if err != nil {
		return nil, err
	}
	locErrors, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ar_location_errors_total",
		Help: "Location subscription errors (logged, non-fatal).",
	}), "ar_location_errors_total")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:             gatherer,
		Frames:               frames,
		FrameDurations:       durations,
		HitTests:             hitTests,
		AnchorCreateRequests: createRequests,
		AnchorCreates:        creates,
		AnchorCreateFailures: createFailures,
		AnchorReleases:       releases,
		AnchorsActive:        active,
		LocationUpdates:      locUpdates,
		LocationErrors:       locErrors,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ---- MetricsRecorder implementation ----

func (c *EngineCollector) FrameProcessed(mode string, seconds float64) {
	if c == nil {
		return
	}
	if c.Frames != nil {
		c.Frames.WithLabelValues(mode).Inc()
	}
	if c.FrameDurations != nil {
		c.FrameDurations.WithLabelValues(mode).Observe(seconds)
	}
}

func (c *EngineCollector) HitTestObserved(found bool) {
	if c == nil || c.HitTests == nil {
		return
	}
	result := "none"
	if found {
		result = "surface"
	}
	c.HitTests.WithLabelValues(result).Inc()
}

func (c *EngineCollector) AnchorCreateRequested() {
	if c != nil && c.AnchorCreateRequests != nil {
		c.AnchorCreateRequests.Inc()
	}
}

func (c *EngineCollector) AnchorCreated() {
	if c != nil && c.AnchorCreates != nil {
		c.AnchorCreates.Inc()
	}
}

func (c *EngineCollector) AnchorCreateFailed() {
	if c != nil && c.AnchorCreateFailures != nil {
		c.AnchorCreateFailures.Inc()
	}
}

func (c *EngineCollector) AnchorReleased() {
	if c != nil && c.AnchorReleases != nil {
		c.AnchorReleases.Inc()
	}
}

func (c *EngineCollector) SetActiveAnchors(n int) {
	if c != nil && c.AnchorsActive != nil {
		c.AnchorsActive.Set(float64(n))
	}
}

func (c *EngineCollector) LocationUpdated() {
	if c != nil && c.LocationUpdates != nil {
		c.LocationUpdates.Inc()
	}
}

func (c *EngineCollector) LocationErrored() {
	if c != nil && c.LocationErrors != nil {
		c.LocationErrors.Inc()
	}
}

// ---- registration helpers ----

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
