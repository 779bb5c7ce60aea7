package core

// MetricsRecorder is the seam between the engine and the observability
// layer. The frame loop drives it directly from controller code; the
// Prometheus collector in internal/observability satisfies it.
type MetricsRecorder interface {
	FrameProcessed(mode string, seconds float64)
	HitTestObserved(found bool)
	AnchorCreateRequested()
	AnchorCreated()
	AnchorCreateFailed()
	AnchorReleased()
	SetActiveAnchors(n int)
	LocationUpdated()
	LocationErrored()
}

// NoopMetrics drops all recordings. Used by tests and as the default when
// no collector is wired.
type NoopMetrics struct{}

func (NoopMetrics) FrameProcessed(string, float64) {}
func (NoopMetrics) HitTestObserved(bool)           {}
func (NoopMetrics) AnchorCreateRequested()         {}
func (NoopMetrics) AnchorCreated()                 {}
func (NoopMetrics) AnchorCreateFailed()            {}
func (NoopMetrics) AnchorReleased()                {}
func (NoopMetrics) SetActiveAnchors(int)           {}
func (NoopMetrics) LocationUpdated()               {}
func (NoopMetrics) LocationErrored()               {}
