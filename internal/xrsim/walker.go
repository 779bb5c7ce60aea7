package xrsim

import (
	"errors"

	geo "github.com/kellydunn/golang-geo"

	"github.com/signalsfoundry/ar-anchor/model"
)

// ErrNoFix simulates a location source error.
var ErrNoFix = errors.New("xrsim: no gps fix")

// Walker is a scripted location source: starting at a point, each Step
// advances the simulated user StepM metres along BearingDeg and delivers
// the new fix to the subscriber. It drives the engine's tracker exactly the
// way a real continuous location subscription would, one discrete callback
// at a time.
type Walker struct {
	BearingDeg float64
	StepM      float64

	// FailNextUpdates makes that many upcoming Steps deliver an error
	// instead of a fix.
	FailNextUpdates int

	pos       *geo.Point
	onUpdate  func(model.GeoPoint)
	onError   func(error)
	cancelled bool
}

// NewWalker starts a walker at the given coordinate.
func NewWalker(start model.GeoPoint, bearingDeg, stepM float64) *Walker {
	return &Walker{
		BearingDeg: bearingDeg,
		StepM:      stepM,
		pos:        geo.NewPoint(start.LatDeg, start.LonDeg),
	}
}

// Subscribe implements core.LocationProvider. The walker delivers nothing
// until the first Step, matching a real source with no initial fix.
func (w *Walker) Subscribe(onUpdate func(model.GeoPoint), onError func(error)) (cancel func()) {
	w.onUpdate = onUpdate
	w.onError = onError
	return func() { w.cancelled = true }
}

// Step advances the walk and delivers one update (or one error) to the
// subscriber. No-op once the subscription is cancelled.
func (w *Walker) Step() {
	if w.cancelled || w.onUpdate == nil {
		return
	}
	if w.FailNextUpdates > 0 {
		w.FailNextUpdates--
		if w.onError != nil {
			w.onError(ErrNoFix)
		}
		return
	}

	if w.StepM != 0 {
		w.pos = w.pos.PointAtDistanceAndBearing(w.StepM/1000.0, w.BearingDeg)
	}
	w.onUpdate(model.GeoPoint{LatDeg: w.pos.Lat(), LonDeg: w.pos.Lng()})
}

// Position returns the walker's current coordinate.
func (w *Walker) Position() model.GeoPoint {
	return model.GeoPoint{LatDeg: w.pos.Lat(), LonDeg: w.pos.Lng()}
}
