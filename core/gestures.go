package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// GestureController applies continuous two-finger scale/rotate adjustments
// to a placed object, independent of the placement state machine.
//
// The first sample with two contact points establishes the baseline
// (reference distance, reference angle, and the object's scale and
// orientation at that instant). Subsequent samples apply the distance ratio
// multiplicatively to the baseline scale and the angle delta additively to
// the baseline rotation about the vertical axis. Dropping below two contact
// points resets the baseline, so the next two-finger gesture starts fresh
// instead of jumping.
type GestureController struct {
	target        RenderTarget
	scaleEnabled  bool
	rotateEnabled bool

	tracking        bool
	baseDistance    float64
	baseAngle       float64
	baseScale       float64
	baseOrientation mgl64.Quat
}

// NewGestureController builds a controller for the given render target.
// Returns nil when both gestures are disabled.
func NewGestureController(target RenderTarget, scaleEnabled, rotateEnabled bool) *GestureController {
	if target == nil || (!scaleEnabled && !rotateEnabled) {
		return nil
	}
	return &GestureController{
		target:        target,
		scaleEnabled:  scaleEnabled,
		rotateEnabled: rotateEnabled,
	}
}

// Tracking reports whether a two-finger baseline is currently established.
func (gc *GestureController) Tracking() bool { return gc.tracking }

// OnTouches consumes one touch sample. Only the first two contact points
// participate; extra fingers are ignored.
func (gc *GestureController) OnTouches(points []TouchPoint) {
	if gc == nil {
		return
	}
	if len(points) < 2 {
		gc.tracking = false
		return
	}

	dx := points[1].X - points[0].X
	dy := points[1].Y - points[0].Y
	distance := math.Hypot(dx, dy)
	angle := math.Atan2(dy, dx)

	if !gc.tracking {
		gc.tracking = true
		gc.baseDistance = distance
		gc.baseAngle = angle
		gc.baseScale = gc.target.Scale()
		gc.baseOrientation = gc.target.Orientation()
		return
	}

	if gc.scaleEnabled && gc.baseDistance > 0 {
		gc.target.SetScale(gc.baseScale * distance / gc.baseDistance)
	}
	if gc.rotateEnabled {
		delta := angle - gc.baseAngle
		yaw := mgl64.QuatRotate(delta, mgl64.Vec3{0, 1, 0})
		gc.target.SetOrientation(yaw.Mul(gc.baseOrientation))
	}
}
