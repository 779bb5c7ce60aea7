package core

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/ar-anchor/model"
)

// This file pins down the boundary with the external rendering and tracking
// engine. The engine owns the render loop, the scene graph, and the tracking
// session; this package only consumes frames and mutates render targets.

// Pose is a position plus orientation in some reference space.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// IdentityPose returns a pose at the origin with no rotation.
func IdentityPose() Pose {
	return Pose{Orientation: mgl64.QuatIdent()}
}

// HitResult is a single surface hit returned by the tracking session's
// hit-test query: the pose of the point where the probe ray met a detected
// real-world surface. The orientation's up vector is the surface normal.
type HitResult struct {
	Pose Pose
}

// ReferenceSpace is the coordinate frame poses are expressed against. The
// tracking session owns it; the engine passes it through untouched.
type ReferenceSpace interface{}

// Frame is one tracking frame, handed to the engine once per rendered frame
// by the external render loop.
type Frame interface {
	// HitTests returns this frame's surface hit-test results, best match
	// first. Empty while the session is still searching for surfaces.
	HitTests() []HitResult

	// ViewerPose returns the camera pose in ref, or ok=false when tracking
	// cannot resolve the viewer this frame.
	ViewerPose(ref ReferenceSpace) (Pose, bool)
}

// Anchor is a tracking-session-managed spatial reference whose pose the
// session keeps resolving as the device moves, independent of GPS.
type Anchor interface {
	// Pose resolves the anchor's current pose in ref. ok=false signals a
	// transient tracking dropout, not a terminal failure.
	Pose(ref ReferenceSpace) (Pose, bool)

	// Release frees the anchor. Best-effort: callers log failures and move on.
	Release() error
}

// AnchorProvider creates persistent anchors. Creation is asynchronous
// relative to frame processing: done is invoked exactly once, interleaved on
// the session's single callback thread, possibly several frames later.
type AnchorProvider interface {
	CreateAnchor(pose Pose, ref ReferenceSpace, done func(Anchor, error))
}

// RenderTarget is an externally-owned visual node. The engine treats it as
// an opaque mutable target it is allowed to write pose, scale, and
// visibility to; everything else about rendering stays on the other side of
// this interface.
type RenderTarget interface {
	SetVisible(visible bool)
	Visible() bool

	SetPosition(p mgl64.Vec3)
	Position() mgl64.Vec3

	SetOrientation(q mgl64.Quat)
	Orientation() mgl64.Quat

	SetScale(s float64)
	Scale() float64
}

// LocationProvider is a continuous high-accuracy location stream. Subscribe
// begins delivery and returns a cancel function; updates and errors arrive
// as discrete callbacks on the session's callback thread.
type LocationProvider interface {
	Subscribe(onUpdate func(model.GeoPoint), onError func(err error)) (cancel func())
}

// StatusSink receives user-facing status text for the external overlay
// surface. Publishing an empty string clears the overlay.
type StatusSink interface {
	PublishStatus(text string)
}

// StatusFunc adapts a plain function to StatusSink.
type StatusFunc func(text string)

// PublishStatus implements StatusSink.
func (f StatusFunc) PublishStatus(text string) { f(text) }

// TouchPoint is one active screen contact in screen coordinates.
type TouchPoint struct {
	X float64
	Y float64
}
