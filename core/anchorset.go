package core

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/ar-anchor/internal/logging"
	"github.com/signalsfoundry/ar-anchor/model"
)

// AnchorSetManager drives the geo-anchored mode: once per rendered frame it
// classifies every tracked object by geodesic distance to the user and
// walks it through the create/track/release anchor lifecycle.
//
// Anchors, not raw GPS, are the position source of truth once created: GPS
// fixes are noisy and low-frequency, while the tracking session's pose is
// high-frequency and locally precise. GPS only decides proximity and seeds
// the anchor's initial offset; it never re-homes an already-anchored
// object. Releasing anchors on radius exit bounds the number of live
// anchors, which matters because tracking sessions impose anchor-count
// limits.
type AnchorSetManager struct {
	scene    *Scene
	tracker  *Tracker
	provider AnchorProvider
	log      logging.Logger
	metrics  MetricsRecorder
}

// NewAnchorSetManager builds the manager. The anchor provider is required:
// sessions without anchor support use the proximity manager instead.
func NewAnchorSetManager(scene *Scene, tracker *Tracker, provider AnchorProvider, log logging.Logger, metrics MetricsRecorder) (*AnchorSetManager, error) {
	if scene == nil {
		return nil, fmt.Errorf("anchor set manager: nil scene")
	}
	if tracker == nil {
		return nil, fmt.Errorf("anchor set manager: nil tracker")
	}
	if provider == nil {
		return nil, fmt.Errorf("anchor set manager: nil anchor provider")
	}
	if log == nil {
		log = logging.Noop()
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &AnchorSetManager{
		scene:    scene,
		tracker:  tracker,
		provider: provider,
		log:      log,
		metrics:  metrics,
	}, nil
}

// OnFrame evaluates every tracked object against the latest user location.
// Until the first GPS fix arrives all objects are treated as out of range
// and nothing happens.
func (m *AnchorSetManager) OnFrame(frame Frame, ref ReferenceSpace) {
	loc, ok := m.tracker.Latest()
	if !ok {
		return
	}

	active := 0
	for _, obj := range m.scene.Objects() {
		if obj.LoadFailed {
			continue
		}

		d := DistanceMeters(loc.Geo, obj.Def.Geo)
		if d < obj.RadiusM {
			m.evaluateInRange(obj, loc.Geo, ref)
		} else {
			m.evaluateOutOfRange(obj)
		}

		if obj.State == AnchorAnchored {
			active++
		}

		// Facing is applied after pose and visibility are finalised, so an
		// object anchored earlier in this same frame already faces the user.
		if obj.Def.FaceUser && obj.Render.Visible() {
			FaceViewer(obj.Render, frame, ref)
		}
	}
	m.metrics.SetActiveAnchors(active)
}

// evaluateInRange advances one in-range object. An unanchored object issues
// a single asynchronous creation request; the object stays pending and
// invisible for however many frames the creation takes to resolve, and no
// second request is issued until it does.
func (m *AnchorSetManager) evaluateInRange(obj *TrackedObject, user model.GeoPoint, ref ReferenceSpace) {
	switch obj.State {
	case AnchorUnanchored:
		off := LocalOffsetMeters(obj.Def.Geo, user)
		pose := Pose{
			Position:    mgl64.Vec3{off.EastM, obj.Def.AltitudeM, -off.NorthM},
			Orientation: mgl64.QuatIdent(),
		}
		obj.State = AnchorPending
		m.metrics.AnchorCreateRequested()
		m.provider.CreateAnchor(pose, ref, func(anchor Anchor, err error) {
			m.onAnchorResolved(obj, anchor, err)
		})

	case AnchorPending:
		// Creation still in flight; stay invisible and wait.

	case AnchorAnchored:
		if pose, ok := obj.Anchor.Pose(ref); ok {
			obj.Render.SetPosition(pose.Position)
			obj.Render.SetOrientation(pose.Orientation)
		}
		// On a resolution dropout the object keeps its last known pose
		// instead of snapping invisible; transient tracking losses are
		// expected.
		obj.Render.SetVisible(true)
	}
}

// evaluateOutOfRange hides the object and releases its anchor if it holds
// one. A pending creation is left to resolve: its completion callback
// notices the state and the next out-of-range frame releases the anchor.
func (m *AnchorSetManager) evaluateOutOfRange(obj *TrackedObject) {
	obj.Render.SetVisible(false)

	if obj.State != AnchorAnchored {
		return
	}
	m.releaseAnchor(obj.Def.ID, obj.Anchor)
	obj.Anchor = nil
	obj.State = AnchorUnanchored
}

// onAnchorResolved is the creation completion callback, delivered on the
// session's callback thread some frames after the request.
func (m *AnchorSetManager) onAnchorResolved(obj *TrackedObject, anchor Anchor, err error) {
	if err != nil || anchor == nil {
		m.metrics.AnchorCreateFailed()
		if obj.State == AnchorPending {
			obj.State = AnchorUnanchored
		}
		if err != nil {
			m.log.Warn(context.Background(), "anchor creation failed",
				logging.String("object", obj.Def.ID),
				logging.String("error", err.Error()))
		}
		return
	}

	if obj.State != AnchorPending {
		// The session moved on while the creation was in flight; free the
		// anchor rather than adopting it.
		m.releaseAnchor(obj.Def.ID, anchor)
		return
	}

	obj.Anchor = anchor
	obj.State = AnchorAnchored
	obj.Render.SetVisible(true)
	m.metrics.AnchorCreated()
}

// Shutdown drops every live anchor best-effort. Release failures never
// block teardown.
func (m *AnchorSetManager) Shutdown() {
	for _, obj := range m.scene.Objects() {
		if obj.State == AnchorAnchored {
			m.releaseAnchor(obj.Def.ID, obj.Anchor)
		}
		obj.Anchor = nil
		obj.State = AnchorUnanchored
		obj.Render.SetVisible(false)
	}
	m.metrics.SetActiveAnchors(0)
}

func (m *AnchorSetManager) releaseAnchor(objectID string, anchor Anchor) {
	m.metrics.AnchorReleased()
	if err := anchor.Release(); err != nil {
		m.log.Warn(context.Background(), "anchor release failed",
			logging.String("object", objectID),
			logging.String("error", err.Error()))
	}
}

// FaceViewer rotates target about the vertical axis so it faces the
// frame's viewer pose. A frame without a resolvable viewer leaves the
// orientation untouched.
func FaceViewer(target RenderTarget, frame Frame, ref ReferenceSpace) {
	viewer, ok := frame.ViewerPose(ref)
	if !ok {
		return
	}
	pos := target.Position()
	dx := viewer.Position.X() - pos.X()
	dz := viewer.Position.Z() - pos.Z()
	if dx == 0 && dz == 0 {
		return
	}
	yaw := math.Atan2(dx, dz)
	target.SetOrientation(mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0}))
}
