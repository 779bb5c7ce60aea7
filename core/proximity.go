package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ProximityManager is the anchorless variant of the anchor set manager,
// used when the tracking session lacks anchor support. Within the detection
// radius it positions each object directly from the local tangent-plane
// offset on every frame; outside it hides the object.
//
// Cheaper than anchoring, but the pose drifts with GPS noise and a brief
// GPS gap freezes every object at its last offset.
type ProximityManager struct {
	scene   *Scene
	tracker *Tracker
}

// NewProximityManager builds the manager.
func NewProximityManager(scene *Scene, tracker *Tracker) (*ProximityManager, error) {
	if scene == nil {
		return nil, fmt.Errorf("proximity manager: nil scene")
	}
	if tracker == nil {
		return nil, fmt.Errorf("proximity manager: nil tracker")
	}
	return &ProximityManager{scene: scene, tracker: tracker}, nil
}

// OnFrame recomputes every object's offset from the latest fix. Visibility
// in this mode means "within radius"; there is no anchor state.
func (m *ProximityManager) OnFrame(frame Frame, ref ReferenceSpace) {
	loc, ok := m.tracker.Latest()
	if !ok {
		return
	}

	for _, obj := range m.scene.Objects() {
		if obj.LoadFailed {
			continue
		}

		d := DistanceMeters(loc.Geo, obj.Def.Geo)
		if d >= obj.RadiusM {
			obj.Render.SetVisible(false)
			continue
		}

		off := LocalOffsetMeters(obj.Def.Geo, loc.Geo)
		obj.Render.SetPosition(mgl64.Vec3{off.EastM, obj.Def.AltitudeM, -off.NorthM})
		obj.Render.SetVisible(true)

		if obj.Def.FaceUser {
			FaceViewer(obj.Render, frame, ref)
		}
	}
}
