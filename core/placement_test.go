package core

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/ar-anchor/model"
)

func newFloorController(t *testing.T, allowReposition bool, status StatusSink) (*PlacementController, *PlacementSlot) {
	t.Helper()
	scene := NewScene()
	slot, err := scene.AttachPlacementSlot(newFakeNode())
	if err != nil {
		t.Fatalf("AttachPlacementSlot failed: %v", err)
	}
	cfg := model.SessionConfig{Mode: model.ModeFloorPlacement, AllowReposition: allowReposition}
	pc, err := NewPlacementController(slot, model.ObjectDefinition{ID: "obj", Source: "obj.glb"}, cfg, status, nil)
	if err != nil {
		t.Fatalf("NewPlacementController failed: %v", err)
	}
	return pc, slot
}

func floorHit(pos mgl64.Vec3) HitResult {
	return HitResult{Pose: Pose{Position: pos, Orientation: mgl64.QuatIdent()}}
}

// tiltedHit builds a hit whose surface normal leans by angle off world up.
func tiltedHit(angle float64) HitResult {
	return HitResult{Pose: Pose{
		Orientation: mgl64.QuatRotate(angle, mgl64.Vec3{1, 0, 0}),
	}}
}

func TestPlacementController_Validation(t *testing.T) {
	cfg := model.SessionConfig{Mode: model.ModeFloorPlacement}

	if _, err := NewPlacementController(nil, model.ObjectDefinition{ID: "o", Source: "o.glb"}, cfg, nil, nil); !errors.Is(err, ErrNoRenderTarget) {
		t.Fatalf("nil slot error = %v, want ErrNoRenderTarget", err)
	}

	scene := NewScene()
	slot, _ := scene.AttachPlacementSlot(newFakeNode())
	if _, err := NewPlacementController(slot, model.ObjectDefinition{ID: "o"}, cfg, nil, nil); !errors.Is(err, ErrNoModelSource) {
		t.Fatalf("empty source error = %v, want ErrNoModelSource", err)
	}
}

func TestPlacementController_PhaseAndStatus(t *testing.T) {
	status := &statusRecorder{}
	pc, _ := newFloorController(t, true, status)

	if pc.Phase() != PhaseSearching {
		t.Fatalf("initial phase = %v, want PhaseSearching", pc.Phase())
	}

	pc.OnFrame(&fakeFrame{}, nil)
	if pc.Phase() != PhaseSearching || status.last() != StatusSearching {
		t.Fatalf("empty frame: phase=%v status=%q, want searching", pc.Phase(), status.last())
	}

	pc.OnFrame(&fakeFrame{hits: []HitResult{floorHit(mgl64.Vec3{1, 0, 2})}}, nil)
	if pc.Phase() != PhaseSurfaceFound || status.last() != StatusSurfaceFound {
		t.Fatalf("hit frame: phase=%v status=%q, want surface found", pc.Phase(), status.last())
	}

	// Losing the surface falls back to searching.
	pc.OnFrame(&fakeFrame{}, nil)
	if pc.Phase() != PhaseSearching {
		t.Fatalf("phase after losing surface = %v, want PhaseSearching", pc.Phase())
	}
}

func TestPlacementController_ConfirmPlacesAndClearsStatus(t *testing.T) {
	status := &statusRecorder{}
	pc, slot := newFloorController(t, true, status)

	// Confirm with nothing to place is a no-op.
	pc.Confirm()
	if slot.Pose != nil {
		t.Fatalf("confirm without a hit placed the object")
	}

	want := mgl64.Vec3{1.5, 0, -2}
	pc.OnFrame(&fakeFrame{hits: []HitResult{floorHit(want)}}, nil)
	pc.Confirm()

	if pc.Phase() != PhasePlaced {
		t.Fatalf("phase after confirm = %v, want PhasePlaced", pc.Phase())
	}
	if slot.Pose == nil || slot.Pose.Position != want {
		t.Fatalf("slot pose = %+v, want position %v", slot.Pose, want)
	}
	if !slot.Render.Visible() {
		t.Fatalf("placed object not visible")
	}
	if status.last() != "" {
		t.Fatalf("status after placement = %q, want cleared", status.last())
	}
}

func TestPlacementController_RepositionWhileUnlocked(t *testing.T) {
	pc, slot := newFloorController(t, true, nil)

	pc.OnFrame(&fakeFrame{hits: []HitResult{floorHit(mgl64.Vec3{1, 0, 1})}}, nil)
	pc.Confirm()
	if slot.Locked {
		t.Fatalf("slot locked despite reposition being allowed")
	}

	moved := mgl64.Vec3{4, 0, 4}
	pc.OnFrame(&fakeFrame{hits: []HitResult{floorHit(moved)}}, nil)
	pc.Confirm()
	if slot.Pose.Position != moved {
		t.Fatalf("reposition left pose at %v, want %v", slot.Pose.Position, moved)
	}
	if pc.Phase() != PhasePlaced {
		t.Fatalf("phase after reposition = %v, want PhasePlaced", pc.Phase())
	}
}

func TestPlacementController_LockPreventsReposition(t *testing.T) {
	pc, slot := newFloorController(t, false, nil)

	first := mgl64.Vec3{1, 0, 1}
	pc.OnFrame(&fakeFrame{hits: []HitResult{floorHit(first)}}, nil)
	pc.Confirm()
	if !slot.Locked {
		t.Fatalf("slot not locked after placement with reposition disabled")
	}

	pc.OnFrame(&fakeFrame{hits: []HitResult{floorHit(mgl64.Vec3{9, 0, 9})}}, nil)
	pc.Confirm()
	if slot.Pose.Position != first {
		t.Fatalf("locked slot moved to %v, want %v", slot.Pose.Position, first)
	}
}

func TestPlacementController_PlacedPhaseSuppressesStatus(t *testing.T) {
	status := &statusRecorder{}
	pc, _ := newFloorController(t, true, status)

	pc.OnFrame(&fakeFrame{hits: []HitResult{floorHit(mgl64.Vec3{})}}, nil)
	pc.Confirm()

	published := len(status.lines)
	pc.OnFrame(&fakeFrame{}, nil)
	pc.OnFrame(&fakeFrame{hits: []HitResult{floorHit(mgl64.Vec3{1, 0, 0})}}, nil)
	if len(status.lines) != published {
		t.Fatalf("placed controller published %d new status lines", len(status.lines)-published)
	}
	if pc.Phase() != PhasePlaced {
		t.Fatalf("placed phase regressed to %v", pc.Phase())
	}
}

func TestPlacementController_MarkAssetFailed(t *testing.T) {
	status := &statusRecorder{}
	pc, slot := newFloorController(t, true, status)

	pc.OnFrame(&fakeFrame{hits: []HitResult{floorHit(mgl64.Vec3{1, 0, 1})}}, nil)
	pc.MarkAssetFailed()

	pc.Confirm()
	if slot.Pose != nil {
		t.Fatalf("failed asset was placed anyway")
	}

	pc.OnFrame(&fakeFrame{hits: []HitResult{floorHit(mgl64.Vec3{2, 0, 2})}}, nil)
	pc.Confirm()
	if slot.Pose != nil {
		t.Fatalf("failed asset resumed placement: pose=%+v", slot.Pose)
	}
}

func newWallController(t *testing.T, status StatusSink) (*PlacementController, *PlacementSlot) {
	t.Helper()
	scene := NewScene()
	slot, err := scene.AttachPlacementSlot(newFakeNode())
	if err != nil {
		t.Fatalf("AttachPlacementSlot failed: %v", err)
	}
	cfg := model.SessionConfig{Mode: model.ModeWallPlacement, AllowReposition: true}
	pc, err := NewPlacementController(slot, model.ObjectDefinition{ID: "obj", Source: "obj.glb"}, cfg, status, nil)
	if err != nil {
		t.Fatalf("NewPlacementController failed: %v", err)
	}
	return pc, slot
}

func TestPlacementController_WallConstraint(t *testing.T) {
	status := &statusRecorder{}
	pc, slot := newWallController(t, status)

	// A floor-like hit (normal straight up, within pi/4 of vertical)
	// qualifies under the constraint as written.
	pc.OnFrame(&fakeFrame{hits: []HitResult{tiltedHit(0)}}, nil)
	if status.last() != StatusWallFound {
		t.Fatalf("upright-normal status = %q, want %q", status.last(), StatusWallFound)
	}

	// A true wall hit (normal horizontal, pi/2 off vertical) does not.
	pc.OnFrame(&fakeFrame{hits: []HitResult{tiltedHit(math.Pi / 2)}}, nil)
	if status.last() != StatusSurfaceNotWall {
		t.Fatalf("horizontal-normal status = %q, want %q", status.last(), StatusSurfaceNotWall)
	}
	pc.Confirm()
	if slot.Pose != nil {
		t.Fatalf("non-qualifying hit was confirmed")
	}

	// Just inside the tolerance qualifies; just outside does not.
	pc.OnFrame(&fakeFrame{hits: []HitResult{tiltedHit(math.Pi/4 - 0.01)}}, nil)
	if status.last() != StatusWallFound {
		t.Fatalf("inside-tolerance status = %q, want %q", status.last(), StatusWallFound)
	}
	pc.OnFrame(&fakeFrame{hits: []HitResult{tiltedHit(math.Pi/4 + 0.01)}}, nil)
	if status.last() != StatusSurfaceNotWall {
		t.Fatalf("outside-tolerance status = %q, want %q", status.last(), StatusSurfaceNotWall)
	}
}

func TestPlacementController_WallConfirmAdoptsSurfaceOrientation(t *testing.T) {
	pc, slot := newWallController(t, nil)

	hit := tiltedHit(math.Pi / 8)
	pc.OnFrame(&fakeFrame{hits: []HitResult{hit}}, nil)
	pc.Confirm()

	if slot.Pose == nil {
		t.Fatalf("qualifying wall hit was not confirmed")
	}
	if slot.Pose.Orientation != hit.Pose.Orientation {
		t.Fatalf("wall placement orientation = %v, want the hit's %v",
			slot.Pose.Orientation, hit.Pose.Orientation)
	}
}
