package core

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/ar-anchor/model"
)

// PlacementPhase is the surface-placement state machine. The only cycle is
// PhasePlaced -> PhasePlaced (reposition), reachable while the slot is
// unlocked.
type PlacementPhase int

const (
	PhaseSearching PlacementPhase = iota
	PhaseSurfaceFound
	PhasePlaced
)

// String returns a stable label for logs.
func (p PlacementPhase) String() string {
	switch p {
	case PhaseSearching:
		return "SEARCHING"
	case PhaseSurfaceFound:
		return "SURFACE_FOUND"
	case PhasePlaced:
		return "PLACED"
	}
	return "UNKNOWN"
}

// Status messages published to the overlay while placing.
const (
	StatusSearching      = "Move your phone slowly to scan for surfaces"
	StatusSurfaceFound   = "Surface detected - tap to place"
	StatusWallFound      = "Wall detected - tap to place"
	StatusSurfaceNotWall = "Point your phone at a vertical surface"
)

// wallNormalToleranceRad is the angular tolerance for a hit to qualify in
// wall-placement mode: the hit normal must lie within this angle of the
// horizontal plane's perpendicular.
const wallNormalToleranceRad = math.Pi / 4

// PlacementController drives one surface-detected object: it consumes each
// frame's hit-test results, publishes a status line, and on a user confirm
// signal copies the qualifying hit's pose into the placement slot.
//
// Confirm is event-driven, not frame-driven: it acts on the most recent
// frame's qualifying hit.
type PlacementController struct {
	slot       *PlacementSlot
	mode       model.PlacementMode
	reposition bool
	status     StatusSink
	metrics    MetricsRecorder

	phase       PlacementPhase
	qualifying  *HitResult
	assetFailed bool
}

// NewPlacementController validates the placement configuration and builds
// the controller. A missing render target or model source is a
// configuration error: the mode must not start.
func NewPlacementController(slot *PlacementSlot, def model.ObjectDefinition, cfg model.SessionConfig, status StatusSink, metrics MetricsRecorder) (*PlacementController, error) {
	if slot == nil || slot.Render == nil {
		return nil, fmt.Errorf("%w: placement mode %q", ErrNoRenderTarget, cfg.Mode)
	}
	if def.Source == "" {
		return nil, fmt.Errorf("%w: object %q", ErrNoModelSource, def.ID)
	}
	if status == nil {
		status = StatusFunc(func(string) {})
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &PlacementController{
		slot:       slot,
		mode:       cfg.Mode,
		reposition: cfg.AllowReposition,
		status:     status,
		metrics:    metrics,
		phase:      PhaseSearching,
	}, nil
}

// Phase returns the controller's current placement phase.
func (pc *PlacementController) Phase() PlacementPhase { return pc.phase }

// MarkAssetFailed excludes the slot's object from placement for the rest of
// the session. Placement is not retried automatically.
func (pc *PlacementController) MarkAssetFailed() {
	pc.assetFailed = true
	pc.qualifying = nil
	pc.status.PublishStatus("")
}

// OnFrame consumes one tracking frame: it records the frame's best
// qualifying hit and advances the searching/surface-found states. Once
// placed, the controller keeps tracking hits (for repositioning) but stops
// publishing search status.
func (pc *PlacementController) OnFrame(frame Frame, ref ReferenceSpace) {
	if pc.assetFailed {
		return
	}

	hits := frame.HitTests()
	pc.metrics.HitTestObserved(len(hits) > 0)

	if len(hits) == 0 {
		pc.qualifying = nil
		if pc.phase != PhasePlaced {
			pc.phase = PhaseSearching
			pc.status.PublishStatus(StatusSearching)
		}
		return
	}

	hit := hits[0]
	qualifies := pc.hitQualifies(hit)
	if qualifies {
		pc.qualifying = &hit
	} else {
		pc.qualifying = nil
	}

	if pc.phase == PhasePlaced {
		return
	}
	pc.phase = PhaseSurfaceFound
	switch {
	case pc.mode == model.ModeWallPlacement && qualifies:
		pc.status.PublishStatus(StatusWallFound)
	case pc.mode == model.ModeWallPlacement:
		pc.status.PublishStatus(StatusSurfaceNotWall)
	default:
		pc.status.PublishStatus(StatusSurfaceFound)
	}
}

// Confirm fixes (or re-fixes) the object's pose from the current qualifying
// hit. A second confirm is a no-op once the slot is locked; the slot locks
// after the first placement when repositioning is disabled.
func (pc *PlacementController) Confirm() {
	if pc.assetFailed || pc.qualifying == nil {
		return
	}
	if pc.slot.Locked {
		return
	}

	pose := Pose{
		Position:    pc.qualifying.Pose.Position,
		Orientation: pc.slot.Render.Orientation(),
	}
	// Wall placement needs the surface orientation; floor placement keeps
	// the object's own orientation.
	if pc.mode == model.ModeWallPlacement {
		pose.Orientation = pc.qualifying.Pose.Orientation
	}

	pc.slot.Pose = &pose
	pc.slot.Render.SetPosition(pose.Position)
	pc.slot.Render.SetOrientation(pose.Orientation)
	pc.slot.Render.SetVisible(true)
	pc.slot.Locked = !pc.reposition
	pc.phase = PhasePlaced
	pc.status.PublishStatus("")
}

// hitQualifies applies the current mode's orientation constraint. Floor
// mode accepts any detected surface. Wall mode requires the hit normal to
// deviate from the vertical axis by less than wallNormalToleranceRad.
func (pc *PlacementController) hitQualifies(hit HitResult) bool {
	if pc.mode != model.ModeWallPlacement {
		return true
	}
	normal := hit.Pose.Orientation.Rotate(mgl64.Vec3{0, 1, 0})
	cos := normal.Dot(mgl64.Vec3{0, 1, 0})
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) < wallNormalToleranceRad
}
