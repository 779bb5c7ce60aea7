package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/signalsfoundry/ar-anchor/model"
)

var (
	ErrObjectExists   = errors.New("object already exists")
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectBadInput = errors.New("invalid object")
	ErrNoRenderTarget = errors.New("missing render target")
	ErrNoModelSource  = errors.New("missing model source")
)

// FallbackDetectionRadiusM is the engine-wide detection radius used when
// neither the object nor the session configuration provides one.
const FallbackDetectionRadiusM = 20.0

// AnchorState is the anchor lifecycle of a tracked object. Creation is
// asynchronous, so the in-flight state is explicit: a pending object must be
// distinguishable from both endpoints to prevent duplicate creation
// requests.
type AnchorState int

const (
	// AnchorUnanchored means no anchor exists and none is being created.
	AnchorUnanchored AnchorState = iota
	// AnchorPending means a creation request is in flight.
	AnchorPending
	// AnchorAnchored means the object is bound to a live anchor.
	AnchorAnchored
)

// String returns a stable label for logs and status snapshots.
func (s AnchorState) String() string {
	switch s {
	case AnchorUnanchored:
		return "UNANCHORED"
	case AnchorPending:
		return "PENDING"
	case AnchorAnchored:
		return "ANCHORED"
	}
	return "UNKNOWN"
}

// TrackedObject is one geo-tagged virtual object bound to a real-world
// anchor point. The anchor set manager owns all state transitions; the
// invariant is Anchor != nil exactly when State == AnchorAnchored.
type TrackedObject struct {
	Def    model.ObjectDefinition
	Render RenderTarget

	// RadiusM is the resolved detection radius: object override when
	// positive, else the session default, else FallbackDetectionRadiusM.
	// Resolved once when the object is added, never per frame.
	RadiusM float64

	State  AnchorState
	Anchor Anchor

	// LoadFailed excludes the object from placement and anchoring for the
	// rest of the session after its model asset failed to load.
	LoadFailed bool
}

// PlacementSlot is the single-object surface placement state. Pose is nil
// until the first confirmed placement; a non-nil Pose implies the render
// target is visible.
type PlacementSlot struct {
	Render RenderTarget
	Locked bool
	Pose   *Pose
}

// ObjectSnapshot is a read-only view of one tracked object, suitable for
// status overlays and logging.
type ObjectSnapshot struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	State    string     `json:"state"`
	Visible  bool       `json:"visible"`
	Position [3]float64 `json:"position"`
	Distance float64    `json:"distance_m,omitempty"`
}

// Scene is the registry of tracked objects and the placement slot for one
// AR session. It is safe for concurrent readers (the overlay broadcaster
// reads snapshots from its own goroutine) while the frame loop mutates it.
type Scene struct {
	mu      sync.RWMutex
	objects map[string]*TrackedObject
	order   []string
	slot    *PlacementSlot
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{objects: make(map[string]*TrackedObject)}
}

// AddObject registers a geo-tagged object with its render target and
// resolves its detection radius against the session default. Objects are
// iterated in insertion order so per-frame behaviour is deterministic.
func (s *Scene) AddObject(def model.ObjectDefinition, render RenderTarget, defaultRadiusM float64) (*TrackedObject, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("%w: empty object ID", ErrObjectBadInput)
	}
	if render == nil {
		return nil, fmt.Errorf("%w: object %q", ErrNoRenderTarget, def.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[def.ID]; exists {
		return nil, fmt.Errorf("%w: %q", ErrObjectExists, def.ID)
	}

	obj := &TrackedObject{
		Def:     def,
		Render:  render,
		RadiusM: ResolveDetectionRadiusM(def, defaultRadiusM),
		State:   AnchorUnanchored,
	}
	s.objects[def.ID] = obj
	s.order = append(s.order, def.ID)
	return obj, nil
}

// Object returns a tracked object by ID, or nil if not present.
func (s *Scene) Object(id string) *TrackedObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[id]
}

// Objects returns all tracked objects in insertion order.
func (s *Scene) Objects() []*TrackedObject {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*TrackedObject, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.objects[id])
	}
	return out
}

// MarkLoadFailed records a model asset load failure for the object. The
// object stays in the scene but no controller will place or anchor it again
// this session.
func (s *Scene) MarkLoadFailed(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrObjectNotFound, id)
	}
	obj.LoadFailed = true
	return nil
}

// AttachPlacementSlot creates the scene's single placement slot around the
// provided render target. Called once when a surface-placement mode starts.
func (s *Scene) AttachPlacementSlot(render RenderTarget) (*PlacementSlot, error) {
	if render == nil {
		return nil, fmt.Errorf("%w: placement slot", ErrNoRenderTarget)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slot != nil {
		return nil, fmt.Errorf("%w: placement slot", ErrObjectExists)
	}
	s.slot = &PlacementSlot{Render: render}
	return s.slot, nil
}

// PlacementSlot returns the scene's placement slot, or nil when no
// surface-placement mode is active.
func (s *Scene) PlacementSlot() *PlacementSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slot
}

// Snapshot captures the current state of every tracked object. When a user
// location is supplied, each snapshot carries the object's geodesic distance
// to the user.
func (s *Scene) Snapshot(loc *model.UserLocation) []ObjectSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ObjectSnapshot, 0, len(s.order))
	for _, id := range s.order {
		obj := s.objects[id]
		pos := obj.Render.Position()
		snap := ObjectSnapshot{
			ID:       obj.Def.ID,
			Name:     obj.Def.Name,
			State:    obj.State.String(),
			Visible:  obj.Render.Visible(),
			Position: [3]float64{pos.X(), pos.Y(), pos.Z()},
		}
		if loc != nil {
			snap.Distance = DistanceMeters(loc.Geo, obj.Def.Geo)
		}
		out = append(out, snap)
	}
	return out
}

// ResolveDetectionRadiusM applies the fixed resolution order for an
// object's detection radius: per-object override when positive, else the
// session default when positive, else FallbackDetectionRadiusM. A zero or
// negative override is treated as absent rather than as "never in range".
func ResolveDetectionRadiusM(def model.ObjectDefinition, defaultRadiusM float64) float64 {
	if def.RadiusM != nil && *def.RadiusM > 0 {
		return *def.RadiusM
	}
	if defaultRadiusM > 0 {
		return defaultRadiusM
	}
	return FallbackDetectionRadiusM
}
