package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/signalsfoundry/ar-anchor/internal/logging"
	"github.com/signalsfoundry/ar-anchor/model"
)

var (
	ErrUnknownMode        = errors.New("unknown placement mode")
	ErrAnchorsUnsupported = errors.New("tracking session lacks anchor support")
)

// SessionDeps collects the external collaborators an orchestrator wires at
// session start. Location and Anchors may be nil for modes that do not use
// them.
type SessionDeps struct {
	Location LocationProvider
	Anchors  AnchorProvider
	Status   StatusSink
	Logger   logging.Logger
	Metrics  MetricsRecorder

	// Placed describes the single placeable object for the surface
	// placement modes; ignored otherwise.
	Placed model.ObjectDefinition
}

// Orchestrator selects exactly one controller for the configured mode and
// feeds it every frame. The choice is made once, at construction, and is
// immutable for the session's lifetime; the orchestrator owns no placement
// logic itself.
type Orchestrator struct {
	cfg     model.SessionConfig
	log     logging.Logger
	metrics MetricsRecorder

	tracker   *Tracker
	placement *PlacementController
	gestures  *GestureController
	anchors   *AnchorSetManager
	proximity *ProximityManager
}

// NewOrchestrator validates the configuration and builds the controller for
// the configured mode. Configuration errors are fatal to the mode: the
// session must not start.
func NewOrchestrator(scene *Scene, cfg model.SessionConfig, deps SessionDeps) (*Orchestrator, error) {
	if scene == nil {
		return nil, fmt.Errorf("orchestrator: nil scene")
	}
	if !cfg.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}

	log := deps.Logger
	if log == nil {
		log = logging.Noop()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	o := &Orchestrator{
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		tracker: NewTracker(log, metrics),
	}

	switch cfg.Mode {
	case model.ModePassiveView:
		// Plain inspection: nothing to drive.

	case model.ModeFloorPlacement, model.ModeWallPlacement:
		slot := scene.PlacementSlot()
		pc, err := NewPlacementController(slot, deps.Placed, cfg, deps.Status, metrics)
		if err != nil {
			return nil, err
		}
		o.placement = pc
		if slot != nil {
			o.gestures = NewGestureController(slot.Render, cfg.ScaleGesture, cfg.RotateGesture)
		}

	case model.ModeGPSProximity:
		pm, err := NewProximityManager(scene, o.tracker)
		if err != nil {
			return nil, err
		}
		o.proximity = pm
		o.tracker.Start(deps.Location)

	case model.ModeGPSAnchored:
		if deps.Anchors == nil {
			return nil, fmt.Errorf("%w: mode %q", ErrAnchorsUnsupported, cfg.Mode)
		}
		am, err := NewAnchorSetManager(scene, o.tracker, deps.Anchors, log, metrics)
		if err != nil {
			return nil, err
		}
		o.anchors = am
		o.tracker.Start(deps.Location)
	}

	return o, nil
}

// Mode returns the session's placement mode.
func (o *Orchestrator) Mode() model.PlacementMode { return o.cfg.Mode }

// Tracker exposes the session's location cell, mainly for status surfaces.
func (o *Orchestrator) Tracker() *Tracker { return o.tracker }

// Placement returns the active placement controller, or nil outside the
// surface placement modes.
func (o *Orchestrator) Placement() *PlacementController { return o.placement }

// OnFrame dispatches one tracking frame to the active controller.
func (o *Orchestrator) OnFrame(frame Frame, ref ReferenceSpace) {
	start := time.Now()

	switch {
	case o.placement != nil:
		o.placement.OnFrame(frame, ref)
	case o.anchors != nil:
		o.anchors.OnFrame(frame, ref)
	case o.proximity != nil:
		o.proximity.OnFrame(frame, ref)
	}

	o.metrics.FrameProcessed(string(o.cfg.Mode), time.Since(start).Seconds())
}

// Confirm relays a user confirm tap to the placement controller, if one is
// active. Confirm events are independent of the frame callback.
func (o *Orchestrator) Confirm() {
	if o.placement != nil {
		o.placement.Confirm()
	}
}

// OnTouches relays a touch sample to the gesture controller, if enabled.
func (o *Orchestrator) OnTouches(points []TouchPoint) {
	o.gestures.OnTouches(points)
}

// Close ends the session: the location subscription is cancelled and all
// anchors are dropped best-effort. Teardown never blocks on release
// failures.
func (o *Orchestrator) Close() {
	o.tracker.Stop()
	if o.anchors != nil {
		o.anchors.Shutdown()
	}
}
