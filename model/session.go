package model

// PlacementMode selects which controller drives the session. The mode is
// fixed for the lifetime of a session.
type PlacementMode string

const (
	// ModePassiveView renders the scene with no placement logic at all.
	ModePassiveView PlacementMode = "passive-view"
	// ModeFloorPlacement places a single object on a horizontal surface hit.
	ModeFloorPlacement PlacementMode = "floor-placement"
	// ModeWallPlacement places a single object on a vertical surface hit.
	ModeWallPlacement PlacementMode = "wall-placement"
	// ModeGPSProximity positions objects directly from GPS offsets, with no
	// persistent anchors. Used when the tracking session lacks anchor support.
	ModeGPSProximity PlacementMode = "gps-proximity"
	// ModeGPSAnchored binds in-range objects to persistent tracking anchors.
	ModeGPSAnchored PlacementMode = "gps-anchored"
)

// Valid reports whether m is one of the known placement modes.
func (m PlacementMode) Valid() bool {
	switch m {
	case ModePassiveView, ModeFloorPlacement, ModeWallPlacement,
		ModeGPSProximity, ModeGPSAnchored:
		return true
	}
	return false
}

// SessionConfig is the declarative per-session configuration surface.
// It is read at setup and fixed thereafter.
type SessionConfig struct {
	Mode PlacementMode

	// AllowReposition permits further confirm taps to move an already
	// placed object. When false the first confirmed placement locks it.
	AllowReposition bool

	// RotateGesture and ScaleGesture enable the two-finger adjustment
	// gestures on a placed object.
	RotateGesture bool
	ScaleGesture  bool

	// DefaultRadiusM is the session-wide detection radius in metres for
	// geo-tagged objects without a per-object override. Non-positive values
	// fall back to the engine's built-in default.
	DefaultRadiusM float64
}
