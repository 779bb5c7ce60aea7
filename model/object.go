package model

// ObjectDefinition describes one geo-tagged virtual object as declared in the
// scene configuration. Definitions are read once at setup and never re-read
// during a session.
type ObjectDefinition struct {
	ID   string
	Name string

	// Geo is the real-world point the object is keyed to.
	Geo GeoPoint

	// AltitudeM is the object's height in metres above the anchor's ground
	// reference. Zero means "on the ground".
	AltitudeM float64

	// RadiusM optionally overrides the session's detection radius for this
	// object. Nil (or a non-positive value) falls back to the session
	// default. Parsed once at scene load, never per frame.
	RadiusM *float64

	// FaceUser rotates the object towards the viewer whenever it is visible.
	FaceUser bool

	// Source references the model asset to render. The engine treats it as
	// opaque; an empty Source is a configuration error for placement modes.
	Source string
}
