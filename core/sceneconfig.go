package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/ar-anchor/model"
)

// SceneDescription is the declarative scene configuration: the session
// settings plus every object the session can show. It is read once at
// setup; nothing re-reads it during the session.
type SceneDescription struct {
	Session model.SessionConfig
	// Placed is the single placeable object for the surface placement
	// modes; nil otherwise.
	Placed  *model.ObjectDefinition
	Objects []model.ObjectDefinition
}

// internal JSON shapes - unexported so the on-disk format can evolve.
type sceneJSON struct {
	Session   sessionJSON  `json:"session"`
	Placement *objectJSON  `json:"placement,omitempty"`
	Objects   []objectJSON `json:"objects"`
}

type sessionJSON struct {
	Mode            string  `json:"mode"`
	AllowReposition bool    `json:"allow_reposition"`
	RotateGesture   bool    `json:"rotate_gesture"`
	ScaleGesture    bool    `json:"scale_gesture"`
	DefaultRadiusM  float64 `json:"default_radius_m"`
}

type objectJSON struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	AltitudeM float64  `json:"altitude_m"`
	RadiusM   *float64 `json:"radius_m,omitempty"`
	FaceUser  bool     `json:"face_user"`
	Source    string   `json:"source"`
}

// LoadSceneDescription reads a JSON scene from r and validates it. The
// radius override is parsed here, once; per-frame code only ever sees the
// resolved number.
func LoadSceneDescription(r io.Reader) (*SceneDescription, error) {
	var payload sceneJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadSceneDescription: decode failed: %w", err)
	}

	mode := model.PlacementMode(payload.Session.Mode)
	if !mode.Valid() {
		return nil, fmt.Errorf("LoadSceneDescription: %w: %q", ErrUnknownMode, payload.Session.Mode)
	}

	desc := &SceneDescription{
		Session: model.SessionConfig{
			Mode:            mode,
			AllowReposition: payload.Session.AllowReposition,
			RotateGesture:   payload.Session.RotateGesture,
			ScaleGesture:    payload.Session.ScaleGesture,
			DefaultRadiusM:  payload.Session.DefaultRadiusM,
		},
	}

	if payload.Placement != nil {
		def, err := objectFromJSON(*payload.Placement)
		if err != nil {
			return nil, err
		}
		desc.Placed = &def
	}
	if (mode == model.ModeFloorPlacement || mode == model.ModeWallPlacement) && desc.Placed == nil {
		return nil, fmt.Errorf("LoadSceneDescription: mode %q: %w", mode, ErrNoModelSource)
	}

	for _, js := range payload.Objects {
		def, err := objectFromJSON(js)
		if err != nil {
			return nil, err
		}
		desc.Objects = append(desc.Objects, def)
	}

	return desc, nil
}

func objectFromJSON(js objectJSON) (model.ObjectDefinition, error) {
	if js.ID == "" {
		return model.ObjectDefinition{}, fmt.Errorf("LoadSceneDescription: object with empty id: %w", ErrObjectBadInput)
	}
	if js.Source == "" {
		return model.ObjectDefinition{}, fmt.Errorf("LoadSceneDescription: object %q: %w", js.ID, ErrNoModelSource)
	}
	return model.ObjectDefinition{
		ID:        js.ID,
		Name:      js.Name,
		Geo:       model.GeoPoint{LatDeg: js.Lat, LonDeg: js.Lon},
		AltitudeM: js.AltitudeM,
		RadiusM:   js.RadiusM,
		FaceUser:  js.FaceUser,
		Source:    js.Source,
	}, nil
}
