package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/signalsfoundry/ar-anchor/model"
)

const anchoredScene = `{
  "session": {
    "mode": "gps-anchored",
    "allow_reposition": true,
    "default_radius_m": 25
  },
  "objects": [
    {"id": "a", "name": "Marker", "lat": 51.4779, "lon": -0.0015, "source": "a.glb"},
    {"id": "b", "lat": 51.4781, "lon": -0.0009, "altitude_m": 1.5, "radius_m": 40, "face_user": true, "source": "b.glb"}
  ]
}`

func TestLoadSceneDescription(t *testing.T) {
	desc, err := LoadSceneDescription(strings.NewReader(anchoredScene))
	if err != nil {
		t.Fatalf("LoadSceneDescription failed: %v", err)
	}

	if desc.Session.Mode != model.ModeGPSAnchored {
		t.Fatalf("mode = %q, want gps-anchored", desc.Session.Mode)
	}
	if desc.Session.DefaultRadiusM != 25 {
		t.Fatalf("default radius = %v, want 25", desc.Session.DefaultRadiusM)
	}
	if len(desc.Objects) != 2 {
		t.Fatalf("objects = %d, want 2", len(desc.Objects))
	}

	b := desc.Objects[1]
	if b.RadiusM == nil || *b.RadiusM != 40 {
		t.Fatalf("object b radius override = %v, want 40", b.RadiusM)
	}
	if !b.FaceUser || b.AltitudeM != 1.5 {
		t.Fatalf("object b = %+v, want face_user and altitude 1.5", b)
	}
	if desc.Objects[0].RadiusM != nil {
		t.Fatalf("object a carries a radius override it never declared")
	}
}

func TestLoadSceneDescription_UnknownMode(t *testing.T) {
	_, err := LoadSceneDescription(strings.NewReader(`{"session": {"mode": "teleport"}}`))
	if !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("error = %v, want ErrUnknownMode", err)
	}
}

func TestLoadSceneDescription_ObjectValidation(t *testing.T) {
	noID := `{"session": {"mode": "gps-proximity"}, "objects": [{"lat": 1, "lon": 2, "source": "x.glb"}]}`
	if _, err := LoadSceneDescription(strings.NewReader(noID)); !errors.Is(err, ErrObjectBadInput) {
		t.Fatalf("empty-id error = %v, want ErrObjectBadInput", err)
	}

	noSource := `{"session": {"mode": "gps-proximity"}, "objects": [{"id": "a", "lat": 1, "lon": 2}]}`
	if _, err := LoadSceneDescription(strings.NewReader(noSource)); !errors.Is(err, ErrNoModelSource) {
		t.Fatalf("empty-source error = %v, want ErrNoModelSource", err)
	}
}

func TestLoadSceneDescription_PlacementModesNeedPlacement(t *testing.T) {
	bare := `{"session": {"mode": "floor-placement"}}`
	if _, err := LoadSceneDescription(strings.NewReader(bare)); !errors.Is(err, ErrNoModelSource) {
		t.Fatalf("floor mode without placement: error = %v, want ErrNoModelSource", err)
	}

	withPlacement := `{
	  "session": {"mode": "wall-placement", "rotate_gesture": true},
	  "placement": {"id": "poster", "source": "poster.glb"}
	}`
	desc, err := LoadSceneDescription(strings.NewReader(withPlacement))
	if err != nil {
		t.Fatalf("LoadSceneDescription failed: %v", err)
	}
	if desc.Placed == nil || desc.Placed.ID != "poster" {
		t.Fatalf("placement object = %+v, want poster", desc.Placed)
	}
	if !desc.Session.RotateGesture {
		t.Fatalf("rotate gesture flag lost")
	}
}

func TestLoadSceneDescription_MalformedJSON(t *testing.T) {
	if _, err := LoadSceneDescription(strings.NewReader(`{"session":`)); err == nil {
		t.Fatalf("malformed JSON accepted")
	}
}
