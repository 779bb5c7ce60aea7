package xrsim

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/ar-anchor/core"
)

func TestSession_CreateResolvesAfterLatency(t *testing.T) {
	session := &Session{CreateLatencyFrames: 2}

	var got core.Anchor
	var gotErr error
	resolved := 0
	pose := core.Pose{Position: mgl64.Vec3{1, 0, -2}, Orientation: mgl64.QuatIdent()}
	session.CreateAnchor(pose, nil, func(a core.Anchor, err error) {
		resolved++
		got, gotErr = a, err
	})

	session.Step()
	session.Step()
	if resolved != 0 {
		t.Fatalf("creation resolved after %d steps, want latency 2", resolved)
	}

	session.Step()
	if resolved != 1 {
		t.Fatalf("resolved = %d, want 1", resolved)
	}
	if gotErr != nil || got == nil {
		t.Fatalf("completion = (%v, %v), want anchor and nil error", got, gotErr)
	}

	anchorPose, ok := got.Pose(nil)
	if !ok || anchorPose.Position != pose.Position {
		t.Fatalf("anchor pose = (%+v, %v), want the creation pose", anchorPose, ok)
	}
	if session.PendingCreates() != 0 {
		t.Fatalf("PendingCreates = %d, want 0", session.PendingCreates())
	}

	// Further steps must not re-fire the callback.
	session.Step()
	if resolved != 1 {
		t.Fatalf("callback fired %d times, want exactly once", resolved)
	}
}

func TestSession_ScheduledFailures(t *testing.T) {
	session := &Session{FailNextCreates: 1}

	var errs []error
	done := func(a core.Anchor, err error) {
		if a != nil {
			t.Errorf("failed creation delivered an anchor")
		}
		errs = append(errs, err)
	}
	session.CreateAnchor(core.IdentityPose(), nil, done)
	session.CreateAnchor(core.IdentityPose(), nil, func(a core.Anchor, err error) {
		errs = append(errs, err)
	})
	session.Step()

	if len(errs) != 2 {
		t.Fatalf("resolved %d creations, want 2", len(errs))
	}
	if !errors.Is(errs[0], ErrAnchorRejected) {
		t.Fatalf("first creation error = %v, want ErrAnchorRejected", errs[0])
	}
	if errs[1] != nil {
		t.Fatalf("second creation error = %v, want nil", errs[1])
	}
	if len(session.Anchors()) != 1 {
		t.Fatalf("session created %d anchors, want 1", len(session.Anchors()))
	}
}

func TestAnchor_LostAndRelease(t *testing.T) {
	session := &Session{}
	session.CreateAnchor(core.IdentityPose(), nil, func(core.Anchor, error) {})
	session.Step()

	anchor := session.Anchors()[0]
	if _, ok := anchor.Pose(nil); !ok {
		t.Fatalf("fresh anchor does not resolve")
	}

	anchor.Lost = true
	if _, ok := anchor.Pose(nil); ok {
		t.Fatalf("lost anchor still resolves")
	}

	anchor.ReleaseErr = errors.New("session gone")
	if err := anchor.Release(); err == nil {
		t.Fatalf("Release swallowed the configured error")
	}
	if !anchor.Released {
		t.Fatalf("Release not recorded")
	}
}

func TestFrame_ViewerPose(t *testing.T) {
	frame := &Frame{}
	if _, ok := frame.ViewerPose(nil); ok {
		t.Fatalf("frame without a viewer resolved a pose")
	}

	viewer := core.Pose{Position: mgl64.Vec3{0, 1.6, 0}, Orientation: mgl64.QuatIdent()}
	frame.Viewer = &viewer
	got, ok := frame.ViewerPose(nil)
	if !ok || got.Position != viewer.Position {
		t.Fatalf("ViewerPose = (%+v, %v), want the scripted viewer", got, ok)
	}
}
