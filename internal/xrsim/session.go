package xrsim

import (
	"errors"

	"github.com/signalsfoundry/ar-anchor/core"
)

// Space is a trivial reference space token. The engine passes it through
// opaquely, so identity is all the simulator needs.
type Space struct {
	Name string
}

// Frame is a scripted tracking frame.
type Frame struct {
	Hits   []core.HitResult
	Viewer *core.Pose
}

// HitTests implements core.Frame.
func (f *Frame) HitTests() []core.HitResult { return f.Hits }

// ViewerPose implements core.Frame.
func (f *Frame) ViewerPose(core.ReferenceSpace) (core.Pose, bool) {
	if f.Viewer == nil {
		return core.Pose{}, false
	}
	return *f.Viewer, true
}

// ErrAnchorRejected is returned for creations scheduled to fail.
var ErrAnchorRejected = errors.New("xrsim: anchor rejected")

// Anchor is a simulated persistent anchor. Its pose stays where it was
// created; Lost simulates a transient tracking dropout.
type Anchor struct {
	pose     core.Pose
	Lost     bool
	Released bool

	// ReleaseErr, when set, is returned by Release. The release still
	// counts as issued.
	ReleaseErr error
}

// Pose implements core.Anchor.
func (a *Anchor) Pose(core.ReferenceSpace) (core.Pose, bool) {
	if a.Lost {
		return core.Pose{}, false
	}
	return a.pose, true
}

// Release implements core.Anchor.
func (a *Anchor) Release() error {
	a.Released = true
	return a.ReleaseErr
}

type pendingCreate struct {
	pose      core.Pose
	done      func(core.Anchor, error)
	remaining int
	fail      bool
}

// Session simulates the tracking session's anchor API. Creations resolve
// after CreateLatencyFrames calls to Step, mimicking the asynchronous
// completion callbacks of a real session; latency zero resolves on the next
// Step.
type Session struct {
	// CreateLatencyFrames is the number of Step calls a creation waits
	// before resolving.
	CreateLatencyFrames int

	// FailNextCreates makes that many upcoming creations resolve with
	// ErrAnchorRejected.
	FailNextCreates int

	pending []pendingCreate
	anchors []*Anchor
}

// CreateAnchor implements core.AnchorProvider.
func (s *Session) CreateAnchor(pose core.Pose, _ core.ReferenceSpace, done func(core.Anchor, error)) {
	fail := false
	if s.FailNextCreates > 0 {
		s.FailNextCreates--
		fail = true
	}
	s.pending = append(s.pending, pendingCreate{
		pose:      pose,
		done:      done,
		remaining: s.CreateLatencyFrames,
		fail:      fail,
	})
}

// Step advances simulated time by one frame, firing completion callbacks
// for creations whose latency has elapsed. Call it once per frame, before
// handing the frame to the engine.
func (s *Session) Step() {
	var still []pendingCreate
	for _, p := range s.pending {
		if p.remaining > 0 {
			p.remaining--
			still = append(still, p)
			continue
		}
		if p.fail {
			p.done(nil, ErrAnchorRejected)
			continue
		}
		anchor := &Anchor{pose: p.pose}
		s.anchors = append(s.anchors, anchor)
		p.done(anchor, nil)
	}
	s.pending = still
}

// Anchors returns every anchor the session has created, released or not.
func (s *Session) Anchors() []*Anchor { return s.anchors }

// PendingCreates returns the number of unresolved creation requests.
func (s *Session) PendingCreates() int { return len(s.pending) }
