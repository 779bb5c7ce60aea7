package core

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/ar-anchor/model"
)

// Test doubles for the external engine boundary. These stay in-package so
// the controllers can be exercised without the simulated session.

type fakeNode struct {
	visible     bool
	position    mgl64.Vec3
	orientation mgl64.Quat
	scale       float64
}

func newFakeNode() *fakeNode {
	return &fakeNode{orientation: mgl64.QuatIdent(), scale: 1}
}

func (n *fakeNode) SetVisible(v bool)            { n.visible = v }
func (n *fakeNode) Visible() bool                { return n.visible }
func (n *fakeNode) SetPosition(p mgl64.Vec3)     { n.position = p }
func (n *fakeNode) Position() mgl64.Vec3         { return n.position }
func (n *fakeNode) SetOrientation(q mgl64.Quat)  { n.orientation = q }
func (n *fakeNode) Orientation() mgl64.Quat      { return n.orientation }
func (n *fakeNode) SetScale(s float64)           { n.scale = s }
func (n *fakeNode) Scale() float64               { return n.scale }

type fakeFrame struct {
	hits      []HitResult
	viewer    Pose
	viewerOK  bool
}

func (f *fakeFrame) HitTests() []HitResult { return f.hits }

func (f *fakeFrame) ViewerPose(ref ReferenceSpace) (Pose, bool) {
	return f.viewer, f.viewerOK
}

// fakeAnchor counts releases so tests can assert exactly-once semantics.
type fakeAnchor struct {
	pose       Pose
	poseOK     bool
	releases   int
	releaseErr error
}

func (a *fakeAnchor) Pose(ref ReferenceSpace) (Pose, bool) { return a.pose, a.poseOK }

func (a *fakeAnchor) Release() error {
	a.releases++
	return a.releaseErr
}

// fakeAnchorProvider holds creation callbacks until the test completes them,
// modelling the asynchronous creation latency.
type fakeAnchorProvider struct {
	requests []pendingCreate
}

type pendingCreate struct {
	pose Pose
	done func(Anchor, error)
}

func (p *fakeAnchorProvider) CreateAnchor(pose Pose, ref ReferenceSpace, done func(Anchor, error)) {
	p.requests = append(p.requests, pendingCreate{pose: pose, done: done})
}

// completeNext resolves the oldest outstanding request.
func (p *fakeAnchorProvider) completeNext(anchor Anchor, err error) bool {
	if len(p.requests) == 0 {
		return false
	}
	req := p.requests[0]
	p.requests = p.requests[1:]
	req.done(anchor, err)
	return true
}

// fakeLocationProvider lets tests push fixes and errors by hand.
type fakeLocationProvider struct {
	onUpdate  func(model.GeoPoint)
	onError   func(error)
	cancelled int
}

func (p *fakeLocationProvider) Subscribe(onUpdate func(model.GeoPoint), onError func(error)) func() {
	p.onUpdate = onUpdate
	p.onError = onError
	return func() { p.cancelled++ }
}

func (p *fakeLocationProvider) push(geo model.GeoPoint) {
	if p.onUpdate != nil {
		p.onUpdate(geo)
	}
}

func (p *fakeLocationProvider) fail(err error) {
	if p.onError != nil {
		p.onError(err)
	}
}

// statusRecorder keeps every published status line in order.
type statusRecorder struct {
	lines []string
}

func (r *statusRecorder) PublishStatus(text string) { r.lines = append(r.lines, text) }

func (r *statusRecorder) last() string {
	if len(r.lines) == 0 {
		return ""
	}
	return r.lines[len(r.lines)-1]
}

func floatPtr(v float64) *float64 { return &v }
