// Package xrsim provides an in-process stand-in for the external rendering
// and tracking engine: scripted hit-tests, anchors with configurable
// creation latency, a scripted GPS walk, and in-memory render nodes. It
// exists so the engine can run headless in tests and in cmd/arsim.
package xrsim

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// RenderNode is an in-memory render target. Reads are mutex-guarded because
// the overlay broadcaster snapshots nodes from its own goroutine.
type RenderNode struct {
	mu      sync.RWMutex
	visible bool
	pos     mgl64.Vec3
	orient  mgl64.Quat
	scale   float64
}

// NewRenderNode returns an invisible node at the origin with unit scale.
func NewRenderNode() *RenderNode {
	return &RenderNode{orient: mgl64.QuatIdent(), scale: 1}
}

func (n *RenderNode) SetVisible(visible bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visible = visible
}

func (n *RenderNode) Visible() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.visible
}

func (n *RenderNode) SetPosition(p mgl64.Vec3) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pos = p
}

func (n *RenderNode) Position() mgl64.Vec3 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.pos
}

func (n *RenderNode) SetOrientation(q mgl64.Quat) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orient = q
}

func (n *RenderNode) Orientation() mgl64.Quat {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.orient
}

func (n *RenderNode) SetScale(s float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scale = s
}

func (n *RenderNode) Scale() float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.scale
}
