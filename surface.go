package trellis

import (
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// RenderMode selects how a surface is composited by the host renderer.
// The navigation core only writes this value; interpretation belongs to the
// rendering substrate.
type RenderMode uint8

const (
	RenderModeScreen RenderMode = iota // composited in screen space (default)
	RenderModeCamera                   // composited through a camera
	RenderModeWorld                    // placed in world space
)

// Surface is the narrow contract the navigation core holds on a panel's
// visual object. The core reads and writes these fields; it never draws.
//
// Implementations must treat every setter as cheap and idempotent: the
// manager may rewrite the same value on consecutive ticks.
type Surface interface {
	SetVisible(visible bool)
	IsVisible() bool

	// Order is the draw order within the surface's container; higher draws
	// on top.
	SetOrder(order int)
	Order() int

	SetInteractive(interactive bool)
	IsInteractive() bool

	// Opacity is in [0, 1]. Transition animators drive it; a surface that
	// ignores opacity still satisfies the contract.
	SetOpacity(alpha float64)
	Opacity() float64

	SetRenderMode(mode RenderMode)
}

// Offsetter is an optional Surface extension for animators that translate a
// panel during transitions. Surfaces without it simply don't slide.
type Offsetter interface {
	SetOffset(x, y float64)
	Offset() (x, y float64)
}

// Container groups the surfaces of one navigation role. The manager attaches
// a panel's surface on instantiation and detaches it on destruction.
type Container interface {
	Attach(s Surface)
	Detach(s Surface)
}

// --- BasicSurface ---

// BasicSurface is a plain in-memory Surface with no rendering attached.
// Useful for headless panels and tests.
type BasicSurface struct {
	visible     bool
	order       int
	interactive bool
	opacity     float64
	mode        RenderMode
	offX, offY  float64
}

// NewBasicSurface returns a hidden, interactive, fully opaque surface.
func NewBasicSurface() *BasicSurface {
	return &BasicSurface{interactive: true, opacity: 1}
}

func (s *BasicSurface) SetVisible(visible bool)         { s.visible = visible }
func (s *BasicSurface) IsVisible() bool                 { return s.visible }
func (s *BasicSurface) SetOrder(order int)              { s.order = order }
func (s *BasicSurface) Order() int                      { return s.order }
func (s *BasicSurface) SetInteractive(interactive bool) { s.interactive = interactive }
func (s *BasicSurface) IsInteractive() bool             { return s.interactive }
func (s *BasicSurface) SetOpacity(alpha float64)        { s.opacity = alpha }
func (s *BasicSurface) Opacity() float64                { return s.opacity }
func (s *BasicSurface) SetRenderMode(mode RenderMode)   { s.mode = mode }
func (s *BasicSurface) RenderMode() RenderMode          { return s.mode }
func (s *BasicSurface) SetOffset(x, y float64)          { s.offX, s.offY = x, y }
func (s *BasicSurface) Offset() (x, y float64)          { return s.offX, s.offY }

// --- NodeSurface ---

// NodeSurface is an ebiten-backed Surface that owns an offscreen image and
// composites it into a Layer. Panels draw whatever they like into Image;
// trellis handles visibility, stacking order, opacity, and offsets.
type NodeSurface struct {
	BasicSurface

	// Image is the panel's canvas. Never nil after NewNodeSurface.
	Image *ebiten.Image

	// X, Y position the canvas within the layer.
	X, Y float64
}

// NewNodeSurface creates a hidden surface with a width x height canvas.
// Panics if width or height is not positive, matching ebiten.NewImage.
func NewNodeSurface(width, height int) *NodeSurface {
	return &NodeSurface{
		BasicSurface: *NewBasicSurface(),
		Image:        ebiten.NewImage(width, height),
	}
}

// draw composites the surface onto target, honoring offset and opacity.
func (s *NodeSurface) draw(target *ebiten.Image) {
	if !s.IsVisible() || s.Opacity() <= 0 {
		return
	}
	ox, oy := s.Offset()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(s.X+ox, s.Y+oy)
	op.ColorScale.ScaleAlpha(float32(s.Opacity()))
	target.DrawImage(s.Image, op)
}

// --- Layer ---

// Layer is the built-in Container: an order-sorted set of surfaces with a
// Draw method for the ebiten game loop. One Layer per navigation role is the
// usual arrangement (see Game).
type Layer struct {
	name     string
	surfaces []Surface
}

// NewLayer creates an empty layer. The name only appears in diagnostics.
func NewLayer(name string) *Layer {
	return &Layer{name: name}
}

// Attach adds s to the layer. Attaching an already attached surface is a
// no-op.
func (l *Layer) Attach(s Surface) {
	for _, existing := range l.surfaces {
		if existing == s {
			return
		}
	}
	l.surfaces = append(l.surfaces, s)
}

// Detach removes s from the layer. Detaching an unknown surface is a no-op.
func (l *Layer) Detach(s Surface) {
	for i, existing := range l.surfaces {
		if existing == s {
			copy(l.surfaces[i:], l.surfaces[i+1:])
			l.surfaces[len(l.surfaces)-1] = nil
			l.surfaces = l.surfaces[:len(l.surfaces)-1]
			return
		}
	}
}

// Surfaces returns the attached surfaces sorted by ascending order value.
// The returned slice MUST NOT be mutated by the caller.
func (l *Layer) Surfaces() []Surface {
	sort.SliceStable(l.surfaces, func(i, j int) bool {
		return l.surfaces[i].Order() < l.surfaces[j].Order()
	})
	return l.surfaces
}

// Draw composites every visible NodeSurface in order. Surfaces of other
// types are skipped; they are someone else's rendering problem.
func (l *Layer) Draw(target *ebiten.Image) {
	for _, s := range l.Surfaces() {
		if ns, ok := s.(*NodeSurface); ok {
			ns.draw(target)
		}
	}
}
