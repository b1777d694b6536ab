package trellis

// ScaleMode selects how a scaling surface maps reference resolution to
// device pixels. The core writes it; the substrate interprets it.
type ScaleMode uint8

const (
	ScaleConstantPixel ScaleMode = iota // 1:1 pixels, no responsive scaling
	ScaleWithScreen                     // blend between width- and height-driven scale
)

// ScalingSurface is a responsive root the manager reconfigures whenever the
// screen dimensions change.
type ScalingSurface interface {
	SetReferenceResolution(width, height float64)
	SetMatchBlend(blend float64)
	SetScaleMode(mode ScaleMode)
}

// MatchPolicy classifies a screen by aspect ratio and yields the match blend
// for that band: 0 scales with width, 1 scales with height.
//
// Thresholds are clamped at use time — tall to [0.3, 0.5] and wide to
// [0.55, 0.8] — so a misconfigured policy cannot invert the bands.
type MatchPolicy struct {
	TallThreshold float64 // aspect at or below this is a tall screen
	WideThreshold float64 // aspect at or above this is a wide screen

	TallBlend     float64
	StandardBlend float64
	WideBlend     float64
}

// DefaultMatchPolicy targets phone-portrait UI: tall screens scale by width,
// wide screens by height, everything between blends evenly.
func DefaultMatchPolicy() MatchPolicy {
	return MatchPolicy{
		TallThreshold: 0.428,
		WideThreshold: 0.6,
		TallBlend:     0,
		StandardBlend: 0.5,
		WideBlend:     1,
	}
}

// clamped returns the policy with thresholds forced into their sane ranges.
func (m MatchPolicy) clamped() MatchPolicy {
	m.TallThreshold = clamp(m.TallThreshold, 0.3, 0.5)
	m.WideThreshold = clamp(m.WideThreshold, 0.55, 0.8)
	return m
}

// MatchValue returns the blend for a width x height screen. A height of zero
// or less returns the standard blend rather than dividing by zero.
func (m MatchPolicy) MatchValue(width, height float64) float64 {
	if height <= 0 {
		return m.StandardBlend
	}
	p := m.clamped()
	aspect := width / height
	switch {
	case aspect >= p.WideThreshold:
		return p.WideBlend
	case aspect <= p.TallThreshold:
		return p.TallBlend
	default:
		return p.StandardBlend
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BasicScalingSurface is a plain in-memory ScalingSurface. Hosts with a real
// layout substrate implement ScalingSurface on their canvas root instead.
type BasicScalingSurface struct {
	RefWidth, RefHeight float64
	Blend               float64
	Mode                ScaleMode
}

func (s *BasicScalingSurface) SetReferenceResolution(width, height float64) {
	s.RefWidth, s.RefHeight = width, height
}

func (s *BasicScalingSurface) SetMatchBlend(blend float64) { s.Blend = blend }

func (s *BasicScalingSurface) SetScaleMode(mode ScaleMode) { s.Mode = mode }
