package trellis

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// defaultTransitionDuration is used by the built-in animators when no
// duration is configured.
const defaultTransitionDuration float32 = 0.25

// FadeAnimator is a ready-made Animator that fades a panel's surface opacity
// in and out. Embed it in a Behavior to pick it up:
//
//	type PauseMenu struct {
//		trellis.FadeAnimator
//	}
//
// One transition at a time per panel is guaranteed by the panel's
// transitioning guard, so a single tween slot suffices.
type FadeAnimator struct {
	Duration float32        // seconds; zero means defaultTransitionDuration
	EaseIn   ease.TweenFunc // nil means ease.OutQuad
	EaseOut  ease.TweenFunc // nil means ease.InQuad

	surface Surface
	tween   *gween.Tween
	done    func()
}

// AnimateIn fades the surface from its current opacity to fully opaque.
func (a *FadeAnimator) AnimateIn(p *Panel, done func()) {
	a.start(p.Surface(), float32(p.Surface().Opacity()), 1, easeOr(a.EaseIn, ease.OutQuad), done)
}

// AnimateOut fades the surface from its current opacity to fully
// transparent.
func (a *FadeAnimator) AnimateOut(p *Panel, done func()) {
	a.start(p.Surface(), float32(p.Surface().Opacity()), 0, easeOr(a.EaseOut, ease.InQuad), done)
}

func (a *FadeAnimator) start(s Surface, from, to float32, fn ease.TweenFunc, done func()) {
	d := a.Duration
	if d <= 0 {
		d = defaultTransitionDuration
	}
	a.surface = s
	a.tween = gween.New(from, to, d, fn)
	a.done = done
}

// Tick advances the active fade. Driven by the manager each frame while the
// panel is transitioning.
func (a *FadeAnimator) Tick(dt float32) {
	if a.tween == nil {
		return
	}
	val, finished := a.tween.Update(dt)
	a.surface.SetOpacity(float64(val))
	if finished {
		a.tween = nil
		done := a.done
		a.done = nil
		done()
	}
}

// SlideAnimator is a ready-made Animator that slides a panel in from an
// offset and back out to it. The surface must implement Offsetter; if it
// does not, transitions complete immediately.
type SlideAnimator struct {
	OffsetX, OffsetY float64        // hidden-position offset, e.g. {0, 400}
	Duration         float32        // seconds; zero means defaultTransitionDuration
	EaseIn           ease.TweenFunc // nil means ease.OutQuad
	EaseOut          ease.TweenFunc // nil means ease.InQuad

	target         Offsetter
	tweenX, tweenY *gween.Tween
	doneX, doneY   bool
	done           func()
}

// AnimateIn slides the surface from the configured offset to rest.
func (s *SlideAnimator) AnimateIn(p *Panel, done func()) {
	target, ok := p.Surface().(Offsetter)
	if !ok {
		done()
		return
	}
	target.SetOffset(s.OffsetX, s.OffsetY)
	s.start(target, 0, 0, easeOr(s.EaseIn, ease.OutQuad), done)
}

// AnimateOut slides the surface from rest to the configured offset.
func (s *SlideAnimator) AnimateOut(p *Panel, done func()) {
	target, ok := p.Surface().(Offsetter)
	if !ok {
		done()
		return
	}
	s.start(target, s.OffsetX, s.OffsetY, easeOr(s.EaseOut, ease.InQuad), done)
}

func easeOr(fn, fallback ease.TweenFunc) ease.TweenFunc {
	if fn != nil {
		return fn
	}
	return fallback
}

func (s *SlideAnimator) start(target Offsetter, toX, toY float64, fn ease.TweenFunc, done func()) {
	d := s.Duration
	if d <= 0 {
		d = defaultTransitionDuration
	}
	fromX, fromY := target.Offset()
	s.target = target
	s.tweenX = gween.New(float32(fromX), float32(toX), d, fn)
	s.tweenY = gween.New(float32(fromY), float32(toY), d, fn)
	s.doneX = false
	s.doneY = false
	s.done = done
}

// Tick advances the active slide.
func (s *SlideAnimator) Tick(dt float32) {
	if s.tweenX == nil {
		return
	}
	x, y := s.target.Offset()
	if !s.doneX {
		val, finished := s.tweenX.Update(dt)
		x = float64(val)
		s.doneX = finished
	}
	if !s.doneY {
		val, finished := s.tweenY.Update(dt)
		y = float64(val)
		s.doneY = finished
	}
	s.target.SetOffset(x, y)
	if s.doneX && s.doneY {
		s.tweenX = nil
		s.tweenY = nil
		done := s.done
		s.done = nil
		done()
	}
}
