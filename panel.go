package trellis

// Behavior is the required hook set every panel implements. The manager
// drives the hooks through the panel lifecycle:
//
//	Setup    — exactly once, during Initialize, while the panel is hidden.
//	Refresh  — on every Show, synchronously before the entrance animation.
//	Conceal  — on every Hide, synchronously before the exit animation.
//	Teardown — exactly once, during Destroy.
//
// A Behavior that also implements Animator customizes its transitions;
// otherwise show and hide complete immediately with no animation.
type Behavior interface {
	Setup(p *Panel)
	Refresh(p *Panel, data any)
	Conceal(p *Panel)
	Teardown(p *Panel)
}

// Animator is the optional transition hook pair. AnimateIn and AnimateOut
// MUST invoke done exactly once — synchronously or on a later tick. The
// state machine has no timeout: an animator that never calls done leaves its
// panel transitioning forever, and a second call is swallowed with a
// diagnostic.
type Animator interface {
	AnimateIn(p *Panel, done func())
	AnimateOut(p *Panel, done func())
}

// TickAnimator is implemented by animators that advance over time. The
// manager ticks the active animator of every transitioning panel each frame.
type TickAnimator interface {
	Tick(dt float32)
}

// identityAnimator completes every transition immediately. Used when a
// Behavior does not implement Animator.
type identityAnimator struct{}

func (identityAnimator) AnimateIn(_ *Panel, done func())  { done() }
func (identityAnimator) AnimateOut(_ *Panel, done func()) { done() }

// Panel is one live UI unit: an identity, a surface, a behavior, and the
// visibility state machine that ties them together. Panels know nothing
// about other panels; stacking is the Manager's job.
type Panel struct {
	kind     Kind
	cfg      Config
	surface  Surface
	behavior Behavior
	animator Animator

	state   PanelState
	closeFn CloseCallback

	reporter Reporter
}

// NewPanel wires a behavior and a surface into a panel. The panel is not
// usable until Initialize. Panics if behavior or surface is nil; a factory
// without a surface is a recoverable manager fault (ErrMissingSurface), but
// constructing a panel around nil is a programmer error.
func NewPanel(kind Kind, behavior Behavior, surface Surface) *Panel {
	if behavior == nil {
		panic("trellis: cannot create panel with nil behavior")
	}
	if surface == nil {
		panic("trellis: cannot create panel with nil surface")
	}
	p := &Panel{
		kind:     kind,
		surface:  surface,
		behavior: behavior,
		reporter: stderrReporter,
	}
	if anim, ok := behavior.(Animator); ok {
		p.animator = anim
	} else {
		p.animator = identityAnimator{}
	}
	return p
}

// Kind returns the panel's stable identity.
func (p *Panel) Kind() Kind { return p.kind }

// Config returns the metadata the panel was initialized with. Zero value
// before Initialize.
func (p *Panel) Config() Config { return p.cfg }

// Surface returns the panel's rendering surface.
func (p *Panel) Surface() Surface { return p.surface }

// State returns the current lifecycle state.
func (p *Panel) State() PanelState { return p.state }

// IsVisible reports whether the panel has fully completed a show.
// False while an entrance animation is still in flight.
func (p *Panel) IsVisible() bool { return p.state == StateVisible }

// Transitioning reports whether a show or hide animation is in flight.
func (p *Panel) Transitioning() bool {
	return p.state == StateShowing || p.state == StateHiding
}

// Initialize binds the config, forces the surface hidden with no animation,
// and runs the Setup hook. Valid exactly once from the uninitialized state;
// a second call reports and changes nothing.
func (p *Panel) Initialize(cfg Config) error {
	if p.state != StateUninitialized {
		return ErrUninitializedAccess
	}
	p.cfg = cfg
	p.surface.SetVisible(false)
	p.behavior.Setup(p)
	p.state = StateHidden
	return nil
}

// Show activates the surface, stores onClose (replacing any previous
// callback — the earlier caller's callback is dropped, not queued), runs the
// Refresh hook, then starts the entrance animation. The panel becomes
// Visible when the animation completes.
//
// Rejected while transitioning or before Initialize. Showing an already
// visible panel is a refresh: the hook and animation run again.
func (p *Panel) Show(data any, onClose CloseCallback) error {
	if p.state == StateUninitialized || p.state == StateDestroyed {
		return ErrUninitializedAccess
	}
	if p.Transitioning() {
		return ErrReentrantTransition
	}
	p.closeFn = onClose
	p.surface.SetVisible(true)
	p.state = StateShowing
	p.behavior.Refresh(p, data)
	p.animator.AnimateIn(p, p.completeOnce(func() {
		p.state = StateVisible
	}))
	return nil
}

// Hide runs the Conceal hook, then the exit animation. When the animation
// completes the surface is deactivated, the state flips to Hidden, and the
// stored close callback (if any) fires exactly once with result.
//
// Rejected while transitioning or before Initialize. Hiding an already
// hidden panel is a no-op: its callback has already fired and must not fire
// again.
func (p *Panel) Hide(result any) error {
	if p.state == StateUninitialized || p.state == StateDestroyed {
		return ErrUninitializedAccess
	}
	if p.Transitioning() {
		return ErrReentrantTransition
	}
	if p.state == StateHidden {
		return nil
	}
	p.state = StateHiding
	p.behavior.Conceal(p)
	p.animator.AnimateOut(p, p.completeOnce(func() {
		p.surface.SetVisible(false)
		p.state = StateHidden
		if cb := p.closeFn; cb != nil {
			p.closeFn = nil
			cb(result)
		}
	}))
	return nil
}

// Destroy runs the Teardown hook and moves the panel to its terminal state.
// Only initialized panels tear down; repeat calls are no-ops.
func (p *Panel) Destroy() {
	if p.state == StateUninitialized || p.state == StateDestroyed {
		p.state = StateDestroyed
		return
	}
	p.behavior.Teardown(p)
	p.closeFn = nil
	p.state = StateDestroyed
}

// update advances the active animator while a transition is in flight.
// Driven by Manager.Update each tick.
func (p *Panel) update(dt float32) {
	if !p.Transitioning() {
		return
	}
	if ticker, ok := p.animator.(TickAnimator); ok {
		ticker.Tick(dt)
	}
}

// completeOnce wraps an animation completion so a misbehaving animator that
// calls done twice cannot corrupt the state machine.
func (p *Panel) completeOnce(fn func()) func() {
	fired := false
	return func() {
		if fired {
			if p.reporter != nil {
				p.reporter("warning: panel %q animation completed twice; ignoring", p.kind)
			}
			return
		}
		fired = true
		fn()
	}
}
