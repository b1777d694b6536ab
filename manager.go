package trellis

import "fmt"

// Options configures a Manager. The zero value works for headless use: no
// containers, no opening view, default scaling policy.
type Options struct {
	// Opening is the full-screen view shown at StartUp. Must be registered
	// with RoleFullScreen and LoadEager; otherwise it is discarded with a
	// diagnostic and the manager starts with an empty full-screen stack.
	Opening Kind

	// Containers per navigation role. Missing containers are reported at
	// StartUp but never fatal; panels then simply aren't attached anywhere.
	Screens    Container
	Overlays   Container
	Transients Container

	// Scaling classifies screens by aspect ratio. Zero value means
	// DefaultMatchPolicy.
	Scaling MatchPolicy

	// ReferenceWidth and ReferenceHeight are pushed to every scaling
	// surface. Zero means 1080 x 1920.
	ReferenceWidth  float64
	ReferenceHeight float64
}

// Manager owns the navigation state: both stacks, the loaded-panel table,
// the timers, and the global interaction gate. One Manager per game; drive
// it with Update every tick (Game does this for ebiten hosts).
//
// Manager is single-threaded by design. Every method must be called from
// the tick thread; there are no locks and no atomics.
type Manager struct {
	registry *Registry
	opts     Options
	bus      *Bus
	sched    scheduler
	policy   MatchPolicy

	loaded  map[Kind]*Panel
	loading map[Kind]bool // in-flight guard keyed by kind

	screens  []*Panel // full-screen stack; last element is the top
	overlays []*Panel // overlay stack; last element is the top

	// topOverlayOrder tracks the order value of the overlay stack top so
	// pushes stay strictly increasing even after arbitrary removals.
	topOverlayOrder int

	gateEnabled bool
	gateMin     Priority

	scalers            []ScalingSurface
	screenW, screenH   float64
	appliedW, appliedH float64

	sink     EventSink
	reporter Reporter
	debug    bool
	started  bool

	requests []request
	runner   *FlowRunner
}

// NewManager creates a manager over a registry. Call StartUp before the
// first tick. Panics if registry is nil.
func NewManager(registry *Registry, opts Options) *Manager {
	if registry == nil {
		panic("trellis: cannot create manager with nil registry")
	}
	if opts.Scaling == (MatchPolicy{}) {
		opts.Scaling = DefaultMatchPolicy()
	}
	if opts.ReferenceWidth <= 0 {
		opts.ReferenceWidth = 1080
	}
	if opts.ReferenceHeight <= 0 {
		opts.ReferenceHeight = 1920
	}
	m := &Manager{
		registry:        registry,
		opts:            opts,
		policy:          opts.Scaling,
		loaded:          make(map[Kind]*Panel),
		loading:         make(map[Kind]bool),
		topOverlayOrder: overlayOrderBase,
		gateEnabled:     true,
		reporter:        stderrReporter,
	}
	m.bus = newBus(m)
	return m
}

// Bus returns the manager's request/notification channel.
func (m *Manager) Bus() *Bus { return m.bus }

// SetEventSink sets the optional bridge that receives every lifecycle event
// (see the trellis/ecs submodule for a Donburi-backed sink).
func (m *Manager) SetEventSink(sink EventSink) { m.sink = sink }

// SetReporter replaces the diagnostic sink for the manager and every loaded
// panel. A nil reporter silences diagnostics.
func (m *Manager) SetReporter(r Reporter) {
	m.reporter = r
	for _, p := range m.loaded {
		p.reporter = r
	}
}

// SetDebugMode enables verbose per-operation diagnostics.
func (m *Manager) SetDebugMode(enabled bool) { m.debug = enabled }

// --- Startup ---

// StartUp validates the configuration, initializes scaling surfaces,
// instantiates every eager panel, and shows the opening view. Idempotent:
// calls after the first are no-ops.
func (m *Manager) StartUp() {
	if m.started {
		return
	}
	m.started = true

	if m.opts.Screens == nil || m.opts.Overlays == nil || m.opts.Transients == nil {
		m.reportf("warning: one or more role containers are missing; panels will not be attached")
	}

	opening := m.opts.Opening
	if opening != KindNone {
		cfg, ok := m.registry.Lookup(opening)
		if !ok || cfg.Role != RoleFullScreen || cfg.Load != LoadEager {
			m.reportErr(fmt.Errorf("%w: %q", ErrInvalidOpeningView, opening))
			opening = KindNone
		}
	}

	for _, s := range m.scalers {
		m.initScaler(s)
	}

	// Eager panels come up initialized but hidden; only the opening view is
	// activated, through the normal Show path.
	for _, kind := range m.registry.Kinds() {
		cfg, _ := m.registry.Lookup(kind)
		if cfg.Load != LoadEager {
			continue
		}
		if _, err := m.GetOrLoad(kind); err != nil {
			m.reportErr(err)
		}
	}

	if opening != KindNone {
		m.Show(opening, nil, nil)
	}
}

// --- Loading ---

// GetOrLoad returns the live panel for kind, instantiating it on first use.
// A cached panel's pending idle destruction is canceled, so reuse within the
// idle window preserves instance identity. At most one instance per kind
// ever exists while its cache entry lives.
func (m *Manager) GetOrLoad(kind Kind) (*Panel, error) {
	if p, ok := m.loaded[kind]; ok {
		m.sched.cancel(p, timerDestroy)
		return p, nil
	}
	if m.loading[kind] {
		return nil, fmt.Errorf("%w: %q", ErrLoadInFlight, kind)
	}
	cfg, ok := m.registry.Lookup(kind)
	if !ok || cfg.New == nil {
		return nil, fmt.Errorf("%w: %q", ErrConfigurationMissing, kind)
	}

	m.loading[kind] = true
	behavior, surface := cfg.New()
	delete(m.loading, kind)

	if behavior == nil || surface == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingSurface, kind)
	}

	p := NewPanel(kind, behavior, surface)
	p.reporter = m.reporter
	if err := p.Initialize(cfg); err != nil {
		return nil, fmt.Errorf("initialize %q: %w", kind, err)
	}
	surface.SetOrder(cfg.BaseOrder)
	surface.SetRenderMode(RenderModeScreen)
	if c := m.containerFor(cfg.Role); c != nil {
		c.Attach(surface)
	}
	m.loaded[kind] = p
	m.debugf("loaded panel %q (%s, %s)", kind, cfg.Role, cfg.Load)
	return p, nil
}

// --- Show ---

// Show resolves (or loads) the panel for kind and routes it by role:
// full-screen views push the stack and close non-persistent overlays,
// overlays stack above the current screen, transients show with a timed
// auto-dismiss. Faults are reported and dropped; Show never fails loudly.
func (m *Manager) Show(kind Kind, data any, onClose CloseCallback) {
	p, err := m.GetOrLoad(kind)
	if err != nil {
		m.reportErr(err)
		return
	}
	if p.Transitioning() {
		m.reportErr(fmt.Errorf("%w: %q", ErrReentrantTransition, kind))
		return
	}
	switch p.Config().Role {
	case RoleFullScreen:
		m.showScreen(p, data, onClose)
	case RoleOverlay:
		m.showOverlay(p, data, onClose)
	case RoleTransient:
		m.showTransient(p, data, onClose)
	}
}

func (m *Manager) showScreen(p *Panel, data any, onClose CloseCallback) {
	previous := KindNone
	if top := m.topScreen(); top != nil {
		if top == p {
			// Already the active screen: refresh in place, no navigation.
			if err := p.Show(data, onClose); err != nil {
				m.reportErr(err)
				return
			}
			m.applyGate(p)
			m.emitShown(p.kind)
			return
		}
		previous = top.kind
		top.surface.SetVisible(false)
	}

	m.closeNonPersistentOverlays()

	m.screens = append(m.screens, p)
	if err := p.Show(data, onClose); err != nil {
		m.reportErr(err)
	}
	m.applyGate(p)
	m.emitShown(p.kind)
	m.emitScreenChanged(p.kind, previous)
}

func (m *Manager) showOverlay(p *Panel, data any, onClose CloseCallback) {
	if m.overlayIndex(p) >= 0 {
		// Already stacked: refresh with the new payload, keep position and
		// order untouched.
		if err := p.Show(data, onClose); err != nil {
			m.reportErr(err)
		}
		return
	}

	m.topOverlayOrder += overlayOrderStep
	p.surface.SetOrder(m.topOverlayOrder)
	m.overlays = append(m.overlays, p)
	if err := p.Show(data, onClose); err != nil {
		m.reportErr(err)
	}
	m.applyGate(p)
	m.emitShown(p.kind)

	if len(m.overlays) > overlaySoftLimit {
		m.reportf("warning: %d overlays open, above the soft limit of %d",
			len(m.overlays), overlaySoftLimit)
	}
}

func (m *Manager) showTransient(p *Panel, data any, onClose CloseCallback) {
	if err := p.Show(data, onClose); err != nil {
		m.reportErr(err)
		return
	}
	m.applyGate(p)
	m.emitShown(p.kind)

	m.sched.schedule(p, timerAutoHide, p.Config().Duration, func() {
		if !p.IsVisible() {
			return
		}
		m.hidePanel(p, nil)
	})
}

// --- Hide ---

// Hide removes the panel for kind from whichever stack holds it and runs its
// hide lifecycle. Hiding a buried panel splices it out while the rest of the
// stack keeps its relative order. Hiding the active full-screen view resumes
// the one underneath.
func (m *Manager) Hide(kind Kind, result any) {
	p, ok := m.loaded[kind]
	if !ok {
		if _, registered := m.registry.Lookup(kind); !registered {
			m.reportErr(fmt.Errorf("%w: %q", ErrConfigurationMissing, kind))
		} else {
			m.debugf("hide requested for %q, which is not loaded", kind)
		}
		return
	}
	m.hidePanel(p, result)
}

func (m *Manager) hidePanel(p *Panel, result any) {
	if p.Transitioning() {
		m.reportErr(fmt.Errorf("%w: %q", ErrReentrantTransition, p.kind))
		return
	}
	if p.State() == StateHidden {
		// No phantom notification, and no fresh destruction timer: a
		// redundant hide must not extend the panel's idle window.
		m.debugf("hide requested for %q, which is already hidden", p.kind)
		return
	}

	wasTop := m.topScreen() == p
	if i := lastIndex(m.screens, p); i >= 0 {
		m.screens = splice(m.screens, i)
	}
	if i := m.overlayIndex(p); i >= 0 {
		m.overlays = splice(m.overlays, i)
		if len(m.overlays) == 0 {
			m.topOverlayOrder = overlayOrderBase
		} else {
			m.topOverlayOrder = m.overlays[len(m.overlays)-1].surface.Order()
		}
	}

	if err := p.Hide(result); err != nil {
		m.reportErr(err)
	}
	m.emitHidden(p.kind)

	if p.Config().Load == LoadOnDemand {
		m.sched.schedule(p, timerDestroy, p.Config().IdleDelay, func() {
			m.destroyIfHidden(p)
		})
	}

	if wasTop {
		if top := m.topScreen(); top != nil {
			// Resume: reactivate and re-show with no payload and no
			// callback. The panel's Refresh hook sees nil data.
			top.surface.SetVisible(true)
			if err := top.Show(nil, nil); err != nil {
				m.reportErr(err)
			}
			m.applyGate(top)
		}
	}
}

// HideAllOverlays closes every overlay through the standard hide path, top
// first, persistent or not.
func (m *Manager) HideAllOverlays() {
	for i := len(m.overlays) - 1; i >= 0; i-- {
		m.hidePanel(m.overlays[i], nil)
	}
}

// closeNonPersistentOverlays runs during full-screen navigation. Closing
// goes through the standard hide path so callbacks fire and destruction
// timers start, exactly as if each overlay had been hidden individually.
func (m *Manager) closeNonPersistentOverlays() {
	stack := append([]*Panel(nil), m.overlays...)
	for i := len(stack) - 1; i >= 0; i-- {
		if !stack[i].Config().Persists {
			m.hidePanel(stack[i], nil)
		}
	}
}

// destroyIfHidden is the idle-destruction timer body. A panel shown again
// within the idle window has its timer canceled by GetOrLoad, but the
// still-hidden check guards the race with a show on the very same tick.
func (m *Manager) destroyIfHidden(p *Panel) {
	if p.State() != StateHidden {
		return
	}
	m.sched.cancelAll(p)
	p.Destroy()
	if c := m.containerFor(p.Config().Role); c != nil {
		c.Detach(p.surface)
	}
	delete(m.loaded, p.kind)
	m.debugf("destroyed idle panel %q", p.kind)
}

// --- Back button ---

// PressBack applies the back policy: the top overlay goes first if it allows
// back-dismissal and is not mid-transition; otherwise the top full-screen
// view goes, but never the last one; otherwise nothing happens and the host
// decides what "exit" means.
func (m *Manager) PressBack() {
	if top := m.topOverlay(); top != nil && top.Config().AllowBack && !top.Transitioning() {
		m.hidePanel(top, nil)
		return
	}
	if len(m.screens) > 1 {
		top := m.topScreen()
		if top.Config().AllowBack && !top.Transitioning() {
			m.hidePanel(top, nil)
		}
	}
}

// --- Interaction gate ---

// SetGlobalInteraction updates the gate and re-applies interactivity to
// every currently visible panel. While disabled, only panels whose priority
// strictly exceeds minPriority stay interactive; enabling restores
// interactivity to everyone regardless of priority.
//
// Buried full-screen panels have a deactivated surface and are left alone;
// they are re-gated when they resume.
func (m *Manager) SetGlobalInteraction(enabled bool, minPriority Priority) {
	m.gateEnabled = enabled
	m.gateMin = minPriority
	for _, p := range m.loaded {
		if !p.surface.IsVisible() {
			continue
		}
		if p.State() == StateVisible || p.State() == StateShowing {
			m.applyGate(p)
		}
	}
}

func (m *Manager) applyGate(p *Panel) {
	interactive := m.gateEnabled || p.Config().Priority > m.gateMin
	p.surface.SetInteractive(interactive)
}

// --- Scaling ---

// RegisterScalingSurface adds a responsive root the manager keeps scaled.
// Surfaces registered after StartUp are initialized immediately.
func (m *Manager) RegisterScalingSurface(s ScalingSurface) {
	m.scalers = append(m.scalers, s)
	if m.started {
		m.initScaler(s)
	}
}

func (m *Manager) initScaler(s ScalingSurface) {
	s.SetScaleMode(ScaleWithScreen)
	s.SetReferenceResolution(m.opts.ReferenceWidth, m.opts.ReferenceHeight)
	s.SetMatchBlend(m.policy.MatchValue(m.screenW, m.screenH))
}

// SetScreenSize records the current screen dimensions. Scaling is re-applied
// on the next Update when they changed; the Game adapter calls this from
// ebiten's Layout.
func (m *Manager) SetScreenSize(width, height float64) {
	m.screenW, m.screenH = width, height
}

// ApplyScaling forces a re-application of the match blend to every
// registered scaling surface for the current screen dimensions.
func (m *Manager) ApplyScaling() {
	blend := m.policy.MatchValue(m.screenW, m.screenH)
	for _, s := range m.scalers {
		s.SetMatchBlend(blend)
	}
	m.appliedW, m.appliedH = m.screenW, m.screenH
}

// --- Tick ---

// Update advances the manager by one cooperative tick: the flow runner
// steps, one queued request is consumed, timers fire, transitions animate,
// and scaling is re-applied if the screen dimensions changed.
func (m *Manager) Update(dt float32) {
	if m.runner != nil {
		m.runner.step(m)
	}
	m.consumeRequest()
	m.sched.update(dt)
	for _, p := range m.loaded {
		p.update(dt)
	}
	if m.screenW != m.appliedW || m.screenH != m.appliedH {
		m.ApplyScaling()
	}
}

// --- Helpers ---

func (m *Manager) containerFor(role Role) Container {
	switch role {
	case RoleFullScreen:
		return m.opts.Screens
	case RoleOverlay:
		return m.opts.Overlays
	default:
		return m.opts.Transients
	}
}

func (m *Manager) topScreen() *Panel {
	if len(m.screens) == 0 {
		return nil
	}
	return m.screens[len(m.screens)-1]
}

func (m *Manager) topOverlay() *Panel {
	if len(m.overlays) == 0 {
		return nil
	}
	return m.overlays[len(m.overlays)-1]
}

func (m *Manager) overlayIndex(p *Panel) int {
	return lastIndex(m.overlays, p)
}

// lastIndex searches from the top of a stack so duplicate instances resolve
// to the topmost occurrence.
func lastIndex(stack []*Panel, p *Panel) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == p {
			return i
		}
	}
	return -1
}

// splice removes index i, preserving the relative order of the rest.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func splice(stack []*Panel, i int) []*Panel {
	copy(stack[i:], stack[i+1:])
	stack[len(stack)-1] = nil
	return stack[:len(stack)-1]
}

// --- Emission ---

func (m *Manager) emitShown(kind Kind) {
	m.debugf("panel shown: %q", kind)
	m.bus.emitShown(kind)
	if m.sink != nil {
		m.sink.EmitPanelEvent(PanelEvent{Type: EventPanelShown, Kind: kind})
	}
}

func (m *Manager) emitHidden(kind Kind) {
	m.debugf("panel hidden: %q", kind)
	m.bus.emitHidden(kind)
	if m.sink != nil {
		m.sink.EmitPanelEvent(PanelEvent{Type: EventPanelHidden, Kind: kind})
	}
}

func (m *Manager) emitScreenChanged(newKind, previous Kind) {
	m.debugf("screen changed: %q -> %q", previous, newKind)
	m.bus.emitScreenChanged(newKind, previous)
	if m.sink != nil {
		m.sink.EmitPanelEvent(PanelEvent{
			Type:     EventScreenChanged,
			Kind:     newKind,
			Previous: previous,
		})
	}
}

// --- Diagnostics ---

func (m *Manager) reportf(format string, args ...any) {
	if m.reporter != nil {
		m.reporter(format, args...)
	}
}

func (m *Manager) reportErr(err error) {
	m.reportf("warning: %v", err)
}

func (m *Manager) debugf(format string, args ...any) {
	if m.debug {
		m.reportf(format, args...)
	}
}
