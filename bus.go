package trellis

// Bus is the decoupled request/notification channel between external code
// and the manager. Listeners subscribe to lifecycle notifications; callers
// that must not hold a Manager reference issue fire-and-forget requests.
//
// A Bus is owned by exactly one Manager (Manager.Bus) and shares its
// single-threaded model: subscribe, emit, and request all happen on the
// tick thread. Close tears down every subscription; the manager keeps
// working, it just notifies no one.
type Bus struct {
	mgr *Manager

	shown  []shownHandler
	hidden []hiddenHandler
	screen []screenHandler
	nextID uint32
}

type shownHandler struct {
	id uint32
	fn func(kind Kind)
}

type hiddenHandler struct {
	id uint32
	fn func(kind Kind)
}

type screenHandler struct {
	id uint32
	fn func(newKind, previous Kind)
}

func newBus(mgr *Manager) *Bus {
	return &Bus{mgr: mgr}
}

// Subscription allows removing a registered listener.
type Subscription struct {
	id    uint32
	bus   *Bus
	event EventType
}

// Remove unregisters this listener so it no longer fires. Removing twice,
// or removing a zero-value Subscription, is a no-op.
func (s Subscription) Remove() {
	if s.bus == nil {
		return
	}
	switch s.event {
	case EventPanelShown:
		s.bus.shown = removeShownHandler(s.bus.shown, s.id)
	case EventPanelHidden:
		s.bus.hidden = removeHiddenHandler(s.bus.hidden, s.id)
	case EventScreenChanged:
		s.bus.screen = removeScreenHandler(s.bus.screen, s.id)
	}
}

func removeShownHandler(s []shownHandler, id uint32) []shownHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = shownHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeHiddenHandler(s []hiddenHandler, id uint32) []hiddenHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = hiddenHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeScreenHandler(s []screenHandler, id uint32) []screenHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = screenHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

// --- Notification surface ---

// OnPanelShown registers a listener for panel-shown notifications.
func (b *Bus) OnPanelShown(fn func(kind Kind)) Subscription {
	b.nextID++
	b.shown = append(b.shown, shownHandler{id: b.nextID, fn: fn})
	return Subscription{id: b.nextID, bus: b, event: EventPanelShown}
}

// OnPanelHidden registers a listener for panel-hidden notifications.
func (b *Bus) OnPanelHidden(fn func(kind Kind)) Subscription {
	b.nextID++
	b.hidden = append(b.hidden, hiddenHandler{id: b.nextID, fn: fn})
	return Subscription{id: b.nextID, bus: b, event: EventPanelHidden}
}

// OnScreenChanged registers a listener for full-screen navigation changes.
// previous is KindNone for the very first screen.
func (b *Bus) OnScreenChanged(fn func(newKind, previous Kind)) Subscription {
	b.nextID++
	b.screen = append(b.screen, screenHandler{id: b.nextID, fn: fn})
	return Subscription{id: b.nextID, bus: b, event: EventScreenChanged}
}

// Close clears every subscription. Emissions after Close reach no one;
// subscriptions made after Close work normally.
func (b *Bus) Close() {
	b.shown = nil
	b.hidden = nil
	b.screen = nil
}

// --- Request surface ---

// All requests are fire-and-forget: they are queued and consumed by
// Manager.Update, one per tick, in submission order.

// RequestShow queues a show request for kind.
func (b *Bus) RequestShow(kind Kind, data any, onClose CloseCallback) {
	b.mgr.InjectShow(kind, data, onClose)
}

// RequestHide queues a hide request for kind.
func (b *Bus) RequestHide(kind Kind, result any) {
	b.mgr.InjectHide(kind, result)
}

// RequestBack queues a back-button press.
func (b *Bus) RequestBack() {
	b.mgr.InjectBack()
}

// RequestHideAllOverlays queues a request to close the whole overlay stack.
func (b *Bus) RequestHideAllOverlays() {
	b.mgr.InjectHideAllOverlays()
}

// RequestInteraction queues a global interaction gate change.
func (b *Bus) RequestInteraction(enabled bool, minPriority Priority) {
	b.mgr.InjectInteraction(enabled, minPriority)
}

// --- Emission (manager-side) ---

// Emission iterates a copy of the handler list taken at call time, so a
// handler may subscribe or remove — including its own subscription — during
// dispatch. Changes take effect on later emissions, not the current one.

func (b *Bus) emitShown(kind Kind) {
	for _, h := range append([]shownHandler(nil), b.shown...) {
		h.fn(kind)
	}
}

func (b *Bus) emitHidden(kind Kind) {
	for _, h := range append([]hiddenHandler(nil), b.hidden...) {
		h.fn(kind)
	}
}

func (b *Bus) emitScreenChanged(newKind, previous Kind) {
	for _, h := range append([]screenHandler(nil), b.screen...) {
		h.fn(newKind, previous)
	}
}
