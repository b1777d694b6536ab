package trellis

// timerKind separates the two one-shot timers a panel can carry. Each
// (panel, kind) pair has at most one outstanding entry.
type timerKind uint8

const (
	timerAutoHide timerKind = iota // transient auto-dismiss
	timerDestroy                   // on-demand idle destruction
)

type timerEntry struct {
	panel     *Panel
	kind      timerKind
	remaining float32 // seconds
	fn        func()
}

// scheduler runs cancellable single-shot timers on the cooperative tick.
// Cancel-then-insert is atomic with respect to the tick: nothing fires
// between a cancel and the reschedule that follows it.
type scheduler struct {
	entries []timerEntry
	fired   []timerEntry // reused scratch for due entries
}

// schedule arms a timer for (panel, kind), replacing any outstanding one.
func (s *scheduler) schedule(panel *Panel, kind timerKind, delay float32, fn func()) {
	s.cancel(panel, kind)
	s.entries = append(s.entries, timerEntry{
		panel:     panel,
		kind:      kind,
		remaining: delay,
		fn:        fn,
	})
}

// cancel disarms the (panel, kind) timer if one is outstanding.
func (s *scheduler) cancel(panel *Panel, kind timerKind) {
	for i := range s.entries {
		if s.entries[i].panel == panel && s.entries[i].kind == kind {
			copy(s.entries[i:], s.entries[i+1:])
			s.entries[len(s.entries)-1] = timerEntry{}
			s.entries = s.entries[:len(s.entries)-1]
			return
		}
	}
}

// cancelAll disarms every timer owned by panel.
func (s *scheduler) cancelAll(panel *Panel) {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.panel != panel {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(s.entries); i++ {
		s.entries[i] = timerEntry{}
	}
	s.entries = kept
}

// pending reports whether a (panel, kind) timer is outstanding.
func (s *scheduler) pending(panel *Panel, kind timerKind) bool {
	for i := range s.entries {
		if s.entries[i].panel == panel && s.entries[i].kind == kind {
			return true
		}
	}
	return false
}

// update advances all timers by dt and fires the due ones. Due entries are
// removed before their callbacks run, so a callback may freely schedule or
// cancel timers, including for its own panel.
func (s *scheduler) update(dt float32) {
	s.fired = s.fired[:0]
	kept := s.entries[:0]
	for _, e := range s.entries {
		e.remaining -= dt
		if e.remaining <= 0 {
			s.fired = append(s.fired, e)
		} else {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(s.entries); i++ {
		s.entries[i] = timerEntry{}
	}
	s.entries = kept

	for _, e := range s.fired {
		e.fn()
	}
}
