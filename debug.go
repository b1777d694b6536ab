package trellis

import "strings"

// PanelSnapshot is one panel's state at snapshot time.
type PanelSnapshot struct {
	Kind          Kind
	State         PanelState
	Visible       bool
	Transitioning bool
	Order         int
}

// Snapshot is a read-only view of the navigation state for debugging and
// assertions. Taking one never mutates manager state.
type Snapshot struct {
	// Screens is the full-screen stack in top-to-bottom order.
	Screens []PanelSnapshot
	// Overlays is the overlay stack in top-to-bottom order.
	Overlays []PanelSnapshot
	// Loaded is the full kind table, whatever stack membership.
	Loaded map[Kind]PanelSnapshot
}

func snapshotPanel(p *Panel) PanelSnapshot {
	return PanelSnapshot{
		Kind:          p.kind,
		State:         p.state,
		Visible:       p.surface.IsVisible(),
		Transitioning: p.Transitioning(),
		Order:         p.surface.Order(),
	}
}

// Snapshot captures the current stacks and loaded-panel table.
func (m *Manager) Snapshot() Snapshot {
	snap := Snapshot{Loaded: make(map[Kind]PanelSnapshot, len(m.loaded))}
	for i := len(m.screens) - 1; i >= 0; i-- {
		snap.Screens = append(snap.Screens, snapshotPanel(m.screens[i]))
	}
	for i := len(m.overlays) - 1; i >= 0; i-- {
		snap.Overlays = append(snap.Overlays, snapshotPanel(m.overlays[i]))
	}
	for kind, p := range m.loaded {
		snap.Loaded[kind] = snapshotPanel(p)
	}
	return snap
}

// DumpSnapshot reports the current navigation state through the reporter.
func (m *Manager) DumpSnapshot(label string) {
	snap := m.Snapshot()
	if label != "" {
		m.reportf("snapshot %q:", label)
	} else {
		m.reportf("snapshot:")
	}
	m.reportf("  screens:  %s", formatStack(snap.Screens))
	m.reportf("  overlays: %s", formatStack(snap.Overlays))
	m.reportf("  loaded:   %d panels", len(snap.Loaded))
}

func formatStack(stack []PanelSnapshot) string {
	if len(stack) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(stack))
	for i, ps := range stack {
		parts[i] = string(ps.Kind) + "(" + ps.State.String() + ")"
	}
	return strings.Join(parts, " > ")
}
