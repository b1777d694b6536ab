package trellis

// Kind is the stable identity of a panel. Exactly one Config and at most one
// live Panel exist per Kind.
type Kind string

// KindNone is the zero Kind, used where no panel applies (e.g. the previous
// screen of the very first navigation).
const KindNone Kind = ""

// Role determines how the manager routes a panel through the navigation
// stacks.
type Role uint8

const (
	RoleFullScreen Role = iota // exclusive views on the full-screen stack
	RoleOverlay                // windows stacked above the current screen
	RoleTransient              // toasts/tooltips with a timed auto-dismiss
)

// String returns the lowercase name used in registry files.
func (r Role) String() string {
	switch r {
	case RoleFullScreen:
		return "fullscreen"
	case RoleOverlay:
		return "overlay"
	case RoleTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// LoadStrategy determines when a panel is instantiated and whether it is ever
// destroyed.
type LoadStrategy uint8

const (
	// LoadEager panels are instantiated during StartUp and live for the
	// lifetime of the manager; hiding only deactivates them.
	LoadEager LoadStrategy = iota
	// LoadOnDemand panels are instantiated on first Show and destroyed after
	// sitting hidden for their idle delay.
	LoadOnDemand
)

// String returns the lowercase name used in registry files.
func (l LoadStrategy) String() string {
	switch l {
	case LoadEager:
		return "eager"
	case LoadOnDemand:
		return "on_demand"
	default:
		return "unknown"
	}
}

// Priority ranks panels for the global interaction gate. While the gate is
// disabled, only panels whose priority strictly exceeds the gate's stored
// minimum stay interactive.
type Priority uint8

const (
	PriorityNormal        Priority = iota // regular gameplay UI
	PriorityHigh                          // pause menus, system dialogs
	PriorityCinematic                     // cutscene chrome
	PriorityAboveCinematic                // loading veils, legal interstitials
)

// String returns the lowercase name used in registry files.
func (p Priority) String() string {
	switch p {
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCinematic:
		return "cinematic"
	case PriorityAboveCinematic:
		return "above_cinematic"
	default:
		return "unknown"
	}
}

// PanelState is the lifecycle state of a Panel.
type PanelState uint8

const (
	StateUninitialized PanelState = iota // created, Initialize not yet called
	StateHidden                          // initialized, not on screen
	StateShowing                         // entrance animation in flight
	StateVisible                         // fully shown
	StateHiding                          // exit animation in flight
	StateDestroyed                       // cleaned up; terminal
)

// String returns a short name for logging and snapshots.
func (s PanelState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHidden:
		return "hidden"
	case StateShowing:
		return "showing"
	case StateVisible:
		return "visible"
	case StateHiding:
		return "hiding"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// EventType identifies a kind of lifecycle notification.
type EventType uint8

const (
	EventPanelShown    EventType = iota // a panel began showing
	EventPanelHidden                    // a panel began hiding
	EventScreenChanged                  // the full-screen stack top changed
)

// PanelEvent carries lifecycle data for the optional ECS bridge (see the
// trellis/ecs submodule) and any other EventSink.
type PanelEvent struct {
	Type     EventType
	Kind     Kind
	Previous Kind // valid for EventScreenChanged
}

// EventSink receives every lifecycle notification the manager emits, in
// emission order. Set one via Manager.SetEventSink.
type EventSink interface {
	EmitPanelEvent(event PanelEvent)
}

// CloseCallback is invoked exactly once when the panel it was handed to
// finishes hiding. The result payload is whatever the hide request carried.
type CloseCallback func(result any)

const (
	// overlayOrderBase is the order value the first overlay builds on.
	overlayOrderBase = 100
	// overlayOrderStep separates consecutive overlays so hosts can slot
	// decorations between them.
	overlayOrderStep = 10
	// overlaySoftLimit is the overlay count above which a diagnostic warning
	// is reported. Never an error: deep overlay stacks are legal.
	overlaySoftLimit = 5

	// defaultIdleDelay is the seconds an on-demand panel sits hidden before
	// it is destroyed, when its Config does not specify a delay.
	defaultIdleDelay float32 = 15
	// defaultTransientDuration is the auto-dismiss delay for transients whose
	// Config does not specify one.
	defaultTransientDuration float32 = 3
)
