package trellis

import (
	"errors"
	"fmt"
	"os"
)

// Every fault in the navigation core is recoverable: the offending request is
// dropped, a diagnostic is reported, and the manager keeps serving other
// requests. Nothing here terminates the process.
var (
	// ErrConfigurationMissing reports a request for a Kind with no registered
	// Config. A Config whose factory was never bound reports the same way.
	ErrConfigurationMissing = errors.New("trellis: no config registered for kind")

	// ErrDuplicateRegistration reports a second Config for an already
	// registered Kind. The first registration wins.
	ErrDuplicateRegistration = errors.New("trellis: duplicate config for kind")

	// ErrInvalidOpeningView reports an opening view that is not a full-screen
	// eager panel. The opening view is discarded and the manager starts with
	// an empty full-screen stack.
	ErrInvalidOpeningView = errors.New("trellis: opening view must be fullscreen and eager")

	// ErrReentrantTransition reports Show or Hide on a panel that is already
	// mid-transition. The call is a no-op.
	ErrReentrantTransition = errors.New("trellis: panel is already transitioning")

	// ErrUninitializedAccess reports a lifecycle call outside its valid
	// window: Show or Hide before Initialize or after Destroy, and a second
	// Initialize on a panel that already left the uninitialized state.
	ErrUninitializedAccess = errors.New("trellis: panel is not initialized")

	// ErrMissingSurface reports a factory that produced no rendering surface.
	// Instantiation is aborted and nothing is cached.
	ErrMissingSurface = errors.New("trellis: panel factory returned no surface")

	// ErrLoadInFlight reports a load request for a Kind whose factory is
	// currently executing, which only happens when a factory calls back into
	// the manager for its own kind.
	ErrLoadInFlight = errors.New("trellis: load already in flight for kind")
)

// Reporter receives diagnostic messages from the manager. The default writes
// to stderr with a "[trellis]" prefix. Hosts that route diagnostics elsewhere
// can replace it via Manager.SetReporter; a nil Reporter silences reporting.
type Reporter func(format string, args ...any)

func stderrReporter(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[trellis] "+format+"\n", args...)
}
