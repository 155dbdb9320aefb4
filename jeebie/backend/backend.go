package backend

import (
	"github.com/valerio/go-jeebie-dbg/jeebie/debug"
	"github.com/valerio/go-jeebie-dbg/jeebie/input/action"
	"github.com/valerio/go-jeebie-dbg/jeebie/input/event"
)

// Backend represents a debugger frontend (rendering + input).
// Backends are responsible for:
// - Rendering the debug view to their specific output (terminal, text dumps)
// - Translating platform-specific input events to Actions
// - Handling backend-specific features (cursor, snapshots, log filter)
type Backend interface {
	// Init configures the backend with the provided configuration.
	// This is a required step before calling Update.
	Init(config BackendConfig) error

	// Update renders the view and returns the input events collected since
	// the previous call.
	Update(data *debug.CompleteDebugData) ([]InputEvent, error)

	// HandleAction processes actions that only concern the backend.
	HandleAction(act action.Action)

	// Cleanup resources when shutting down
	Cleanup() error
}

// InputEvent is an action together with how it was triggered.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title     string
	Callbacks BackendCallbacks // Callbacks for backend communication
}

// BackendCallbacks allows backends to reach the session
type BackendCallbacks struct {
	// OnQuit is called when the backend requests shutdown (e.g. a signal).
	OnQuit func()

	// OnToggleBreakpoint is called with the cell under the memory cursor.
	OnToggleBreakpoint func(region string, address uint16)
}
