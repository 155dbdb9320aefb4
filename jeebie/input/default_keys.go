package input

import "github.com/valerio/go-jeebie-dbg/jeebie/input/action"

// DefaultKeyMap provides default key mappings that work across backends.
// Backends can use these mappings as a base and override/extend as needed.
// Arrow keys move the memory cursor; the Game Boy d-pad uses WASD.
var DefaultKeyMap = map[string]action.Action{
	// Game Boy controls
	"z":     action.GBButtonA,
	"x":     action.GBButtonB,
	"Enter": action.GBButtonStart,
	"v":     action.GBButtonSelect,
	"w":     action.GBDPadUp,
	"s":     action.GBDPadDown,
	"a":     action.GBDPadLeft,
	"d":     action.GBDPadRight,

	// Debugger controls
	"Space": action.DebuggerStep,
	"n":     action.DebuggerStep, // Alternative key for step
	"r":     action.DebuggerContinue,
	"b":     action.DebuggerToggleBreakpoint,

	// Memory tables
	"Up":    action.CursorUp,
	"Down":  action.CursorDown,
	"Left":  action.CursorLeft,
	"Right": action.CursorRight,
	"Tab":   action.CursorNextTable,

	"F12":    action.DebuggerSnapshot,
	"Escape": action.DebuggerQuit,
	"q":      action.DebuggerQuit,

	// Debug controls
	"+": action.DebugLogLevelIncrease,
	"=": action.DebugLogLevelIncrease, // Alternative without shift
	"-": action.DebugLogLevelDecrease,
	"_": action.DebugLogLevelDecrease, // Alternative with shift
}

// GetDefaultMapping returns the default action for a key, if one exists
func GetDefaultMapping(key string) (action.Action, bool) {
	act, ok := DefaultKeyMap[key]
	return act, ok
}
