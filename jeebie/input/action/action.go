package action

// Action represents input actions that can be performed in the debugger
type Action int

const (
	// Game Boy hardware controls, forwarded to the remote machine
	GBButtonA Action = iota
	GBButtonB
	GBButtonStart
	GBButtonSelect
	GBDPadUp
	GBDPadDown
	GBDPadLeft
	GBDPadRight

	// Debugger commands
	DebuggerStep
	DebuggerContinue
	DebuggerToggleBreakpoint

	// Memory table navigation
	CursorUp
	CursorDown
	CursorLeft
	CursorRight
	CursorNextTable

	// Frontend features
	DebuggerSnapshot
	DebuggerQuit
	DebugLogLevelIncrease
	DebugLogLevelDecrease
)

// Category groups actions by how backends deliver them.
type Category int

const (
	// CategoryGameInput actions are held down and produce Press, Hold and
	// Release events.
	CategoryGameInput Category = iota
	// CategoryDebugger actions talk to the remote machine.
	CategoryDebugger
	// CategoryUI actions only affect the frontend.
	CategoryUI
)

// Info describes an action.
type Info struct {
	Description string
	Category    Category
}

var infos = map[Action]Info{
	GBButtonA:      {"A button", CategoryGameInput},
	GBButtonB:      {"B button", CategoryGameInput},
	GBButtonStart:  {"Start button", CategoryGameInput},
	GBButtonSelect: {"Select button", CategoryGameInput},
	GBDPadUp:       {"D-pad up", CategoryGameInput},
	GBDPadDown:     {"D-pad down", CategoryGameInput},
	GBDPadLeft:     {"D-pad left", CategoryGameInput},
	GBDPadRight:    {"D-pad right", CategoryGameInput},

	// step fires on release, so it is delivered like a held key
	DebuggerStep:             {"Step instruction", CategoryGameInput},
	DebuggerContinue:         {"Run to breakpoint", CategoryDebugger},
	DebuggerToggleBreakpoint: {"Toggle breakpoint", CategoryDebugger},

	CursorUp:        {"Cursor up", CategoryUI},
	CursorDown:      {"Cursor down", CategoryUI},
	CursorLeft:      {"Cursor left", CategoryUI},
	CursorRight:     {"Cursor right", CategoryUI},
	CursorNextTable: {"Next memory table", CategoryUI},

	DebuggerSnapshot:      {"Save snapshot", CategoryUI},
	DebuggerQuit:          {"Quit", CategoryUI},
	DebugLogLevelIncrease: {"More log output", CategoryUI},
	DebugLogLevelDecrease: {"Less log output", CategoryUI},
}

// GetInfo returns the description and category of an action.
func GetInfo(act Action) Info {
	if info, ok := infos[act]; ok {
		return info
	}
	return Info{Description: "unknown", Category: CategoryUI}
}

// IsJoypad reports whether the action is a Game Boy button.
func IsJoypad(act Action) bool {
	return act >= GBButtonA && act <= GBDPadRight
}

func (a Action) String() string {
	return GetInfo(a).Description
}
