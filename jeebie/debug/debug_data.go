package debug

import "github.com/valerio/go-jeebie-dbg/jeebie/cpu"

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerDisconnected DebuggerState = iota
	DebuggerConnected
	DebuggerPaused
	DebuggerStepInstruction
	DebuggerRunning
)

func (s DebuggerState) String() string {
	switch s {
	case DebuggerConnected:
		return "CONNECTED"
	case DebuggerPaused:
		return "PAUSED"
	case DebuggerStepInstruction:
		return "STEP"
	case DebuggerRunning:
		return "RUNNING"
	}
	return "DISCONNECTED"
}

// BreakpointEntry is a breakpoint as shown in the breakpoint list. Pending is
// set while the toggle has not been acknowledged by the remote machine.
type BreakpointEntry struct {
	Region  string
	Address uint16
	Pending bool
}

// TableSpec configures one memory table: the region it shows and how the
// window is anchored. An empty Region follows the anchor address across
// regions.
type TableSpec struct {
	Region string
	Anchor Anchor
	// Operand anchors the table on the resolved indirect-operand address
	// instead of the program counter.
	Operand bool
}

// CompleteDebugData contains all debug information needed by debug displays
type CompleteDebugData struct {
	DebuggerState DebuggerState
	Steps         uint64

	Current  cpu.Snapshot
	Previous cpu.Snapshot
	Changes  []cpu.Change

	Instruction cpu.Instruction

	OperandAddress uint16
	HasOperand     bool

	Tables      []Table
	Breakpoints []BreakpointEntry

	LastError string

	// text printed over the serial port
	SerialLines   []string
	SerialPartial string
}

// Changed reports whether f differs between the two latest snapshots.
func (d *CompleteDebugData) Changed(f cpu.Field) bool {
	for _, c := range d.Changes {
		if c.Field == f {
			return true
		}
	}
	return false
}
