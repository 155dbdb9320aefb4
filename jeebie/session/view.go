package session

import (
	"github.com/valerio/go-jeebie-dbg/jeebie/breakpoint"
	"github.com/valerio/go-jeebie-dbg/jeebie/cpu"
	"github.com/valerio/go-jeebie-dbg/jeebie/debug"
	"github.com/valerio/go-jeebie-dbg/jeebie/memory"
)

// Current returns the latest register snapshot.
func (c *Controller) Current() cpu.Snapshot {
	return c.store.Current()
}

// Previous returns the snapshot before the latest one.
func (c *Controller) Previous() cpu.Snapshot {
	return c.store.Previous()
}

// Diff returns the fields that changed with the latest snapshot.
func (c *Controller) Diff() []cpu.Field {
	return c.store.Diff()
}

// Instruction returns the descriptor of the latest step.
func (c *Controller) Instruction() cpu.Instruction {
	return c.instructions.Current()
}

// OperandAddress returns the last resolved indirect-operand address.
func (c *Controller) OperandAddress() (uint16, bool) {
	return c.resolver.Address()
}

// Memory returns a copy of a region's bytes.
func (c *Controller) Memory(region string) ([]byte, bool) {
	r, ok := c.overlay.Region(region)
	if !ok {
		return nil, false
	}
	return r.Bytes(), true
}

// Regions returns the region names in registration order.
func (c *Controller) Regions() []string {
	regions := c.overlay.Regions()
	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = r.Name()
	}
	return names
}

// IsBreakpoint reports whether address is a breakpoint in region.
func (c *Controller) IsBreakpoint(region string, address uint16) bool {
	return c.breakpoints.Lookup(region, address)
}

// State returns the debugger state.
func (c *Controller) State() debug.DebuggerState {
	return c.state
}

// View assembles everything a frontend renders. The result shares no state
// with the controller.
func (c *Controller) View() *debug.CompleteDebugData {
	operand, hasOperand := c.resolver.Address()
	data := &debug.CompleteDebugData{
		DebuggerState:  c.state,
		Steps:          c.store.Steps(),
		Current:        c.store.Current(),
		Previous:       c.store.Previous(),
		Changes:        c.store.Changes(),
		Instruction:    c.instructions.Current(),
		OperandAddress: operand,
		HasOperand:     hasOperand,
		LastError:      c.lastError,
		SerialLines:    c.serial.Lines(),
		SerialPartial:  c.serial.Partial(),
	}

	type location struct {
		region  string
		address uint16
	}
	pending := make(map[location]bool)
	for _, p := range c.breakpoints.Pending() {
		if p.Action == breakpoint.Add {
			pending[location{p.Region, p.Address}] = true
		}
	}
	for _, r := range c.overlay.Regions() {
		for _, a := range c.breakpoints.Addresses(r.Name()) {
			data.Breakpoints = append(data.Breakpoints, debug.BreakpointEntry{
				Region:  r.Name(),
				Address: a,
				Pending: pending[location{r.Name(), a}],
			})
		}
	}

	for _, spec := range c.tables {
		if t, ok := c.table(spec, data); ok {
			data.Tables = append(data.Tables, t)
		}
	}

	return data
}

// table plans one memory table. Tables without a fixed region follow their
// anchor address and are skipped while no region contains it.
func (c *Controller) table(spec debug.TableSpec, data *debug.CompleteDebugData) (debug.Table, bool) {
	address := data.Current.PC.Get()
	known := true
	if spec.Operand {
		address, known = data.OperandAddress, data.HasOperand
	}

	var (
		r  *memory.Region
		ok bool
	)
	if spec.Region != "" {
		r, ok = c.overlay.Region(spec.Region)
	} else if known {
		r, ok = c.overlay.Lookup(address)
	}
	if !ok {
		return debug.Table{}, false
	}

	hl := debug.Highlight{Anchor: address, HasAnchor: known && r.Contains(address)}
	if !spec.Operand {
		hl.OperandBytes = data.Instruction.Bytes
	}

	w := debug.Plan(r, spec.Anchor, address)
	return debug.BuildTable(r, spec.Anchor, w, hl, c.breakpoints), true
}
