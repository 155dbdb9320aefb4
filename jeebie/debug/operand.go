package debug

import (
	"github.com/valerio/go-jeebie-dbg/jeebie/addr"
	"github.com/valerio/go-jeebie-dbg/jeebie/cpu"
)

// EffectiveAddress returns the memory address touched by the indirect
// operand of in, given the registers after the instruction executed. The
// first operand is used when it is not immediate, otherwise the second.
//
// Auto-indexed HL is corrected back by one step: the snapshot already
// reflects the post-access increment or decrement. A correction that would
// leave the address space (HL+ with HL=0, HL- with HL=0xFFFF) is unresolved.
//
// a8 and a16 operands are not resolved: the server reports a single fetched
// operand value per step, which is ambiguous once both operands use an
// immediate-addressed form.
func EffectiveAddress(in cpu.Instruction, regs cpu.Snapshot) (uint16, bool) {
	ops := in.Operands
	switch {
	case len(ops) > 0 && !ops[0].Immediate:
		return operandAddress(ops[0], regs)
	case len(ops) > 1 && !ops[1].Immediate:
		return operandAddress(ops[1], regs)
	}
	return 0, false
}

func operandAddress(op cpu.Operand, regs cpu.Snapshot) (uint16, bool) {
	switch op.Name {
	case "HL":
		hl := regs.HL.Get()
		switch {
		case op.Increment:
			if hl == 0 {
				return 0, false
			}
			return hl - 1, true
		case op.Decrement:
			if hl == 0xFFFF {
				return 0, false
			}
			return hl + 1, true
		}
		return hl, true
	case "BC":
		return regs.BC.Get(), true
	case "DE":
		return regs.DE.Get(), true
	case "C":
		return addr.IO(regs.BC.Low().Get()), true
	}
	return 0, false
}

// AddressResolver keeps the last resolved indirect-operand address so that a
// memory table following it does not jump around on steps whose instruction
// has no indirect operand.
type AddressResolver struct {
	address uint16
	known   bool
}

// NewAddressResolver returns a resolver with no address yet.
func NewAddressResolver() *AddressResolver {
	return &AddressResolver{}
}

// Update resolves the operand of a new step. When nothing resolves, the
// previous address is kept.
func (r *AddressResolver) Update(in cpu.Instruction, regs cpu.Snapshot) (uint16, bool) {
	if a, ok := EffectiveAddress(in, regs); ok {
		r.address = a
		r.known = true
	}
	return r.address, r.known
}

// Address returns the last resolved address; ok is false until the first
// successful resolution.
func (r *AddressResolver) Address() (uint16, bool) {
	return r.address, r.known
}

// Reset forgets the last address.
func (r *AddressResolver) Reset() {
	r.address = 0
	r.known = false
}
