package cpu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrAutoIndex is returned when more than one operand of an instruction
// carries an increment or decrement.
var ErrAutoIndex = errors.New("more than one auto-indexed operand")

// Flag is one of the four flags in the high nibble of F.
type Flag string

const (
	FlagZ Flag = "Z"
	FlagN Flag = "N"
	FlagH Flag = "H"
	FlagC Flag = "C"
)

// FlagNames lists the flags in register order.
var FlagNames = []Flag{FlagZ, FlagN, FlagH, FlagC}

// FlagEffect describes what an instruction does to a flag.
type FlagEffect string

const (
	FlagReset      FlagEffect = "0"
	FlagSet        FlagEffect = "1"
	FlagUnaffected FlagEffect = "-"
	// FlagDependent means the flag follows the result of the operation.
	FlagDependent FlagEffect = "dependent"
)

// ParseFlagEffect maps the opcode table notation to a FlagEffect. The tables
// use the flag letter itself (e.g. "Z") for result-dependent flags.
func ParseFlagEffect(s string) FlagEffect {
	switch s {
	case "0":
		return FlagReset
	case "1":
		return FlagSet
	case "-", "":
		return FlagUnaffected
	default:
		return FlagDependent
	}
}

// FlagEffects maps each of the four flags to its effect.
type FlagEffects struct {
	Z, N, H, C FlagEffect
}

// Get returns the effect on flag f.
func (fe FlagEffects) Get(f Flag) FlagEffect {
	switch f {
	case FlagZ:
		return fe.Z
	case FlagN:
		return fe.N
	case FlagH:
		return fe.H
	case FlagC:
		return fe.C
	}
	return FlagUnaffected
}

// Operand is a single instruction argument.
type Operand struct {
	// Name is a register mnemonic (A, HL, C, ...) or an addressing tag
	// (n8, n16, e8, a8, a16).
	Name      string
	Bytes     int
	Immediate bool
	Increment bool
	Decrement bool
}

// String formats the operand as in the instruction panel: HL+ and HL- for
// auto-indexing, brackets for memory operands.
func (o Operand) String() string {
	s := o.Name
	if o.Increment {
		s += "+"
	}
	if o.Decrement {
		s += "-"
	}
	if !o.Immediate {
		s = "[" + s + "]"
	}
	return s
}

// Instruction is the descriptor of the most recently executed instruction.
type Instruction struct {
	Mnemonic string
	Bytes    int
	// Cycles holds one count, or two for conditional instructions (taken, not taken).
	Cycles    []int
	Operands  []Operand
	Immediate bool
	Flags     FlagEffects
}

// EmptyInstruction is the descriptor installed before any CPU state arrives.
func EmptyInstruction() Instruction {
	return Instruction{
		Flags: FlagEffects{Z: FlagReset, N: FlagReset, H: FlagReset, C: FlagReset},
	}
}

// Validate checks that at most one operand is auto-indexed.
func (in Instruction) Validate() error {
	count := 0
	for _, op := range in.Operands {
		if op.Increment || op.Decrement {
			count++
		}
	}
	if count > 1 {
		return fmt.Errorf("%s: %w", in.String(), ErrAutoIndex)
	}
	return nil
}

// String formats the instruction as "LD [HL+], A".
func (in Instruction) String() string {
	if len(in.Operands) == 0 {
		return in.Mnemonic
	}
	ops := make([]string, len(in.Operands))
	for i, op := range in.Operands {
		ops[i] = op.String()
	}
	return in.Mnemonic + " " + strings.Join(ops, ", ")
}

// CyclesString formats the cycle counts as "12/8".
func (in Instruction) CyclesString() string {
	parts := make([]string, len(in.Cycles))
	for i, c := range in.Cycles {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, "/")
}

// InstructionCache holds the descriptor of the current step. A descriptor
// is replaced wholesale, never patched.
type InstructionCache struct {
	current Instruction
}

// NewInstructionCache returns a cache holding EmptyInstruction.
func NewInstructionCache() *InstructionCache {
	return &InstructionCache{current: EmptyInstruction()}
}

// Set installs in as the current descriptor. An invalid descriptor is
// rejected and the cache falls back to EmptyInstruction so that it never
// describes a different step than the register store.
func (c *InstructionCache) Set(in Instruction) error {
	if err := in.Validate(); err != nil {
		c.current = EmptyInstruction()
		return err
	}
	in.Cycles = append([]int(nil), in.Cycles...)
	in.Operands = append([]Operand(nil), in.Operands...)
	c.current = in
	return nil
}

// Current returns a copy of the current descriptor.
func (c *InstructionCache) Current() Instruction {
	in := c.current
	in.Cycles = append([]int(nil), in.Cycles...)
	in.Operands = append([]Operand(nil), in.Operands...)
	return in
}
