package cpu

import "fmt"

// Snapshot is one capture of all register values at a step boundary.
// It is a plain value: copying it never shares state.
type Snapshot struct {
	PC Register16
	SP Register16
	A  Register8
	F  Register8

	// flag bits, as reported separately from F
	Z bool
	N bool
	H bool
	C bool

	BC Register16
	DE Register16
	HL Register16

	IR           Register8
	Prefixed     bool
	OperandValue Register16

	IE     Register8
	IME    bool
	Halted bool
	Cycles uint64
}

// Field names one register or flag of a Snapshot.
type Field string

const (
	FieldPC       Field = "PC"
	FieldSP       Field = "SP"
	FieldIR       Field = "IR"
	FieldOperand  Field = "OP"
	FieldA        Field = "A"
	FieldF        Field = "F"
	FieldBC       Field = "BC"
	FieldDE       Field = "DE"
	FieldHL       Field = "HL"
	FieldZ        Field = "Z"
	FieldN        Field = "N"
	FieldH        Field = "H"
	FieldC        Field = "C"
	FieldIE       Field = "IE"
	FieldIME      Field = "IME"
	FieldHalted   Field = "HALT"
	FieldPrefixed Field = "PREFIX"
	FieldCycles   Field = "CYCLES"
)

// Fields lists every snapshot field in display order.
var Fields = []Field{
	FieldPC, FieldSP, FieldIR, FieldOperand,
	FieldA, FieldF, FieldBC, FieldDE, FieldHL,
	FieldZ, FieldN, FieldH, FieldC,
	FieldIE, FieldIME, FieldHalted, FieldPrefixed, FieldCycles,
}

// Value returns the unwrapped numeric value of a field. Booleans map to 0/1.
func (s Snapshot) Value(f Field) uint64 {
	switch f {
	case FieldPC:
		return uint64(s.PC)
	case FieldSP:
		return uint64(s.SP)
	case FieldIR:
		return uint64(s.IR)
	case FieldOperand:
		return uint64(s.OperandValue)
	case FieldA:
		return uint64(s.A)
	case FieldF:
		return uint64(s.F)
	case FieldBC:
		return uint64(s.BC)
	case FieldDE:
		return uint64(s.DE)
	case FieldHL:
		return uint64(s.HL)
	case FieldZ:
		return boolValue(s.Z)
	case FieldN:
		return boolValue(s.N)
	case FieldH:
		return boolValue(s.H)
	case FieldC:
		return boolValue(s.C)
	case FieldIE:
		return uint64(s.IE)
	case FieldIME:
		return boolValue(s.IME)
	case FieldHalted:
		return boolValue(s.Halted)
	case FieldPrefixed:
		return boolValue(s.Prefixed)
	case FieldCycles:
		return s.Cycles
	default:
		return 0
	}
}

// Format renders a field value the way the register panel shows it:
// hex for registers, 0/1 for flags, decimal for the cycle counter.
func (f Field) Format(value uint64) string {
	switch f {
	case FieldPC, FieldSP, FieldOperand, FieldBC, FieldDE, FieldHL:
		return fmt.Sprintf("%04X", value)
	case FieldA, FieldF, FieldIR, FieldIE:
		return fmt.Sprintf("%02X", value)
	case FieldCycles:
		return fmt.Sprintf("%d", value)
	default:
		return fmt.Sprintf("%d", value)
	}
}

func boolValue(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
