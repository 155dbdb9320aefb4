package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/valerio/go-jeebie-dbg/jeebie/cpu"
	"github.com/valerio/go-jeebie-dbg/jeebie/memory"
)

// SnapshotPayload is a register snapshot as sent by the server. Every field
// may be missing; the first messages of a session are often sparse.
type SnapshotPayload struct {
	PC           Opt[uint16] `json:"PC"`
	SP           Opt[uint16] `json:"SP"`
	A            Opt[uint8]  `json:"A"`
	F            Opt[uint8]  `json:"F"`
	Z            Opt[bool]   `json:"Z"`
	N            Opt[bool]   `json:"N"`
	H            Opt[bool]   `json:"H"`
	C            Opt[bool]   `json:"C"`
	BC           Opt[uint16] `json:"BC"`
	DE           Opt[uint16] `json:"DE"`
	HL           Opt[uint16] `json:"HL"`
	IR           Opt[uint8]  `json:"IR"`
	Prefixed     Opt[bool]   `json:"prefixed"`
	OperandValue Opt[uint16] `json:"operandValue"`
	IE           Opt[uint8]  `json:"IE"`
	IME          Opt[bool]   `json:"IME"`
	Halted       Opt[bool]   `json:"Halted"`
	Cycles       Opt[uint64] `json:"cycles"`
}

// Snapshot collapses the payload to a snapshot, absent fields becoming zero.
func (p SnapshotPayload) Snapshot() cpu.Snapshot {
	return cpu.Snapshot{
		PC:           cpu.Register16(p.PC.Value),
		SP:           cpu.Register16(p.SP.Value),
		A:            cpu.Register8(p.A.Value),
		F:            cpu.Register8(p.F.Value),
		Z:            p.Z.Value,
		N:            p.N.Value,
		H:            p.H.Value,
		C:            p.C.Value,
		BC:           cpu.Register16(p.BC.Value),
		DE:           cpu.Register16(p.DE.Value),
		HL:           cpu.Register16(p.HL.Value),
		IR:           cpu.Register8(p.IR.Value),
		Prefixed:     p.Prefixed.Value,
		OperandValue: cpu.Register16(p.OperandValue.Value),
		IE:           cpu.Register8(p.IE.Value),
		IME:          p.IME.Value,
		Halted:       p.Halted.Value,
		Cycles:       p.Cycles.Value,
	}
}

type OperandPayload struct {
	Name      Opt[string] `json:"name"`
	Bytes     Opt[int]    `json:"bytes"`
	Immediate Opt[bool]   `json:"immediate"`
	Increment Opt[bool]   `json:"increment"`
	Decrement Opt[bool]   `json:"decrement"`
}

type InstructionPayload struct {
	Mnemonic  Opt[string]            `json:"mnemonic"`
	Bytes     Opt[int]               `json:"bytes"`
	Cycles    Opt[CycleList]         `json:"cycles"`
	Operands  Opt[[]OperandPayload]  `json:"operands"`
	Immediate Opt[bool]              `json:"immediate"`
	Flags     Opt[map[string]string] `json:"flags"`
}

// Instruction collapses the payload to a descriptor.
func (p InstructionPayload) Instruction() cpu.Instruction {
	in := cpu.Instruction{
		Mnemonic:  p.Mnemonic.Value,
		Bytes:     p.Bytes.Value,
		Cycles:    []int(p.Cycles.Value),
		Immediate: p.Immediate.Value,
	}
	for _, op := range p.Operands.Value {
		in.Operands = append(in.Operands, cpu.Operand{
			Name:      op.Name.Value,
			Bytes:     op.Bytes.Value,
			Immediate: op.Immediate.Value,
			Increment: op.Increment.Value,
			Decrement: op.Decrement.Value,
		})
	}
	flags := p.Flags.Value
	in.Flags = cpu.FlagEffects{
		Z: cpu.ParseFlagEffect(flags["Z"]),
		N: cpu.ParseFlagEffect(flags["N"]),
		H: cpu.ParseFlagEffect(flags["H"]),
		C: cpu.ParseFlagEffect(flags["C"]),
	}
	return in
}

// CPUStatePayload is the data of a CPUStateMessage.
type CPUStatePayload struct {
	CurrState   Opt[SnapshotPayload]    `json:"currState"`
	Instruction Opt[InstructionPayload] `json:"instruction"`
}

// DecodeCPUState decodes a CPU state payload. Only a payload that is not a
// JSON object at all is an error; missing fields decode as defaults.
func DecodeCPUState(raw json.RawMessage) (CPUStatePayload, error) {
	var p CPUStatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return CPUStatePayload{}, fmt.Errorf("%w: cpu state: %v", ErrMalformed, err)
	}
	return p, nil
}

// MemoryMapPayload is one entry of the initial memory maps.
type MemoryMapPayload struct {
	Name    string      `json:"name"`
	Address Opt[uint16] `json:"address"`
	Data    ByteList    `json:"data"`
}

// DecodeMemoryMaps decodes the initial memory maps. Malformed entries are
// skipped and reported in errs.
func DecodeMemoryMaps(raw json.RawMessage) (maps []MemoryMapPayload, errs []error) {
	items, err := decodeArray(raw, "memory maps")
	if err != nil {
		return nil, []error{err}
	}
	for i, item := range items {
		var m MemoryMapPayload
		if err := json.Unmarshal(item, &m); err != nil {
			errs = append(errs, fmt.Errorf("memory map %d: %w", i, err))
			continue
		}
		if m.Name == "" {
			errs = append(errs, fmt.Errorf("memory map %d: %w: missing name", i, ErrMalformed))
			continue
		}
		maps = append(maps, m)
	}
	return maps, errs
}

// PatchPayload is one memory write. The target is either an offset into the
// region or an absolute address.
type PatchPayload struct {
	Name    string      `json:"name"`
	Region  string      `json:"region"`
	Offset  Opt[int]    `json:"offset"`
	Address Opt[uint16] `json:"address"`
	Data    ByteList    `json:"data"`
}

// RegionName returns the target region, accepting either key.
func (p PatchPayload) RegionName() string {
	if p.Region != "" {
		return p.Region
	}
	return p.Name
}

// Patch converts the payload for a region based at base. An absolute address
// below the base yields a negative offset, which the overlay rejects.
func (p PatchPayload) Patch(base uint16) memory.Patch {
	offset := p.Offset.Value
	if !p.Offset.Present && p.Address.Present {
		offset = int(p.Address.Value) - int(base)
	}
	return memory.Patch{
		Region: p.RegionName(),
		Offset: offset,
		Data:   []byte(p.Data),
	}
}

// DecodeMemoryState decodes the patches of a MemoryStateMessage, skipping
// malformed entries.
func DecodeMemoryState(raw json.RawMessage) (patches []PatchPayload, errs []error) {
	items, err := decodeArray(raw, "memory state")
	if err != nil {
		return nil, []error{err}
	}
	for i, item := range items {
		var p PatchPayload
		if err := json.Unmarshal(item, &p); err != nil {
			errs = append(errs, fmt.Errorf("patch %d: %w", i, err))
			continue
		}
		patches = append(patches, p)
	}
	return patches, errs
}

// DecodeError decodes the string of an ErrorMessage.
func DecodeError(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw)
	}
	return s
}

func decodeArray(raw json.RawMessage, what string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, what, err)
	}
	return items, nil
}
