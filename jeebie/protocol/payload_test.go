package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-jeebie-dbg/jeebie/cpu"
)

func TestOpt_Presence(t *testing.T) {
	var p struct {
		A Opt[uint16] `json:"a"`
		B Opt[uint16] `json:"b"`
		C Opt[uint16] `json:"c"`
		D Opt[uint16] `json:"d"`
		E Opt[bool]   `json:"e"`
	}
	err := json.Unmarshal([]byte(`{"a": 0, "b": 4660, "c": null, "d": "oops", "e": true}`), &p)
	require.NoError(t, err)

	assert.Equal(t, Some[uint16](0), p.A, "present and zero")
	assert.Equal(t, Some[uint16](0x1234), p.B)
	assert.False(t, p.C.Present, "null is absent")
	assert.False(t, p.D.Present, "malformed is absent")
	assert.Equal(t, uint16(0), p.D.Value)
	assert.True(t, p.E.Value)
	assert.Equal(t, uint16(7), p.C.Or(7))
	assert.Equal(t, uint16(0), p.A.Or(7))
}

func TestOpt_OutOfRangeIsAbsent(t *testing.T) {
	var p SnapshotPayload
	require.NoError(t, json.Unmarshal([]byte(`{"PC": 70000, "A": 300, "SP": -1}`), &p))

	assert.False(t, p.PC.Present)
	assert.False(t, p.A.Present)
	assert.False(t, p.SP.Present)
	assert.Equal(t, cpu.Snapshot{}, p.Snapshot())
}

func TestDecodeCPUState_Full(t *testing.T) {
	raw := json.RawMessage(`{
		"currState": {
			"PC": 49168, "SP": 65534, "A": 1, "F": 176,
			"Z": true, "N": false, "H": true, "C": false,
			"BC": 19, "DE": 216, "HL": 333, "IR": 34,
			"prefixed": false, "operandValue": 255,
			"IE": 1, "IME": true, "Halted": false, "cycles": 1024
		},
		"instruction": {
			"mnemonic": "LD",
			"bytes": 1,
			"cycles": [8],
			"operands": [
				{"name": "HL", "immediate": false, "increment": true},
				{"name": "A", "immediate": true}
			],
			"immediate": false,
			"flags": {"Z": "-", "N": "-", "H": "-", "C": "-"}
		}
	}`)

	p, err := DecodeCPUState(raw)
	require.NoError(t, err)
	require.True(t, p.CurrState.Present)
	require.True(t, p.Instruction.Present)

	s := p.CurrState.Value.Snapshot()
	assert.Equal(t, cpu.Register16(0xC010), s.PC)
	assert.Equal(t, cpu.Register16(0xFFFE), s.SP)
	assert.Equal(t, cpu.Register8(0xB0), s.F)
	assert.True(t, s.Z)
	assert.True(t, s.H)
	assert.Equal(t, cpu.Register16(333), s.HL)
	assert.Equal(t, cpu.Register8(0x22), s.IR)
	assert.Equal(t, cpu.Register8(1), s.IE)
	assert.True(t, s.IME)
	assert.Equal(t, uint64(1024), s.Cycles)

	in := p.Instruction.Value.Instruction()
	assert.Equal(t, "LD [HL+], A", in.String())
	assert.Equal(t, []int{8}, in.Cycles)
	assert.Equal(t, cpu.FlagUnaffected, in.Flags.Z)
}

func TestDecodeCPUState_Sparse(t *testing.T) {
	p, err := DecodeCPUState(json.RawMessage(`{"currState": {"PC": 256}}`))
	require.NoError(t, err)

	assert.False(t, p.Instruction.Present)
	s := p.CurrState.Value.Snapshot()
	assert.Equal(t, cpu.Snapshot{PC: 0x0100}, s)
	assert.True(t, p.CurrState.Value.PC.Present)
	assert.False(t, p.CurrState.Value.SP.Present)
}

func TestDecodeCPUState_NotAnObject(t *testing.T) {
	_, err := DecodeCPUState(json.RawMessage(`[1, 2, 3]`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestInstructionPayload_ConditionalCycles(t *testing.T) {
	var p InstructionPayload
	raw := `{"mnemonic": "JR", "bytes": 2, "cycles": [12, 8],
		"operands": [{"name": "NZ", "immediate": true}, {"name": "e8", "bytes": 1, "immediate": true}],
		"flags": {"Z": "Z", "N": "0", "H": "1", "C": "C"}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	in := p.Instruction()
	assert.Equal(t, "12/8", in.CyclesString())
	assert.Equal(t, "JR NZ, e8", in.String())
	assert.Equal(t, cpu.FlagEffects{Z: cpu.FlagDependent, N: cpu.FlagReset, H: cpu.FlagSet, C: cpu.FlagDependent}, in.Flags)
}

func TestInstructionPayload_SingleCycleCount(t *testing.T) {
	var p InstructionPayload
	require.NoError(t, json.Unmarshal([]byte(`{"mnemonic": "NOP", "cycles": 4}`), &p))

	in := p.Instruction()
	assert.Equal(t, []int{4}, in.Cycles)
	assert.Empty(t, in.Operands)
	assert.Equal(t, cpu.FlagUnaffected, in.Flags.C)
}

func TestByteList(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []byte
		wantErr bool
	}{
		{"numbers", `[0, 1, 255]`, []byte{0x00, 0x01, 0xFF}, false},
		{"hex strings", `["0x00", "0x3c", "0XFF"]`, []byte{0x00, 0x3C, 0xFF}, false},
		{"bare hex", `["AB"]`, []byte{0xAB}, false},
		{"empty", `[]`, []byte{}, false},
		{"too large", `[256]`, nil, true},
		{"not hex", `["0xZZ"]`, nil, true},
		{"not an array", `"0x00"`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var bl ByteList
			err := json.Unmarshal([]byte(tt.raw), &bl)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, []byte(bl))
		})
	}
}

func TestDecodeMemoryMaps(t *testing.T) {
	raw := json.RawMessage(`[
		{"name": "rom", "address": 0, "data": ["0x31", "0xFE", "0xFF"]},
		{"name": "", "address": 49152, "data": []},
		{"name": "bad", "address": 49152, "data": ["nope"]},
		{"name": "wram", "address": 49152, "data": [0, 0, 0, 0]}
	]`)

	maps, errs := DecodeMemoryMaps(raw)

	require.Len(t, maps, 2)
	assert.Len(t, errs, 2)
	assert.Equal(t, "rom", maps[0].Name)
	assert.Equal(t, []byte{0x31, 0xFE, 0xFF}, []byte(maps[0].Data))
	assert.Equal(t, "wram", maps[1].Name)
	assert.Equal(t, uint16(0xC000), maps[1].Address.Value)

	_, errs = DecodeMemoryMaps(json.RawMessage(`{"name": "rom"}`))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMalformed)
}

func TestDecodeMemoryState(t *testing.T) {
	raw := json.RawMessage(`[
		{"name": "wram", "offset": 16, "data": [1, 2]},
		{"region": "hram", "address": 65408, "data": ["0x7F"]},
		{"name": "wram", "offset": 0, "data": [1000]}
	]`)

	patches, errs := DecodeMemoryState(raw)
	require.Len(t, patches, 2)
	require.Len(t, errs, 1)

	p := patches[0].Patch(0xC000)
	assert.Equal(t, "wram", p.Region)
	assert.Equal(t, 16, p.Offset)
	assert.Equal(t, []byte{1, 2}, p.Data)

	p = patches[1].Patch(0xFF80)
	assert.Equal(t, "hram", p.Region)
	assert.Equal(t, 0, p.Offset, "offset derived from absolute address")

	p = patches[1].Patch(0xFF90)
	assert.Equal(t, -16, p.Offset)
}

func TestDecodeError(t *testing.T) {
	assert.Equal(t, "rom not loaded", DecodeError(json.RawMessage(`"rom not loaded"`)))
	assert.Equal(t, `{"code":1}`, DecodeError(json.RawMessage(`{"code":1}`)))
}
