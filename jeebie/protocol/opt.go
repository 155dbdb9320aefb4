package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Opt is a JSON field with presence. Missing, null and malformed values all
// decode as absent with the zero Value, so partial snapshots never fail to
// decode while tests can still tell "absent" from "present and zero".
type Opt[T any] struct {
	Value   T
	Present bool
}

// Some returns a present Opt.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Present: true}
}

func (o *Opt[T]) UnmarshalJSON(b []byte) error {
	*o = Opt[T]{}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	o.Value = v
	o.Present = true
	return nil
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Present {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Or returns the value if present, def otherwise.
func (o Opt[T]) Or(def T) T {
	if o.Present {
		return o.Value
	}
	return def
}

// ByteList decodes a byte array given either as numbers or as hex strings
// ("0x3C", "3C"), the latter being what the emulator server emits.
type ByteList []byte

func (bl *ByteList) UnmarshalJSON(b []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("%w: byte list: %v", ErrMalformed, err)
	}
	out := make([]byte, len(items))
	for i, item := range items {
		v, err := decodeByte(item)
		if err != nil {
			return fmt.Errorf("%w: byte %d: %v", ErrMalformed, i, err)
		}
		out[i] = v
	}
	*bl = out
	return nil
}

func decodeByte(raw json.RawMessage) (byte, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if n < 0 || n > 0xFF {
			return 0, fmt.Errorf("value %d does not fit a byte", n)
		}
		return byte(n), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("expected number or hex string, got %s", raw)
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

// CycleList decodes either a single cycle count or a [taken, not taken] pair.
type CycleList []int

func (cl *CycleList) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*cl = CycleList{n}
		return nil
	}
	var ns []int
	if err := json.Unmarshal(b, &ns); err != nil {
		return fmt.Errorf("%w: cycles: %v", ErrMalformed, err)
	}
	*cl = ns
	return nil
}
