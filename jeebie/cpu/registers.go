package cpu

import (
	"fmt"

	"github.com/valerio/go-jeebie-dbg/jeebie/bit"
)

// Register8 represents an 8-bit register as reported by the remote CPU.
type Register8 uint8

// Get returns the register as a byte.
func (r Register8) Get() uint8 {
	return uint8(r)
}

// Hex formats the register as two uppercase hex digits.
func (r Register8) Hex() string {
	return fmt.Sprintf("%02X", uint8(r))
}

// Bits formats the register as 8 binary digits.
func (r Register8) Bits() string {
	return fmt.Sprintf("%08b", uint8(r))
}

// Register16 represents a 16-bit register or register pair (BC, DE, HL).
type Register16 uint16

// Get returns the value of the register as a 16 bit unsigned integer.
func (r Register16) Get() uint16 {
	return uint16(r)
}

// High returns the most significant byte, e.g. B for BC.
func (r Register16) High() Register8 {
	return Register8(bit.High(uint16(r)))
}

// Low returns the least significant byte, e.g. C for BC.
func (r Register16) Low() Register8 {
	return Register8(bit.Low(uint16(r)))
}

// Hex formats the register as four uppercase hex digits.
func (r Register16) Hex() string {
	return fmt.Sprintf("%04X", uint16(r))
}

// Bits formats the register as 16 binary digits.
func (r Register16) Bits() string {
	return fmt.Sprintf("%016b", uint16(r))
}

// Pair builds a register pair from its two halves.
func Pair(high, low uint8) Register16 {
	return Register16(bit.Combine(high, low))
}
