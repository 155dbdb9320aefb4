package bit

import "golang.org/x/exp/constraints"

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// IsSet will check if the bit at the specified index is set to 1 or not.
func IsSet(index, byte uint8) bool {
	return ((byte >> index) & 1) == 1
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the high (MSB) part of a 16 bit number.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// CeilDiv divides a by b rounding up. b must be positive.
func CeilDiv[I constraints.Integer](a, b I) I {
	return (a + b - 1) / b
}

// FloorDiv divides a by b rounding towards negative infinity, so that
// addresses below a region base land on negative line numbers.
func FloorDiv[I constraints.Signed](a, b I) I {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Clamp limits value to the closed range [lo, hi]. When hi < lo, lo wins.
func Clamp[I constraints.Integer](value, lo, hi I) I {
	if value > hi {
		value = hi
	}
	if value < lo {
		value = lo
	}
	return value
}
