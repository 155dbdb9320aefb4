package bit

import (
	"testing"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		high, low uint8
		expected  uint16
	}{
		{0xAB, 0xCD, 0xABCD},
		{0x00, 0x00, 0x0000},
		{0xFF, 0xFF, 0xFFFF},
		{0x12, 0x34, 0x1234},
	}

	for _, tt := range tests {
		result := Combine(tt.high, tt.low)
		if result != tt.expected {
			t.Errorf("Combine(%X, %X) = %X; want %X", tt.high, tt.low, result, tt.expected)
		}
	}
}

func TestLowHigh(t *testing.T) {
	if Low(0xCAFE) != 0xFE {
		t.Errorf("Low(0xCAFE) = %X; want FE", Low(0xCAFE))
	}
	if High(0xCAFE) != 0xCA {
		t.Errorf("High(0xCAFE) = %X; want CA", High(0xCAFE))
	}
}

func TestIsSet(t *testing.T) {
	tests := []struct {
		byte     uint8
		index    uint8
		expected bool
	}{
		{0b10101010, 0, false},
		{0b10101010, 1, true},
		{0b10101010, 2, false},
		{0b10101010, 7, true},
		{0b10101010, 8, false},
	}

	for _, tt := range tests {
		if got := IsSet(tt.index, tt.byte); got != tt.expected {
			t.Errorf("IsSet(%d, %08b) = %v; want %v", tt.index, tt.byte, got, tt.expected)
		}
	}
}

func TestCeilDiv(t *testing.T) {
	tests := []struct {
		a, b, expected int
	}{
		{0, 16, 0},
		{1, 16, 1},
		{16, 16, 1},
		{17, 16, 2},
		{256, 16, 16},
		{0x2000, 16, 0x200},
	}

	for _, tt := range tests {
		if got := CeilDiv(tt.a, tt.b); got != tt.expected {
			t.Errorf("CeilDiv(%d, %d) = %d; want %d", tt.a, tt.b, got, tt.expected)
		}
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, expected int
	}{
		{0, 16, 0},
		{15, 16, 0},
		{16, 16, 1},
		{-1, 16, -1},
		{-16, 16, -1},
		{-17, 16, -2},
	}

	for _, tt := range tests {
		if got := FloorDiv(tt.a, tt.b); got != tt.expected {
			t.Errorf("FloorDiv(%d, %d) = %d; want %d", tt.a, tt.b, got, tt.expected)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		value, lo, hi, expected int
	}{
		{5, 0, 10, 5},
		{-3, 0, 10, 0},
		{12, 0, 10, 10},
		{4, 0, -4, 0},
	}

	for _, tt := range tests {
		if got := Clamp(tt.value, tt.lo, tt.hi); got != tt.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d; want %d", tt.value, tt.lo, tt.hi, got, tt.expected)
		}
	}
}
