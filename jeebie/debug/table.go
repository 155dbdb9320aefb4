package debug

import (
	"fmt"

	"github.com/valerio/go-jeebie-dbg/jeebie/memory"
)

// CellKind tells the renderer how to highlight a memory cell.
type CellKind int

const (
	CellPlain CellKind = iota
	CellAnchor
	CellOperand
	CellBreakpoint
)

func (k CellKind) String() string {
	switch k {
	case CellAnchor:
		return "anchor"
	case CellOperand:
		return "operand"
	case CellBreakpoint:
		return "breakpoint"
	}
	return "plain"
}

// Highlight describes the cells to mark in a table. Anchor is the cell of
// the program counter (or the operand address, for operand tables); when
// OperandBytes > 1 the bytes following the anchor that belong to the same
// instruction are marked too.
type Highlight struct {
	Anchor       uint16
	HasAnchor    bool
	OperandBytes int
}

// BreakpointLookup reports whether an address of a region carries a
// breakpoint.
type BreakpointLookup interface {
	Lookup(region string, address uint16) bool
}

// Cell is a single rendered byte.
type Cell struct {
	Address uint16
	Value   byte
	Kind    CellKind
}

// Line is a 16-byte row. Label names the row by its address with the low
// nibble replaced by X, e.g. "C01X".
type Line struct {
	Address uint16
	Label   string
	Cells   []Cell
}

// Table is a rendered memory window.
type Table struct {
	Name   string
	Anchor Anchor
	Window Window
	Lines  []Line
}

// Classify returns the kind of the cell at address. The anchor cell wins
// over operand bytes, which win over breakpoints.
func Classify(address uint16, hl Highlight, breakpoint bool) CellKind {
	if hl.HasAnchor {
		a, at := int(address), int(hl.Anchor)
		switch {
		case a == at:
			return CellAnchor
		case a > at && a < at+hl.OperandBytes:
			return CellOperand
		}
	}
	if breakpoint {
		return CellBreakpoint
	}
	return CellPlain
}

// LineLabel formats the label of the line starting at address.
func LineLabel(address uint16) string {
	return fmt.Sprintf("%03XX", address>>4)
}

// BuildTable renders the lines of w from r. bps may be nil.
func BuildTable(r *memory.Region, anchor Anchor, w Window, hl Highlight, bps BreakpointLookup) Table {
	t := Table{
		Name:   r.Name(),
		Anchor: anchor,
		Window: w,
		Lines:  make([]Line, 0, w.Lines()),
	}

	for line := w.Start; line < w.End; line++ {
		offset := line * memory.BytesPerLine
		data := r.Slice(offset, memory.BytesPerLine)
		start := r.Base() + uint16(offset)

		l := Line{
			Address: start,
			Label:   LineLabel(start),
			Cells:   make([]Cell, len(data)),
		}
		for i, value := range data {
			a := start + uint16(i)
			isBreakpoint := bps != nil && bps.Lookup(r.Name(), a)
			l.Cells[i] = Cell{Address: a, Value: value, Kind: Classify(a, hl, isBreakpoint)}
		}
		t.Lines = append(t.Lines, l)
	}

	return t
}
