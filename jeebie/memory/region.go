package memory

import (
	"fmt"

	"github.com/valerio/go-jeebie-dbg/jeebie/bit"
)

// AddressSpace is the size of the 16-bit address bus.
const AddressSpace = 0x10000

// BytesPerLine is the width of a memory table line.
const BytesPerLine = 16

// Region is a named, contiguous, fixed-length byte space. Regions handed out
// by the Overlay are read-only views: only the overlay writes to them.
type Region struct {
	name string
	base uint16
	data []byte
}

func (r *Region) Name() string {
	return r.name
}

func (r *Region) Base() uint16 {
	return r.base
}

// Len returns the region length in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// End returns the first address past the region. It can be 0x10000.
func (r *Region) End() int {
	return int(r.base) + len(r.data)
}

// Contains reports whether address lies within [base, base+len).
func (r *Region) Contains(address uint16) bool {
	return int(address) >= int(r.base) && int(address) < r.End()
}

// Read returns the byte at an absolute address.
func (r *Region) Read(address uint16) (byte, bool) {
	if !r.Contains(address) {
		return 0, false
	}
	return r.data[int(address)-int(r.base)], true
}

// At returns the byte at an offset from the region base. It panics on a bad
// offset, like a slice index.
func (r *Region) At(offset int) byte {
	return r.data[offset]
}

// Bytes returns a copy of the region contents.
func (r *Region) Bytes() []byte {
	return append([]byte(nil), r.data...)
}

// Slice returns a copy of [offset, offset+n), truncated at the region end.
func (r *Region) Slice(offset, n int) []byte {
	if offset < 0 || offset >= len(r.data) || n <= 0 {
		return nil
	}
	end := min(offset+n, len(r.data))
	return append([]byte(nil), r.data[offset:end]...)
}

// Lines returns the number of 16-byte lines, counting a partial last line.
func (r *Region) Lines() int {
	return bit.CeilDiv(len(r.data), BytesPerLine)
}

// LineOf returns the line containing address. Addresses below the base give
// negative lines and addresses past the end give lines >= Lines().
func (r *Region) LineOf(address uint16) int {
	return bit.FloorDiv(int(address)-int(r.base), BytesPerLine)
}

func (r *Region) String() string {
	return fmt.Sprintf("%s[%04X-%04X]", r.name, r.base, r.End()-1)
}

// Patch is an incremental write to a sub-range of a region.
type Patch struct {
	Region string
	Offset int
	Data   []byte
}
