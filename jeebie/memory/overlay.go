package memory

import (
	"fmt"
	"log/slog"
)

// Overlay holds the named memory regions of a session and merges write
// patches into them. It is not safe for concurrent use.
type Overlay struct {
	regions map[string]*Region
	order   []*Region
}

// NewOverlay returns an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{
		regions: make(map[string]*Region),
	}
}

// Register adds a region. Names are unique and address ranges never overlap.
func (o *Overlay) Register(name string, base uint16, initial []byte) error {
	if _, exists := o.regions[name]; exists {
		return &RegionError{Op: "register", Region: name, Err: ErrDuplicateRegion}
	}

	end := int(base) + len(initial)
	if end > AddressSpace {
		return &RegionError{
			Op: "register", Region: name, Err: ErrOutOfRange,
			Detail: fmt.Sprintf("base 0x%04X + %d bytes exceeds address space", base, len(initial)),
		}
	}

	for _, other := range o.order {
		if int(base) < other.End() && int(other.base) < end {
			return &RegionError{
				Op: "register", Region: name, Err: ErrRegionOverlap,
				Detail: fmt.Sprintf("overlaps %s", other),
			}
		}
	}

	r := &Region{
		name: name,
		base: base,
		data: append([]byte(nil), initial...),
	}
	o.regions[name] = r
	o.order = append(o.order, r)

	slog.Debug("Registered memory region", "name", name, "base", fmt.Sprintf("0x%04X", base), "size", len(initial))
	return nil
}

// Apply overwrites region bytes [offset, offset+len) with the patch data.
// A patch that does not fit is rejected in full.
func (o *Overlay) Apply(p Patch) error {
	r, ok := o.regions[p.Region]
	if !ok {
		return &RegionError{Op: "patch", Region: p.Region, Err: ErrUnknownRegion}
	}

	if p.Offset < 0 || p.Offset+len(p.Data) > len(r.data) {
		return &RegionError{
			Op: "patch", Region: p.Region, Err: ErrOutOfRange,
			Detail: fmt.Sprintf("offset %d + %d bytes, region size %d", p.Offset, len(p.Data), len(r.data)),
		}
	}

	copy(r.data[p.Offset:], p.Data)
	return nil
}

// Region returns the region registered under name.
func (o *Overlay) Region(name string) (*Region, bool) {
	r, ok := o.regions[name]
	return r, ok
}

// Lookup returns the region containing address.
func (o *Overlay) Lookup(address uint16) (*Region, bool) {
	for _, r := range o.order {
		if r.Contains(address) {
			return r, true
		}
	}
	return nil, false
}

// Regions returns all regions in registration order.
func (o *Overlay) Regions() []*Region {
	return append([]*Region(nil), o.order...)
}

// Len returns the number of registered regions.
func (o *Overlay) Len() int {
	return len(o.order)
}

// Reset drops every region, ahead of a fresh set of initial memory maps.
func (o *Overlay) Reset() {
	o.regions = make(map[string]*Region)
	o.order = nil
}
