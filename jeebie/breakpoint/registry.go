// Package breakpoint tracks breakpoint addresses per memory region. Toggles
// are applied locally right away and reported to the remote as commands; the
// remote never acknowledges them today, so every toggle stays pending until
// the owner calls Confirm or Reject.
package breakpoint

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/valerio/go-jeebie-dbg/jeebie/memory"
	"github.com/valerio/go-jeebie-dbg/jeebie/protocol"
)

// Action is the kind of change a toggle produced.
type Action int

const (
	Add Action = iota
	Remove
)

func (a Action) String() string {
	if a == Add {
		return "add"
	}
	return "remove"
}

// Intent is the outcome of a toggle: what changed locally and which command
// the remote must receive. Seq orders the toggles of a registry, so results
// for an older toggle of the same address can be told apart.
type Intent struct {
	Action  Action
	Region  string
	Address uint16
	Seq     uint64
}

// Command returns the outbound command carrying the intent.
func (i Intent) Command() protocol.Command {
	if i.Action == Add {
		return protocol.Breakpoint(protocol.AddBreakpointCommand, i.Address)
	}
	return protocol.Breakpoint(protocol.RemoveBreakpointCommand, i.Address)
}

func (i Intent) String() string {
	return fmt.Sprintf("%s %s:0x%04X", i.Action, i.Region, i.Address)
}

// Regions resolves region names, typically a *memory.Overlay.
type Regions interface {
	Region(name string) (*memory.Region, bool)
}

type key struct {
	region  string
	address uint16
}

// Registry holds one address set per region.
type Registry struct {
	regions Regions
	sets    map[string]map[uint16]struct{}
	pending map[key]Intent
	seq     uint64
}

// NewRegistry returns an empty registry validating against regions.
func NewRegistry(regions Regions) *Registry {
	return &Registry{
		regions: regions,
		sets:    make(map[string]map[uint16]struct{}),
		pending: make(map[key]Intent),
	}
}

// Toggle removes address from the region's set if present, inserts it
// otherwise. The region must be registered and contain the address.
func (r *Registry) Toggle(region string, address uint16) (Intent, error) {
	mr, ok := r.regions.Region(region)
	if !ok {
		return Intent{}, &memory.RegionError{Op: "toggle breakpoint", Region: region, Err: memory.ErrUnknownRegion}
	}
	if !mr.Contains(address) {
		return Intent{}, &memory.RegionError{
			Op: "toggle breakpoint", Region: region, Err: memory.ErrOutOfRange,
			Detail: fmt.Sprintf("0x%04X not in %s", address, mr),
		}
	}

	r.seq++
	intent := Intent{Region: region, Address: address, Seq: r.seq}
	if r.Lookup(region, address) {
		intent.Action = Remove
		r.remove(region, address)
	} else {
		intent.Action = Add
		r.add(region, address)
	}

	// only the latest toggle of an address is settled
	r.pending[key{region, address}] = intent

	slog.Debug("Breakpoint toggled", "intent", intent.String())
	return intent, nil
}

// Lookup reports whether address is a breakpoint in region.
func (r *Registry) Lookup(region string, address uint16) bool {
	_, ok := r.sets[region][address]
	return ok
}

// Addresses returns the breakpoints of a region in ascending order.
func (r *Registry) Addresses(region string) []uint16 {
	return slices.Sorted(maps.Keys(r.sets[region]))
}

// Len returns the total number of breakpoints.
func (r *Registry) Len() int {
	n := 0
	for _, set := range r.sets {
		n += len(set)
	}
	return n
}

// Pending returns the toggles not yet confirmed or rejected, by region and address.
func (r *Registry) Pending() []Intent {
	intents := slices.Collect(maps.Values(r.pending))
	slices.SortFunc(intents, func(a, b Intent) int {
		if a.Region != b.Region {
			if a.Region < b.Region {
				return -1
			}
			return 1
		}
		return int(a.Address) - int(b.Address)
	})
	return intents
}

// Confirm marks a toggle as accepted by the remote. Results for a toggle
// superseded by a later one are ignored.
func (r *Registry) Confirm(intent Intent) bool {
	k := key{intent.Region, intent.Address}
	if p, ok := r.pending[k]; !ok || p.Seq != intent.Seq {
		return false
	}
	delete(r.pending, k)
	return true
}

// Reject undoes a pending toggle refused by the remote. It reports whether
// the intent was still the latest pending toggle of its address; a
// superseded toggle is left alone, the later command overrides it.
func (r *Registry) Reject(intent Intent) bool {
	k := key{intent.Region, intent.Address}
	p, ok := r.pending[k]
	if !ok || p.Seq != intent.Seq {
		return false
	}
	delete(r.pending, k)
	if intent.Action == Add {
		r.remove(intent.Region, intent.Address)
	} else {
		r.add(intent.Region, intent.Address)
	}
	slog.Warn("Breakpoint change rejected", "intent", intent.String())
	return true
}

// Prune drops breakpoints whose region vanished or no longer contains them,
// after a new set of memory maps. It returns how many were dropped.
func (r *Registry) Prune() int {
	dropped := 0
	for region, set := range r.sets {
		mr, ok := r.regions.Region(region)
		for address := range set {
			if !ok || !mr.Contains(address) {
				delete(set, address)
				delete(r.pending, key{region, address})
				dropped++
			}
		}
		if len(set) == 0 {
			delete(r.sets, region)
		}
	}
	return dropped
}

func (r *Registry) add(region string, address uint16) {
	set, ok := r.sets[region]
	if !ok {
		set = make(map[uint16]struct{})
		r.sets[region] = set
	}
	set[address] = struct{}{}
}

func (r *Registry) remove(region string, address uint16) {
	set := r.sets[region]
	delete(set, address)
	if len(set) == 0 {
		delete(r.sets, region)
	}
}
