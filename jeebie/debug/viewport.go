package debug

import (
	"fmt"

	"github.com/valerio/go-jeebie-dbg/jeebie/bit"
	"github.com/valerio/go-jeebie-dbg/jeebie/memory"
)

// WindowLines is the height of a memory table, in 16-byte lines.
const WindowLines = 16

// Anchor selects which part of a region a memory table shows.
type Anchor string

const (
	AnchorStart Anchor = "start"
	AnchorEnd   Anchor = "end"
	AnchorPC    Anchor = "pc"
	// AnchorPrevPC renders like AnchorStart. The remote protocol never
	// defined it further; kept so table specs using it still parse.
	AnchorPrevPC Anchor = "prev-pc"
)

// ParseAnchor validates an anchor name.
func ParseAnchor(s string) (Anchor, error) {
	switch a := Anchor(s); a {
	case AnchorStart, AnchorEnd, AnchorPC, AnchorPrevPC:
		return a, nil
	}
	return "", fmt.Errorf("unknown viewport anchor %q", s)
}

// PlanStartLine returns the first line to render for a region of totalLines
// lines. anchorLine is only used by AnchorPC: the anchor is kept in the
// middle of the window except near the region edges, where the window
// clamps instead of scrolling past the data.
func PlanStartLine(totalLines int, anchor Anchor, anchorLine int) int {
	last := max(0, totalLines-WindowLines)
	half := WindowLines / 2

	switch anchor {
	case AnchorEnd:
		return last
	case AnchorPC:
		switch {
		case anchorLine < half:
			return 0
		case anchorLine <= totalLines-half:
			return bit.Clamp(anchorLine-half, 0, last)
		default:
			return last
		}
	default:
		return 0
	}
}

// Window is a planned view of a region: lines [Start, End).
type Window struct {
	Region     string
	Base       uint16
	Start      int
	End        int
	AnchorLine int
}

// Plan picks the visible window of r for anchor, keeping address visible
// when the anchor is AnchorPC.
func Plan(r *memory.Region, anchor Anchor, address uint16) Window {
	total := r.Lines()
	anchorLine := r.LineOf(address)
	start := PlanStartLine(total, anchor, anchorLine)
	return Window{
		Region:     r.Name(),
		Base:       r.Base(),
		Start:      start,
		End:        min(start+WindowLines, total),
		AnchorLine: anchorLine,
	}
}

// Lines returns the number of visible lines.
func (w Window) Lines() int {
	return w.End - w.Start
}
