package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-jeebie-dbg/jeebie/memory"
)

func TestParseAnchor(t *testing.T) {
	for _, s := range []string{"start", "end", "pc", "prev-pc"} {
		a, err := ParseAnchor(s)
		require.NoError(t, err)
		assert.Equal(t, Anchor(s), a)
	}

	_, err := ParseAnchor("middle")
	assert.Error(t, err)
}

func TestPlanStartLine(t *testing.T) {
	testCases := []struct {
		name       string
		total      int
		anchor     Anchor
		anchorLine int
		want       int
	}{
		{"start", 20, AnchorStart, 12, 0},
		{"end", 20, AnchorEnd, 0, 4},
		{"end short region", 10, AnchorEnd, 0, 0},
		{"prev-pc behaves like start", 20, AnchorPrevPC, 12, 0},
		{"pc near top", 20, AnchorPC, 3, 0},
		{"pc in the middle", 20, AnchorPC, 12, 4},
		{"pc near bottom", 20, AnchorPC, 19, 4},
		{"pc centered in a large region", 256, AnchorPC, 100, 92},
		{"pc at the centering boundary", 256, AnchorPC, 248, 240},
		{"pc past the centering boundary", 256, AnchorPC, 250, 240},
		{"pc in a short region", 10, AnchorPC, 9, 0},
		{"pc below region", 20, AnchorPC, -1, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PlanStartLine(tc.total, tc.anchor, tc.anchorLine))
		})
	}
}

func TestPlanStartLineKeepsAnchorVisible(t *testing.T) {
	for total := 1; total <= 64; total++ {
		for line := 0; line < total; line++ {
			start := PlanStartLine(total, AnchorPC, line)
			assert.GreaterOrEqual(t, start, 0)
			assert.GreaterOrEqual(t, line, start, "total=%d line=%d", total, line)
			assert.Less(t, line, start+WindowLines, "total=%d line=%d", total, line)
		}
	}
}

func TestPlan(t *testing.T) {
	o := memory.NewOverlay()
	require.NoError(t, o.Register("wram", 0xC000, make([]byte, 256)))
	r, ok := o.Region("wram")
	require.True(t, ok)

	w := Plan(r, AnchorPC, 0xC010)
	assert.Equal(t, 1, w.AnchorLine)
	assert.Equal(t, 0, w.Start)
	assert.Equal(t, 16, w.End)
	assert.Equal(t, "wram", w.Region)
	assert.Equal(t, uint16(0xC000), w.Base)

	w = Plan(r, AnchorEnd, 0)
	assert.Equal(t, 0, w.Start)
	assert.Equal(t, 16, w.Lines())

	require.NoError(t, o.Register("hram", 0xFF80, make([]byte, 0x7F)))
	r, _ = o.Region("hram")
	w = Plan(r, AnchorPC, 0xFFFE)
	assert.Equal(t, 0, w.Start)
	assert.Equal(t, 8, w.End)
}
