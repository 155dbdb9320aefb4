package breakpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-jeebie-dbg/jeebie/memory"
	"github.com/valerio/go-jeebie-dbg/jeebie/protocol"
)

func newTestRegistry(t *testing.T) (*Registry, *memory.Overlay) {
	t.Helper()
	o := memory.NewOverlay()
	require.NoError(t, o.Register("rom", 0x0000, make([]byte, 0x8000)))
	require.NoError(t, o.Register("wram", 0xC000, make([]byte, 256)))
	return NewRegistry(o), o
}

func TestToggle_AddThenRemove(t *testing.T) {
	r, _ := newTestRegistry(t)

	intent, err := r.Toggle("wram", 0xC010)
	require.NoError(t, err)
	assert.Equal(t, Intent{Action: Add, Region: "wram", Address: 0xC010, Seq: 1}, intent)
	assert.Equal(t, protocol.AddBreakpointCommand, intent.Command().Type)
	assert.Equal(t, uint16(0xC010), intent.Command().Data)
	assert.True(t, r.Lookup("wram", 0xC010))

	intent, err = r.Toggle("wram", 0xC010)
	require.NoError(t, err)
	assert.Equal(t, Remove, intent.Action)
	assert.Equal(t, protocol.RemoveBreakpointCommand, intent.Command().Type)
	assert.False(t, r.Lookup("wram", 0xC010))
}

func TestToggle_IsItsOwnInverse(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, err := r.Toggle("rom", 0x0150)
	require.NoError(t, err)

	for _, addr := range []uint16{0x0150, 0x0151} {
		before := r.Lookup("rom", addr)
		_, err := r.Toggle("rom", addr)
		require.NoError(t, err)
		_, err = r.Toggle("rom", addr)
		require.NoError(t, err)
		assert.Equal(t, before, r.Lookup("rom", addr), "membership of 0x%04X", addr)
	}
}

func TestToggle_UnknownRegion(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Toggle("vram", 0x8000)

	assert.ErrorIs(t, err, memory.ErrUnknownRegion)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Pending())
}

func TestToggle_AddressOutsideRegion(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Toggle("wram", 0xC100)

	assert.ErrorIs(t, err, memory.ErrOutOfRange)
	assert.False(t, r.Lookup("wram", 0xC100))
}

func TestToggle_SetsArePerRegion(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, err := r.Toggle("wram", 0xC000)
	require.NoError(t, err)

	assert.True(t, r.Lookup("wram", 0xC000))
	assert.False(t, r.Lookup("rom", 0xC000))
}

func TestAddresses_Sorted(t *testing.T) {
	r, _ := newTestRegistry(t)
	for _, addr := range []uint16{0xC0F0, 0xC001, 0xC080} {
		_, err := r.Toggle("wram", addr)
		require.NoError(t, err)
	}

	assert.Equal(t, []uint16{0xC001, 0xC080, 0xC0F0}, r.Addresses("wram"))
	assert.Empty(t, r.Addresses("rom"))
	assert.Equal(t, 3, r.Len())
}

func TestPending_ConfirmAndReject(t *testing.T) {
	r, _ := newTestRegistry(t)

	add, err := r.Toggle("wram", 0xC010)
	require.NoError(t, err)
	other, err := r.Toggle("rom", 0x0100)
	require.NoError(t, err)
	assert.Equal(t, []Intent{other, add}, r.Pending())

	assert.True(t, r.Confirm(other))
	assert.Equal(t, []Intent{add}, r.Pending())
	assert.True(t, r.Lookup("rom", 0x0100))

	assert.True(t, r.Reject(add))
	assert.False(t, r.Lookup("wram", 0xC010), "rejected add is rolled back")
	assert.Empty(t, r.Pending())
	assert.False(t, r.Reject(add), "nothing left to reject")
}

func TestPending_RejectRemoveRestores(t *testing.T) {
	r, _ := newTestRegistry(t)
	add, err := r.Toggle("wram", 0xC020)
	require.NoError(t, err)
	require.True(t, r.Confirm(add))

	remove, err := r.Toggle("wram", 0xC020)
	require.NoError(t, err)
	require.False(t, r.Lookup("wram", 0xC020))

	assert.True(t, r.Reject(remove))
	assert.True(t, r.Lookup("wram", 0xC020))
}

func TestPending_LatestToggleWins(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, err := r.Toggle("wram", 0xC030)
	require.NoError(t, err)
	remove, err := r.Toggle("wram", 0xC030)
	require.NoError(t, err)

	assert.Equal(t, []Intent{remove}, r.Pending())
}

func TestPending_StaleResultsIgnored(t *testing.T) {
	r, _ := newTestRegistry(t)

	// add, remove, add: the results arrive after all three toggles
	first, err := r.Toggle("wram", 0xC040)
	require.NoError(t, err)
	second, err := r.Toggle("wram", 0xC040)
	require.NoError(t, err)
	third, err := r.Toggle("wram", 0xC040)
	require.NoError(t, err)
	require.Equal(t, first.Action, third.Action)
	require.True(t, r.Lookup("wram", 0xC040))

	assert.False(t, r.Confirm(first))
	assert.False(t, r.Confirm(second))
	assert.Equal(t, []Intent{third}, r.Pending())

	assert.True(t, r.Reject(third), "the failed add is still the latest toggle")
	assert.False(t, r.Lookup("wram", 0xC040))
	assert.Empty(t, r.Pending())

	// a stale failure never touches the current state
	_, err = r.Toggle("wram", 0xC040)
	require.NoError(t, err)
	assert.False(t, r.Reject(second))
	assert.True(t, r.Lookup("wram", 0xC040))
}

func TestPrune(t *testing.T) {
	r, o := newTestRegistry(t)
	for _, bp := range []struct {
		region string
		addr   uint16
	}{{"wram", 0xC010}, {"wram", 0xC0F0}, {"rom", 0x0100}} {
		_, err := r.Toggle(bp.region, bp.addr)
		require.NoError(t, err)
	}

	o.Reset()
	require.NoError(t, o.Register("wram", 0xC000, make([]byte, 128)))

	assert.Equal(t, 2, r.Prune())
	assert.Equal(t, []uint16{0xC010}, r.Addresses("wram"))
	assert.False(t, r.Lookup("rom", 0x0100))
	assert.Len(t, r.Pending(), 1)
}

func TestIntent_String(t *testing.T) {
	assert.Equal(t, "add wram:0xC010", Intent{Action: Add, Region: "wram", Address: 0xC010}.String())
	assert.Equal(t, "remove rom:0x0150", Intent{Action: Remove, Region: "rom", Address: 0x0150}.String())
}
