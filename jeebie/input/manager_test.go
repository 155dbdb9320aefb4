package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-jeebie-dbg/jeebie/input/action"
	"github.com/valerio/go-jeebie-dbg/jeebie/input/event"
)

type joypadEvent struct {
	key     string
	pressed bool
}

type fakeJoypad struct {
	events []joypadEvent
}

func (f *fakeJoypad) Joypad(key string, pressed bool) error {
	f.events = append(f.events, joypadEvent{key, pressed})
	return nil
}

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager() (*Manager, *fakeJoypad, *fakeClock) {
	j := &fakeJoypad{}
	clock := &fakeClock{t: time.Unix(0, 0)}
	m := NewManager(j)
	m.now = clock.now
	return m, j, clock
}

func TestManager_Debouncing(t *testing.T) {
	tests := []struct {
		name           string
		action         action.Action
		eventType      event.Type
		timeBetween    time.Duration
		expectDebounce bool
	}{
		{
			name:           "step release in rapid succession - should debounce",
			action:         action.DebuggerStep,
			eventType:      event.Release,
			timeBetween:    100 * time.Millisecond,
			expectDebounce: true,
		},
		{
			name:           "step release after the window - should not debounce",
			action:         action.DebuggerStep,
			eventType:      event.Release,
			timeBetween:    400 * time.Millisecond,
			expectDebounce: false,
		},
		{
			name:           "UI action rapid press - should debounce",
			action:         action.DebuggerSnapshot,
			eventType:      event.Press,
			timeBetween:    10 * time.Millisecond,
			expectDebounce: true,
		},
		{
			name:           "cursor move on key repeat - should not debounce",
			action:         action.CursorDown,
			eventType:      event.Press,
			timeBetween:    30 * time.Millisecond,
			expectDebounce: false,
		},
		{
			name:           "Hold event type - should not debounce",
			action:         action.DebuggerStep,
			eventType:      event.Hold,
			timeBetween:    10 * time.Millisecond,
			expectDebounce: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, clock := newTestManager()

			calls := 0
			m.On(tt.action, tt.eventType, func() { calls++ })

			// First event should always go through
			m.Trigger(tt.action, tt.eventType)
			require.Equal(t, 1, calls, "First event should always pass")

			clock.advance(tt.timeBetween)
			m.Trigger(tt.action, tt.eventType)

			if tt.expectDebounce {
				assert.Equal(t, 1, calls, "Second event should be debounced")
			} else {
				assert.Equal(t, 2, calls, "Second event should not be debounced")
			}
		})
	}
}

func TestManager_MultipleActions(t *testing.T) {
	m, _, _ := newTestManager()

	var steps, runs int
	m.On(action.DebuggerStep, event.Release, func() { steps++ })
	m.On(action.DebuggerContinue, event.Press, func() { runs++ })

	// Different actions shouldn't interfere with each other
	m.Trigger(action.DebuggerStep, event.Release)
	m.Trigger(action.DebuggerContinue, event.Press)
	m.Trigger(action.DebuggerStep, event.Release)

	assert.Equal(t, 1, steps)
	assert.Equal(t, 1, runs)

	// step fires on release only
	m.Trigger(action.DebuggerStep, event.Press)
	assert.Equal(t, 1, steps)
}

func TestManager_DebounceDisabled(t *testing.T) {
	m, _, _ := newTestManager()
	m.SetDebounce(0)

	steps := 0
	m.On(action.DebuggerStep, event.Release, func() { steps++ })
	for i := 0; i < 5; i++ {
		m.Trigger(action.DebuggerStep, event.Release)
	}
	assert.Equal(t, 5, steps)
}

func TestManager_Joypad(t *testing.T) {
	m, j, _ := newTestManager()

	called := false
	m.On(action.GBButtonA, event.Press, func() { called = true })

	m.Trigger(action.GBButtonA, event.Press)
	m.Trigger(action.GBButtonA, event.Hold)
	m.Trigger(action.GBButtonA, event.Press)
	m.Trigger(action.GBDPadLeft, event.Press)
	m.Trigger(action.GBDPadLeft, event.Release)
	m.Trigger(action.GBButtonA, event.Release)

	assert.False(t, called, "Game Boy buttons go to the joypad, not to handlers")
	assert.Equal(t, []joypadEvent{
		{"A", true},
		{"A", true},
		{"LEFT", true},
		{"LEFT", false},
		{"A", false},
	}, j.events)
}

func TestJoypadKey(t *testing.T) {
	for act := action.GBButtonA; act <= action.GBDPadRight; act++ {
		key, ok := JoypadKey(act)
		assert.True(t, ok, act.String())
		assert.NotEmpty(t, key)
		assert.True(t, action.IsJoypad(act))
	}

	_, ok := JoypadKey(action.DebuggerStep)
	assert.False(t, ok)
	assert.False(t, action.IsJoypad(action.DebuggerStep))
}

func TestDefaultKeyMap(t *testing.T) {
	act, ok := GetDefaultMapping("Space")
	require.True(t, ok)
	assert.Equal(t, action.DebuggerStep, act)

	_, ok = GetDefaultMapping("F1")
	assert.False(t, ok)
}
