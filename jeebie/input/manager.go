package input

import (
	"log/slog"
	"time"

	"github.com/valerio/go-jeebie-dbg/jeebie/input/action"
	"github.com/valerio/go-jeebie-dbg/jeebie/input/event"
)

const (
	// debounceDuration is the minimum time between debounced events
	debounceDuration = 300 * time.Millisecond
)

// Joypad receives Game Boy button changes, typically a session controller
// forwarding them to the remote machine.
type Joypad interface {
	Joypad(key string, pressed bool) error
}

// Manager handles input actions and their associated callbacks
type Manager struct {
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]map[event.Type]time.Time
	joypad        Joypad
	debounce      time.Duration
	now           func() time.Time
}

func NewManager(j Joypad) *Manager {
	return &Manager{
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]map[event.Type]time.Time),
		joypad:        j,
		debounce:      debounceDuration,
		now:           time.Now,
	}
}

// SetDebounce changes the debounce window. Zero disables debouncing, which
// scripted frontends need.
func (m *Manager) SetDebounce(d time.Duration) {
	m.debounce = d
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given action and event type.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	// GB controls are forwarded as they happen
	if key, ok := JoypadKey(act); ok {
		if m.joypad == nil || evt == event.Hold {
			return
		}
		if err := m.joypad.Joypad(key, evt == event.Press); err != nil {
			slog.Debug("Joypad event dropped", "key", key, "error", err)
		}
		return
	}

	// Debounce Press and Release events; cursor moves follow key repeat
	if (evt == event.Press || evt == event.Release) && m.debounce > 0 && !isCursorMove(act) {
		now := m.now()
		if m.lastTriggered[act] == nil {
			m.lastTriggered[act] = make(map[event.Type]time.Time)
		}
		if lastTime, ok := m.lastTriggered[act][evt]; ok && now.Sub(lastTime) < m.debounce {
			return
		}
		m.lastTriggered[act][evt] = now
	}

	for _, callback := range m.handlers[act][evt] {
		callback()
	}
}

func isCursorMove(act action.Action) bool {
	switch act {
	case action.CursorUp, action.CursorDown, action.CursorLeft, action.CursorRight:
		return true
	}
	return false
}

// JoypadKey maps Game Boy actions to the key names of the joypad command.
func JoypadKey(act action.Action) (string, bool) {
	switch act {
	case action.GBButtonA:
		return "A", true
	case action.GBButtonB:
		return "B", true
	case action.GBButtonStart:
		return "START", true
	case action.GBButtonSelect:
		return "SELECT", true
	case action.GBDPadUp:
		return "UP", true
	case action.GBDPadDown:
		return "DOWN", true
	case action.GBDPadLeft:
		return "LEFT", true
	case action.GBDPadRight:
		return "RIGHT", true
	default:
		return "", false
	}
}
