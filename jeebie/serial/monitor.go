package serial

import (
	"log/slog"

	"github.com/valerio/go-jeebie-dbg/jeebie/addr"
	"github.com/valerio/go-jeebie-dbg/jeebie/bit"
)

// DefaultHistory is the number of completed lines a Monitor keeps.
const DefaultHistory = 32

// Monitor reconstructs the text a program prints over the serial port from
// the writes to SB and SC seen in memory patches. Test ROMs commonly report
// their results this way.
type Monitor struct {
	sb      byte
	line    []byte
	lines   []string
	history int
}

// NewMonitor returns a monitor keeping the last history lines.
func NewMonitor(history int) *Monitor {
	if history <= 0 {
		history = DefaultHistory
	}
	return &Monitor{history: history}
}

// Watches reports whether writes to address matter to the monitor.
func Watches(address uint16) bool {
	return address == addr.SB || address == addr.SC
}

// Write records a write to SB or SC. Other addresses are ignored.
func (m *Monitor) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		m.sb = value
	case addr.SC:
		// a transfer starts when bit 7 (start) and bit 0 (internal clock) are set
		if bit.IsSet(7, value) && bit.IsSet(0, value) {
			m.transfer(m.sb)
		}
	}
}

func (m *Monitor) transfer(b byte) {
	if b == 0 || b == '\n' || b == '\r' {
		if len(m.line) > 0 {
			slog.Info("serial", "line", string(m.line))
			m.lines = append(m.lines, string(m.line))
			if len(m.lines) > m.history {
				m.lines = m.lines[len(m.lines)-m.history:]
			}
			m.line = m.line[:0]
		}
		return
	}
	m.line = append(m.line, b)
}

// Lines returns the completed lines, oldest first.
func (m *Monitor) Lines() []string {
	return append([]string(nil), m.lines...)
}

// Partial returns the text of the line still being printed.
func (m *Monitor) Partial() string {
	return string(m.line)
}

// Reset forgets all output.
func (m *Monitor) Reset() {
	m.sb = 0
	m.line = m.line[:0]
	m.lines = nil
}
