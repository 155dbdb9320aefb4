package session

import (
	"errors"
	"log/slog"
	"time"

	"github.com/valerio/go-jeebie-dbg/jeebie/breakpoint"
	"github.com/valerio/go-jeebie-dbg/jeebie/protocol"
)

var (
	// ErrClosed is returned when a command is issued after Close.
	ErrClosed = errors.New("session closed")
	// ErrOutboxFull is returned when the outbound queue cannot take a command.
	ErrOutboxFull = errors.New("outbox full")
)

const (
	// DefaultOutboxSize is the number of commands that may wait for the sender.
	DefaultOutboxSize = 64
	// DefaultCloseTimeout is how long Close waits for a command being sent.
	DefaultCloseTimeout = 2 * time.Second
)

// Sender delivers one command to the remote machine. Send may block; it is
// only ever called from the outbox goroutine.
type Sender interface {
	Send(cmd protocol.Command) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(cmd protocol.Command) error

func (f SenderFunc) Send(cmd protocol.Command) error {
	return f(cmd)
}

// delivery is a queued command. Breakpoint commands carry their intent so the
// result can be reconciled with the registry.
type delivery struct {
	cmd    protocol.Command
	intent *breakpoint.Intent
	err    error
}

// drain sends queued commands until done is closed. Anything still queued at
// that point is discarded.
func (c *Controller) drain() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		case d := <-c.outbox:
			select {
			case <-c.done:
				return
			default:
			}
			d.err = c.sender.Send(d.cmd)
			if d.err != nil {
				slog.Warn("Failed to send command", "command", d.cmd.String(), "error", d.err)
			} else {
				slog.Debug("Command sent", "command", d.cmd.String())
			}
			if d.intent == nil {
				continue
			}
			select {
			case c.results <- d:
			case <-c.done:
				return
			}
		}
	}
}

// enqueue hands a command to the outbox without blocking.
func (c *Controller) enqueue(cmd protocol.Command, intent *breakpoint.Intent) error {
	select {
	case <-c.done:
		slog.Warn("Session closed, command dropped", "command", cmd.String())
		return ErrClosed
	default:
	}

	select {
	case c.outbox <- delivery{cmd: cmd, intent: intent}:
		return nil
	default:
		slog.Warn("Outbox full, command dropped", "command", cmd.String())
		return ErrOutboxFull
	}
}

// settle reconciles one delivered breakpoint command with the registry.
// Results of toggles superseded by a later toggle of the same address are
// dropped by the registry.
func (c *Controller) settle(d delivery) {
	settled := false
	if d.err != nil {
		settled = c.breakpoints.Reject(*d.intent)
	} else {
		settled = c.breakpoints.Confirm(*d.intent)
	}
	if !settled {
		slog.Debug("Stale breakpoint result", "intent", d.intent.String())
	}
}
