package jeebie

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valerio/go-jeebie-dbg/jeebie/backend"
	"github.com/valerio/go-jeebie-dbg/jeebie/input"
	"github.com/valerio/go-jeebie-dbg/jeebie/input/action"
	"github.com/valerio/go-jeebie-dbg/jeebie/input/event"
	"github.com/valerio/go-jeebie-dbg/jeebie/protocol"
	"github.com/valerio/go-jeebie-dbg/jeebie/session"
	"github.com/valerio/go-jeebie-dbg/jeebie/timing"
)

// DefaultMessagesPerFrame bounds the inbound messages handled between two
// renders, so a burst of patches cannot starve input handling.
const DefaultMessagesPerFrame = 64

// Config holds the frame loop settings.
type Config struct {
	Title            string
	MessagesPerFrame int
	// ExitOnDisconnect stops the loop once the inbound stream ends.
	ExitOnDisconnect bool
}

// Debugger runs the frontend frame loop: inbound messages are applied to the
// session, the view is rendered and input is turned into commands. Everything
// happens on the goroutine calling Run.
type Debugger struct {
	session *session.Controller
	backend backend.Backend
	input   *input.Manager
	limiter timing.Limiter
	inbox   <-chan protocol.Message
	config  Config

	running bool
	frames  uint64
}

func New(s *session.Controller, b backend.Backend, inbox <-chan protocol.Message, limiter timing.Limiter, config Config) *Debugger {
	if config.MessagesPerFrame <= 0 {
		config.MessagesPerFrame = DefaultMessagesPerFrame
	}
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}

	d := &Debugger{
		session: s,
		backend: b,
		input:   input.NewManager(s),
		limiter: limiter,
		inbox:   inbox,
		config:  config,
	}
	d.bindActions()
	return d
}

// Input returns the input manager, e.g. to adjust debouncing.
func (d *Debugger) Input() *input.Manager {
	return d.input
}

func (d *Debugger) bindActions() {
	// stepping fires on release so a held key does not flood the remote
	d.input.On(action.DebuggerStep, event.Release, func() {
		d.command("step", d.session.Step)
	})
	d.input.On(action.DebuggerContinue, event.Press, func() {
		d.command("run", d.session.Continue)
	})
	d.input.On(action.DebuggerQuit, event.Press, d.Stop)

	for _, act := range []action.Action{
		action.DebuggerToggleBreakpoint,
		action.DebuggerSnapshot,
		action.CursorUp,
		action.CursorDown,
		action.CursorLeft,
		action.CursorRight,
		action.CursorNextTable,
		action.DebugLogLevelIncrease,
		action.DebugLogLevelDecrease,
	} {
		d.input.On(act, event.Press, func() {
			d.backend.HandleAction(act)
		})
	}
}

func (d *Debugger) command(name string, send func() error) {
	if err := send(); err != nil {
		slog.Warn("Command not sent", "command", name, "error", err)
	}
}

func (d *Debugger) toggleBreakpoint(region string, address uint16) {
	intent, err := d.session.ToggleBreakpoint(region, address)
	if err != nil {
		slog.Warn("Breakpoint toggle rejected", "region", region, "address", fmt.Sprintf("0x%04X", address), "error", err)
		return
	}
	slog.Info("Breakpoint toggled", "intent", intent.String())
}

// Stop ends the frame loop after the current frame.
func (d *Debugger) Stop() {
	d.running = false
}

// Frames returns the number of frames rendered so far.
func (d *Debugger) Frames() uint64 {
	return d.frames
}

// Run drives the frame loop until the backend quits, ctx is cancelled or,
// with ExitOnDisconnect, the inbound stream ends.
func (d *Debugger) Run(ctx context.Context) error {
	err := d.backend.Init(backend.BackendConfig{
		Title: d.config.Title,
		Callbacks: backend.BackendCallbacks{
			OnQuit:             d.Stop,
			OnToggleBreakpoint: d.toggleBreakpoint,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize backend: %w", err)
	}
	defer func() {
		if err := d.backend.Cleanup(); err != nil {
			slog.Error("Backend cleanup failed", "error", err)
		}
	}()

	d.running = true
	for d.running {
		if ctx.Err() != nil {
			return nil
		}

		disconnected := false
		if d.inbox != nil {
			if _, open := d.session.Poll(d.inbox, d.config.MessagesPerFrame); !open {
				slog.Info("Connection closed")
				d.inbox = nil
				disconnected = true
			}
		} else {
			// still settle command deliveries
			d.session.Poll(nil, 0)
		}

		events, err := d.backend.Update(d.session.View())
		if err != nil {
			return fmt.Errorf("frontend update failed: %w", err)
		}
		d.frames++

		for _, evt := range events {
			d.input.Trigger(evt.Action, evt.Type)
		}

		if disconnected && d.config.ExitOnDisconnect {
			return nil
		}

		d.limiter.WaitForNextFrame()
	}
	return nil
}
