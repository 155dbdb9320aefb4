package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/valerio/go-jeebie-dbg/jeebie/breakpoint"
	"github.com/valerio/go-jeebie-dbg/jeebie/cpu"
	"github.com/valerio/go-jeebie-dbg/jeebie/debug"
	"github.com/valerio/go-jeebie-dbg/jeebie/memory"
	"github.com/valerio/go-jeebie-dbg/jeebie/protocol"
	"github.com/valerio/go-jeebie-dbg/jeebie/serial"
)

// Config holds the controller settings.
type Config struct {
	// Tables lists the memory tables assembled by View, in display order.
	Tables []debug.TableSpec
	// OutboxSize bounds the queue of outbound commands.
	OutboxSize int
	// CloseTimeout bounds how long Close waits for a command being sent.
	CloseTimeout time.Duration
}

// DefaultTables returns the tables shown when none are configured: one
// following the program counter and one following the last indirect
// operand address.
func DefaultTables() []debug.TableSpec {
	return []debug.TableSpec{
		{Anchor: debug.AnchorPC},
		{Anchor: debug.AnchorPC, Operand: true},
	}
}

// Controller owns the whole debugger state and is its single mutation point.
// It is not safe for concurrent use: inbound messages, user intents and view
// queries must come from the same goroutine.
type Controller struct {
	store        *cpu.Store
	instructions *cpu.InstructionCache
	overlay      *memory.Overlay
	breakpoints  *breakpoint.Registry
	resolver     *debug.AddressResolver
	serial       *serial.Monitor

	state     debug.DebuggerState
	lastError string
	tables    []debug.TableSpec

	sender       Sender
	closeTimeout time.Duration
	outbox       chan delivery
	results      chan delivery
	done         chan struct{}
	wg           sync.WaitGroup
	closeOnce    sync.Once
}

// New creates a controller sending its commands through sender and starts
// the outbox goroutine. Close must be called to stop it.
func New(sender Sender, cfg Config) *Controller {
	size := cfg.OutboxSize
	if size <= 0 {
		size = DefaultOutboxSize
	}
	closeTimeout := cfg.CloseTimeout
	if closeTimeout <= 0 {
		closeTimeout = DefaultCloseTimeout
	}
	tables := cfg.Tables
	if len(tables) == 0 {
		tables = DefaultTables()
	}

	overlay := memory.NewOverlay()
	c := &Controller{
		store:        cpu.NewStore(),
		instructions: cpu.NewInstructionCache(),
		overlay:      overlay,
		breakpoints:  breakpoint.NewRegistry(overlay),
		resolver:     debug.NewAddressResolver(),
		serial:       serial.NewMonitor(serial.DefaultHistory),
		tables:       tables,
		sender:       sender,
		closeTimeout: closeTimeout,
		outbox:       make(chan delivery, size),
		results:      make(chan delivery, size),
		done:         make(chan struct{}),
	}

	c.wg.Add(1)
	go c.drain()

	return c
}

// Close stops the outbox goroutine. Commands not yet delivered are discarded.
// A send still in flight is waited for at most CloseTimeout; the goroutine
// then exits on its own once the sender returns.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.done)

		stopped := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-time.After(c.closeTimeout):
			slog.Warn("Sender still busy, abandoning outbox", "timeout", c.closeTimeout)
		}
	})
}

// Run handles inbound messages in arrival order until in is closed or ctx is
// cancelled. Message errors are logged and do not stop the loop.
func (c *Controller) Run(ctx context.Context, in <-chan protocol.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d := <-c.results:
			c.settle(d)
		case msg, ok := <-in:
			if !ok {
				return nil
			}
			c.handleLogged(msg)
		}
	}
}

// Poll handles up to limit messages already waiting on in without blocking,
// for frontends driven by their own frame loop. It returns the number of
// messages handled and false once in has been closed.
func (c *Controller) Poll(in <-chan protocol.Message, limit int) (int, bool) {
	c.settlePending()

	n := 0
	for n < limit {
		select {
		case msg, ok := <-in:
			if !ok {
				return n, false
			}
			c.handleLogged(msg)
			n++
		default:
			return n, true
		}
	}
	return n, true
}

func (c *Controller) settlePending() {
	for {
		select {
		case d := <-c.results:
			c.settle(d)
		default:
			return
		}
	}
}

func (c *Controller) handleLogged(msg protocol.Message) {
	if err := c.Handle(msg); err != nil {
		slog.Warn("Failed to handle message", "type", msg.Type.String(), "error", err)
	}
}

// Handle applies one inbound message.
func (c *Controller) Handle(msg protocol.Message) error {
	switch msg.Type {
	case protocol.ConnectionMessage:
		c.state = debug.DebuggerConnected
		slog.Info("Connected to remote machine")
		return nil

	case protocol.ErrorMessage:
		c.lastError = protocol.DecodeError(msg.Data)
		slog.Warn("Remote error", "error", c.lastError)
		return nil

	case protocol.MemoryMapsMessage:
		maps, errs := protocol.DecodeMemoryMaps(msg.Data)
		if maps == nil && len(errs) > 0 {
			return errors.Join(errs...)
		}
		c.LoadMemoryMaps(maps)
		return errors.Join(errs...)

	case protocol.CPUStateMessage:
		p, err := protocol.DecodeCPUState(msg.Data)
		if err != nil {
			return err
		}
		in := c.instructions.Current()
		if p.Instruction.Present {
			in = p.Instruction.Value.Instruction()
		}
		c.Advance(p.CurrState.Value.Snapshot(), in)
		return nil

	case protocol.MemoryStateMessage:
		patches, errs := protocol.DecodeMemoryState(msg.Data)
		for _, p := range patches {
			var base uint16
			if r, ok := c.overlay.Region(p.RegionName()); ok {
				base = r.Base()
			}
			// rejected patches are logged by ApplyPatch
			_ = c.ApplyPatch(p.Patch(base))
		}
		return errors.Join(errs...)

	case protocol.PPUStateMessage:
		slog.Debug("Ignoring PPU state")
		return nil
	}

	return fmt.Errorf("%w: type %d", protocol.ErrUnknownMessage, int(msg.Type))
}

// LoadMemoryMaps replaces every region with a fresh set of initial memory
// maps. Breakpoints whose region no longer holds them are dropped.
func (c *Controller) LoadMemoryMaps(maps []protocol.MemoryMapPayload) {
	c.overlay.Reset()
	c.serial.Reset()
	for _, m := range maps {
		if err := c.overlay.Register(m.Name, m.Address.Value, []byte(m.Data)); err != nil {
			slog.Warn("Skipping memory map", "region", m.Name, "error", err)
		}
	}
	if dropped := c.breakpoints.Prune(); dropped > 0 {
		slog.Info("Dropped breakpoints outside the new memory maps", "count", dropped)
	}
	slog.Info("Memory maps loaded", "regions", c.overlay.Len())
}

// Advance installs a new register snapshot and instruction descriptor. An
// invalid descriptor is replaced by the empty instruction.
func (c *Controller) Advance(s cpu.Snapshot, in cpu.Instruction) {
	c.store.Advance(s)
	if err := c.instructions.Set(in); err != nil {
		slog.Warn("Invalid instruction descriptor", "mnemonic", in.Mnemonic, "error", err)
	}
	c.resolver.Update(c.instructions.Current(), s)

	if c.state == debug.DebuggerStepInstruction || c.state == debug.DebuggerRunning {
		c.state = debug.DebuggerPaused
	}
}

// ApplyPatch merges a memory write into the overlay. Rejected patches leave
// the overlay unchanged. Writes to the serial registers feed the serial
// monitor.
func (c *Controller) ApplyPatch(p memory.Patch) error {
	if err := c.overlay.Apply(p); err != nil {
		slog.Warn("Dropping memory patch", "region", p.Region, "offset", p.Offset, "len", len(p.Data), "error", err)
		return err
	}

	if r, ok := c.overlay.Region(p.Region); ok {
		for i, value := range p.Data {
			if address := int(r.Base()) + p.Offset + i; serial.Watches(uint16(address)) {
				c.serial.Write(uint16(address), value)
			}
		}
	}
	return nil
}

// ToggleBreakpoint flips a breakpoint locally and sends the matching add or
// remove command. If the command cannot be queued, or its delivery fails,
// the local change is undone.
func (c *Controller) ToggleBreakpoint(region string, address uint16) (breakpoint.Intent, error) {
	intent, err := c.breakpoints.Toggle(region, address)
	if err != nil {
		slog.Warn("Cannot toggle breakpoint", "region", region, "address", fmt.Sprintf("0x%04X", address), "error", err)
		return breakpoint.Intent{}, err
	}
	if err := c.enqueue(intent.Command(), &intent); err != nil {
		c.breakpoints.Reject(intent)
		return intent, err
	}
	return intent, nil
}

// Step asks the remote machine to execute one instruction.
func (c *Controller) Step() error {
	if err := c.enqueue(protocol.Step(), nil); err != nil {
		return err
	}
	c.state = debug.DebuggerStepInstruction
	return nil
}

// Continue asks the remote machine to run until the next breakpoint.
func (c *Controller) Continue() error {
	if err := c.enqueue(protocol.Run(), nil); err != nil {
		return err
	}
	c.state = debug.DebuggerRunning
	return nil
}

// Joypad forwards a button press or release.
func (c *Controller) Joypad(key string, pressed bool) error {
	return c.enqueue(protocol.Joypad(key, pressed), nil)
}
