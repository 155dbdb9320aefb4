// Package protocol defines the message envelope exchanged with the remote
// emulator and decodes its payloads into engine types.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrMalformed      = errors.New("malformed payload")
)

// MessageType identifies an inbound (server to client) message.
type MessageType int

const (
	// ConnectionMessage is sent once when the socket is established.
	ConnectionMessage MessageType = 0
	// ErrorMessage carries a server side error string.
	ErrorMessage MessageType = 60
	// MemoryMapsMessage carries the initial memory maps: [{name, address, data}].
	MemoryMapsMessage MessageType = 70
	// CPUStateMessage carries a register snapshot and the instruction descriptor.
	CPUStateMessage MessageType = 71
	// MemoryStateMessage carries an array of memory write patches.
	MemoryStateMessage MessageType = 72
	// PPUStateMessage is reserved for the video renderer and ignored here.
	PPUStateMessage MessageType = 73
)

func (t MessageType) String() string {
	switch t {
	case ConnectionMessage:
		return "connection"
	case ErrorMessage:
		return "error"
	case MemoryMapsMessage:
		return "memory-maps"
	case CPUStateMessage:
		return "cpu-state"
	case MemoryStateMessage:
		return "memory-state"
	case PPUStateMessage:
		return "ppu-state"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// CommandType identifies an outbound (client to server) command.
type CommandType int

const (
	StepCommand             CommandType = 10
	RunCommand              CommandType = 11
	AddBreakpointCommand    CommandType = 12
	RemoveBreakpointCommand CommandType = 13
	JoypadCommand           CommandType = 14
)

func (t CommandType) String() string {
	switch t {
	case StepCommand:
		return "step"
	case RunCommand:
		return "run"
	case AddBreakpointCommand:
		return "add-breakpoint"
	case RemoveBreakpointCommand:
		return "remove-breakpoint"
	case JoypadCommand:
		return "joypad"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Message is the inbound envelope.
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ParseMessage decodes an envelope. The payload is left raw.
func ParseMessage(b []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return Message{}, fmt.Errorf("decoding envelope: %w: %v", ErrMalformed, err)
	}
	return m, nil
}

// NewMessage builds an envelope around a payload, mainly for tests and replays.
func NewMessage(t MessageType, data any) (Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Data: raw}, nil
}

// JoypadEvent is the payload of JoypadCommand.
type JoypadEvent struct {
	Key     string `json:"key"`
	Pressed bool   `json:"pressed"`
}

// Command is the outbound envelope.
type Command struct {
	Type CommandType `json:"type"`
	Data any         `json:"data,omitempty"`
}

// Step asks the remote to execute a single instruction.
func Step() Command {
	return Command{Type: StepCommand}
}

// Run asks the remote to run until the next breakpoint.
func Run() Command {
	return Command{Type: RunCommand}
}

// Breakpoint builds an add or remove breakpoint command for an absolute address.
func Breakpoint(t CommandType, address uint16) Command {
	return Command{Type: t, Data: address}
}

// Joypad builds a joypad event command.
func Joypad(key string, pressed bool) Command {
	return Command{Type: JoypadCommand, Data: JoypadEvent{Key: key, Pressed: pressed}}
}

// Encode serialises a command for the wire.
func (c Command) Encode() ([]byte, error) {
	return json.Marshal(c)
}

func (c Command) String() string {
	if c.Data == nil {
		return c.Type.String()
	}
	if addr, ok := c.Data.(uint16); ok {
		return fmt.Sprintf("%s 0x%04X", c.Type, addr)
	}
	return fmt.Sprintf("%s %v", c.Type, c.Data)
}
