package transport

import (
	"context"

	"github.com/valerio/go-jeebie-dbg/jeebie/protocol"
)

// DefaultURL is the endpoint of a local debugging server.
const DefaultURL = "ws://localhost:8080/gameboy"

// inboxSize bounds how far the reader may run ahead of the session.
const inboxSize = 256

// Source produces inbound messages in arrival order. The channel is closed
// when the source is exhausted, fails, or ctx is cancelled.
type Source interface {
	Messages(ctx context.Context) <-chan protocol.Message
}
