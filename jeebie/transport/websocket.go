package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/valerio/go-jeebie-dbg/jeebie/protocol"
)

const (
	closeTimeout = time.Second
	// DefaultWriteTimeout bounds a single command write, so a stalled peer
	// cannot hold the sender forever.
	DefaultWriteTimeout = 5 * time.Second
)

// WebSocket is a connection to the remote machine. Messages and Send may be
// used from different goroutines; Send itself must not be called
// concurrently.
type WebSocket struct {
	conn         *websocket.Conn
	url          string
	writeTimeout time.Duration
}

// Dial connects to url.
func Dial(ctx context.Context, url string) (*WebSocket, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	slog.Info("Connected", "url", url)
	return &WebSocket{conn: conn, url: url, writeTimeout: DefaultWriteTimeout}, nil
}

// Messages starts the reader goroutine. Frames that are not valid envelopes
// are logged and skipped.
func (w *WebSocket) Messages(ctx context.Context) <-chan protocol.Message {
	out := make(chan protocol.Message, inboxSize)

	go func() {
		defer close(out)
		for {
			_, data, err := w.conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || errors.Is(err, websocket.ErrCloseSent) {
					slog.Info("Connection closed", "url", w.url)
				} else {
					slog.Warn("Connection read failed", "url", w.url, "error", err)
				}
				return
			}

			msg, err := protocol.ParseMessage(data)
			if err != nil {
				slog.Warn("Skipping frame", "error", err)
				continue
			}

			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Send writes one command as a text frame.
func (w *WebSocket) Send(cmd protocol.Command) error {
	if err := w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
		return fmt.Errorf("sending %s: %w", cmd, err)
	}
	if err := w.conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("sending %s: %w", cmd, err)
	}
	return nil
}

// Close performs the closing handshake and closes the connection, which
// also ends the reader goroutine.
func (w *WebSocket) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeTimeout)); err != nil {
		slog.Debug("Close handshake failed", "error", err)
	}
	return w.conn.Close()
}
