package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/valerio/go-jeebie-dbg/jeebie/protocol"
)

const maxReplayLine = 16 << 20

// Replay reads inbound messages from a JSON-lines recording, one envelope
// per line. Blank lines and lines starting with # are skipped.
type Replay struct {
	r io.Reader
}

// NewReplay returns a replay over r.
func NewReplay(r io.Reader) *Replay {
	return &Replay{r: r}
}

// Messages streams the recording.
func (rp *Replay) Messages(ctx context.Context) <-chan protocol.Message {
	out := make(chan protocol.Message, inboxSize)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(rp.r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxReplayLine)

		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" || strings.HasPrefix(text, "#") {
				continue
			}

			msg, err := protocol.ParseMessage([]byte(text))
			if err != nil {
				slog.Warn("Skipping replay line", "line", line, "error", err)
				continue
			}

			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			slog.Warn("Replay read failed", "line", line, "error", err)
		}
	}()

	return out
}

// CommandLog is a sender for offline sessions: every command is logged and,
// when a writer is set, appended to it as a JSON line.
type CommandLog struct {
	mu sync.Mutex
	w  io.Writer
}

// NewCommandLog returns a command log writing to w, which may be nil.
func NewCommandLog(w io.Writer) *CommandLog {
	return &CommandLog{w: w}
}

func (l *CommandLog) Send(cmd protocol.Command) error {
	slog.Info("Command", "command", cmd.String())
	if l.w == nil {
		return nil
	}

	b, err := cmd.Encode()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", cmd, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("writing %s: %w", cmd, err)
	}
	return nil
}
