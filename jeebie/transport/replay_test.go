package transport

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-jeebie-dbg/jeebie/protocol"
)

func collect(t *testing.T, ch <-chan protocol.Message) []protocol.Message {
	t.Helper()
	var msgs []protocol.Message
	for msg := range ch {
		msgs = append(msgs, msg)
	}
	return msgs
}

func TestReplayMessages(t *testing.T) {
	recording := strings.Join([]string{
		`# session recorded against tetris.gb`,
		`{"type": 0, "data": null}`,
		``,
		`{"type": 70, "data": [{"name": "wram", "address": 49152, "data": ["0x00", "0x01"]}]}`,
		`not json`,
		`{"type": 71, "data": {"currState": {"PC": 256}}}`,
	}, "\n")

	msgs := collect(t, NewReplay(strings.NewReader(recording)).Messages(context.Background()))
	require.Len(t, msgs, 3)
	assert.Equal(t, protocol.ConnectionMessage, msgs[0].Type)
	assert.Equal(t, protocol.MemoryMapsMessage, msgs[1].Type)
	assert.Equal(t, protocol.CPUStateMessage, msgs[2].Type)

	p, err := protocol.DecodeCPUState(msgs[2].Data)
	require.NoError(t, err)
	assert.Equal(t, uint16(256), p.CurrState.Value.PC.Value)
}

func TestReplayCancel(t *testing.T) {
	var recording strings.Builder
	for i := 0; i < inboxSize*2; i++ {
		recording.WriteString(`{"type": 73, "data": {}}` + "\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := NewReplay(strings.NewReader(recording.String())).Messages(ctx)
	<-ch
	cancel()

	// the reader stops instead of blocking on a full channel
	n := len(collect(t, ch))
	assert.Less(t, n, inboxSize*2)
}

func TestCommandLog(t *testing.T) {
	var buf bytes.Buffer
	log := NewCommandLog(&buf)

	require.NoError(t, log.Send(protocol.Step()))
	require.NoError(t, log.Send(protocol.Breakpoint(protocol.AddBreakpointCommand, 0xC010)))
	require.NoError(t, log.Send(protocol.Joypad("A", true)))

	assert.Equal(t,
		`{"type":10}`+"\n"+
			`{"type":12,"data":49168}`+"\n"+
			`{"type":14,"data":{"key":"A","pressed":true}}`+"\n",
		buf.String())

	assert.NoError(t, NewCommandLog(nil).Send(protocol.Run()))
}
