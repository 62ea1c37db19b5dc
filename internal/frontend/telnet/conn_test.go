package telnet

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDecode_PlainText(t *testing.T) {
	assert.Equal(t, []byte("draw"), Decode([]byte("draw")))
}

func TestDecode_OptionCommands(t *testing.T) {
	input := []byte{IAC, WILL, OptSuppressGoAhead, 'o', IAC, DO, OptEcho, 'k', IAC, DONT, 34}
	assert.Equal(t, []byte("ok"), Decode(input))
}

func TestDecode_SubNegotiation(t *testing.T) {
	// NAWS 80x24
	input := []byte{IAC, SB, 31, 0, 80, 0, 24, IAC, SE, 'z'}
	assert.Equal(t, []byte("z"), Decode(input))
}

func TestDecode_SubNegotiationWithEscapedIAC(t *testing.T) {
	input := []byte{IAC, SB, 31, IAC, IAC, 0, IAC, SE, 'y'}
	assert.Equal(t, []byte("y"), Decode(input))
}

func TestDecode_EscapedIAC(t *testing.T) {
	assert.Equal(t, []byte{'a', IAC, 'b'}, Decode([]byte{'a', IAC, IAC, 'b'}))
}

func TestDecode_NOPAndInterruptDropped(t *testing.T) {
	assert.Equal(t, []byte("xy"), Decode([]byte{'x', IAC, NOP, IAC, IP, 'y'}))
}

func TestDecoder_SplitCommand(t *testing.T) {
	var d decoder
	var out []byte
	for _, chunk := range [][]byte{{'a', IAC}, {WILL}, {OptEcho, 'b'}} {
		for _, b := range chunk {
			if c, ok, err := d.feed(b); err == nil && ok {
				out = append(out, c)
			}
		}
	}
	assert.Equal(t, []byte("ab"), out)
}

func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewConn(server, time.Second, time.Second), client
}

func TestConn_ReadLine(t *testing.T) {
	conn, client := pipeConn(t)
	go func() {
		_, _ = client.Write([]byte{IAC, DO, OptSuppressGoAhead})
		_, _ = client.Write([]byte("spin\r\nhisx\x7ftory\n"))
	}()

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "spin", line)

	line, err = conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "history", line)
}

func TestConn_ReadLineInterrupt(t *testing.T) {
	conn, client := pipeConn(t)
	go func() { _, _ = client.Write([]byte{'d', 'r', IAC, IP}) }()

	_, err := conn.ReadLine()
	assert.ErrorIs(t, err, ErrInterrupt)
}

func TestConn_Writes(t *testing.T) {
	conn, client := pipeConn(t)
	want := append([]byte("ok\r\n> "), IAC, WILL, OptSuppressGoAhead)
	want = append(want, "draw!"...)

	got := make(chan []byte, 1)
	go func() {
		buf := make([]byte, len(want))
		_, _ = io.ReadFull(client, buf)
		got <- buf
	}()

	require.NoError(t, conn.WriteLine("ok"))
	require.NoError(t, conn.WritePrompt("> "))
	require.NoError(t, conn.Negotiate())
	require.NoError(t, conn.Write([]byte("draw!")))

	select {
	case b := <-got:
		assert.Equal(t, want, b)
	case <-time.After(2 * time.Second):
		t.Fatal("no data written")
	}
}

func TestPropertyDecode_NoIACPassThrough(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SliceOfN(rapid.ByteRange(0, 254), 0, 200).Draw(t, "input")
		got := Decode(input)
		assert.Equal(t, len(input), len(got))
		for i := range input {
			if got[i] != input[i] {
				t.Fatalf("byte %d changed: %d -> %d", i, input[i], got[i])
			}
		}
	})
}

func TestPropertyDecode_NeverLonger(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SliceOfN(rapid.Byte(), 0, 200).Draw(t, "input")
		if got := Decode(input); len(got) > len(input) {
			t.Fatalf("decoded %d bytes from %d", len(got), len(input))
		}
	})
}
