package telnet

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet command and option bytes (RFC 854, RFC 858).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	IP   byte = 244 // interrupt process
	NOP  byte = 241
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
)

// ErrInterrupt is returned by ReadLine when the client sends IAC IP (Ctrl-C).
var ErrInterrupt = errors.New("telnet: interrupt from client")

type decodeState int

const (
	stateData decodeState = iota
	stateCommand
	stateOption
	stateSub
	stateSubIAC
)

// decoder strips Telnet commands from an inbound byte stream. It keeps
// state across calls so a command split between reads is still removed.
type decoder struct {
	state decodeState
}

// feed consumes one byte. It returns the byte and true when b is data, and
// ErrInterrupt when the byte completes an IAC IP command.
func (d *decoder) feed(b byte) (byte, bool, error) {
	switch d.state {
	case stateCommand:
		switch b {
		case WILL, WONT, DO, DONT:
			d.state = stateOption
		case SB:
			d.state = stateSub
		case IAC:
			d.state = stateData
			return IAC, true, nil
		case IP:
			d.state = stateData
			return 0, false, ErrInterrupt
		default:
			d.state = stateData
		}
	case stateOption:
		d.state = stateData
	case stateSub:
		if b == IAC {
			d.state = stateSubIAC
		}
	case stateSubIAC:
		if b == SE {
			d.state = stateData
		} else {
			d.state = stateSub
		}
	default:
		if b == IAC {
			d.state = stateCommand
			return 0, false, nil
		}
		return b, true, nil
	}
	return 0, false, nil
}

// Decode returns input with every Telnet command removed and escaped IAC
// bytes collapsed. Interrupts are dropped.
//
// Postcondition: len(Decode(input)) <= len(input).
func Decode(input []byte) []byte {
	var d decoder
	out := make([]byte, 0, len(input))
	for _, b := range input {
		if c, ok, _ := d.feed(b); ok {
			out = append(out, c)
		}
	}
	return out
}

// Conn is one Telnet client. Writes are serialized so the wheel animation
// and command replies never interleave mid-sequence.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	dec    decoder

	readTimeout  time.Duration
	writeTimeout time.Duration

	mu sync.Mutex
}

// NewConn wraps raw. A zero timeout disables that deadline.
//
// Precondition: raw must be a valid, open network connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReader(raw),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate offers to suppress go-ahead so the client runs in character
// mode friendly terminals.
func (c *Conn) Negotiate() error {
	return c.Write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next line of input without its terminator. Telnet
// commands and control characters other than tab are discarded.
//
// Postcondition: Returns ErrInterrupt when the client sends IAC IP.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line strings.Builder
	for {
		raw, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}
		b, ok, err := c.dec.feed(raw)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		switch {
		case b == '\n':
			return line.String(), nil
		case b == '\r':
			if next, err := c.reader.Peek(1); err == nil && (next[0] == '\n' || next[0] == 0) {
				_, _ = c.reader.ReadByte()
			}
			return line.String(), nil
		case b == 0x7f || b == '\b':
			if s := line.String(); len(s) > 0 {
				line.Reset()
				line.WriteString(s[:len(s)-1])
			}
		case b < 32 && b != '\t':
		default:
			line.WriteByte(b)
		}
	}
}

// Write sends data to the client under the write deadline.
func (c *Conn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// WriteLine sends text followed by CRLF.
func (c *Conn) WriteLine(text string) error {
	return c.Write([]byte(text + "\r\n"))
}

// WritePrompt sends text with no line terminator.
func (c *Conn) WritePrompt(prompt string) error {
	return c.Write([]byte(prompt))
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the client's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
