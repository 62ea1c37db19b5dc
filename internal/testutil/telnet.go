// Package testutil holds helpers shared by frontend integration tests.
package testutil

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/cory-johannsen/luckydraw/internal/frontend/render"
)

// TelnetClient is a minimal remote terminal for driving a live acceptor.
type TelnetClient struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
	raw    strings.Builder
	pos    int
}

// NewTelnetClient dials addr and closes the connection when the test ends.
//
// Precondition: addr must be a "host:port" with a listening server.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &TelnetClient{t: t, conn: conn, reader: bufio.NewReader(conn)}
}

// ReadUntil reads until the ANSI-stripped output contains substr, failing
// the test on timeout. Each call searches only output after the previous
// match, so consecutive calls can wait for consecutive markers.
//
// Precondition: substr must be non-empty.
// Postcondition: Returns the stripped output up to and including the match.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	buf := make([]byte, 1024)
	for {
		text := render.StripANSI(c.raw.String())
		if c.pos > len(text) {
			c.pos = len(text)
		}
		if i := strings.Index(text[c.pos:], substr); i >= 0 {
			end := c.pos + i + len(substr)
			got := text[c.pos:end]
			c.pos = end
			return got
		}
		n, err := c.reader.Read(buf)
		if n > 0 {
			c.raw.Write(buf[:n])
			continue
		}
		if err != nil {
			c.t.Fatalf("reading until %q: got %q: %v", substr, text[c.pos:], err)
		}
	}
}

// Send writes text followed by CRLF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	c.SendRaw([]byte(text + "\r\n"))
}

// SendRaw writes data unmodified, for Telnet command sequences.
func (c *TelnetClient) SendRaw(data []byte) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := c.conn.Write(data); err != nil {
		c.t.Fatalf("sending %q: %v", data, err)
	}
}

// Transcript returns all stripped output received so far.
func (c *TelnetClient) Transcript() string {
	return render.StripANSI(c.raw.String())
}

// Close closes the connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}
