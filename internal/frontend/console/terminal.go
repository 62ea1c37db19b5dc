// Package console runs the lucky draw on the local process's terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Terminal adapts a reader and writer pair to the line-oriented terminal
// the draw handler expects. Writes are serialized.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
	mu  sync.Mutex
}

// NewTerminal wraps in and out, typically os.Stdin and os.Stdout.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// ReadLine returns the next line without its terminator. A final line with
// no terminator is returned with a nil error; io.EOF follows on the next call.
func (t *Terminal) ReadLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Write sends data unmodified.
func (t *Terminal) Write(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.out.Write(data)
	return err
}

// WriteLine sends text followed by CRLF.
func (t *Terminal) WriteLine(text string) error {
	return t.Write([]byte(text + "\r\n"))
}

// WritePrompt sends text with no terminator.
func (t *Terminal) WritePrompt(prompt string) error {
	return t.Write([]byte(prompt))
}

// Server is the function that drives one terminal, typically
// handlers.DrawHandler.Serve.
type Server func(ctx context.Context, term *Terminal, id string) error

// Frontend runs a single console session. It satisfies server.Service;
// Start returns when the player quits or input ends.
type Frontend struct {
	term   *Terminal
	serve  Server
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewFrontend creates a console front end for term.
//
// Precondition: term, serve and logger must be non-nil.
func NewFrontend(term *Terminal, serve Server, logger *zap.Logger) *Frontend {
	ctx, cancel := context.WithCancel(context.Background())
	return &Frontend{term: term, serve: serve, logger: logger, ctx: ctx, cancel: cancel}
}

// Start serves the console until the session ends or Stop is called.
func (f *Frontend) Start() error {
	f.logger.Info("console session started")
	err := f.serve(f.ctx, f.term, "console")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	f.logger.Info("console session ended")
	return nil
}

// Stop cancels the session. A read blocked on input is abandoned.
func (f *Frontend) Stop() {
	f.cancel()
}
