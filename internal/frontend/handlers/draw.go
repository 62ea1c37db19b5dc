// Package handlers runs the lucky draw command loop on a player's terminal.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/luckydraw/internal/frontend/render"
	"github.com/cory-johannsen/luckydraw/internal/frontend/telnet"
	"github.com/cory-johannsen/luckydraw/internal/game/command"
	"github.com/cory-johannsen/luckydraw/internal/game/history"
	"github.com/cory-johannsen/luckydraw/internal/game/prize"
	"github.com/cory-johannsen/luckydraw/internal/game/rng"
	"github.com/cory-johannsen/luckydraw/internal/game/session"
	"github.com/cory-johannsen/luckydraw/internal/game/wheel"
)

// Terminal is a line-oriented player terminal. *telnet.Conn and
// *console.Terminal satisfy it.
type Terminal interface {
	ReadLine() (string, error)
	Write(data []byte) error
	WriteLine(text string) error
	WritePrompt(prompt string) error
}

// Observer records draw outcomes and attached terminals.
// *observability.Metrics satisfies it.
type Observer interface {
	session.Recorder
	SessionOpened()
	SessionClosed()
}

// Options configures a DrawHandler.
type Options struct {
	// Prizes is the wheel in display order. Required and must validate.
	Prizes []prize.Prize
	// Source drives prize selection for every terminal. Required.
	Source rng.Source
	// Effects drives confetti placement; nil uses a crypto source.
	Effects rng.Source

	SpinDuration  time.Duration
	Revolutions   int
	HistorySize   int
	FrameInterval time.Duration

	// Observer is optional.
	Observer Observer
	// Sessions tracks attached terminals; nil creates a private Manager.
	Sessions *session.Manager
	Logger   *zap.Logger
}

var prompt = render.Colorize(render.BrightWhite, "> ")

const banner = "\r\n" + render.Bold + render.BrightYellow + "  *  L U C K Y   D R A W  *" + render.Reset + "\r\n\r\n"

// DrawHandler gives every terminal its own wheel, session and history.
// It satisfies telnet.SessionHandler.
type DrawHandler struct {
	opts     Options
	registry *command.Registry
	sessions *session.Manager
	logger   *zap.Logger
}

// NewDrawHandler validates opts and creates a handler.
//
// Postcondition: Returns a handler or an error naming the invalid option.
func NewDrawHandler(opts Options) (*DrawHandler, error) {
	if err := prize.Validate(opts.Prizes); err != nil {
		return nil, fmt.Errorf("creating draw handler: %w", err)
	}
	if opts.Source == nil || opts.Logger == nil {
		return nil, errors.New("creating draw handler: source and logger are required")
	}
	if opts.HistorySize < 0 {
		return nil, fmt.Errorf("creating draw handler: history size %d must not be negative", opts.HistorySize)
	}
	if opts.Effects == nil {
		opts.Effects = rng.NewCryptoSource()
	}
	if opts.HistorySize == 0 {
		opts.HistorySize = history.DefaultCapacity
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewManager()
	}
	return &DrawHandler{
		opts:     opts,
		registry: command.DefaultRegistry(),
		sessions: sessions,
		logger:   opts.Logger,
	}, nil
}

// Sessions returns the manager tracking attached terminals.
func (h *DrawHandler) Sessions() *session.Manager {
	return h.sessions
}

// HandleSession implements telnet.SessionHandler.
func (h *DrawHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	return h.Serve(ctx, conn, conn.RemoteAddr().String())
}

type input struct {
	line string
	err  error
}

// Serve runs the command loop on term until the player quits, input ends
// or ctx is cancelled. Any spin still running is abandoned on return.
//
// Precondition: id is unique among terminals currently being served.
// Postcondition: Returns nil on quit or end of input, ctx.Err() on cancellation.
func (h *DrawHandler) Serve(ctx context.Context, term Terminal, id string) error {
	ctx, cancel := context.WithCancel(ctx)
	logger := h.logger.With(zap.String("terminal", id))

	tw := render.NewTextWheel(ctx, term, h.opts.Prizes, h.opts.FrameInterval, logger)
	defer func() {
		cancel()
		tw.Wait()
	}()

	sess, err := session.New(session.Options{
		Prizes:       h.opts.Prizes,
		Selector:     wheel.NewSelector(h.opts.Source, logger),
		Driver:       &promptingDriver{driver: tw, term: term},
		View:         render.NewResultView(term, logger),
		Haptics:      render.NewBellHaptics(term),
		Celebration:  render.NewConfetti(term, h.opts.Effects),
		History:      history.New(h.opts.HistorySize),
		SpinDuration: h.opts.SpinDuration,
		Revolutions:  h.opts.Revolutions,
		Recorder:     h.recorder(),
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	if err := h.sessions.Attach(id, sess); err != nil {
		return err
	}
	defer func() { _ = h.sessions.Detach(id) }()
	if h.opts.Observer != nil {
		h.opts.Observer.SessionOpened()
		defer h.opts.Observer.SessionClosed()
	}

	greeting := banner + render.Frame(h.opts.Prizes, tw.Resting()) + "\r\n\r\n" +
		"  Press " + render.Colorize(render.Green, "enter") + " or type " +
		render.Colorize(render.Green, "draw") + " to spin. Type " +
		render.Colorize(render.Green, "help") + " for more.\r\n\r\n" + prompt
	if err := term.Write([]byte(greeting)); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	lines := make(chan input)
	go readLines(ctx, term, lines)

	for {
		select {
		case <-ctx.Done():
			_ = term.WriteLine("\r\n" + render.Colorize(render.Yellow, "Shutting down. Goodbye!"))
			return ctx.Err()
		case in := <-lines:
			if in.err != nil {
				if errors.Is(in.err, io.EOF) || errors.Is(in.err, telnet.ErrInterrupt) {
					logger.Debug("terminal input ended", zap.Error(in.err))
					return nil
				}
				return fmt.Errorf("reading input: %w", in.err)
			}
			quit, err := h.dispatch(sess, term, in.line, logger)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

func readLines(ctx context.Context, term Terminal, lines chan<- input) {
	for {
		line, err := term.ReadLine()
		select {
		case lines <- input{line: line, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// dispatch runs one input line and reports whether the player quit.
func (h *DrawHandler) dispatch(sess *session.Session, term Terminal, line string, logger *zap.Logger) (bool, error) {
	parsed := command.Parse(line)
	word := parsed.Command
	if word == "" {
		word = command.HandlerDraw
	}
	cmd, ok := h.registry.Resolve(word)
	if sess.State() == session.InProgress && (!ok || !cmd.WhileSpinning) {
		logger.Debug("input ignored during spin", zap.String("line", line))
		return false, nil
	}
	if !ok {
		return false, reply(term, render.Colorize(render.Red, fmt.Sprintf("Unknown command %q. Type help for a list.", parsed.Command)))
	}

	switch cmd.Handler {
	case command.HandlerDraw:
		// A started spin overwrites the prompt line; a busy wheel ignores the trigger.
		if _, err := sess.Trigger(); err != nil {
			logger.Error("draw failed", zap.Error(err))
			return false, reply(term, render.Colorize(render.Red, "The wheel is stuck. Try again."))
		}
		return false, nil
	case command.HandlerDismiss:
		if sess.Dismiss() {
			return false, reply(term, "Dialog closed.")
		}
		return false, reply(term, "Nothing to dismiss.")
	case command.HandlerHistory:
		return false, replyRaw(term, render.HistoryPanel(sess.History().Entries()))
	case command.HandlerPrizes:
		return false, replyRaw(term, render.PrizeTable(sess.Prizes()))
	case command.HandlerHelp:
		return false, replyRaw(term, h.helpText())
	case command.HandlerQuit:
		_ = term.WriteLine(render.Colorize(render.Yellow, "Goodbye."))
		return true, nil
	default:
		return false, fmt.Errorf("command %q has no handler %q", cmd.Name, cmd.Handler)
	}
}

func (h *DrawHandler) helpText() string {
	var sb strings.Builder
	sb.WriteString(render.Bold + "Commands" + render.Reset + "\r\n")
	for _, cmd := range h.registry.Commands() {
		names := cmd.Name
		if len(cmd.Aliases) > 0 {
			names += " (" + strings.Join(cmd.Aliases, ", ") + ")"
		}
		fmt.Fprintf(&sb, "  %s%-22s%s %s\r\n", render.Green, names, render.Reset, cmd.Help)
	}
	return sb.String()
}

func (h *DrawHandler) recorder() session.Recorder {
	if h.opts.Observer == nil {
		return nil
	}
	return h.opts.Observer
}

func reply(term Terminal, text string) error {
	return replyRaw(term, text+"\r\n")
}

func replyRaw(term Terminal, text string) error {
	if err := term.Write([]byte(text + prompt)); err != nil {
		return fmt.Errorf("writing reply: %w", err)
	}
	return nil
}

// promptingDriver re-prompts once the session has finished handling a settle.
type promptingDriver struct {
	driver session.Driver
	term   Terminal
}

func (d *promptingDriver) SpinTo(position int, duration time.Duration, revolutions int, settled func(int)) error {
	return d.driver.SpinTo(position, duration, revolutions, func(pos int) {
		settled(pos)
		_ = d.term.WritePrompt(prompt)
	})
}
