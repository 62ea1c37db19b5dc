// Package session bridges prize selection to the wheel presentation.
//
// A Session is a two-state machine. A draw may only start from Idle; the
// session stays InProgress until the presentation reports where it settled.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/luckydraw/internal/game/history"
	"github.com/cory-johannsen/luckydraw/internal/game/prize"
	"github.com/cory-johannsen/luckydraw/internal/game/wheel"
)

// Default presentation parameters.
const (
	DefaultSpinDuration = 4 * time.Second
	DefaultRevolutions  = 5
)

var (
	// ErrNotInProgress is returned by Settled when no draw is pending.
	ErrNotInProgress = errors.New("session: no draw in progress")
	// ErrUnknownPosition is returned by Settled for a position outside the wheel.
	ErrUnknownPosition = errors.New("session: unknown wheel position")
	// ErrFeedbackUnavailable wraps a failing feedback collaborator. It is
	// logged and never returned to callers.
	ErrFeedbackUnavailable = errors.New("session: feedback unavailable")
)

// Haptic patterns alternate vibrate and pause durations.
var (
	SpinStartPattern = []time.Duration{50 * time.Millisecond}
	WinPattern       = []time.Duration{100 * time.Millisecond, 50 * time.Millisecond, 100 * time.Millisecond}
)

// State is the draw state of a Session.
type State int

const (
	Idle State = iota
	InProgress
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InProgress:
		return "in_progress"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Driver animates the wheel toward a segment and reports where it settled.
type Driver interface {
	// SpinTo starts an animation that lands on position after duration and
	// the given number of full revolutions, then calls settled exactly once.
	// It must not block for the length of the animation.
	SpinTo(position int, duration time.Duration, revolutions int, settled func(position int)) error
}

// View displays the result dialog for a settled draw.
type View interface {
	ShowResult(p prize.Prize)
}

// Haptics plays a vibration pattern.
type Haptics interface {
	Vibrate(pattern []time.Duration) error
}

// Celebration plays a celebratory effect for a win.
type Celebration interface {
	Celebrate(p prize.Prize) error
}

// Recorder observes draw outcomes. A nil Recorder in Options disables recording.
type Recorder interface {
	DrawStarted(p prize.Prize)
	DrawIgnored()
	DrawSettled(p prize.Prize, elapsed time.Duration)
	FeedbackFailed(kind string)
}

// Options configures a Session.
type Options struct {
	// Prizes is the wheel, in display order. Required.
	Prizes []prize.Prize
	// Selector picks the winner. Required.
	Selector *wheel.Selector
	// Driver animates the wheel. Required.
	Driver Driver
	// View shows the result dialog. Required.
	View View
	// Haptics and Celebration are optional best-effort feedback.
	Haptics     Haptics
	Celebration Celebration
	// History receives settled prizes; nil creates one of DefaultCapacity.
	History *history.History
	// SpinDuration and Revolutions default to DefaultSpinDuration and
	// DefaultRevolutions when zero.
	SpinDuration time.Duration
	Revolutions  int
	Recorder     Recorder
	Logger       *zap.Logger
}

// Session owns the draw state for a single wheel.
//
// Invariant: at most one draw is in progress at any time.
type Session struct {
	prizes      []prize.Prize
	selector    *wheel.Selector
	driver      Driver
	view        View
	haptics     Haptics
	celebration Celebration
	history     *history.History
	duration    time.Duration
	revolutions int
	recorder    Recorder
	logger      *zap.Logger

	mu            sync.Mutex
	state         State
	seq           uint64
	pending       int
	startedAt     time.Time
	resultVisible bool
	current       prize.Prize
}

// New creates an idle Session.
//
// Precondition: opts.Prizes is a valid selection universe; Selector, Driver,
// View and Logger are non-nil.
// Postcondition: Returns an idle Session or a non-nil error.
func New(opts Options) (*Session, error) {
	if _, err := wheel.Total(opts.Prizes); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	if opts.Selector == nil || opts.Driver == nil || opts.View == nil || opts.Logger == nil {
		return nil, errors.New("creating session: selector, driver, view and logger are required")
	}
	if opts.SpinDuration < 0 || opts.Revolutions < 0 {
		return nil, fmt.Errorf("creating session: spin duration %v and revolutions %d must not be negative",
			opts.SpinDuration, opts.Revolutions)
	}

	s := &Session{
		prizes:      append([]prize.Prize(nil), opts.Prizes...),
		selector:    opts.Selector,
		driver:      opts.Driver,
		view:        opts.View,
		haptics:     opts.Haptics,
		celebration: opts.Celebration,
		history:     opts.History,
		duration:    opts.SpinDuration,
		revolutions: opts.Revolutions,
		recorder:    opts.Recorder,
		logger:      opts.Logger,
	}
	if s.history == nil {
		s.history = history.New(history.DefaultCapacity)
	}
	if s.duration == 0 {
		s.duration = DefaultSpinDuration
	}
	if s.revolutions == 0 {
		s.revolutions = DefaultRevolutions
	}
	return s, nil
}

// Trigger starts a draw. While a draw is in progress Trigger does nothing
// and returns false.
//
// Postcondition: On (true, nil) the session is InProgress and the driver has
// been asked to spin to the winner's position.
func (s *Session) Trigger() (bool, error) {
	s.mu.Lock()
	if s.state == InProgress {
		s.mu.Unlock()
		s.logger.Debug("draw ignored, spin in progress")
		if s.recorder != nil {
			s.recorder.DrawIgnored()
		}
		return false, nil
	}

	won, _, err := s.selector.Select(s.prizes)
	if err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("selecting prize: %w", err)
	}
	pos := wheel.IndexOf(s.prizes, won.ID)

	s.seq++
	seq := s.seq
	s.state = InProgress
	s.pending = pos
	s.startedAt = time.Now()
	s.resultVisible = false
	s.mu.Unlock()

	s.logger.Info("draw started",
		zap.String("prize_id", won.ID),
		zap.Int("position", pos),
		zap.Duration("duration", s.duration),
		zap.Int("revolutions", s.revolutions),
	)
	if s.recorder != nil {
		s.recorder.DrawStarted(won)
	}
	s.vibrate(SpinStartPattern)

	if err := s.driver.SpinTo(pos, s.duration, s.revolutions, s.onSettled); err != nil {
		s.mu.Lock()
		if s.state == InProgress && s.seq == seq {
			s.state = Idle
		}
		s.mu.Unlock()
		return false, fmt.Errorf("starting spin: %w", err)
	}
	return true, nil
}

// onSettled adapts Settled to the driver callback signature.
func (s *Session) onSettled(position int) {
	if err := s.Settled(position); err != nil {
		s.logger.Warn("ignoring settle report", zap.Int("position", position), zap.Error(err))
	}
}

// Settled records that the wheel came to rest on position.
//
// Precondition: a draw is in progress.
// Postcondition: On nil error the prize at position heads the history, the
// session is Idle, and the result is visible.
func (s *Session) Settled(position int) error {
	s.mu.Lock()
	if s.state != InProgress {
		s.mu.Unlock()
		return ErrNotInProgress
	}
	if position < 0 || position >= len(s.prizes) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d (wheel has %d segments)", ErrUnknownPosition, position, len(s.prizes))
	}
	won := s.prizes[position]
	if position != s.pending {
		s.logger.Warn("wheel settled on a different segment than requested",
			zap.Int("requested", s.pending),
			zap.Int("settled", position),
		)
	}
	elapsed := time.Since(s.startedAt)
	entry := s.history.Push(won)
	s.state = Idle
	s.resultVisible = true
	s.current = won
	s.mu.Unlock()

	s.logger.Info("draw settled",
		zap.String("prize_id", won.ID),
		zap.String("label", won.Label),
		zap.String("entry_id", entry.EntryID),
		zap.Duration("elapsed", elapsed),
	)
	if s.recorder != nil {
		s.recorder.DrawSettled(won, elapsed)
	}

	s.view.ShowResult(won)
	s.vibrate(WinPattern)
	s.celebrate(won)
	return nil
}

// Dismiss hides the result dialog. It never affects a spin in progress.
//
// Postcondition: ResultVisible() == false. Returns whether a result was visible.
func (s *Session) Dismiss() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.resultVisible
	s.resultVisible = false
	return was
}

// State returns the current draw state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ResultVisible reports whether the result dialog is showing, and for which prize.
func (s *Session) ResultVisible() (prize.Prize, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.resultVisible {
		return prize.Prize{}, false
	}
	return s.current, true
}

// History returns the session's history.
func (s *Session) History() *history.History {
	return s.history
}

// Prizes returns a copy of the wheel in display order.
func (s *Session) Prizes() []prize.Prize {
	return append([]prize.Prize(nil), s.prizes...)
}

func (s *Session) vibrate(pattern []time.Duration) {
	if s.haptics == nil {
		return
	}
	s.bestEffort("haptics", func() error { return s.haptics.Vibrate(pattern) })
}

func (s *Session) celebrate(p prize.Prize) {
	if s.celebration == nil {
		return
	}
	s.bestEffort("celebration", func() error { return s.celebration.Celebrate(p) })
}

// bestEffort runs a feedback call, logging and swallowing errors and panics.
func (s *Session) bestEffort(kind string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.feedbackFailed(kind, fmt.Errorf("%w: %s panicked: %v", ErrFeedbackUnavailable, kind, r))
		}
	}()
	if err := fn(); err != nil {
		s.feedbackFailed(kind, fmt.Errorf("%w: %s: %w", ErrFeedbackUnavailable, kind, err))
	}
}

func (s *Session) feedbackFailed(kind string, err error) {
	s.logger.Warn("feedback failed", zap.String("kind", kind), zap.Error(err))
	if s.recorder != nil {
		s.recorder.FeedbackFailed(kind)
	}
}
