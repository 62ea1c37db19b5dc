package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cory-johannsen/luckydraw/internal/game/prize"
)

// DefaultFrameInterval is the redraw period used when none is configured.
const DefaultFrameInterval = 50 * time.Millisecond

// MaxLabelWidth caps the printable width of a wheel segment.
const MaxLabelWidth = 12

// ErrSpinning is returned by SpinTo while an animation is running.
var ErrSpinning = errors.New("render: wheel is already spinning")

// Output receives rendered bytes. telnet.Conn and console.Terminal satisfy it.
type Output interface {
	Write(data []byte) error
}

// TextWheel animates the prize wheel as a single redrawn terminal line.
// It satisfies session.Driver.
type TextWheel struct {
	ctx    context.Context
	out    Output
	prizes []prize.Prize
	frame  time.Duration
	logger *zap.Logger

	mu       sync.Mutex
	resting  int
	spinning bool
	wg       sync.WaitGroup
}

// NewTextWheel creates a wheel resting on the first segment. Animations stop
// without settling once ctx is cancelled.
//
// Precondition: prizes is non-empty; ctx, out and logger are non-nil.
// Postcondition: frame <= 0 selects DefaultFrameInterval.
func NewTextWheel(ctx context.Context, out Output, prizes []prize.Prize, frame time.Duration, logger *zap.Logger) *TextWheel {
	if len(prizes) == 0 {
		panic("render.NewTextWheel: prizes must not be empty")
	}
	if frame <= 0 {
		frame = DefaultFrameInterval
	}
	return &TextWheel{
		ctx:    ctx,
		out:    out,
		prizes: append([]prize.Prize(nil), prizes...),
		frame:  frame,
		logger: logger,
	}
}

// SpinTo starts an animation toward position and returns immediately.
// settled is called exactly once, from the animation goroutine, when the
// wheel comes to rest. It is not called if the context is cancelled first.
//
// Precondition: 0 <= position < number of segments; revolutions >= 0.
// Postcondition: Returns ErrSpinning if an animation is already running.
func (w *TextWheel) SpinTo(position int, duration time.Duration, revolutions int, settled func(position int)) error {
	if position < 0 || position >= len(w.prizes) {
		return fmt.Errorf("spinning to %d: wheel has %d segments", position, len(w.prizes))
	}
	if revolutions < 0 {
		return fmt.Errorf("spinning to %d: revolutions %d must not be negative", position, revolutions)
	}

	w.mu.Lock()
	if w.spinning {
		w.mu.Unlock()
		return ErrSpinning
	}
	if err := w.ctx.Err(); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("spinning to %d: %w", position, err)
	}
	w.spinning = true
	start := w.resting
	w.mu.Unlock()

	frames := int(duration / w.frame)
	if frames < 1 {
		frames = 1
	}
	interval := duration / time.Duration(frames)
	if interval <= 0 {
		interval = time.Millisecond
	}

	w.wg.Add(1)
	go w.animate(start, position, Steps(start, position, len(w.prizes), revolutions), frames, interval, settled)
	return nil
}

func (w *TextWheel) animate(start, position, steps, frames int, interval time.Duration, settled func(int)) {
	defer w.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.write(HideCursor)
	for i := 1; i <= frames; i++ {
		select {
		case <-w.ctx.Done():
			w.mu.Lock()
			w.spinning = false
			w.mu.Unlock()
			w.write(ShowCursor)
			w.logger.Debug("spin abandoned", zap.Int("position", position), zap.Int("frame", i))
			return
		case <-ticker.C:
		}
		step := int(math.Round(EaseOut(float64(i)/float64(frames)) * float64(steps)))
		w.write(Frame(w.prizes, (start+step)%len(w.prizes)))
	}
	w.write("\r\n" + ShowCursor)

	w.mu.Lock()
	w.resting = position
	w.spinning = false
	w.mu.Unlock()

	settled(position)
}

func (w *TextWheel) write(s string) {
	if err := w.out.Write([]byte(s)); err != nil {
		w.logger.Debug("wheel frame dropped", zap.Error(err))
	}
}

// Resting returns the segment the wheel last settled on.
func (w *TextWheel) Resting() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resting
}

// Wait blocks until the current animation, if any, has finished or been abandoned.
func (w *TextWheel) Wait() {
	w.wg.Wait()
}

// Steps returns how many segments the wheel advances to travel from start to
// position after the given number of full revolutions.
//
// Precondition: n > 0; start and position are in [0, n).
// Postcondition: (start + Steps(...)) % n == position.
func Steps(start, position, n, revolutions int) int {
	return revolutions*n + ((position-start)%n+n)%n
}

// EaseOut maps linear progress t in [0,1] to a decelerating cubic curve.
func EaseOut(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	u := 1 - t
	return 1 - u*u*u
}

// Frame renders one wheel line with the segment at highlight lit in its color.
//
// Precondition: 0 <= highlight < len(prizes).
func Frame(prizes []prize.Prize, highlight int) string {
	var b strings.Builder
	b.WriteString(ClearLine)
	for i, p := range prizes {
		label := truncate(p.Label, MaxLabelWidth)
		if i != highlight {
			b.WriteString(Dim + " " + label + " " + Reset)
			continue
		}
		b.WriteString(Bold)
		if r, g, bl, err := p.RGB(); err == nil {
			b.WriteString(BgRGB(r, g, bl) + FgRGB(0, 0, 0))
		} else {
			b.WriteString(Reverse)
		}
		b.WriteString(">" + label + "<" + Reset)
	}
	return b.String()
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-1]) + "~"
}
