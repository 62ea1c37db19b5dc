package render

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cory-johannsen/luckydraw/internal/game/prize"
	"github.com/cory-johannsen/luckydraw/internal/game/rng"
)

// ErrEmptyPattern is returned by Vibrate for a pattern with no segments.
var ErrEmptyPattern = errors.New("render: empty vibration pattern")

// BellHaptics stands in for a vibration motor by ringing the terminal bell
// once per vibrate segment of a pattern. It satisfies session.Haptics.
type BellHaptics struct {
	out Output
}

// NewBellHaptics creates haptics that ring out.
func NewBellHaptics(out Output) *BellHaptics {
	return &BellHaptics{out: out}
}

// Vibrate rings the bell for each even-indexed (vibrate) segment of pattern.
// Odd-indexed segments are pauses and produce no output.
//
// Precondition: pattern is non-empty and has no negative durations.
func (h *BellHaptics) Vibrate(pattern []time.Duration) error {
	if len(pattern) == 0 {
		return ErrEmptyPattern
	}
	rings := 0
	for i, d := range pattern {
		if d < 0 {
			return fmt.Errorf("vibration segment %d: negative duration %v", i, d)
		}
		if i%2 == 0 {
			rings++
		}
	}
	if err := h.out.Write([]byte(strings.Repeat(Bell, rings))); err != nil {
		return fmt.Errorf("ringing bell: %w", err)
	}
	return nil
}

// Confetti dimensions.
const (
	ConfettiWidth = 48
	ConfettiRows  = 3
)

var (
	confettiGlyphs  = []byte{'*', '+', 'o', '.', '~', '\''}
	confettiPalette = []string{Red, Green, Yellow, Blue, Magenta, Cyan}
)

// Confetti scatters colored glyphs across a few lines. It satisfies
// session.Celebration.
type Confetti struct {
	out Output
	src rng.Source
}

// NewConfetti creates a celebration that draws glyph placement from src.
//
// Precondition: out and src are non-nil.
func NewConfetti(out Output, src rng.Source) *Confetti {
	return &Confetti{out: out, src: src}
}

// Celebrate writes a confetti burst tinted with the prize's color.
func (c *Confetti) Celebrate(p prize.Prize) error {
	palette := confettiPalette
	if r, g, b, err := p.RGB(); err == nil {
		palette = append([]string{FgRGB(r, g, b)}, confettiPalette...)
	}

	var sb strings.Builder
	for row := 0; row < ConfettiRows; row++ {
		for col := 0; col < ConfettiWidth; col++ {
			// roughly one cell in three carries a glyph
			if c.pick(3) != 0 {
				sb.WriteByte(' ')
				continue
			}
			glyph := confettiGlyphs[c.pick(len(confettiGlyphs))]
			sb.WriteString(Colorize(palette[c.pick(len(palette))], string(glyph)))
		}
		sb.WriteString("\r\n")
	}
	if err := c.out.Write([]byte(sb.String())); err != nil {
		return fmt.Errorf("drawing confetti: %w", err)
	}
	return nil
}

func (c *Confetti) pick(n int) int {
	i := int(c.src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
