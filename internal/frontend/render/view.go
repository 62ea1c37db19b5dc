package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cory-johannsen/luckydraw/internal/game/history"
	"github.com/cory-johannsen/luckydraw/internal/game/prize"
	"github.com/cory-johannsen/luckydraw/internal/game/wheel"
)

// ResultView writes the winner dialog to a terminal. It satisfies session.View.
type ResultView struct {
	out    Output
	logger *zap.Logger
}

// NewResultView creates a ResultView writing to out.
func NewResultView(out Output, logger *zap.Logger) *ResultView {
	return &ResultView{out: out, logger: logger}
}

// ShowResult writes the dialog for p. A write failure is logged; the draw
// has already been recorded.
func (v *ResultView) ShowResult(p prize.Prize) {
	if err := v.out.Write([]byte(Dialog(p))); err != nil {
		v.logger.Debug("result dialog not shown", zap.String("prize_id", p.ID), zap.Error(err))
	}
}

// Dialog renders the boxed winner dialog.
func Dialog(p prize.Prize) string {
	lines := []string{
		"Congratulations!",
		"You won: " + p.Label,
		`Type "ok" to dismiss.`,
	}
	width := 0
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > width {
			width = n
		}
	}
	border := "+" + strings.Repeat("-", width+2) + "+"

	accent := BrightYellow
	if r, g, b, err := p.RGB(); err == nil {
		accent = FgRGB(r, g, b)
	}

	var sb strings.Builder
	sb.WriteString(border + "\r\n")
	for i, l := range lines {
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(l))
		text := l
		if i == 1 {
			text = Bold + accent + l + Reset
		}
		sb.WriteString("| " + text + pad + " |\r\n")
	}
	sb.WriteString(border + "\r\n")
	return sb.String()
}

// HistoryPanel renders recent winners, most recent first.
func HistoryPanel(entries []history.Entry) string {
	if len(entries) == 0 {
		return "No winners yet.\r\n"
	}
	var sb strings.Builder
	sb.WriteString(Bold + "Recent winners" + Reset + "\r\n")
	for i, e := range entries {
		fmt.Fprintf(&sb, "%3d. %-*s %s\r\n", i+1, MaxLabelWidth, truncate(e.Prize.Label, MaxLabelWidth),
			Dim+e.SettledAt.Format("15:04:05")+Reset)
	}
	return sb.String()
}

// PrizeTable renders the wheel segments with their odds.
//
// Precondition: prizes is a valid selection universe.
func PrizeTable(prizes []prize.Prize) string {
	total, err := wheel.Total(prizes)
	if err != nil {
		return "No prizes available.\r\n"
	}
	var sb strings.Builder
	sb.WriteString(Bold + "Prizes" + Reset + "\r\n")
	for _, p := range prizes {
		swatch := "  "
		if r, g, b, err := p.RGB(); err == nil {
			swatch = BgRGB(r, g, b) + "  " + Reset
		}
		fmt.Fprintf(&sb, "  %s %-*s %6.2f%%\r\n", swatch, MaxLabelWidth, truncate(p.Label, MaxLabelWidth),
			100*p.Weight/total)
	}
	return sb.String()
}
