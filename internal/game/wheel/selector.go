package wheel

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/luckydraw/internal/game/prize"
	"github.com/cory-johannsen/luckydraw/internal/game/rng"
)

// Selector wraps a Source and logger to provide logged prize selection.
// Every selection is logged at debug level with the total, the draw and the winner.
type Selector struct {
	src    rng.Source
	logger *zap.Logger
}

// NewSelector creates a Selector that draws from src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewSelector(src rng.Source, logger *zap.Logger) *Selector {
	if src == nil || logger == nil {
		panic("wheel: NewSelector requires a non-nil source and logger")
	}
	return &Selector{src: src, logger: logger}
}

// Select draws one prize and returns it together with its position.
//
// Postcondition: On success prizes[index] == result.
func (s *Selector) Select(prizes []prize.Prize) (prize.Prize, int, error) {
	idx, r, err := draw(prizes, s.src)
	if err != nil {
		s.logger.Warn("prize selection rejected", zap.Error(err))
		return prize.Prize{}, 0, err
	}
	won := prizes[idx]
	s.logger.Debug("prize selected",
		zap.Float64("draw", r),
		zap.Int("index", idx),
		zap.String("prize_id", won.ID),
		zap.String("label", won.Label),
	)
	return won, idx, nil
}
