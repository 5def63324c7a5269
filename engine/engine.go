package engine

import (
	"context"

	"checkers/experiments/metrics"
	"checkers/game"
)

// MaxPlies caps the length of a game. A game reaching it is a draw.
const MaxPlies = 160

type Engine interface {
	// Run plays a game till it ends or the ply cap is reached
	Run(ctx context.Context) (game.Outcome, metrics.GameMetric, []metrics.MoveMetric, error)
}
