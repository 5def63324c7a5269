package searcher

import (
	"context"
	"errors"

	"checkers/experiments/metrics"
	"checkers/game"
)

var (
	// ErrNoLegalMoves is returned when a move is requested for a finished game.
	ErrNoLegalMoves = errors.New("no legal moves")
	// ErrConfiguration reports an unusable search configuration.
	ErrConfiguration = errors.New("invalid search configuration")
)

// Engine picks a move for the side to move. The state passed in is never
// modified. An Engine is not safe for concurrent use.
type Engine interface {
	ChooseMove(ctx context.Context, state game.State) (game.Move, metrics.SearchMetric, error)
}

// fallback completes a search that produced no move of its own by playing
// the first legal move.
func fallback(collector metrics.Collector, moves []game.Move) (game.Move, metrics.SearchMetric) {
	metric := collector.Complete()
	metric.Fallback = true
	return moves[0], metric
}
