package agent

import (
	"context"
	"fmt"
	"time"

	"checkers/experiments/metrics"
	"checkers/game"
	"checkers/searcher"

	"golang.org/x/exp/rand"
)

// randomEngine plays a uniformly sampled legal move. It is the baseline
// opponent in tournaments.
type randomEngine struct {
	rng *rand.Rand
}

func newRandomEngine(seed uint64) *randomEngine {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &randomEngine{rng: rand.New(rand.NewSource(seed))}
}

func (e *randomEngine) ChooseMove(ctx context.Context, state game.State) (game.Move, metrics.SearchMetric, error) {
	start := time.Now()
	outcome, moves := state.Status()
	if outcome != game.Ongoing {
		return game.Move{}, metrics.SearchMetric{}, fmt.Errorf("%w: game is %s", searcher.ErrNoLegalMoves, outcome)
	}
	move := moves[e.rng.Intn(len(moves))]
	return move, metrics.SearchMetric{Engine: "random", Workers: 1, Duration: time.Since(start)}, nil
}
