package engine

import (
	"context"
	"fmt"
	"time"

	"checkers/experiments/metrics"
	"checkers/game"
	"checkers/searcher/agent"

	"github.com/rs/zerolog/log"
)

type Option func(l *Local)

func WithMaxPlies(plies int) Option {
	return func(l *Local) {
		if plies > 0 {
			l.maxPlies = plies
		}
	}
}

// WithStart plays from state instead of the standard start position.
func WithStart(state game.State) Option {
	return func(l *Local) {
		l.start = state
	}
}

// Local plays two in-process agents against each other.
type Local struct {
	agents   [2]agent.Agent // Indexed by game.Color
	start    game.State
	maxPlies int
}

var _ Engine = (*Local)(nil)

func New(red, black agent.Agent, options ...Option) *Local {
	l := &Local{
		agents:   [2]agent.Agent{game.Red: red, game.Black: black},
		start:    game.NewGame(),
		maxPlies: MaxPlies,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// Run asks the side to move for a move until the game is over. A move that
// fails validation ends the game with an error.
func (l *Local) Run(ctx context.Context) (game.Outcome, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		Red:       l.agents[game.Red].Name(),
		Black:     l.agents[game.Black].Name(),
		StartTime: time.Now(),
	}
	var moveMetrics []metrics.MoveMetric

	log.Info().Msgf("%s (red) vs %s (black) started", gameMetric.Red, gameMetric.Black)

	state := l.start
	outcome, _ := state.Status()
	for plies := 0; outcome == game.Ongoing && plies < l.maxPlies; plies++ {
		if err := ctx.Err(); err != nil {
			return game.Ongoing, gameMetric, moveMetrics, fmt.Errorf("game interrupted after %d moves: %w", plies, err)
		}

		player := state.Turn()
		a := l.agents[player]
		move, searchMetric, err := a.ChooseMove(ctx, state)
		if err != nil {
			return game.Ongoing, gameMetric, moveMetrics, fmt.Errorf("%s (%s) failed to choose a move: %w", a.Name(), player, err)
		}
		next, err := state.Apply(move)
		if err != nil {
			return game.Ongoing, gameMetric, moveMetrics, fmt.Errorf("%s (%s): %w", a.Name(), player, err)
		}

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         plies + 1,
			Player:       player.String(),
			Move:         move.String(),
			SearchMetric: searchMetric,
		})
		log.Debug().Msgf("ply %d: %s played %s", plies+1, player, move)

		state = next
		outcome, _ = state.Status()
	}

	if outcome == game.Ongoing {
		log.Info().Msgf("stopped after %d plies without a result", l.maxPlies)
		outcome = game.Draw
	}

	gameMetric.Outcome = outcome.String()
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)

	log.Info().Msgf("%s (red) vs %s (black) ended: %s after %d plies", gameMetric.Red, gameMetric.Black, outcome, gameMetric.TotalMoves)
	return outcome, gameMetric, moveMetrics, nil
}
