package experiments

import (
	"context"
	"fmt"
	"math"

	"checkers/engine"
	"checkers/experiments/metrics"
	"checkers/game"
	"checkers/searcher/agent"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRounds = 10 // Per pairing and color assignment
	InitialElo    = 1500.0
	EloK          = 32.0
)

type Option func(t *tournament)

type tournament struct {
	rounds      int
	concurrency int
	maxPlies    int
	size        int
}

func WithRounds(rounds int) Option {
	return func(t *tournament) {
		if rounds > 0 {
			t.rounds = rounds
		}
	}
}

// WithConcurrency bounds the number of games played at once.
func WithConcurrency(games int) Option {
	return func(t *tournament) {
		if games > 0 {
			t.concurrency = games
		}
	}
}

func WithMaxPlies(plies int) Option {
	return func(t *tournament) {
		if plies > 0 {
			t.maxPlies = plies
		}
	}
}

func WithBoardSize(size int) Option {
	return func(t *tournament) {
		t.size = size
	}
}

type Result struct {
	Agents  []metrics.AgentConfig
	Games   []metrics.GameRecord
	Moves   []metrics.MoveRecord
	Ratings []metrics.Rating // Ordered by agent
}

// matchUp is a scheduled game between two agents, by index into the configs.
type matchUp struct {
	round int
	red   int
	black int
}

type gameResult struct {
	outcome game.Outcome
	game    metrics.GameMetric
	moves   []metrics.MoveMetric
}

// RunTournament plays every pair of agents against each other for a number
// of rounds, once with each color per round, and rates them by Elo in
// schedule order. Agents are built from their configuration strings for
// every game.
func RunTournament(ctx context.Context, configs []string, options ...Option) (Result, error) {
	t := tournament{
		rounds:      DefaultRounds,
		concurrency: 1,
		maxPlies:    engine.MaxPlies,
		size:        game.DefaultSize,
	}
	for _, option := range options {
		option(&t)
	}

	if len(configs) < 2 {
		return Result{}, fmt.Errorf("need at least two agents, got %d", len(configs))
	}
	agents := make([]metrics.AgentConfig, len(configs))
	for i, config := range configs {
		if _, err := agent.New(config); err != nil {
			return Result{}, err
		}
		agents[i] = metrics.AgentConfig{ID: i + 1, Config: config}
	}

	schedule := t.schedule(len(configs))
	log.Info().Msgf("starting tournament of %d agents, %d games...", len(configs), len(schedule))

	results := make([]gameResult, len(schedule))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	for i, m := range schedule {
		g.Go(func() error {
			result, err := t.play(ctx, configs[m.red], configs[m.black])
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			results[i] = result
			log.Info().Msgf("completed game %d of %d: %s", i+1, len(schedule), result.outcome)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Agents: agents}
	ratings := make([]metrics.Rating, len(configs))
	for i := range ratings {
		ratings[i] = metrics.Rating{Agent: i + 1, Elo: InitialElo}
	}
	for i, m := range schedule {
		result := results[i]
		id := i + 1
		res.Games = append(res.Games, metrics.GameRecord{
			ID:         id,
			Round:      m.round,
			Red:        m.red + 1,
			Black:      m.black + 1,
			GameMetric: result.game,
		})
		for _, mm := range result.moves {
			res.Moves = append(res.Moves, metrics.MoveRecord{Game: id, MoveMetric: mm})
		}
		record(&ratings[m.red], &ratings[m.black], result.outcome)
	}
	res.Ratings = ratings

	log.Info().Msg("completed tournament")
	return res, nil
}

// schedule lists the games of all rounds. Within a round every pair plays
// twice, swapping colors.
func (t tournament) schedule(agents int) []matchUp {
	var schedule []matchUp
	for round := 1; round <= t.rounds; round++ {
		for i := 0; i < agents; i++ {
			for j := i + 1; j < agents; j++ {
				schedule = append(schedule,
					matchUp{round: round, red: i, black: j},
					matchUp{round: round, red: j, black: i},
				)
			}
		}
	}
	return schedule
}

func (t tournament) play(ctx context.Context, redConfig, blackConfig string) (gameResult, error) {
	red, err := agent.New(redConfig)
	if err != nil {
		return gameResult{}, err
	}
	black, err := agent.New(blackConfig)
	if err != nil {
		return gameResult{}, err
	}

	e := engine.New(red, black,
		engine.WithStart(game.NewGame(game.WithSize(t.size))),
		engine.WithMaxPlies(t.maxPlies),
	)
	outcome, gameMetric, moveMetrics, err := e.Run(ctx)
	if err != nil {
		return gameResult{}, err
	}
	return gameResult{outcome: outcome, game: gameMetric, moves: moveMetrics}, nil
}

// record updates the ratings of both players with the outcome of a game.
func record(red, black *metrics.Rating, outcome game.Outcome) {
	score := 0.5
	switch outcome {
	case game.RedWins:
		score = 1
		red.Wins++
		black.Losses++
	case game.BlackWins:
		score = 0
		red.Losses++
		black.Wins++
	default:
		red.Draws++
		black.Draws++
	}
	red.Games++
	black.Games++
	red.Elo, black.Elo = updateElo(red.Elo, black.Elo, score)
}

// updateElo returns the new ratings of a and b after a game in which a
// scored score (1 win, 0.5 draw, 0 loss).
func updateElo(a, b, score float64) (float64, float64) {
	expected := 1 / (1 + math.Pow(10, (b-a)/400))
	delta := EloK * (score - expected)
	return a + delta, b - delta
}

// Write stores the tournament as CSV files.
func (r Result) Write(w *metrics.Writer) error {
	if err := w.WriteAgentConfigs(r.Agents); err != nil {
		return err
	}
	log.Info().Msg("stored agent configs")
	if err := w.WriteGameRecords(r.Games); err != nil {
		return err
	}
	log.Info().Msg("stored game records")
	if err := w.WriteMoveRecords(r.Moves); err != nil {
		return err
	}
	log.Info().Msg("stored move records")
	if err := w.WriteRatings(r.Ratings); err != nil {
		return err
	}
	log.Info().Msg("stored ratings")
	return nil
}
