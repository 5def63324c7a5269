package searcher

import (
	"context"
	"testing"
	"time"

	"checkers/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestMCTSChooseMove(t *testing.T) {
	t.Run("converges on a winning move across seeds", func(t *testing.T) {
		state := winInOne(t)
		for seed := uint64(1); seed <= 5; seed++ {
			m := NewMCTS(WithIterations(2000), WithSeed(seed), WithMetrics())

			move, metric, err := m.ChooseMove(context.Background(), state)

			require.NoError(t, err)
			require.Equal(t, winningMove, move, "Seed %d should pick the winning move", seed)
			require.Greater(t, metric.Visits, 500, "The winning move should take most visits")
			require.Equal(t, 2000, metric.Episodes)
			require.Greater(t, metric.Score, 0.9)
		}
	})

	t.Run("is reproducible with the same seed", func(t *testing.T) {
		state := game.NewGame()

		first, firstMetric, err := NewMCTS(WithIterations(300), WithSeed(42)).ChooseMove(context.Background(), state)
		require.NoError(t, err)
		second, secondMetric, err := NewMCTS(WithIterations(300), WithSeed(42)).ChooseMove(context.Background(), state)
		require.NoError(t, err)

		require.Equal(t, first, second)
		require.Equal(t, firstMetric.Visits, secondMetric.Visits)
		require.Equal(t, firstMetric.Score, secondMetric.Score)
	})

	t.Run("accepts an explicit random source", func(t *testing.T) {
		state := game.NewGame()
		m := NewMCTS(WithIterations(100), WithRand(rand.New(rand.NewSource(7))))

		move, _, err := m.ChooseMove(context.Background(), state)

		require.NoError(t, err)
		require.Contains(t, state.LegalMoves(), move)
	})

	t.Run("does not modify the state", func(t *testing.T) {
		state := doubleJump(t)
		before := state

		_, _, err := NewMCTS(WithIterations(200), WithSeed(3)).ChooseMove(context.Background(), state)

		require.NoError(t, err)
		require.Equal(t, before, state)
	})

	t.Run("rejects a finished game", func(t *testing.T) {
		_, _, err := NewMCTS(WithSeed(1)).ChooseMove(context.Background(), redWon(t))

		require.ErrorIs(t, err, ErrNoLegalMoves)
	})

	t.Run("falls back when cancelled before the first iteration", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		state := game.NewGame()

		move, metric, err := NewMCTS(WithSeed(1)).ChooseMove(ctx, state)

		require.NoError(t, err, "Cancellation should not be an error")
		require.True(t, metric.Fallback)
		require.Equal(t, state.LegalMoves()[0], move)
	})

	t.Run("falls back on an invalid configuration", func(t *testing.T) {
		state := game.NewGame()
		m := NewMCTS(WithConfig(Config{Iterations: -1, Seed: 1}))

		move, metric, err := m.ChooseMove(context.Background(), state)

		require.NoError(t, err)
		require.True(t, metric.Fallback)
		require.Equal(t, state.LegalMoves()[0], move)
	})

	t.Run("stops at the time limit", func(t *testing.T) {
		state := game.NewGame()
		m := NewMCTS(WithTimeLimit(50*time.Millisecond), WithSeed(5), WithMetrics())

		start := time.Now()
		move, metric, err := m.ChooseMove(context.Background(), state)

		require.NoError(t, err)
		require.Contains(t, state.LegalMoves(), move)
		require.Positive(t, metric.Episodes)
		require.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("shares the iteration budget between workers", func(t *testing.T) {
		state := game.NewGame()
		m := NewMCTS(WithIterations(400), WithWorkers(4), WithSeed(9), WithMetrics())

		move, metric, err := m.ChooseMove(context.Background(), state)

		require.NoError(t, err)
		require.Contains(t, state.LegalMoves(), move)
		require.Equal(t, 400, metric.Episodes)
		require.Equal(t, 4, metric.Workers)
		require.LessOrEqual(t, metric.Visits, 400)
	})

	t.Run("workers agree on a winning move", func(t *testing.T) {
		m := NewMCTS(WithIterations(2000), WithWorkers(4), WithSeed(11))

		move, _, err := m.ChooseMove(context.Background(), winInOne(t))

		require.NoError(t, err)
		require.Equal(t, winningMove, move)
	})

	t.Run("reuses the tree after the opponent replies", func(t *testing.T) {
		state := game.NewGame()
		m := NewMCTS(WithIterations(800), WithSeed(13), WithTreeReuse(), WithMetrics())

		move, metric, err := m.ChooseMove(context.Background(), state)
		require.NoError(t, err)
		require.False(t, metric.IsTreeReused, "The first decision has no tree to reuse")

		state, err = state.Apply(move)
		require.NoError(t, err)
		state, err = state.Apply(state.LegalMoves()[0])
		require.NoError(t, err)

		move, metric, err = m.ChooseMove(context.Background(), state)
		require.NoError(t, err)
		require.Contains(t, state.LegalMoves(), move)
		require.True(t, metric.IsTreeReused, "The reply should be found below the chosen move")
	})

	t.Run("starts a fresh tree for an unrelated state", func(t *testing.T) {
		m := NewMCTS(WithIterations(200), WithSeed(17), WithTreeReuse(), WithMetrics())

		_, _, err := m.ChooseMove(context.Background(), game.NewGame())
		require.NoError(t, err)
		_, metric, err := m.ChooseMove(context.Background(), doubleJump(t))
		require.NoError(t, err)

		require.False(t, metric.IsTreeReused)
	})
}

func TestRollout(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	collector := NewConfig(WithMetrics()).metrics
	collector.Start("mcts", 1)

	t.Run("a finished game is a full playout", func(t *testing.T) {
		state := redWon(t)

		require.Equal(t, WIN, rollout(state, game.Red, 10, game.DefaultWeights.Evaluate, rng, collector))
		require.Equal(t, LOSS, rollout(state, game.Black, 10, game.DefaultWeights.Evaluate, rng, collector))
		require.Equal(t, 2, collector.Complete().FullPlayouts)
	})

	t.Run("a cut off rollout returns the squashed evaluation", func(t *testing.T) {
		state := doubleJump(t)

		got := rollout(state, game.Red, 0, game.DefaultWeights.Evaluate, rng, collector)

		require.InDelta(t, cutoffReward(game.DefaultWeights.Evaluate(state, game.Red)), got, 1e-12)
	})

	t.Run("rollouts end within the depth cap", func(t *testing.T) {
		plies := 0
		evaluate := func(s game.State, perspective game.Color) float64 {
			plies = s.Ply()
			return 0
		}

		rollout(game.NewGame(), game.Red, 5, evaluate, rng, collector)

		require.Equal(t, 5, plies)
	})
}
