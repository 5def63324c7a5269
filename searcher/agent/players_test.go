package agent

import (
	"context"
	"testing"
	"time"

	"checkers/game"
	"checkers/searcher"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("builds a minimax agent", func(t *testing.T) {
		a, err := New("minimax:depth=3,time=2s,king=3")

		require.NoError(t, err)
		require.Equal(t, "minimax:depth=3,time=2s,king=3", a.Name())
		m, ok := a.(evaluationAgent).Engine.(*searcher.Minimax)
		require.True(t, ok, "Should wrap a minimax engine")
		config := m.Config()
		require.Equal(t, 3, config.DepthLimit)
		require.Equal(t, 2*time.Second, config.TimeLimit)
		require.Equal(t, 3.0, config.Weights.King)
		require.Equal(t, game.DefaultWeights.Man, config.Weights.Man)
	})

	t.Run("builds an mcts agent", func(t *testing.T) {
		a, err := New("mcts:iterations=50,c=2,cutoff=10,seed=7,workers=2,reuse")

		require.NoError(t, err)
		m, ok := a.(evaluationAgent).Engine.(*searcher.MCTS)
		require.True(t, ok, "Should wrap an mcts engine")
		config := m.Config()
		require.Equal(t, 50, config.Iterations)
		require.Equal(t, 2.0, config.ExplorationConstant)
		require.Equal(t, 10, config.RolloutDepthCap)
		require.Equal(t, uint64(7), config.Seed)
		require.Equal(t, 2, config.Workers)
	})

	t.Run("uses the default configuration when empty", func(t *testing.T) {
		a, err := New("")

		require.NoError(t, err)
		require.Equal(t, DefaultConfig, a.Name())
	})

	t.Run("module without parameters", func(t *testing.T) {
		a, err := New("random")

		require.NoError(t, err)
		require.Equal(t, "random", a.Name())
	})

	t.Run("rejects unknown modules", func(t *testing.T) {
		_, err := New("alphazero:depth=2")

		require.ErrorContains(t, err, "unknown agent module")
	})

	t.Run("rejects unknown parameters", func(t *testing.T) {
		_, err := New("minimax:depth=2,width=3")

		require.ErrorContains(t, err, "width")
	})

	t.Run("rejects unparsable values", func(t *testing.T) {
		for _, config := range []string{
			"minimax:depth=deep",
			"minimax:time=soon",
			"mcts:c=high",
			"mcts:reuse=maybe",
			"random:seed=-1",
		} {
			_, err := New(config)
			require.Error(t, err, "%q should be rejected", config)
		}
	})

	t.Run("rejects invalid budgets", func(t *testing.T) {
		_, err := New("mcts:iterations=-3")

		require.ErrorIs(t, err, searcher.ErrConfiguration)
	})
}

func TestGetParamOr(t *testing.T) {
	params := map[string]string{"n": "3", "x": "0.5", "flag": "", "off": "false", "d": "150ms"}

	t.Run("parses typed values", func(t *testing.T) {
		n, err := GetParamOr(params, "n", 0)
		require.NoError(t, err)
		require.Equal(t, 3, n)

		x, err := GetParamOr(params, "x", 0.0)
		require.NoError(t, err)
		require.Equal(t, 0.5, x)

		d, err := GetParamOr(params, "d", time.Duration(0))
		require.NoError(t, err)
		require.Equal(t, 150*time.Millisecond, d)
	})

	t.Run("a bool key without a value is true", func(t *testing.T) {
		flag, err := GetParamOr(params, "flag", false)
		require.NoError(t, err)
		require.True(t, flag)

		off, err := GetParamOr(params, "off", true)
		require.NoError(t, err)
		require.False(t, off)
	})

	t.Run("missing keys return the default", func(t *testing.T) {
		v, err := GetParamOr(params, "missing", 42)
		require.NoError(t, err)
		require.Equal(t, 42, v)
	})

	t.Run("pop deletes the key", func(t *testing.T) {
		local := map[string]string{"n": "3"}

		_, err := PopParamOr(local, "n", 0)

		require.NoError(t, err)
		require.Empty(t, local)
	})
}

func TestAgentsPlay(t *testing.T) {
	for _, config := range []string{"minimax:depth=2", "mcts:iterations=50,seed=1", "random:seed=1"} {
		t.Run(config+" returns a legal move", func(t *testing.T) {
			a, err := New(config)
			require.NoError(t, err)
			state := game.NewGame()

			move, _, err := a.ChooseMove(context.Background(), state)

			require.NoError(t, err)
			require.Contains(t, state.LegalMoves(), move)
		})
	}

	t.Run("random agents are reproducible", func(t *testing.T) {
		state := game.NewGame()
		first, _, err := newRandomEngine(5).ChooseMove(context.Background(), state)
		require.NoError(t, err)
		second, _, err := newRandomEngine(5).ChooseMove(context.Background(), state)
		require.NoError(t, err)

		require.Equal(t, first, second)
	})

	t.Run("random agents reject finished games", func(t *testing.T) {
		state, err := game.ParseState(`
			. . . .
			. . . .
			. r . .
			. . . .`, game.Black)
		require.NoError(t, err)

		_, _, err = newRandomEngine(1).ChooseMove(context.Background(), state)

		require.ErrorIs(t, err, searcher.ErrNoLegalMoves)
	})
}
