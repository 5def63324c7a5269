package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	t.Run("start position is balanced", func(t *testing.T) {
		s := NewGame()

		require.InDelta(t, 0.0, DefaultWeights.Evaluate(s, Red), 1e-9)
		require.InDelta(t, 0.0, DefaultWeights.Evaluate(s, Black), 1e-9)
	})

	t.Run("scores are antisymmetric", func(t *testing.T) {
		s := mustParse(t, `
			. . . . . . . .
			. . r . . . . .
			. r . . . . . .
			. . . . . . . .
			. . . . . . . .
			. . . . b . . .
			. . . . . . . .
			. . . . . . B .`, Red)

		red := DefaultWeights.Evaluate(s, Red)
		black := DefaultWeights.Evaluate(s, Black)

		require.InDelta(t, -red, black, 1e-9)
	})

	t.Run("material counts men and kings", func(t *testing.T) {
		s := mustParse(t, `
			. . . . . . . .
			. . . . . . . .
			. r . . . . . .
			. . . . . . . .
			. . . . . . . .
			. . . . . . . .
			. . . . . . . .
			. . . . . . B .`, Red)
		w := Weights{Man: 1, King: 2.5}

		require.InDelta(t, -1.5, w.Evaluate(s, Red), 1e-9)
	})

	t.Run("terminal states dominate heuristics", func(t *testing.T) {
		s := mustParse(t, `
			. R . . . . . .
			b . . . . . . .
			. . . . . . . .
			. . . . . . . .
			. . . . . . . .
			. . . . . . . .
			. . . . . . . .
			. . . . . . . .`, Black)

		require.Equal(t, WinScore, DefaultWeights.Evaluate(s, Red))
		require.Equal(t, -WinScore, DefaultWeights.Evaluate(s, Black))
	})

	t.Run("draws score zero", func(t *testing.T) {
		s := mustParse(t, `
			. . . . . . . .
			R . . . . . . .
			. . . . . . . .
			. . . . . . . .
			. . . . . . . .
			. . . . . . . .
			. . . . . . . B
			. . . . . . . .`, Red, WithDrawLimit(1))
		s = s.Play(s.LegalMoves()[0])

		require.Zero(t, DefaultWeights.Evaluate(s, Red))
	})

	t.Run("advanced men score higher", func(t *testing.T) {
		back := mustParse(t, `
			. . . .
			r . . .
			. . . .
			. . b .`, Red)
		forward := mustParse(t, `
			. . . .
			. . . .
			. r . .
			. . b .`, Red)
		w := Weights{Man: 1, Advancement: 1}

		require.Greater(t, w.Evaluate(forward, Red), w.Evaluate(back, Red))
	})
}

func TestWeightsFromMap(t *testing.T) {
	t.Run("overrides named weights", func(t *testing.T) {
		w, err := WeightsFromMap(map[string]float64{"King": 3, "mobility": 0})

		require.NoError(t, err)
		require.Equal(t, 3.0, w.King)
		require.Zero(t, w.Mobility)
		require.Equal(t, DefaultWeights.Man, w.Man, "Unset weights keep their defaults")
	})

	t.Run("rejects unknown weights", func(t *testing.T) {
		_, err := WeightsFromMap(map[string]float64{"tempo": 1})

		require.Error(t, err)
	})
}
