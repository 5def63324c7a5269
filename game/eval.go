package game

import (
	"fmt"
	"sort"
	"strings"
)

// WinScore dominates any heuristic score so that a forced win is always
// preferred over a good position.
const WinScore = 1e6

// Weights parameterize the static evaluation. The zero value scores every
// non-terminal position as equal.
type Weights struct {
	Man         float64 // Per man
	King        float64 // Per king
	Advancement float64 // Per man, scaled by the fraction of the board it has crossed
	Mobility    float64 // Per legal move
	BackRow     float64 // Per man still guarding its home row
}

var DefaultWeights = Weights{
	Man:         1.0,
	King:        2.5,
	Advancement: 0.1,
	Mobility:    0.05,
	BackRow:     0.2,
}

// WeightsFromMap overrides the default weights with the named values.
// Keys are case-insensitive: man, king, advancement, mobility, backrow.
func WeightsFromMap(values map[string]float64) (Weights, error) {
	w := DefaultWeights
	fields := w.fields()
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		field, ok := fields[strings.ToLower(key)]
		if !ok {
			return Weights{}, fmt.Errorf("unknown evaluator weight %q", key)
		}
		*field = values[key]
	}
	return w, nil
}

// WeightNames lists the keys accepted by WeightsFromMap.
func WeightNames() []string {
	return []string{"man", "king", "advancement", "mobility", "backrow"}
}

func (w *Weights) fields() map[string]*float64 {
	return map[string]*float64{
		"man":         &w.Man,
		"king":        &w.King,
		"advancement": &w.Advancement,
		"mobility":    &w.Mobility,
		"backrow":     &w.BackRow,
	}
}

// Evaluate scores s from the perspective of a color. Terminal states score
// +WinScore, -WinScore or 0; otherwise the score is the difference of the
// weighted features of both sides.
func (w Weights) Evaluate(s State, perspective Color) float64 {
	switch s.Outcome() {
	case Draw:
		return 0
	case winsFor(perspective):
		return WinScore
	case winsFor(perspective.Opponent()):
		return -WinScore
	}
	return w.features(s, perspective) - w.features(s, perspective.Opponent())
}

func (w Weights) features(s State, c Color) float64 {
	size := s.rules.Size
	homeRow := 0
	if c == Black {
		homeRow = size - 1
	}

	score := 0.0
	for row := 0; row < size; row++ {
		for col := (row + 1) % 2; col < size; col += 2 {
			p := s.grid[row][col]
			if !p.Belongs(c) {
				continue
			}
			if p.IsKing() {
				score += w.King
				continue
			}
			score += w.Man
			advanced := row - homeRow
			if advanced < 0 {
				advanced = -advanced
			}
			score += w.Advancement * float64(advanced) / float64(size-1)
			if row == homeRow {
				score += w.BackRow
			}
		}
	}
	if w.Mobility != 0 {
		score += w.Mobility * float64(s.countMoves(c))
	}
	return score
}
