package searcher

import "math"

// Rewards of a finished rollout, from the root player's perspective.
const (
	WIN  = 1.0
	LOSS = -WIN
	DRAW = 0.0
)

// RolloutScale maps evaluations of cut off rollouts into (-1, 1) through
// tanh(score/RolloutScale).
const RolloutScale = 5.0

type uct struct {
	numerator float64
}

// newUCT prepares UCB1 for the children of a node visited N times with
// exploration constant c.
func newUCT(c float64, N float64) *uct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &uct{numerator: c * c * math.Log(N)}
}

func (u uct) evaluate(q float64, n float64) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	// UCB1 = q/n + c*sqrt(ln(N)/n)
	return q/n + math.Sqrt(u.numerator/n)
}

// cutoffReward squashes an evaluation into the reward range.
func cutoffReward(score float64) float64 {
	return math.Tanh(score / RolloutScale)
}
