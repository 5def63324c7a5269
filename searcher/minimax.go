package searcher

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"checkers/experiments/metrics"
	"checkers/game"

	"github.com/rs/zerolog/log"
)

// pollInterval is the number of nodes searched between deadline checks.
const pollInterval = 1024

// Minimax is an iterative deepening negamax search with alpha-beta pruning.
type Minimax struct {
	config Config
	err    error
}

func NewMinimax(options ...Option) *Minimax {
	config := NewConfig(options...)
	return &Minimax{config: config, err: config.Validate()}
}

func (m *Minimax) Config() Config {
	return m.config
}

func (m *Minimax) ChooseMove(ctx context.Context, state game.State) (game.Move, metrics.SearchMetric, error) {
	outcome, moves := state.Status()
	if outcome != game.Ongoing {
		return game.Move{}, metrics.SearchMetric{}, fmt.Errorf("%w: game is %s", ErrNoLegalMoves, outcome)
	}

	collector := m.config.metrics
	collector.Start("minimax", 1)
	if m.err != nil {
		log.Warn().Err(m.err).Msg("minimax: playing first legal move")
		move, metric := fallback(collector, moves)
		return move, metric, nil
	}

	s := newSearch(ctx, m.config)
	var (
		best      game.Move
		bestScore float64
		completed int
	)
	for depth := 1; depth <= m.config.DepthLimit; depth++ {
		if s.expiredNow() {
			break
		}
		move, score, ok := s.root(state, moves, depth)
		if !ok { // Interrupted, keep the previous depth
			break
		}
		best, bestScore, completed = move, score, depth
		if math.Abs(score) >= game.WinScore/2 { // Forced result, deeper search cannot change it
			break
		}
	}
	collector.AddNodes(s.nodes)

	if completed == 0 {
		log.Warn().Msg("minimax: no depth completed, playing first legal move")
		move, metric := fallback(collector, moves)
		return move, metric, nil
	}

	metric := collector.Complete()
	metric.Depth = completed
	metric.Nodes = s.nodes
	metric.Score = bestScore
	log.Debug().
		Str("move", best.String()).
		Int("depth", completed).
		Int("nodes", s.nodes).
		Float64("score", bestScore).
		Msg("minimax: chose move")
	return best, metric, nil
}

// search is the state of a single decision.
type search struct {
	ctx         context.Context
	evaluate    game.Evaluate
	deadline    time.Time
	hasDeadline bool
	nodes       int
	aborted     bool
}

func newSearch(ctx context.Context, config Config) *search {
	deadline, ok := config.deadline(time.Now())
	return &search{
		ctx:         ctx,
		evaluate:    config.evaluate,
		deadline:    deadline,
		hasDeadline: ok,
	}
}

func (s *search) expiredNow() bool {
	if s.ctx.Err() != nil || (s.hasDeadline && !time.Now().Before(s.deadline)) {
		s.aborted = true
	}
	return s.aborted
}

// visit counts a node and checks the deadline every pollInterval nodes.
func (s *search) visit() bool {
	if s.aborted {
		return true
	}
	s.nodes++
	if s.nodes%pollInterval == 0 {
		return s.expiredNow()
	}
	return false
}

// root searches every root move with a full window and returns the first
// move with the highest score. ok is false if the search was interrupted.
func (s *search) root(state game.State, moves []game.Move, depth int) (best game.Move, bestScore float64, ok bool) {
	alpha, beta := math.Inf(-1), math.Inf(1)
	bestScore = math.Inf(-1)
	for _, move := range orderMoves(moves) {
		score := s.child(state, move, depth, 1, alpha, beta)
		if s.aborted {
			return game.Move{}, 0, false
		}
		if score > bestScore {
			best, bestScore = move, score
		}
		alpha = max(alpha, bestScore)
	}
	return best, bestScore, true
}

// negamax returns the score of state for its side to move. height is the
// number of moves played from the root.
func (s *search) negamax(state game.State, depth, height int, alpha, beta float64) float64 {
	if s.visit() {
		return 0
	}
	outcome, moves := state.Status()
	if outcome != game.Ongoing {
		return terminalScore(outcome, state.Turn(), height)
	}
	if depth == 0 {
		return s.evaluate(state, state.Turn())
	}

	best := math.Inf(-1)
	for _, move := range orderMoves(moves) {
		score := s.child(state, move, depth, height+1, alpha, beta)
		if s.aborted {
			return 0
		}
		best = max(best, score)
		alpha = max(alpha, best)
		if alpha >= beta {
			break
		}
	}
	return best
}

// child scores move from the perspective of the side moving in state.
// Continuing a capture chain keeps the depth and the window.
func (s *search) child(state game.State, move game.Move, depth, height int, alpha, beta float64) float64 {
	next := state.Play(move)
	if next.Turn() == state.Turn() {
		return s.negamax(next, depth, height, alpha, beta)
	}
	return -s.negamax(next, depth-1, height, -beta, -alpha)
}

// terminalScore prefers quick wins and slow losses.
func terminalScore(outcome game.Outcome, player game.Color, height int) float64 {
	winner, ok := outcome.Winner()
	if !ok {
		return 0
	}
	score := game.WinScore - float64(height)
	if winner != player {
		return -score
	}
	return score
}

// orderMoves puts promotions first, then captures, keeping the legal move
// order within each group.
func orderMoves(moves []game.Move) []game.Move {
	ordered := slices.Clone(moves)
	slices.SortStableFunc(ordered, func(a, b game.Move) int {
		return cmp.Compare(moveRank(a), moveRank(b))
	})
	return ordered
}

func moveRank(m game.Move) int {
	switch {
	case m.Promotes:
		return 0
	case m.Jump:
		return 1
	}
	return 2
}
