package searcher

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"checkers/experiments/metrics"
	"checkers/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// reuseDepth is how many plies below the previous root a reused tree is
// searched for the new state.
const reuseDepth = 8

// MCTS is a Monte Carlo tree search with UCB1 selection, random rollouts
// and robust child selection.
type MCTS struct {
	config Config
	err    error
	tree   *tree // Previous tree, kept with tree reuse
}

func NewMCTS(options ...Option) *MCTS {
	config := NewConfig(options...)
	return &MCTS{config: config, err: config.Validate()}
}

func (m *MCTS) Config() Config {
	return m.config
}

func (m *MCTS) ChooseMove(ctx context.Context, state game.State) (game.Move, metrics.SearchMetric, error) {
	outcome, moves := state.Status()
	if outcome != game.Ongoing {
		return game.Move{}, metrics.SearchMetric{}, fmt.Errorf("%w: game is %s", ErrNoLegalMoves, outcome)
	}

	collector := m.config.metrics
	collector.Start("mcts", m.config.Workers)
	if m.err != nil {
		log.Warn().Err(m.err).Msg("mcts: playing first legal move")
		move, metric := fallback(collector, moves)
		return move, metric, nil
	}

	b := newBudget(m.config)
	var trees []*tree
	if m.config.Workers == 1 {
		t := m.findRoot(state)
		m.iterate(ctx, t, m.config.rng, b)
		trees = []*tree{t}
		if m.config.treeReuse {
			m.tree = t
		}
	} else {
		trees = m.parallel(ctx, state, b)
	}

	stats := mergeRoots(trees, len(moves))
	best, ok := stats.robust()
	if !ok {
		log.Warn().Msg("mcts: no iterations completed, playing first legal move")
		move, metric := fallback(collector, moves)
		return move, metric, nil
	}

	metric := collector.Complete()
	metric.Visits = stats[best].visits
	metric.Score = stats[best].mean()
	log.Debug().
		Str("move", moves[best].String()).
		Int("visits", metric.Visits).
		Int("episodes", metric.Episodes).
		Float64("score", metric.Score).
		Bool("reused", metric.IsTreeReused).
		Msg("mcts: chose move")
	return moves[best], metric, nil
}

// findRoot re-roots the previous tree at state when tree reuse is enabled
// and state is within reach of the previous root.
func (m *MCTS) findRoot(state game.State) *tree {
	if m.config.treeReuse && m.tree != nil {
		if id, ok := m.tree.find(state, reuseDepth); ok {
			m.config.metrics.SetTreeReused(true)
			return m.tree.reroot(id)
		}
		log.Debug().Msg("mcts: state not found in previous tree")
	}
	return newTree(state)
}

// parallel grows one tree per worker, each from its own copy of state and
// with its own random source.
func (m *MCTS) parallel(ctx context.Context, state game.State, b *budget) []*tree {
	trees := make([]*tree, m.config.Workers)
	g, ctx := errgroup.WithContext(ctx)
	for i := range trees {
		t := newTree(state)
		rng := rand.New(rand.NewSource(m.config.rng.Uint64()))
		trees[i] = t
		g.Go(func() error {
			m.iterate(ctx, t, rng, b)
			return nil
		})
	}
	_ = g.Wait() // Workers never fail, cancellation ends the search
	return trees
}

func (m *MCTS) iterate(ctx context.Context, t *tree, rng *rand.Rand, b *budget) {
	start := t.size()
	for b.next(ctx) {
		m.simulate(t, rng)
		m.config.metrics.AddEpisode()
	}
	m.config.metrics.AddNodes(t.size() - start)
}

func (m *MCTS) simulate(t *tree, rng *rand.Rand) {
	rootPlayer := t.root().state.Turn()
	id := t.selectThenExpand(m.config.ExplorationConstant, rng)
	reward := rollout(t.nodes[id].state, rootPlayer, m.config.RolloutDepthCap, m.config.evaluate, rng, m.config.metrics)
	t.backup(id, reward, rootPlayer)
}

// rollout plays random moves until the game ends or cutoff moves were
// played, and returns the reward for player.
func rollout(state game.State, player game.Color, cutoff int, evaluate game.Evaluate, rng *rand.Rand, metrics metrics.Collector) float64 {
	outcome, moves := state.Status()
	for depth := 0; outcome == game.Ongoing && depth < cutoff; depth++ {
		state = state.Play(moves[rng.Intn(len(moves))])
		outcome, moves = state.Status()
	}

	if outcome == game.Ongoing { // Cut off, estimate the result
		return cutoffReward(evaluate(state, player))
	}
	metrics.AddFullPlayout()
	winner, ok := outcome.Winner()
	switch {
	case !ok:
		return DRAW
	case winner == player:
		return WIN
	}
	return LOSS
}

// budget is shared by all workers of a decision.
type budget struct {
	limited     bool
	remaining   atomic.Int64
	deadline    time.Time
	hasDeadline bool
}

func newBudget(config Config) *budget {
	b := &budget{limited: config.Iterations > 0}
	b.remaining.Store(int64(config.Iterations))
	b.deadline, b.hasDeadline = config.deadline(time.Now())
	return b
}

// next reports whether another iteration may start, and claims it.
func (b *budget) next(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if b.hasDeadline && !time.Now().Before(b.deadline) {
		return false
	}
	return !b.limited || b.remaining.Add(-1) >= 0
}

type childStat struct {
	expanded bool
	visits   int
	value    float64
}

func (s childStat) mean() float64 {
	if s.visits == 0 {
		return 0
	}
	return s.value / float64(s.visits)
}

// rootStats holds the root children statistics by legal move index.
type rootStats []childStat

func mergeRoots(trees []*tree, moves int) rootStats {
	stats := make(rootStats, moves)
	for _, t := range trees {
		for _, child := range t.root().children {
			n := &t.nodes[child]
			stat := &stats[n.index]
			stat.expanded = true
			stat.visits += n.visits
			stat.value += n.value
		}
	}
	return stats
}

// robust returns the index of the move with the most visits, then the
// higher mean, then the lower index.
func (stats rootStats) robust() (int, bool) {
	best := -1
	for i, stat := range stats {
		if !stat.expanded {
			continue
		}
		if best < 0 || better(stat.visits, stat.mean(), i, stats[best].visits, stats[best].mean(), best) {
			best = i
		}
	}
	return best, best >= 0
}
