package searcher

import (
	"fmt"
	"time"

	"checkers/experiments/metrics"
	"checkers/game"

	"golang.org/x/exp/rand"
)

const (
	DefaultDepth       = 6
	DefaultIterations  = 800
	DefaultExploration = 1.4
	DefaultRolloutCap  = 60
	DefaultWorkers     = 1

	// MaxDepth bounds iterative deepening when only a time limit is given.
	MaxDepth = 64
)

// Config holds the parameters shared by both engines. Zero fields take
// their defaults in NewConfig.
type Config struct {
	DepthLimit          int           // Minimax: deepest iteration
	TimeLimit           time.Duration // Both: wall clock budget, 0 for none
	Iterations          int           // MCTS: iteration budget
	ExplorationConstant float64       // MCTS: C in UCB1
	RolloutDepthCap     int           // MCTS: plies per rollout before evaluating
	Weights             game.Weights
	Workers             int    // MCTS: root-parallel trees
	Seed                uint64 // MCTS: 0 picks a time based seed

	evaluate  game.Evaluate
	rng       *rand.Rand
	treeReuse bool
	metrics   metrics.Collector
}

type Option func(c *Config)

// WithConfig copies the exported fields of cfg, including invalid values
// that Validate will later reject.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		c.DepthLimit = cfg.DepthLimit
		c.TimeLimit = cfg.TimeLimit
		c.Iterations = cfg.Iterations
		c.ExplorationConstant = cfg.ExplorationConstant
		c.RolloutDepthCap = cfg.RolloutDepthCap
		c.Weights = cfg.Weights
		c.Workers = cfg.Workers
		c.Seed = cfg.Seed
	}
}

func WithDepth(depth int) Option {
	return func(c *Config) {
		if depth > 0 {
			c.DepthLimit = depth
		}
	}
}

func WithTimeLimit(limit time.Duration) Option {
	return func(c *Config) {
		if limit > 0 {
			c.TimeLimit = limit
		}
	}
}

func WithIterations(iterations int) Option {
	return func(c *Config) {
		if iterations > 0 {
			c.Iterations = iterations
		}
	}
}

func WithExploration(constant float64) Option {
	return func(c *Config) {
		if constant > 0 {
			c.ExplorationConstant = constant
		}
	}
}

func WithRolloutCap(plies int) Option {
	return func(c *Config) {
		if plies > 0 {
			c.RolloutDepthCap = plies
		}
	}
}

func WithWeights(weights game.Weights) Option {
	return func(c *Config) {
		c.Weights = weights
	}
}

// WithEvaluationFn replaces the weighted evaluator.
func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(c *Config) {
		if evaluate != nil {
			c.evaluate = evaluate
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

// WithRand makes the engine draw from r instead of a freshly seeded source.
func WithRand(r *rand.Rand) Option {
	return func(c *Config) {
		if r != nil {
			c.rng = r
		}
	}
}

func WithWorkers(workers int) Option {
	return func(c *Config) {
		if workers > 0 {
			c.Workers = workers
		}
	}
}

// WithTreeReuse keeps the MCTS tree between decisions. It has no effect
// with more than one worker.
func WithTreeReuse() Option {
	return func(c *Config) {
		c.treeReuse = true
	}
}

func WithMetrics() Option {
	return func(c *Config) {
		c.metrics = metrics.NewCollector()
	}
}

func NewConfig(options ...Option) Config {
	c := Config{}
	for _, option := range options {
		option(&c)
	}

	// A time limit alone bounds the search, otherwise fall back to fixed budgets
	if c.DepthLimit == 0 {
		c.DepthLimit = DefaultDepth
		if c.TimeLimit > 0 {
			c.DepthLimit = MaxDepth
		}
	}
	if c.Iterations == 0 && c.TimeLimit <= 0 {
		c.Iterations = DefaultIterations
	}
	if c.ExplorationConstant == 0 {
		c.ExplorationConstant = DefaultExploration
	}
	if c.RolloutDepthCap == 0 {
		c.RolloutDepthCap = DefaultRolloutCap
	}
	if c.Weights == (game.Weights{}) {
		c.Weights = game.DefaultWeights
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.evaluate == nil {
		c.evaluate = c.Weights.Evaluate
	}
	if c.rng == nil {
		if c.Seed == 0 {
			c.Seed = uint64(time.Now().UnixNano())
		}
		c.rng = rand.New(rand.NewSource(c.Seed))
	}
	if c.metrics == nil {
		c.metrics = metrics.NewDummyCollector()
	}
	return c
}

// Validate reports negative budgets and parameters.
func (c Config) Validate() error {
	switch {
	case c.DepthLimit < 0:
		return fmt.Errorf("%w: depth limit %d", ErrConfiguration, c.DepthLimit)
	case c.TimeLimit < 0:
		return fmt.Errorf("%w: time limit %s", ErrConfiguration, c.TimeLimit)
	case c.Iterations < 0:
		return fmt.Errorf("%w: iterations %d", ErrConfiguration, c.Iterations)
	case c.ExplorationConstant < 0:
		return fmt.Errorf("%w: exploration constant %g", ErrConfiguration, c.ExplorationConstant)
	case c.RolloutDepthCap < 0:
		return fmt.Errorf("%w: rollout depth cap %d", ErrConfiguration, c.RolloutDepthCap)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrConfiguration, c.Workers)
	}
	return nil
}

// deadline is the instant the time limit expires, if there is one.
func (c Config) deadline(start time.Time) (time.Time, bool) {
	if c.TimeLimit <= 0 {
		return time.Time{}, false
	}
	return start.Add(c.TimeLimit), true
}
