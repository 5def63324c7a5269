package metrics

import (
	"sync/atomic"
	"time"
)

// SearchMetric holds the diagnostics of a single move decision.
type SearchMetric struct {
	Engine       string
	Workers      int
	Duration     time.Duration
	Depth        int     // Deepest completed minimax depth
	Nodes        int     // Minimax nodes searched or MCTS tree size
	Episodes     int     // MCTS iterations
	FullPlayouts int     // MCTS rollouts that reached a terminal state
	Visits       int     // MCTS visits of the chosen move
	Score        float64 // Value of the chosen move for the side to move
	IsTreeReused bool
	Fallback     bool // No search completed, first legal move played
}

type MoveMetric struct {
	Step   int
	Player string
	Move   string
	SearchMetric
}

type GameMetric struct {
	Red        string // Agent name
	Black      string // Agent name
	Outcome    string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalMoves int
}

type Collector interface {
	Start(engine string, workers int)
	SetTreeReused(value bool)
	AddFullPlayout()
	AddEpisode()
	AddNodes(n int)
	Complete() SearchMetric
}

type collector struct {
	engine       string
	workers      int
	startTime    time.Time
	episodes     atomic.Int64
	fullPlayouts atomic.Int64
	nodes        atomic.Int64
	isTreeReused atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(engine string, workers int) {
	m.startTime = time.Now()
	m.engine = engine
	m.workers = workers
	m.episodes.Store(0)
	m.fullPlayouts.Store(0)
	m.nodes.Store(0)
	m.isTreeReused.Store(false)
}

func (m *collector) SetTreeReused(value bool) {
	m.isTreeReused.Store(value)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddNodes(n int) {
	m.nodes.Add(int64(n))
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Engine:       m.engine,
		Workers:      m.workers,
		Duration:     time.Since(m.startTime),
		Episodes:     int(m.episodes.Load()),
		FullPlayouts: int(m.fullPlayouts.Load()),
		Nodes:        int(m.nodes.Load()),
		IsTreeReused: m.isTreeReused.Load(),
	}
}

// dummyCollector only keeps the engine name and timing so that decisions
// still report what produced them.
type dummyCollector struct {
	engine    string
	startTime time.Time
}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(engine string, workers int) {
	m.engine = engine
	m.startTime = time.Now()
}
func (m *dummyCollector) SetTreeReused(value bool) {}
func (m *dummyCollector) AddFullPlayout()          {}
func (m *dummyCollector) AddEpisode()              {}
func (m *dummyCollector) AddNodes(n int)           {}
func (m *dummyCollector) Complete() SearchMetric {
	return SearchMetric{Engine: m.engine, Duration: time.Since(m.startTime)}
}
