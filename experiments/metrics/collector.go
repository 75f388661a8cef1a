package metrics

import (
	"sync/atomic"
	"time"
)

// SearchMetric summarizes one sequential evaluation.
type SearchMetric struct {
	Depth    int
	Duration time.Duration
	Nodes    int64 // Positions reached by applying a move
	Cutoffs  int64 // Siblings skipped because an outcome was forced
	Horizons int64 // Leaves scored at the depth limit
	Terminal int64 // Leaves where the game was over
}

// SessionMetric summarizes one distributed evaluation session.
type SessionMetric struct {
	Session        uint64
	Workers        int
	Depth          int
	SplitDepth     int
	Tasks          int
	Duration       time.Duration
	TasksPerWorker map[string]int
}

// MoveMetric describes one move of a self-play game.
type MoveMetric struct {
	Step     int
	Player   string
	Move     string
	Score    float64 // Evaluation of the chosen move; 0 for players that do not search
	Duration time.Duration
}

type GameMetric struct {
	Winner    string // Empty for a draw
	Turns     int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

type Collector interface {
	Start(depth int)
	AddNode()
	AddCutoff()
	AddHorizon()
	AddTerminal()
	Complete() SearchMetric
}

type collector struct {
	depth     int
	startTime time.Time
	nodes     atomic.Int64
	cutoffs   atomic.Int64
	horizons  atomic.Int64
	terminal  atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(depth int) {
	m.startTime = time.Now()
	m.depth = depth
	m.nodes.Store(0)
	m.cutoffs.Store(0)
	m.horizons.Store(0)
	m.terminal.Store(0)
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) AddCutoff() {
	m.cutoffs.Add(1)
}

func (m *collector) AddHorizon() {
	m.horizons.Add(1)
}

func (m *collector) AddTerminal() {
	m.terminal.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Depth:    m.depth,
		Duration: time.Since(m.startTime),
		Nodes:    m.nodes.Load(),
		Cutoffs:  m.cutoffs.Load(),
		Horizons: m.horizons.Load(),
		Terminal: m.terminal.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(depth int)        {}
func (m *dummyCollector) AddNode()               {}
func (m *dummyCollector) AddCutoff()             {}
func (m *dummyCollector) AddHorizon()            {}
func (m *dummyCollector) AddTerminal()           {}
func (m *dummyCollector) Complete() SearchMetric { return SearchMetric{} }
