package searcher

import (
	"connect4/experiments/metrics"
	"connect4/game"
	"fmt"
)

type Option func(s *settings)

type settings struct {
	metrics metrics.Collector
}

func WithMetrics() Option {
	return func(s *settings) {
		s.metrics = metrics.NewCollector()
	}
}

func WithCollector(collector metrics.Collector) Option {
	return func(s *settings) {
		if collector != nil {
			s.metrics = collector
		}
	}
}

// BruteForce exhaustively searches the game it is bound to, up to maxDepth
// plies including the evaluated move. It mutates the game during a search and
// always restores it before returning; it is not safe for concurrent use.
type BruteForce[M comparable, P comparable] struct {
	game     game.Game[M, P]
	maxDepth int
	metrics  metrics.Collector
}

func NewBruteForce[M comparable, P comparable](g game.Game[M, P], maxDepth int, options ...Option) *BruteForce[M, P] {
	s := settings{ // Default values
		metrics: metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(&s)
	}
	b := &BruteForce[M, P]{
		game:    g,
		metrics: s.metrics,
	}
	b.SetMaxDepth(maxDepth)
	return b
}

func (b *BruteForce[M, P]) SetMaxDepth(maxDepth int) {
	if maxDepth < 0 {
		panic(fmt.Sprintf("negative search depth %d", maxDepth))
	}
	b.maxDepth = maxDepth
}

func (b *BruteForce[M, P]) MaxDepth() int {
	return b.maxDepth
}

// Evaluate scores move for the player to move.
func (b *BruteForce[M, P]) Evaluate(move M) (float64, error) {
	return b.EvaluateAs(move, b.game.CurrentPlayer())
}

// EvaluateAs scores move from player's point of view, whoever is to move. The
// only error is an illegal move reached from the current position.
func (b *BruteForce[M, P]) EvaluateAs(move M, player P) (float64, error) {
	b.metrics.Start(b.maxDepth)
	w := newWalker(b.game, player, b.horizon, b.metrics)
	return w.score(move, b.maxDepth)
}

// Metrics returns the metrics of the last evaluation; empty unless created
// with WithMetrics or WithCollector.
func (b *BruteForce[M, P]) Metrics() metrics.SearchMetric {
	return b.metrics.Complete()
}

func (b *BruteForce[M, P]) horizon(_ []M, _ M) (float64, error) {
	b.metrics.AddHorizon()
	return Horizon, nil
}
