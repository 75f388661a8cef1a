package engine

import (
	"connect4/experiments/metrics"
	"connect4/game"
	"context"
)

type Engine interface {
	// Run plays a game till there's a winner, no legal move is left or the turn
	// limit is reached
	Run(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error)
}

// Player picks moves for one side. ChooseMove may search g but must leave it
// as it found it.
type Player[M comparable, P comparable] interface {
	Name() string
	ChooseMove(ctx context.Context, g game.Game[M, P]) (move M, score float64, err error)
}
