package client

import (
	"connect4/game"
	"context"
)

// RemoteEvaluator scores moves of one game on a remote server at a fixed
// depth. Since the game is sent as a snapshot the server never touches it.
type RemoteEvaluator[M comparable, P comparable] struct {
	client   *Client[M, P]
	game     game.Game[M, P]
	maxDepth int
}

func NewRemoteEvaluator[M comparable, P comparable](c *Client[M, P], g game.Game[M, P], maxDepth int) *RemoteEvaluator[M, P] {
	return &RemoteEvaluator[M, P]{
		client:   c,
		game:     g,
		maxDepth: maxDepth,
	}
}

func (e *RemoteEvaluator[M, P]) Evaluate(move M) (float64, error) {
	return e.EvaluateContext(context.Background(), move)
}

func (e *RemoteEvaluator[M, P]) EvaluateContext(ctx context.Context, move M) (float64, error) {
	return e.client.Evaluate(ctx, e.game, move, e.maxDepth)
}

func (e *RemoteEvaluator[M, P]) MaxDepth() int {
	return e.maxDepth
}
