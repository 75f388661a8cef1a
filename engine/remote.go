package engine

import (
	"connect4/communication/client"
	"connect4/game"
	"connect4/searcher"
)

// NewRemoteCPU is a CPU whose searches run on an evaluation server.
func NewRemoteCPU[M comparable, P comparable](name string, c *client.Client[M, P], depth int) *CPU[M, P] {
	return &CPU[M, P]{
		name: name,
		evaluator: func(g game.Game[M, P]) searcher.Evaluator[M] {
			return client.NewRemoteEvaluator(c, g, depth)
		},
	}
}
