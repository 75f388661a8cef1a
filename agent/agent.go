// Package agent turns a configuration into the process it describes.
package agent

import (
	"connect4/cluster"
	"connect4/config"
	"connect4/game"
	"connect4/game/connectfour"
	"context"
	"fmt"

	"github.com/samber/lo"
)

type Agent interface {
	// Run blocks until the agent's work is done or ctx is cancelled
	Run(ctx context.Context) error
}

// New returns the agent of cfg.Role.
func New(cfg *config.Config) (Agent, error) {
	switch cfg.Role {
	case config.RoleServer:
		return &serverAgent{cfg: cfg}, nil
	case config.RoleCoordinator:
		return &coordinatorAgent{cfg: cfg}, nil
	case config.RoleWorker:
		return &workerAgent{cfg: cfg}, nil
	case config.RoleEval:
		return &evalAgent{cfg: cfg}, nil
	case config.RoleSelfPlay:
		return &selfPlayAgent{cfg: cfg}, nil
	case config.RoleBench:
		return &benchAgent{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", cfg.Role)
	}
}

func newGame(cfg *config.Config) (*game.Match[int, string], error) {
	g := connectfour.New(
		connectfour.WithSize(cfg.Rows, cfg.Cols),
		connectfour.WithPlayers(cfg.Players[0], cfg.Players[1]),
	)
	for i, move := range cfg.Moves {
		if err := g.Apply(move); err != nil {
			return nil, fmt.Errorf("move %d of position: %w", i+1, err)
		}
	}
	return g, nil
}

// workerIDs lists the endpoints of the worker pool.
func workerIDs(cfg *config.Config) []string {
	if len(cfg.WorkerIDs) > 0 {
		return lo.Uniq(cfg.WorkerIDs)
	}
	return cluster.WorkerIDs(cfg.Workers)
}
