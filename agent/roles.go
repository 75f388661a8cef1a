package agent

import (
	"connect4/cluster"
	"connect4/communication/client"
	"connect4/communication/natsbus"
	"connect4/communication/server"
	"connect4/config"
	"connect4/engine"
	"connect4/experiments"
	"connect4/experiments/metrics"
	"connect4/game/connectfour"
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// serverAgent answers remote evaluation jobs with local sequential searches.
type serverAgent struct {
	cfg *config.Config
}

func (a *serverAgent) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Listen)
	if err != nil {
		return err
	}
	return server.New[int, string](connectfour.Codec{}).Serve(ctx, ln)
}

// coordinatorAgent answers remote evaluation jobs by running a session on the
// worker pool for each of them.
type coordinatorAgent struct {
	cfg *config.Config
}

func (a *coordinatorAgent) Run(ctx context.Context) error {
	nc, err := connectNats(ctx, a.cfg.NatsURL)
	if err != nil {
		return err
	}
	defer nc.Close()
	bus, err := natsbus.New(nc, a.cfg.Subject, a.cfg.CoordinatorID)
	if err != nil {
		return err
	}
	defer bus.Close()

	ids := workerIDs(a.cfg)
	coordinator := cluster.NewCoordinator[int, string](bus, connectfour.Codec{}, ids,
		cluster.WithSplitDepth(a.cfg.SplitDepth))
	log.Info().Strs("workers", ids).Int("split-depth", a.cfg.SplitDepth).Msg("coordinator ready")

	ln, err := net.Listen("tcp", a.cfg.Listen)
	if err != nil {
		return err
	}
	return server.New[int, string](connectfour.Codec{},
		server.WithEvaluateFunc[int, string](coordinator.Evaluate)).Serve(ctx, ln)
}

// workerAgent runs one cluster worker per configured worker id.
type workerAgent struct {
	cfg *config.Config
}

func (a *workerAgent) Run(ctx context.Context) error {
	nc, err := connectNats(ctx, a.cfg.NatsURL)
	if err != nil {
		return err
	}
	defer nc.Close()

	ids := workerIDs(a.cfg)
	buses := make([]*natsbus.Bus, 0, len(ids))
	defer func() {
		for _, bus := range buses {
			bus.Close()
		}
	}()
	for _, id := range ids {
		bus, err := natsbus.New(nc, a.cfg.Subject, id)
		if err != nil {
			return err
		}
		buses = append(buses, bus)
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, bus := range buses {
		w := cluster.NewWorker[int, string](bus, connectfour.Codec{}, a.cfg.CoordinatorID)
		g.Go(func() error {
			log.Info().Str("worker", ids[i]).Msg("worker ready")
			return w.Run(ctx)
		})
	}
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// evalAgent scores every legal move of the configured position on a remote
// evaluation server.
type evalAgent struct {
	cfg *config.Config
}

func (a *evalAgent) Run(ctx context.Context) error {
	g, err := newGame(a.cfg)
	if err != nil {
		return err
	}
	c, err := dialServer(ctx, a.cfg.Remote)
	if err != nil {
		return err
	}
	defer c.Close()

	log.Info().Msgf("Evaluating for %s at depth %d:\n%s", g.CurrentPlayer(), a.cfg.Depth, g)
	evaluator := client.NewRemoteEvaluator(c, g, a.cfg.Depth)
	for _, move := range g.LegalMoves() {
		score, err := evaluator.EvaluateContext(ctx, move)
		if err != nil {
			return err
		}
		log.Info().Int("move", move).Float64("score", score).Msg("evaluated")
	}
	return nil
}

// selfPlayAgent plays a CPU against a random player and records the game.
type selfPlayAgent struct {
	cfg *config.Config
}

func (a *selfPlayAgent) Run(ctx context.Context) error {
	g, err := newGame(a.cfg)
	if err != nil {
		return err
	}
	first := engine.NewCPU[int, string](a.cfg.Players[0], a.cfg.Depth)
	second := engine.NewRandom[int, string](a.cfg.Players[1], a.cfg.Seed)

	gameMetric, moveMetrics, err := engine.LocalEngine[int, string](g, first, second).Run(ctx)
	if err != nil {
		return err
	}
	log.Info().Msgf("Final position:\n%s", g)

	writer, err := metrics.NewWriter(a.cfg.OutDir, "selfplay")
	if err != nil {
		return err
	}
	err = writer.WriteGameRecords([]metrics.GameRecord{{
		ID:         1,
		First:      first.Name(),
		Second:     second.Name(),
		GameMetric: gameMetric,
	}})
	if err != nil {
		return err
	}
	moveRecords := make([]metrics.MoveRecord, 0, len(moveMetrics))
	for _, m := range moveMetrics {
		moveRecords = append(moveRecords, metrics.MoveRecord{Game: 1, MoveMetric: m})
	}
	return writer.WriteMoveRecords(moveRecords)
}

// benchAgent compares sequential and in-process distributed evaluation.
type benchAgent struct {
	cfg *config.Config
}

func (a *benchAgent) Run(ctx context.Context) error {
	positions := experiments.Positions
	if len(a.cfg.Moves) > 0 {
		positions = [][]int{a.cfg.Moves}
	}
	workers := []int{1, 2, 4, 8}
	if a.cfg.Workers > 1 {
		workers = []int{a.cfg.Workers}
	}

	records, err := experiments.Speedup(ctx, experiments.Settings{
		Depth:      a.cfg.Depth,
		SplitDepth: a.cfg.SplitDepth,
		Workers:    workers,
		Positions:  positions,
		Dir:        a.cfg.OutDir,
	})
	if err != nil {
		return err
	}
	for _, r := range records {
		log.Info().Msgf("%s move %s, %d workers: %.2fx", r.Position, r.Move, r.Workers, r.Speedup())
	}

	_, err = experiments.Throughput([]int{a.cfg.SplitDepth, a.cfg.Depth}, positions, a.cfg.OutDir)
	if err != nil {
		return fmt.Errorf("throughput: %w", err)
	}
	return nil
}
