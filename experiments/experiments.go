package experiments

import (
	"connect4/cluster"
	"connect4/communication/inproc"
	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/game/connectfour"
	"connect4/meta"
	"connect4/searcher"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Positions are move sequences from the empty board.
var Positions = [][]int{
	{},
	{3, 3},
	{3, 3, 2, 4},
	{3, 2, 4, 4, 2, 3, 5},
}

type Settings struct {
	Depth      int
	SplitDepth int
	Workers    []int
	Positions  [][]int
	Dir        string // Output root, "" skips writing
}

func position(moves []int) (*game.Match[int, string], error) {
	g := connectfour.New()
	for _, move := range moves {
		if err := g.Apply(move); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Speedup evaluates every legal move of every position sequentially and then
// on in-process clusters of each worker count. A distributed score that
// differs from the sequential one fails the experiment.
func Speedup(ctx context.Context, s Settings) ([]metrics.SessionRecord, error) {
	var records []metrics.SessionRecord
	log.Info().Msgf("starting speedup experiment at depth %d, split %d...", s.Depth, s.SplitDepth)

	for _, workers := range s.Workers {
		log.Info().Msgf("starting cluster with %d workers...", workers)
		err := withCluster(ctx, workers, s.SplitDepth, func(c *cluster.Coordinator[int, string]) error {
			for _, moves := range s.Positions {
				g, err := position(moves)
				if err != nil {
					return err
				}
				for _, move := range g.LegalMoves() {
					start := time.Now()
					sequential, err := searcher.NewBruteForce(g, s.Depth).Evaluate(move)
					if err != nil {
						return err
					}
					sequentialTime := time.Since(start)

					result, err := c.Session(ctx, g, move, s.Depth)
					if err != nil {
						return err
					}
					if result.Score != sequential {
						return fmt.Errorf("position %v move %d: distributed score %v differs from sequential %v",
							moves, move, result.Score, sequential)
					}
					records = append(records, metrics.SessionRecord{
						ID:               len(records) + 1,
						Position:         fmt.Sprint(moves),
						Move:             fmt.Sprint(move),
						Score:            result.Score,
						SequentialTime:   sequentialTime,
						SequentialResult: sequential,
						SessionMetric:    result.Metric,
					})
				}
			}
			return nil
		})
		if err != nil {
			return records, err
		}
		log.Info().Msgf("completed cluster with %d workers", workers)
	}

	log.Info().Msg("completed speedup experiment")
	if s.Dir == "" {
		return records, nil
	}
	writer, err := metrics.NewWriter(s.Dir, "speedup")
	if err != nil {
		return records, err
	}
	return records, writer.WriteSessionRecords(records)
}

// withCluster runs f against a coordinator backed by n in-process workers.
func withCluster(ctx context.Context, n, splitDepth int, f func(c *cluster.Coordinator[int, string]) error) error {
	hub := inproc.NewHub()
	ep, err := hub.Endpoint(meta.COORDINATOR_ID)
	if err != nil {
		return err
	}
	defer ep.Close()

	ids := cluster.WorkerIDs(n)
	workerCtx, cancel := context.WithCancel(ctx)
	g, workerCtx := errgroup.WithContext(workerCtx)
	for _, id := range ids {
		wep, err := hub.Endpoint(id)
		if err != nil {
			cancel()
			g.Wait()
			return err
		}
		w := cluster.NewWorker[int, string](wep, connectfour.Codec{}, meta.COORDINATOR_ID)
		g.Go(func() error {
			defer wep.Close()
			return w.Run(workerCtx)
		})
	}

	c := cluster.NewCoordinator[int, string](ep, connectfour.Codec{}, ids, cluster.WithSplitDepth(splitDepth))
	err = f(c)
	cancel()
	g.Wait()
	return err
}
