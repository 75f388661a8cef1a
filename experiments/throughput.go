package experiments

import (
	"connect4/experiments/metrics"
	"connect4/searcher"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Throughput measures the sequential search of every legal move of every
// position at each depth.
func Throughput(depths []int, positions [][]int, dir string) ([]metrics.SearchRecord, error) {
	var records []metrics.SearchRecord
	log.Info().Msg("starting throughput experiment...")

	for _, depth := range depths {
		for _, moves := range positions {
			g, err := position(moves)
			if err != nil {
				return records, err
			}
			bf := searcher.NewBruteForce(g, depth, searcher.WithMetrics())
			for _, move := range g.LegalMoves() {
				score, err := bf.Evaluate(move)
				if err != nil {
					return records, err
				}
				m := bf.Metrics()
				records = append(records, metrics.SearchRecord{
					ID:           len(records) + 1,
					Position:     fmt.Sprint(moves),
					Move:         fmt.Sprint(move),
					Score:        score,
					SearchMetric: m,
				})
			}
		}
		log.Info().Msgf("completed depth %d", depth)
	}

	log.Info().Msg("completed throughput experiment")
	if dir == "" {
		return records, nil
	}
	writer, err := metrics.NewWriter(dir, "throughput")
	if err != nil {
		return records, err
	}
	return records, writer.WriteSearchRecords(records)
}
