package engine

import (
	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/meta"
	"connect4/searcher"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

var ErrNoMoves = errors.New("no legal moves")

type Local[M comparable, P comparable] struct {
	game     game.Game[M, P]
	players  [2]Player[M, P]
	maxTurns int
}

// LocalEngine plays g to the end, first moving for g.Players()[0].
func LocalEngine[M comparable, P comparable](g game.Game[M, P], first, second Player[M, P]) *Local[M, P] {
	if first == nil || second == nil {
		panic("need two players")
	}
	return &Local[M, P]{
		game:     g,
		players:  [2]Player[M, P]{first, second},
		maxTurns: meta.MAX_TURNS,
	}
}

func (e *Local[M, P]) Run(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error) {
	seats := e.game.Players()
	gameMetric := metrics.GameMetric{StartTime: time.Now()}
	var moveMetrics []metrics.MoveMetric

	log.Info().Msg(e.game.WelcomeMessage())
	for turn := 1; !e.game.IsOver() && turn <= e.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return gameMetric, moveMetrics, err
		}
		if len(e.game.LegalMoves()) == 0 {
			break
		}

		current := e.game.CurrentPlayer()
		player := e.players[0]
		if current == seats[1] {
			player = e.players[1]
		}

		start := time.Now()
		move, score, err := player.ChooseMove(ctx, e.game)
		if err != nil {
			return gameMetric, moveMetrics, fmt.Errorf("%s failed to choose a move: %w", player.Name(), err)
		}
		if err := e.game.Apply(move); err != nil {
			return gameMetric, moveMetrics, fmt.Errorf("%s chose an illegal move: %w", player.Name(), err)
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:     turn,
			Player:   player.Name(),
			Move:     fmt.Sprint(move),
			Score:    score,
			Duration: time.Since(start),
		})
		gameMetric.Turns = turn
		log.Debug().Msgf("turn %d: %s plays %v (%.4f)\n%s", turn, player.Name(), move, score, e.game)
	}

	if e.game.IsOver() {
		gameMetric.Winner = fmt.Sprint(e.game.PreviousPlayer())
		log.Info().Msgf("%s wins after %d turns", gameMetric.Winner, gameMetric.Turns)
	} else {
		log.Info().Msgf("no winner after %d turns", gameMetric.Turns)
	}
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	return gameMetric, moveMetrics, nil
}

// CPU plays the legal move with the highest evaluation, preferring the earliest
// one on ties.
type CPU[M comparable, P comparable] struct {
	name      string
	evaluator func(g game.Game[M, P]) searcher.Evaluator[M]
}

// NewCPU searches every candidate locally to depth plies.
func NewCPU[M comparable, P comparable](name string, depth int) *CPU[M, P] {
	return &CPU[M, P]{
		name: name,
		evaluator: func(g game.Game[M, P]) searcher.Evaluator[M] {
			return searcher.NewBruteForce(g, depth)
		},
	}
}

func (c *CPU[M, P]) Name() string {
	return c.name
}

type contextEvaluator[M comparable] interface {
	EvaluateContext(ctx context.Context, move M) (float64, error)
}

func (c *CPU[M, P]) ChooseMove(ctx context.Context, g game.Game[M, P]) (M, float64, error) {
	var best M
	moves := g.LegalMoves()
	if len(moves) == 0 {
		return best, 0, ErrNoMoves
	}

	ev := c.evaluator(g)
	best, bestScore := moves[0], float64(searcher.Loss)
	for _, move := range moves {
		var (
			score float64
			err   error
		)
		if cev, ok := ev.(contextEvaluator[M]); ok {
			score, err = cev.EvaluateContext(ctx, move)
		} else {
			score, err = ev.Evaluate(move)
		}
		if err != nil {
			return best, 0, err
		}
		log.Debug().Msgf("%s: %v scores %.4f", c.name, move, score)
		if score > bestScore {
			best, bestScore = move, score
		}
	}
	return best, bestScore, nil
}

// Random plays a uniformly random legal move.
type Random[M comparable, P comparable] struct {
	name string
	rng  *rand.Rand
}

func NewRandom[M comparable, P comparable](name string, seed uint64) *Random[M, P] {
	return &Random[M, P]{
		name: name,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (r *Random[M, P]) Name() string {
	return r.name
}

func (r *Random[M, P]) ChooseMove(_ context.Context, g game.Game[M, P]) (M, float64, error) {
	var move M
	moves := g.LegalMoves()
	if len(moves) == 0 {
		return move, 0, ErrNoMoves
	}
	return moves[r.rng.Intn(len(moves))], 0, nil
}
