package searcher

import (
	"connect4/experiments/metrics"
	"connect4/game"
)

// leafFunc scores move at the depth limit without playing it. path holds the
// moves applied since the walk's root and is only valid during the call.
type leafFunc[M comparable] func(path []M, move M) (float64, error)

// walker is the depth-bounded recursive scorer shared by sequential evaluation
// and by reconciliation of distributed results. Both must visit the same nodes
// and fold scores with the same arithmetic, so there is only one copy of it.
type walker[M comparable, P comparable] struct {
	game    game.Game[M, P]
	player  P
	leaf    leafFunc[M]
	metrics metrics.Collector

	path  []M
	moves [][]M // Legal move buffer per ply, reused across siblings
}

func newWalker[M comparable, P comparable](g game.Game[M, P], player P, leaf leafFunc[M], collector metrics.Collector) *walker[M, P] {
	return &walker[M, P]{
		game:    g,
		player:  player,
		leaf:    leaf,
		metrics: collector,
	}
}

// score evaluates move from the current position with depth plies left. The
// game is restored to its prior state on every return path.
func (w *walker[M, P]) score(move M, depth int) (float64, error) {
	if depth == 0 {
		return w.leaf(w.path, move)
	}

	if err := w.game.Apply(move); err != nil {
		return 0, err
	}
	w.metrics.AddNode()

	// The player who just moved won.
	if w.game.IsOver() {
		w.game.Undo()
		w.metrics.AddTerminal()
		if w.game.CurrentPlayer() == w.player {
			return Win, nil
		}
		return Loss, nil
	}

	w.path = append(w.path, move)
	defer w.retract()

	moves := w.legalMoves(len(w.path))
	if len(moves) == 0 {
		return Draw, nil
	}

	toMove := w.game.CurrentPlayer() == w.player
	total := 0.0
	allWin, allLoss := true, true
	for _, next := range moves {
		eval, err := w.score(next, depth-1)
		if err != nil {
			return 0, err
		}
		if eval > Loss {
			allLoss = false
		}
		if eval != Win {
			allWin = false
		}
		// A forced outcome for whoever chooses here settles the node.
		if eval == Win && toMove {
			w.metrics.AddCutoff()
			return Win, nil
		}
		if eval == Loss && !toMove {
			w.metrics.AddCutoff()
			return Loss, nil
		}
		total += eval
	}

	if allWin {
		return Win, nil
	}
	if allLoss {
		return Loss, nil
	}
	return total / float64(len(moves)), nil
}

func (w *walker[M, P]) retract() {
	w.path = w.path[:len(w.path)-1]
	w.game.Undo()
}

func (w *walker[M, P]) legalMoves(ply int) []M {
	for len(w.moves) <= ply {
		w.moves = append(w.moves, nil)
	}
	w.moves[ply] = w.game.AppendLegalMoves(w.moves[ply][:0])
	return w.moves[ply]
}
