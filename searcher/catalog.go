package searcher

import (
	"connect4/experiments/metrics"
	"connect4/game"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// TaskKey identifies a Task. Keys of tasks with equal paths (same order) and
// equal targets are equal; any other pair differs.
type TaskKey string

// Task is a frontier sub-tree: the moves leading from the session root to the
// sub-tree root, and the move to evaluate there.
type Task[M comparable] struct {
	Path   []M `json:"path"`
	Target M   `json:"target"`
}

func (t Task[M]) Key() TaskKey {
	path := lo.Map(t.Path, func(m M, _ int) string {
		return fmt.Sprintf("%#v", m)
	})
	return TaskKey(strings.Join(path, ",") + ">" + fmt.Sprintf("%#v", t.Target))
}

func (t Task[M]) Equal(other Task[M]) bool {
	return t.Target == other.Target && slices.Equal(t.Path, other.Path)
}

func (t Task[M]) String() string {
	return fmt.Sprintf("%v -> %v", t.Path, t.Target)
}

// Enumerate lists the frontier of move's sub-tree depth plies down. Branches
// that end the game above the frontier produce no task, matching the
// evaluator's own cut at terminal positions. The game is restored on return.
func Enumerate[M comparable, P comparable](g game.Game[M, P], move M, depth int) ([]Task[M], error) {
	c := &catalog[M, P]{game: g}
	if err := c.populate(move, depth); err != nil {
		return nil, err
	}
	return c.tasks, nil
}

type catalog[M comparable, P comparable] struct {
	game  game.Game[M, P]
	path  []M
	tasks []Task[M]
}

func (c *catalog[M, P]) populate(move M, depth int) error {
	if depth == 0 {
		c.tasks = append(c.tasks, Task[M]{Path: slices.Clone(c.path), Target: move})
		return nil
	}
	if err := c.game.Apply(move); err != nil {
		return err
	}
	defer c.game.Undo()
	if c.game.IsOver() {
		return nil
	}

	c.path = append(c.path, move)
	defer func() {
		c.path = c.path[:len(c.path)-1]
	}()
	for _, next := range c.game.LegalMoves() {
		if err := c.populate(next, depth-1); err != nil {
			return err
		}
	}
	return nil
}

type MissingResultError struct {
	Key TaskKey
}

func (e *MissingResultError) Error() string {
	return fmt.Sprintf("no result for frontier task %s", e.Key)
}

// Reconcile folds frontier results back into a score for move, searching depth
// plies locally as player and reading results where the search reaches the
// frontier. With results computed by EvaluateAs at the remaining depth it
// returns exactly what a single full-depth EvaluateAs would.
func Reconcile[M comparable, P comparable](g game.Game[M, P], move M, player P, depth int, results map[TaskKey]float64) (float64, error) {
	lookup := func(path []M, target M) (float64, error) {
		key := Task[M]{Path: path, Target: target}.Key()
		eval, ok := results[key]
		if !ok {
			return 0, &MissingResultError{Key: key}
		}
		return eval, nil
	}
	w := newWalker(g, player, lookup, metrics.NewDummyCollector())
	return w.score(move, depth)
}
