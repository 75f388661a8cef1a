package searcher

import (
	"connect4/game"
	"connect4/game/connectfour"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

/*
- task identity: same path and target -> same key, anything else -> different key
- frontier: one task per surviving node at the split depth, terminal branches pruned
- reconciliation over worker results == sequential evaluation, exactly
- missing result -> MissingResultError
*/

func TestTaskKey(t *testing.T) {
	a := Task[int]{Path: []int{1, 2}, Target: 3}
	require.Equal(t, a.Key(), Task[int]{Path: []int{1, 2}, Target: 3}.Key())
	require.True(t, a.Equal(Task[int]{Path: []int{1, 2}, Target: 3}))

	others := []Task[int]{
		{Path: []int{2, 1}, Target: 3},
		{Path: []int{12}, Target: 3},
		{Path: []int{1}, Target: 23},
		{Path: []int{1, 2, 3}},
		{Path: []int{1, 2}, Target: 4},
	}
	for _, other := range others {
		require.NotEqual(t, a.Key(), other.Key(), "%s and %s should differ", a, other)
		require.False(t, a.Equal(other))
	}
	require.Equal(t, Task[int]{Target: 3}.Key(), Task[int]{Path: []int{}, Target: 3}.Key())
}

func TestEnumerate(t *testing.T) {
	t.Run("frontier size", func(t *testing.T) {
		g := connectfour.New()
		for depth, want := range []int{1, 7, 49, 343} {
			tasks, err := Enumerate[int, string](g, 3, depth)
			require.NoError(t, err)
			require.Len(t, tasks, want, "depth %d", depth)
			for _, task := range tasks {
				require.Len(t, task.Path, depth)
				if depth > 0 {
					require.Equal(t, 3, task.Path[0])
				}
			}
		}
		require.Empty(t, g.History(), "Enumerate should restore the game")
	})

	t.Run("winning move", func(t *testing.T) {
		g := play(t, connectfour.New(), 0, 0, 1, 1, 2, 2)
		tasks, err := Enumerate[int, string](g, 3, 2)
		require.NoError(t, err)
		require.Empty(t, tasks, "A won game has no frontier")
	})

	t.Run("terminal branches are pruned", func(t *testing.T) {
		// After Yellow plays 6, Red can win with 4; nothing is searched below it.
		g := play(t, connectfour.New(), 0, 1, 6, 2, 6, 3)
		tasks, err := Enumerate[int, string](g, 6, 2)
		require.NoError(t, err)
		for _, task := range tasks {
			require.NotEqual(t, []int{6, 4}, task.Path)
		}
		require.Len(t, tasks, 6*7)
	})

	t.Run("distinct keys", func(t *testing.T) {
		tasks, err := Enumerate[int, string](connectfour.New(), 0, 3)
		require.NoError(t, err)
		keys := map[TaskKey]bool{}
		for _, task := range tasks {
			keys[task.Key()] = true
		}
		require.Len(t, keys, len(tasks))
	})
}

// solve evaluates every task the way a worker does.
func solve(t *testing.T, g game.Game[int, string], tasks []Task[int], player string, depth int) map[TaskKey]float64 {
	t.Helper()
	bf := NewBruteForce(g, depth)
	results := make(map[TaskKey]float64, len(tasks))
	for _, task := range tasks {
		for _, move := range task.Path {
			require.NoError(t, g.Apply(move))
		}
		score, err := bf.EvaluateAs(task.Target, player)
		require.NoError(t, err)
		for range task.Path {
			require.True(t, g.Undo())
		}
		results[task.Key()] = score
	}
	return results
}

func TestReconcileMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 12; i++ {
		g := randomPosition(rng, rng.Intn(16))
		player := g.CurrentPlayer()
		depth := 2 + rng.Intn(3)
		for split := 1; split < depth; split++ {
			for _, move := range g.LegalMoves() {
				want, err := NewBruteForce[int, string](g, depth).Evaluate(move)
				require.NoError(t, err)

				tasks, err := Enumerate[int, string](g, move, split)
				require.NoError(t, err)
				results := solve(t, g, tasks, player, depth-split)
				got, err := Reconcile[int, string](g, move, player, split, results)

				require.NoError(t, err)
				require.Equal(t, want, got, "position %v move %d depth %d split %d", g.History(), move, depth, split)
			}
		}
	}
}

func TestReconcileMissingResult(t *testing.T) {
	g := connectfour.New()
	tasks, err := Enumerate[int, string](g, 3, 1)
	require.NoError(t, err)
	results := solve(t, g, tasks, "Alice", 1)
	delete(results, tasks[4].Key())

	_, err = Reconcile[int, string](g, 3, "Alice", 1, results)

	var missing *MissingResultError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, tasks[4].Key(), missing.Key)
	require.Empty(t, g.History(), "Reconcile should restore the game after a failure")
}
