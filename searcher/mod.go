package searcher

// Scores are from the evaluating player's point of view.
const (
	Win     = 1.0
	Loss    = -1.0
	Horizon = 0.0 // Depth exhausted, outcome unresolved
	Draw    = 0.0 // No legal move left and nobody won
)

// Evaluator scores a candidate move for the side to move in the game the
// evaluator is bound to.
type Evaluator[M comparable] interface {
	Evaluate(move M) (float64, error)
}
