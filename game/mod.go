package game

import (
	"errors"
	"fmt"
)

// Game is a two-player deterministic perfect-information game that is searched
// in place: moves are applied to and undone on a single instance, never copied
// per node.
type Game[M comparable, P comparable] interface {
	Players() [2]P
	// CurrentPlayer is the side to move. It alternates with every applied move,
	// starting with the first player.
	CurrentPlayer() P
	PreviousPlayer() P

	LegalMoves() []M
	// AppendLegalMoves appends the legal moves to dst so search code can reuse
	// one buffer per ply.
	AppendLegalMoves(dst []M) []M

	// Apply plays move for the current player. The state is left untouched when
	// an *IllegalMoveError is returned.
	Apply(move M) error
	// Undo reverts the most recent move. It returns false when there is nothing
	// to undo.
	Undo() bool
	// IsOver reports whether the last move ended the game.
	IsOver() bool

	LastMove() (M, bool)
	History() []M
	Reset()

	WelcomeMessage() string
	String() string
}

// Codec turns a game into a self-contained snapshot and back. Snapshots are what
// crosses process boundaries; the decoded game is an independent copy.
type Codec[M comparable, P comparable] interface {
	Encode(g Game[M, P]) ([]byte, error)
	Decode(data []byte) (Game[M, P], error)
}

var ErrIllegalMove = errors.New("illegal move")

type IllegalMoveError struct {
	Move   any
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %v: %s", e.Move, e.Reason)
}

func (e *IllegalMoveError) Unwrap() error {
	return ErrIllegalMove
}
