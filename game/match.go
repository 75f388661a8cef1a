package game

import (
	"fmt"
	"slices"
)

// Board is the variant-specific part of a game: the position and how a single
// move changes it. Seats are 0 for the first player and 1 for the second.
type Board[M comparable] interface {
	LegalMoves() []M
	AppendLegalMoves(dst []M) []M
	IsLegal(move M) bool
	Place(move M, seat int)
	// Remove must be the exact inverse of the Place that most recently played move.
	Remove(move M)
	// Wins reports whether the piece placed by move completes a win. Only the
	// region around that piece is examined.
	Wins(move M) bool
	Reset()
	Welcome(first, second string) string
	String() string
}

// Match implements Game on top of a Board. It owns the move history, which
// drives both undo and player alternation.
type Match[M comparable, P comparable] struct {
	board   Board[M]
	players [2]P
	history []M
}

func NewMatch[M comparable, P comparable](board Board[M], first, second P) *Match[M, P] {
	return &Match[M, P]{
		board:   board,
		players: [2]P{first, second},
	}
}

func (m *Match[M, P]) Board() Board[M] {
	return m.board
}

func (m *Match[M, P]) Players() [2]P {
	return m.players
}

func (m *Match[M, P]) CurrentPlayer() P {
	return m.players[m.seat()]
}

func (m *Match[M, P]) PreviousPlayer() P {
	return m.players[1-m.seat()]
}

func (m *Match[M, P]) seat() int {
	return len(m.history) % 2
}

func (m *Match[M, P]) LegalMoves() []M {
	return m.board.LegalMoves()
}

func (m *Match[M, P]) AppendLegalMoves(dst []M) []M {
	return m.board.AppendLegalMoves(dst)
}

func (m *Match[M, P]) Apply(move M) error {
	if m.IsOver() {
		return &IllegalMoveError{Move: move, Reason: "game is over"}
	}
	if !m.board.IsLegal(move) {
		return &IllegalMoveError{Move: move, Reason: "not a legal move in this position"}
	}
	m.board.Place(move, m.seat())
	m.history = append(m.history, move)
	return nil
}

func (m *Match[M, P]) Undo() bool {
	n := len(m.history)
	if n == 0 {
		return false
	}
	m.board.Remove(m.history[n-1])
	m.history = m.history[:n-1]
	return true
}

func (m *Match[M, P]) IsOver() bool {
	last, ok := m.LastMove()
	if !ok {
		return false
	}
	return m.board.Wins(last)
}

func (m *Match[M, P]) LastMove() (M, bool) {
	n := len(m.history)
	if n == 0 {
		var zero M
		return zero, false
	}
	return m.history[n-1], true
}

func (m *Match[M, P]) History() []M {
	return slices.Clone(m.history)
}

func (m *Match[M, P]) Reset() {
	m.board.Reset()
	m.history = m.history[:0]
}

func (m *Match[M, P]) WelcomeMessage() string {
	return m.board.Welcome(fmt.Sprint(m.players[0]), fmt.Sprint(m.players[1]))
}

func (m *Match[M, P]) String() string {
	return m.board.String()
}
