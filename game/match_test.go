package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// mockBoard is a row of cells; a move wins when it lands on the winning cell.
type mockBoard struct {
	cells   []int // 0 empty, otherwise seat+1
	winning int
	placed  []int
	resets  int
}

func newMockBoard(size, winning int) *mockBoard {
	return &mockBoard{cells: make([]int, size), winning: winning}
}

func (b *mockBoard) LegalMoves() []int {
	return b.AppendLegalMoves(nil)
}

func (b *mockBoard) AppendLegalMoves(dst []int) []int {
	for i, c := range b.cells {
		if c == 0 {
			dst = append(dst, i)
		}
	}
	return dst
}

func (b *mockBoard) IsLegal(move int) bool {
	return move >= 0 && move < len(b.cells) && b.cells[move] == 0
}

func (b *mockBoard) Place(move int, seat int) {
	b.cells[move] = seat + 1
	b.placed = append(b.placed, seat)
}

func (b *mockBoard) Remove(move int) {
	b.cells[move] = 0
}

func (b *mockBoard) Wins(move int) bool {
	return move == b.winning
}

func (b *mockBoard) Reset() {
	clear(b.cells)
	b.resets++
}

func (b *mockBoard) Welcome(first, second string) string {
	return first + " vs " + second
}

func (b *mockBoard) String() string {
	return "mock"
}

func TestMatchAlternatesPlayers(t *testing.T) {
	board := newMockBoard(4, -1)
	m := NewMatch[int, string](board, "p1", "p2")

	require.Equal(t, "p1", m.CurrentPlayer())
	require.Equal(t, "p2", m.PreviousPlayer())
	require.NoError(t, m.Apply(2))
	require.Equal(t, "p2", m.CurrentPlayer())
	require.Equal(t, "p1", m.PreviousPlayer())
	require.NoError(t, m.Apply(0))
	require.Equal(t, "p1", m.CurrentPlayer())
	require.Equal(t, []int{0, 1}, board.placed, "Board should receive the seat of the mover")
	require.Equal(t, []int{1, 3}, m.LegalMoves())
	require.Equal(t, "p1 vs p2", m.WelcomeMessage())
}

func TestMatchApplyRejectsIllegalMoves(t *testing.T) {
	board := newMockBoard(3, 1)
	m := NewMatch[int, string](board, "p1", "p2")

	err := m.Apply(5)
	var illegal *IllegalMoveError
	require.ErrorAs(t, err, &illegal)
	require.Equal(t, 5, illegal.Move)
	require.ErrorIs(t, err, ErrIllegalMove)
	require.Empty(t, m.History(), "Rejected moves should not be recorded")

	require.NoError(t, m.Apply(1))
	require.True(t, m.IsOver())
	require.ErrorIs(t, m.Apply(0), ErrIllegalMove, "No move is legal once the game is over")
}

func TestMatchUndo(t *testing.T) {
	board := newMockBoard(3, -1)
	m := NewMatch[int, string](board, "p1", "p2")
	require.False(t, m.Undo(), "Undo should fail on an empty history")

	require.NoError(t, m.Apply(0))
	require.NoError(t, m.Apply(2))
	last, ok := m.LastMove()
	require.True(t, ok)
	require.Equal(t, 2, last)

	require.True(t, m.Undo())
	require.Equal(t, []int{0}, m.History())
	require.Equal(t, []int{1, 0, 0}, board.cells)
	require.Equal(t, "p2", m.CurrentPlayer())

	history := m.History()
	history[0] = 9
	require.Equal(t, []int{0}, m.History(), "History should return a copy")
}

func TestMatchReset(t *testing.T) {
	board := newMockBoard(3, -1)
	m := NewMatch[int, string](board, "p1", "p2")
	require.NoError(t, m.Apply(0))
	m.Reset()

	require.Empty(t, m.History())
	require.Equal(t, 1, board.resets)
	require.Equal(t, "p1", m.CurrentPlayer())
	require.False(t, m.IsOver())
}

func TestIllegalMoveError(t *testing.T) {
	err := error(&IllegalMoveError{Move: 3, Reason: "column is full"})
	require.True(t, errors.Is(err, ErrIllegalMove))
	require.Equal(t, "illegal move 3: column is full", err.Error())
}
