package connectfour

import (
	"connect4/game"
	"errors"
	"slices"
	"testing"

	"github.com/matryer/is"
	"golang.org/x/exp/rand"
)

func play(is *is.I, g *game.Match[int, string], moves ...int) {
	for _, move := range moves {
		is.NoErr(g.Apply(move))
	}
}

func TestNewMatch(t *testing.T) {
	is := is.New(t)
	g := New()
	is.Equal(g.Players(), [2]string{"Alice", "Bob"})
	is.Equal(g.CurrentPlayer(), "Alice")
	is.Equal(g.PreviousPlayer(), "Bob")
	is.Equal(g.LegalMoves(), []int{0, 1, 2, 3, 4, 5, 6})
	is.True(!g.IsOver())
	_, ok := g.LastMove()
	is.True(!ok)
	is.Equal(g.WelcomeMessage(), "Player Alice gets YELLOW discs. Player Bob gets RED discs.\nPlayer Alice starts first.")

	g = New(WithPlayers("Ann", "Ben"), WithSize(4, 5))
	is.Equal(g.CurrentPlayer(), "Ann")
	is.Equal(len(g.LegalMoves()), 5)

	g = New(WithPlayers("Ann", "Ann"), WithSize(0, 5))
	is.Equal(g.Players(), [2]string{"Alice", "Bob"}) // invalid options are ignored
	is.Equal(len(g.LegalMoves()), 7)
}

func TestApply(t *testing.T) {
	is := is.New(t)
	g := New()
	play(is, g, 3, 3, 4)
	b := g.Board().(*Board)
	is.Equal(b.Cell(0, 3), Yellow)
	is.Equal(b.Cell(1, 3), Red)
	is.Equal(b.Cell(0, 4), Yellow)
	is.Equal(b.Height(3), 2)
	is.Equal(g.CurrentPlayer(), "Bob")
	is.Equal(g.History(), []int{3, 3, 4})

	err := g.Apply(7)
	is.True(errors.Is(err, game.ErrIllegalMove))
	err = g.Apply(-1)
	is.True(errors.Is(err, game.ErrIllegalMove))
	is.Equal(g.History(), []int{3, 3, 4}) // rejected moves leave no trace

	play(is, g, 0, 0, 0, 0, 0, 0)
	is.Equal(g.LegalMoves(), []int{1, 2, 3, 4, 5, 6})
	var illegal *game.IllegalMoveError
	is.True(errors.As(g.Apply(0), &illegal)) // full column
	is.Equal(illegal.Move, 0)
}

func TestWins(t *testing.T) {
	cases := map[string]struct {
		moves  []int
		winner string
	}{
		"horizontal": {[]int{0, 0, 1, 1, 2, 2, 3}, "Alice"},
		"vertical":   {[]int{0, 1, 0, 1, 0, 1, 2, 1}, "Bob"},
		"rising":     {[]int{0, 1, 1, 2, 2, 3, 2, 3, 3, 6, 3}, "Alice"},
		"falling":    {[]int{6, 5, 5, 4, 4, 3, 4, 3, 3, 0, 3}, "Alice"},
		"middle":     {[]int{0, 6, 1, 6, 3, 6, 2}, "Alice"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			g := New()
			play(is, g, c.moves[:len(c.moves)-1]...)
			is.True(!g.IsOver())

			play(is, g, c.moves[len(c.moves)-1])
			is.True(g.IsOver())
			is.Equal(g.PreviousPlayer(), c.winner)
			is.True(errors.Is(g.Apply(g.LegalMoves()[0]), game.ErrIllegalMove)) // game is over

			is.True(g.Undo())
			is.True(!g.IsOver())
		})
	}
}

func TestNoWinOnBrokenLine(t *testing.T) {
	is := is.New(t)
	g := New()
	play(is, g, 0, 0, 1, 1, 3, 3, 4)
	is.True(!g.IsOver()) // Y Y . Y Y
	play(is, g, 6, 2)
	is.True(g.IsOver())
}

func TestFullBoard(t *testing.T) {
	is := is.New(t)
	g := New(WithSize(2, 2))
	play(is, g, 0, 1, 1, 0)
	is.Equal(len(g.LegalMoves()), 0)
	is.True(!g.IsOver()) // full without a winner
}

func TestUndoRestoresEverything(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewSource(7))
	g := New()
	b := g.Board().(*Board)

	for games := 0; games < 20; games++ {
		g.Reset()
		is.Equal(len(g.History()), 0)
		for !g.IsOver() && len(g.LegalMoves()) > 0 {
			cells, heights := slices.Clone(b.cells), slices.Clone(b.heights)
			history, player, rendered := g.History(), g.CurrentPlayer(), g.String()

			for _, move := range g.LegalMoves() {
				is.NoErr(g.Apply(move))
				is.True(g.Undo())
				is.Equal(b.cells, cells)
				is.Equal(b.heights, heights)
				is.Equal(g.History(), history)
				is.Equal(g.CurrentPlayer(), player)
				is.Equal(g.String(), rendered)
			}
			moves := g.LegalMoves()
			is.NoErr(g.Apply(moves[rng.Intn(len(moves))]))
		}
	}

	g.Reset()
	is.True(!g.Undo()) // nothing to undo
}

func TestString(t *testing.T) {
	is := is.New(t)
	g := New(WithSize(3, 4))
	play(is, g, 1, 1, 2)
	is.Equal(g.String(), ""+
		"o o o o\n"+
		"o R o o\n"+
		"o Y Y o\n")
}
