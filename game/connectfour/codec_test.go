package connectfour

import (
	"connect4/game"
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestCodecRoundTrip(t *testing.T) {
	is := is.New(t)
	g := New(WithPlayers("Ann", "Ben"), WithSize(5, 6))
	play(is, g, 2, 3, 2, 3, 4)

	data, err := Codec{}.Encode(g)
	is.NoErr(err)
	decoded, err := Codec{}.Decode(data)
	is.NoErr(err)

	is.Equal(decoded.Players(), g.Players())
	is.Equal(decoded.History(), g.History())
	is.Equal(decoded.CurrentPlayer(), g.CurrentPlayer())
	is.Equal(decoded.String(), g.String())
	is.Equal(decoded.LegalMoves(), g.LegalMoves())

	// Moves on the decoded match do not reach g.
	is.NoErr(decoded.Apply(0))
	is.Equal(len(g.History()), 5)
}

func TestCodecDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"not json":       `{`,
		"bad size":       `{"rows":0,"cols":7,"players":["a","b"],"history":[]}`,
		"too many rows":  `{"rows":4611686018427387904,"cols":4,"players":["a","b"],"history":[0]}`,
		"too many cols":  `{"rows":6,"cols":65,"players":["a","b"],"history":[]}`,
		"same players":   `{"rows":6,"cols":7,"players":["a","a"],"history":[]}`,
		"missing player": `{"rows":6,"cols":7,"history":[]}`,
		"overfull":       `{"rows":1,"cols":7,"players":["a","b"],"history":[0,0]}`,
		"off board":      `{"rows":6,"cols":7,"players":["a","b"],"history":[9]}`,
		"after the win":  `{"rows":6,"cols":7,"players":["a","b"],"history":[0,1,0,1,0,1,0,1]}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			_, err := Codec{}.Decode([]byte(data))
			is.True(err != nil)
		})
	}

	is := is.New(t)
	_, err := Codec{}.Decode([]byte(`{"rows":6,"cols":7,"players":["a","b"],"history":[9]}`))
	is.True(errors.Is(err, game.ErrIllegalMove))
}

type otherBoard struct {
	*Board
}

func TestCodecEncodeErrors(t *testing.T) {
	is := is.New(t)
	g := game.NewMatch[int, string](otherBoard{NewBoard(6, 7)}, "a", "b")
	_, err := Codec{}.Encode(g)
	is.True(err != nil)
}
