// Package connectfour is the Connect Four variant of game.Match.
package connectfour

import (
	"connect4/game"
	"connect4/meta"
)

type Option func(o *options)

type options struct {
	first  string
	second string
	rows   int
	cols   int
}

func WithPlayers(first, second string) Option {
	return func(o *options) {
		if first != "" && second != "" && first != second {
			o.first = first
			o.second = second
		}
	}
}

func WithSize(rows, cols int) Option {
	return func(o *options) {
		if rows > 0 && cols > 0 {
			o.rows = rows
			o.cols = cols
		}
	}
}

// New returns an empty Connect Four match. Yellow (the first player) moves first.
func New(opts ...Option) *game.Match[int, string] {
	o := options{ // Default values
		first:  meta.FIRST_PLAYER,
		second: meta.SECOND_PLAYER,
		rows:   meta.ROWS,
		cols:   meta.COLS,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return game.NewMatch[int, string](NewBoard(o.rows, o.cols), o.first, o.second)
}
