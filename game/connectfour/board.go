package connectfour

import (
	"fmt"
	"strings"
)

type Cell uint8

const (
	Empty Cell = iota
	Yellow
	Red
)

func (c Cell) String() string {
	switch c {
	case Yellow:
		return "Y"
	case Red:
		return "R"
	default:
		return "o"
	}
}

// Discs in a row needed to win.
const connect = 4

// directions along which four in a row can form: vertical, horizontal and the
// two diagonals. The opposite direction is covered by negating the step.
var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// Board is a Connect Four grid. Row 0 is the bottom row; heights tracks the
// number of discs per column so a drop and its undo are O(1).
type Board struct {
	rows    int
	cols    int
	cells   []Cell
	heights []int
}

func NewBoard(rows, cols int) *Board {
	if rows < 1 || cols < 1 {
		panic(fmt.Sprintf("invalid board size %dx%d", rows, cols))
	}
	return &Board{
		rows:    rows,
		cols:    cols,
		cells:   make([]Cell, rows*cols),
		heights: make([]int, cols),
	}
}

func (b *Board) Rows() int {
	return b.rows
}

func (b *Board) Cols() int {
	return b.cols
}

// Cell returns the disc at row (0 = bottom) and col.
func (b *Board) Cell(row, col int) Cell {
	return b.cells[row*b.cols+col]
}

func (b *Board) Height(col int) int {
	return b.heights[col]
}

func (b *Board) LegalMoves() []int {
	return b.AppendLegalMoves(make([]int, 0, b.cols))
}

func (b *Board) AppendLegalMoves(dst []int) []int {
	for col, h := range b.heights {
		if h < b.rows {
			dst = append(dst, col)
		}
	}
	return dst
}

func (b *Board) IsLegal(col int) bool {
	return col >= 0 && col < b.cols && b.heights[col] < b.rows
}

func (b *Board) Place(col int, seat int) {
	disc := Yellow
	if seat == 1 {
		disc = Red
	}
	b.cells[b.heights[col]*b.cols+col] = disc
	b.heights[col]++
}

func (b *Board) Remove(col int) {
	b.heights[col]--
	b.cells[b.heights[col]*b.cols+col] = Empty
}

// Wins checks the four lines through the top disc of col.
func (b *Board) Wins(col int) bool {
	if col < 0 || col >= b.cols || b.heights[col] == 0 {
		return false
	}
	row := b.heights[col] - 1
	disc := b.Cell(row, col)
	for _, d := range directions {
		n := 1 + b.run(row, col, d[0], d[1], disc) + b.run(row, col, -d[0], -d[1], disc)
		if n >= connect {
			return true
		}
	}
	return false
}

// run counts discs equal to disc starting next to (row, col) and stepping by
// (dr, dc), stopping early once a win is already certain.
func (b *Board) run(row, col, dr, dc int, disc Cell) int {
	n := 0
	for r, c := row+dr, col+dc; n < connect-1; r, c = r+dr, c+dc {
		if r < 0 || r >= b.rows || c < 0 || c >= b.cols || b.Cell(r, c) != disc {
			break
		}
		n++
	}
	return n
}

func (b *Board) Reset() {
	clear(b.cells)
	clear(b.heights)
}

func (b *Board) Welcome(first, second string) string {
	return fmt.Sprintf("Player %s gets YELLOW discs. Player %s gets RED discs.\nPlayer %s starts first.",
		first, second, first)
}

// String renders the grid top row first.
func (b *Board) String() string {
	var sb strings.Builder
	for row := b.rows - 1; row >= 0; row-- {
		for col := 0; col < b.cols; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(b.Cell(row, col).String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
