package connectfour

import (
	"connect4/game"
	"connect4/meta"
	"encoding/json"
	"fmt"
)

type snapshot struct {
	Rows    int       `json:"rows"`
	Cols    int       `json:"cols"`
	Players [2]string `json:"players"`
	History []int     `json:"history"`
}

// Codec encodes a match as its dimensions, players and move history. The
// position itself is rebuilt by replaying the history, so a snapshot can never
// decode into a board that the rules could not have produced.
type Codec struct{}

func (Codec) Encode(g game.Game[int, string]) ([]byte, error) {
	m, ok := g.(*game.Match[int, string])
	if !ok {
		return nil, fmt.Errorf("cannot encode %T as connect four", g)
	}
	b, ok := m.Board().(*Board)
	if !ok {
		return nil, fmt.Errorf("cannot encode board %T as connect four", m.Board())
	}
	return json.Marshal(snapshot{
		Rows:    b.Rows(),
		Cols:    b.Cols(),
		Players: m.Players(),
		History: m.History(),
	})
}

func (Codec) Decode(data []byte) (game.Game[int, string], error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode connect four snapshot: %w", err)
	}
	if s.Rows < 1 || s.Cols < 1 || s.Rows > meta.MAX_ROWS || s.Cols > meta.MAX_COLS {
		return nil, fmt.Errorf("invalid board size %dx%d", s.Rows, s.Cols)
	}
	if s.Players[0] == "" || s.Players[0] == s.Players[1] {
		return nil, fmt.Errorf("invalid players %q", s.Players)
	}
	m := game.NewMatch[int, string](NewBoard(s.Rows, s.Cols), s.Players[0], s.Players[1])
	for i, move := range s.History {
		if err := m.Apply(move); err != nil {
			return nil, fmt.Errorf("failed to replay move %d of snapshot: %w", i+1, err)
		}
	}
	return m, nil
}
