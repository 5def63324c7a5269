package game

import (
	"errors"
	"fmt"
)

// ErrInvalidMove is returned when a move is applied that is not among the
// legal moves of the state.
var ErrInvalidMove = errors.New("invalid move")

// Color identifies a side.
type Color uint8

const (
	Red Color = iota
	Black
)

func (c Color) Opponent() Color {
	if c == Red {
		return Black
	}
	return Red
}

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

// forward is the row direction men of this color move in.
func (c Color) forward() int {
	if c == Red {
		return 1
	}
	return -1
}

// Piece is the occupant of a square.
type Piece uint8

const (
	Empty Piece = iota
	RedMan
	RedKing
	BlackMan
	BlackKing
)

func (p Piece) IsEmpty() bool {
	return p == Empty
}

func (p Piece) IsKing() bool {
	return p == RedKing || p == BlackKing
}

// Belongs reports whether p is a piece of color c.
func (p Piece) Belongs(c Color) bool {
	switch p {
	case RedMan, RedKing:
		return c == Red
	case BlackMan, BlackKing:
		return c == Black
	}
	return false
}

func (p Piece) crowned() Piece {
	switch p {
	case RedMan:
		return RedKing
	case BlackMan:
		return BlackKing
	}
	return p
}

func (p Piece) symbol() byte {
	return ".rRbB"[p]
}

// Square is a (row, col) coordinate on the board.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (sq Square) String() string {
	return fmt.Sprintf("(%d,%d)", sq.Row, sq.Col)
}

// Move is a single step. A multi-jump turn is a sequence of moves linked
// through the state's pending chain.
type Move struct {
	From     Square
	To       Square
	Jump     bool
	Captured Square
	Promotes bool
}

func (m Move) String() string {
	sep := "-"
	if m.Jump {
		sep = "x"
	}
	s := m.From.String() + sep + m.To.String()
	if m.Promotes {
		s += "K"
	}
	return s
}

// Outcome is the result of a game at a given state.
type Outcome uint8

const (
	Ongoing Outcome = iota
	RedWins
	BlackWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case RedWins:
		return "red-wins"
	case BlackWins:
		return "black-wins"
	case Draw:
		return "draw"
	}
	return "ongoing"
}

// Winner returns the winning color, if any.
func (o Outcome) Winner() (Color, bool) {
	switch o {
	case RedWins:
		return Red, true
	case BlackWins:
		return Black, true
	}
	return Red, false
}

func winsFor(c Color) Outcome {
	if c == Red {
		return RedWins
	}
	return BlackWins
}

// Evaluate scores a state from the perspective of the given color, higher
// being better for that color.
type Evaluate func(s State, perspective Color) float64
