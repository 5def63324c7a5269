package searcher

import (
	"testing"

	"checkers/game"

	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, diagram string, turn game.Color, options ...game.Option) game.State {
	t.Helper()
	s, err := game.ParseState(diagram, turn, options...)
	require.NoError(t, err)
	return s
}

// winInOne has red to move with a king that can take black's last move
// away by stepping onto (0,1).
func winInOne(t *testing.T) game.State {
	return parse(t, `
		. . . . . . . .
		b . R . . . . .
		. . . . . . . .
		. . . . . . . .
		. . . . . . . .
		. . . . . . . .
		. . . . . . . .
		. . . . . . . .`, game.Red)
}

var winningMove = game.Move{From: game.Square{Row: 1, Col: 2}, To: game.Square{Row: 0, Col: 1}}

// doubleJump has red to move with a forced two-capture chain starting at
// (2,1).
func doubleJump(t *testing.T) game.State {
	return parse(t, `
		. . . . . . . .
		. . . . . . . .
		. r . . . . . .
		. . b . . . . .
		. . . . . . . .
		. . . . b . . .
		. . . . . . . .
		. . . . . . b .`, game.Red)
}

// redWon is a finished game, black has no pieces left.
func redWon(t *testing.T) game.State {
	return parse(t, `
		. . . .
		. . . .
		. r . .
		. . . .`, game.Black)
}
