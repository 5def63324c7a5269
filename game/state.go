package game

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// State is an immutable snapshot of a game. It holds no references, so
// copies never alias and states compare with ==.
type State struct {
	rules   Rules
	grid    [MaxSize][MaxSize]Piece
	turn    Color
	chain   Square // Piece that must keep jumping, valid if chained
	chained bool
	quiet   int // Consecutive non-capturing moves
	ply     int
}

// NewGame returns the standard starting position with red to move.
func NewGame(options ...Option) State {
	s := State{rules: newRules(options...), turn: Red}
	home := s.rules.homeRows()
	for row := 0; row < s.rules.Size; row++ {
		for col := (row + 1) % 2; col < s.rules.Size; col += 2 {
			switch {
			case row < home:
				s.grid[row][col] = RedMan
			case row >= s.rules.Size-home:
				s.grid[row][col] = BlackMan
			}
		}
	}
	return s
}

func (s State) Turn() Color     { return s.turn }
func (s State) Size() int       { return s.rules.Size }
func (s State) Rules() Rules    { return s.rules }
func (s State) Ply() int        { return s.ply }
func (s State) QuietMoves() int { return s.quiet }

func (s State) At(sq Square) Piece {
	if !s.onBoard(sq) {
		return Empty
	}
	return s.at(sq)
}

// Chain returns the square of the piece in the middle of a multi-jump.
func (s State) Chain() (Square, bool) {
	return s.chain, s.chained
}

// Pieces counts the men and kings of a color.
func (s State) Pieces(c Color) (men, kings int) {
	for row := 0; row < s.rules.Size; row++ {
		for col := 0; col < s.rules.Size; col++ {
			p := s.grid[row][col]
			if !p.Belongs(c) {
				continue
			}
			if p.IsKing() {
				kings++
			} else {
				men++
			}
		}
	}
	return men, kings
}

func (s State) at(sq Square) Piece {
	return s.grid[sq.Row][sq.Col]
}

func (s *State) set(sq Square, p Piece) {
	s.grid[sq.Row][sq.Col] = p
}

// Apply validates a move against LegalMoves and plays it.
func (s State) Apply(m Move) (State, error) {
	outcome, moves := s.Status()
	if outcome != Ongoing {
		return s, fmt.Errorf("%w: %s: game is over (%s)", ErrInvalidMove, m, outcome)
	}
	if !slices.Contains(moves, m) {
		return s, fmt.Errorf("%w: %s is not legal for %s", ErrInvalidMove, m, s.turn)
	}
	return s.Play(m), nil
}

// FindMove looks up the legal move between two squares.
func (s State) FindMove(from, to Square) (Move, bool) {
	for _, m := range s.LegalMoves() {
		if m.From == from && m.To == to {
			return m, true
		}
	}
	return Move{}, false
}

// String renders the board with row 0 on top, one line per row.
func (s State) String() string {
	var b strings.Builder
	for row := 0; row < s.rules.Size; row++ {
		for col := 0; col < s.rules.Size; col++ {
			if col > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(s.grid[row][col].symbol())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ParseState builds a state from a diagram in the format of String: one
// line per row, '.' for empty, 'r'/'R' for red men/kings and 'b'/'B' for
// black men/kings. Blank lines and spaces are ignored. The board size is
// the number of rows.
func ParseState(diagram string, turn Color, options ...Option) (State, error) {
	var rows []string
	for _, line := range strings.Split(diagram, "\n") {
		line = strings.ReplaceAll(strings.TrimSpace(line), " ", "")
		if line != "" {
			rows = append(rows, line)
		}
	}

	size := len(rows)
	if size < 4 || size > MaxSize || size%2 != 0 {
		return State{}, fmt.Errorf("unsupported board size %d", size)
	}
	s := State{rules: newRules(options...), turn: turn}
	s.rules.Size = size
	for row, line := range rows {
		if len(line) != size {
			return State{}, fmt.Errorf("row %d has %d squares, expected %d", row, len(line), size)
		}
		for col := 0; col < size; col++ {
			p := Piece(strings.IndexByte(".rRbB", line[col]))
			if p > BlackKing {
				return State{}, fmt.Errorf("unknown piece %q at %s", line[col], Square{row, col})
			}
			if p != Empty && (row+col)%2 == 0 {
				return State{}, fmt.Errorf("piece on light square %s", Square{row, col})
			}
			s.grid[row][col] = p
		}
	}
	return s, nil
}

type stateJSON struct {
	Size         int      `json:"size"`
	DrawLimit    int      `json:"drawLimit"`
	Grid         []string `json:"grid"`
	Turn         string   `json:"turn"`
	PendingChain *Square  `json:"pendingChain"`
	Quiet        int      `json:"quiet"`
	Ply          int      `json:"ply"`
}

func (s State) MarshalJSON() ([]byte, error) {
	out := stateJSON{
		Size:      s.rules.Size,
		DrawLimit: s.rules.DrawLimit,
		Turn:      s.turn.String(),
		Quiet:     s.quiet,
		Ply:       s.ply,
	}
	for row := 0; row < s.rules.Size; row++ {
		line := make([]byte, s.rules.Size)
		for col := range line {
			line[col] = s.grid[row][col].symbol()
		}
		out.Grid = append(out.Grid, string(line))
	}
	if s.chained {
		chain := s.chain
		out.PendingChain = &chain
	}
	return json.Marshal(out)
}

func (s *State) UnmarshalJSON(data []byte) error {
	var in stateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var turn Color
	switch in.Turn {
	case Red.String():
		turn = Red
	case Black.String():
		turn = Black
	default:
		return fmt.Errorf("unknown turn %q", in.Turn)
	}

	parsed, err := ParseState(strings.Join(in.Grid, "\n"), turn, WithDrawLimit(in.DrawLimit))
	if err != nil {
		return err
	}
	if parsed.rules.Size != in.Size {
		return fmt.Errorf("grid has %d rows, expected size %d", parsed.rules.Size, in.Size)
	}
	if in.PendingChain != nil {
		if !parsed.At(*in.PendingChain).Belongs(turn) {
			return fmt.Errorf("pending chain %s is not a %s piece", *in.PendingChain, turn)
		}
		parsed.chain = *in.PendingChain
		parsed.chained = true
	}
	parsed.quiet = in.Quiet
	parsed.ply = in.Ply
	*s = parsed
	return nil
}
