package game

const (
	MaxSize          = 8
	DefaultSize      = 8
	DefaultDrawLimit = 40
)

// Rules are the static parameters of a game.
type Rules struct {
	Size      int // Board is Size x Size
	DrawLimit int // Consecutive non-capturing moves before a draw, 0 disables
}

type Option func(r *Rules)

// WithSize plays on an n x n board. n must be even and between 4 and 8.
func WithSize(n int) Option {
	return func(r *Rules) {
		if n >= 4 && n <= MaxSize && n%2 == 0 {
			r.Size = n
		}
	}
}

func WithDrawLimit(moves int) Option {
	return func(r *Rules) {
		if moves >= 0 {
			r.DrawLimit = moves
		}
	}
}

func newRules(options ...Option) Rules {
	r := Rules{Size: DefaultSize, DrawLimit: DefaultDrawLimit}
	for _, option := range options {
		option(&r)
	}
	return r
}

// homeRows is the number of rows each side fills at the start.
func (r Rules) homeRows() int {
	return (r.Size - 2) / 2
}

// Diagonal directions, ordered so that red's forward moves come first.
var directions = [4][2]int{{1, -1}, {1, 1}, {-1, -1}, {-1, 1}}

// directionsFor returns the directions a piece may move and capture in.
func directionsFor(p Piece) [][2]int {
	switch p {
	case RedMan:
		return directions[:2]
	case BlackMan:
		return directions[2:]
	case RedKing, BlackKing:
		return directions[:]
	}
	return nil
}

// LegalMoves returns the legal moves of the side to move in a stable order:
// squares in row-major order, then directions in a fixed order. A pending
// chain restricts moves to continuations of that piece, and any available
// jump makes simple moves illegal.
func (s State) LegalMoves() []Move {
	if s.chained {
		return s.appendJumps(nil, s.chain)
	}

	var jumps []Move
	for row := 0; row < s.rules.Size; row++ {
		for col := (row + 1) % 2; col < s.rules.Size; col += 2 {
			if s.grid[row][col].Belongs(s.turn) {
				jumps = s.appendJumps(jumps, Square{row, col})
			}
		}
	}
	if len(jumps) > 0 {
		return jumps
	}

	var moves []Move
	for row := 0; row < s.rules.Size; row++ {
		for col := (row + 1) % 2; col < s.rules.Size; col += 2 {
			if s.grid[row][col].Belongs(s.turn) {
				moves = s.appendSteps(moves, Square{row, col})
			}
		}
	}
	return moves
}

func (s State) appendSteps(moves []Move, from Square) []Move {
	piece := s.at(from)
	for _, d := range directionsFor(piece) {
		to := Square{from.Row + d[0], from.Col + d[1]}
		if !s.onBoard(to) || !s.at(to).IsEmpty() {
			continue
		}
		moves = append(moves, Move{
			From:     from,
			To:       to,
			Promotes: s.promotes(piece, to),
		})
	}
	return moves
}

func (s State) appendJumps(moves []Move, from Square) []Move {
	piece := s.at(from)
	color := Red
	if piece.Belongs(Black) {
		color = Black
	}
	for _, d := range directionsFor(piece) {
		over := Square{from.Row + d[0], from.Col + d[1]}
		to := Square{from.Row + 2*d[0], from.Col + 2*d[1]}
		if !s.onBoard(to) || !s.at(to).IsEmpty() {
			continue
		}
		if !s.at(over).Belongs(color.Opponent()) {
			continue
		}
		moves = append(moves, Move{
			From:     from,
			To:       to,
			Jump:     true,
			Captured: over,
			Promotes: s.promotes(piece, to),
		})
	}
	return moves
}

func (s State) promotes(piece Piece, to Square) bool {
	switch piece {
	case RedMan:
		return to.Row == s.rules.Size-1
	case BlackMan:
		return to.Row == 0
	}
	return false
}

func (s State) onBoard(sq Square) bool {
	return sq.Row >= 0 && sq.Row < s.rules.Size && sq.Col >= 0 && sq.Col < s.rules.Size
}

// countMoves counts the moves c would have if it were to move, honoring
// forced capture but ignoring any pending chain.
func (s State) countMoves(c Color) int {
	probe := s
	probe.turn = c
	probe.chained = false
	return len(probe.LegalMoves())
}

// Play applies a move taken from LegalMoves without validating it.
// Promotion ends the turn even if the crowned piece could capture again.
func (s State) Play(m Move) State {
	next := s
	piece := next.at(m.From)
	next.set(m.From, Empty)
	if m.Jump {
		next.set(m.Captured, Empty)
	}
	if m.Promotes {
		piece = piece.crowned()
	}
	next.set(m.To, piece)
	next.ply++

	next.chained = false
	next.chain = Square{}
	if m.Jump {
		next.quiet = 0
		if !m.Promotes && len(next.appendJumps(nil, m.To)) > 0 {
			next.chained = true
			next.chain = m.To
			return next
		}
	} else {
		next.quiet++
	}
	next.turn = next.turn.Opponent()
	return next
}

// Status returns the outcome together with the legal moves it was derived
// from. The side to move loses when it has no legal moves; otherwise the
// game is drawn once the quiet-move limit is reached.
func (s State) Status() (Outcome, []Move) {
	moves := s.LegalMoves()
	if len(moves) == 0 {
		return winsFor(s.turn.Opponent()), nil
	}
	if s.rules.DrawLimit > 0 && s.quiet >= s.rules.DrawLimit {
		return Draw, moves
	}
	return Ongoing, moves
}

func (s State) Outcome() Outcome {
	outcome, _ := s.Status()
	return outcome
}
