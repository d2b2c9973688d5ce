package chess

import (
	"fmt"
	"io"
	"log"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
)

// DefaultStartingPositionFEN is the standard initial position.
const DefaultStartingPositionFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Board is the authoritative position. It is not safe for concurrent use.
type Board struct {
	pieces map[Coordinate]Piece
	turn   Color

	// enPassant is the pawn that may be captured en passant this turn.
	enPassant    Coordinate
	hasEnPassant bool

	halfMoveClock  int
	fullMoveNumber int

	logger *log.Logger
}

type boardConfig struct {
	fen    string
	logger *log.Logger
}

type Option func(*boardConfig)

func WithFEN(fen string) Option {
	return func(cfg *boardConfig) {
		cfg.fen = fen
	}
}

// WithLogger sets where rejected moves are reported. By default nothing is logged.
func WithLogger(l *log.Logger) Option {
	return func(cfg *boardConfig) {
		cfg.logger = l
	}
}

func NewBoard(opts ...Option) (*Board, error) {
	cfg := &boardConfig{
		fen:    DefaultStartingPositionFEN,
		logger: log.New(io.Discard, "", 0),
	}
	for _, f := range opts {
		f(cfg)
	}
	b := &Board{
		pieces: make(map[Coordinate]Piece, 32),
		logger: cfg.logger,
	}
	if err := b.Load(cfg.fen); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Board) Turn() Color {
	return b.turn
}

func (b *Board) PieceAt(c Coordinate) (Piece, bool) {
	p, ok := b.pieces[c]
	return p, ok
}

// OccupiedBy lists the squares held by color in row-major order.
func (b *Board) OccupiedBy(color Color) []Coordinate {
	var out []Coordinate
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			c := Coordinate{Row: row, Col: col}
			if p, ok := b.pieces[c]; ok && p.Color == color {
				out = append(out, c)
			}
		}
	}
	return out
}

// Pieces returns a copy of the position.
func (b *Board) Pieces() map[Coordinate]Piece {
	return maps.Clone(b.pieces)
}

// Clone returns an independent copy; moves applied to it never reach b.
func (b *Board) Clone() *Board {
	c := *b
	c.pieces = maps.Clone(b.pieces)
	return &c
}

// PossibleMoves returns the pseudo-legal moves of the piece on at, or nil if at is empty.
func (b *Board) PossibleMoves(at Coordinate) []Move {
	p, ok := b.pieces[at]
	if !ok {
		return nil
	}
	return p.PossibleMoves(b, at)
}

// LegalMoves is PossibleMoves without the moves that leave the mover in check.
func (b *Board) LegalMoves(at Coordinate) []Move {
	p, ok := b.pieces[at]
	if !ok {
		return nil
	}
	var out []Move
	for _, mv := range p.PossibleMoves(b, at) {
		if !b.leavesInCheck(mv, p.Color) {
			out = append(out, mv)
		}
	}
	return out
}

// Move validates and executes the move from start to end for the side to move. Rule
// violations (ErrNotYourTurn, ErrIllegalMove, ErrKingInCheck) leave the board untouched.
func (b *Board) Move(start, end Coordinate) (Move, error) {
	if !start.InBounds() || !end.InBounds() {
		return Move{}, fmt.Errorf("%w: move %v to %v", ErrOutOfBounds, start, end)
	}

	p, ok := b.pieces[start]
	if !ok {
		b.logger.Printf("rejected %v%v: empty square", start, end)
		return Move{}, fmt.Errorf("%w: no piece on %v", ErrNotYourTurn, start)
	}
	if p.Color != b.turn {
		b.logger.Printf("rejected %v%v: %s to move", start, end, b.turn)
		return Move{}, fmt.Errorf("%w: %s to move", ErrNotYourTurn, b.turn)
	}

	var matches []Move
	for _, mv := range p.PossibleMoves(b, start) {
		if mv.End == end {
			matches = append(matches, mv)
		}
	}
	if len(matches) != 1 {
		b.logger.Printf("rejected %v%v: illegal for %s", start, end, p)
		return Move{}, fmt.Errorf("%w: %s cannot move %v to %v", ErrIllegalMove, p, start, end)
	}
	mv := matches[0]

	if b.leavesInCheck(mv, p.Color) {
		b.logger.Printf("rejected %v%v: %s king in check", start, end, p.Color)
		return Move{}, ErrKingInCheck
	}

	b.apply(mv)
	return mv, nil
}

func (b *Board) leavesInCheck(mv Move, color Color) bool {
	sim := b.Clone()
	sim.apply(mv)
	return sim.IsInCheck(color)
}

// apply executes an already validated move. It is the only writer of piece flags.
func (b *Board) apply(mv Move) {
	p := b.pieces[mv.Start]
	_, capture := b.pieces[mv.End]

	switch mv.Kind {
	case EnPassant:
		delete(b.pieces, Coordinate{Row: mv.Start.Row, Col: mv.End.Col})
		capture = true
	case Castling:
		side := castleSides[1]
		if mv.End.Col > mv.Start.Col {
			side = castleSides[0]
		}
		from := Coordinate{Row: mv.Start.Row, Col: side.rookCol}
		rook := b.pieces[from]
		rook.HasMoved = true
		delete(b.pieces, from)
		b.pieces[Coordinate{Row: mv.Start.Row, Col: side.rookTo}] = rook
	}

	delete(b.pieces, mv.Start)
	p.HasMoved = true
	p.JustDoubleStepped = p.Kind == Pawn && abs(mv.End.Row-mv.Start.Row) == 2
	b.pieces[mv.End] = p

	for c, other := range b.pieces {
		if other.JustDoubleStepped && c != mv.End {
			other.JustDoubleStepped = false
			b.pieces[c] = other
		}
	}
	b.enPassant, b.hasEnPassant = mv.End, p.JustDoubleStepped

	if p.Kind == Pawn || capture {
		b.halfMoveClock = 0
	} else {
		b.halfMoveClock++
	}
	if b.turn == Black {
		b.fullMoveNumber++
	}
	b.turn = b.turn.Opposite()
}

// IsInCheck reports whether color's king is attacked. A board without such a king is never
// in check.
func (b *Board) IsInCheck(color Color) bool {
	king, ok := b.findKing(color)
	if !ok {
		return false
	}
	return attacked(b, king, color.Opposite())
}

// IsCheckmate reports whether color is in check with no move that escapes it.
func (b *Board) IsCheckmate(color Color) bool {
	return b.IsInCheck(color) && !b.HasLegalMove(color)
}

// HasLegalMove reports whether any piece of color has a move that does not leave it in check.
func (b *Board) HasLegalMove(color Color) bool {
	for _, from := range b.OccupiedBy(color) {
		for _, mv := range b.pieces[from].PossibleMoves(b, from) {
			if !b.leavesInCheck(mv, color) {
				return true
			}
		}
	}
	return false
}

func (b *Board) findKing(color Color) (Coordinate, bool) {
	for _, c := range b.OccupiedBy(color) {
		if b.pieces[c].Kind == King {
			return c, true
		}
	}
	return Coordinate{}, false
}

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// MoveText describes the move from start to end before it is played: the piece letter and the
// lower case destination, or the letter, "x" and the upper case destination for a capture.
func (b *Board) MoveText(start, end Coordinate) string {
	p, ok := b.pieces[start]
	if !ok {
		return ""
	}
	_, capture := b.pieces[end]
	if p.Kind == Pawn && start.Col != end.Col {
		capture = true
	}
	if capture {
		return p.Abbreviation() + "x" + end.String()
	}
	return p.Abbreviation() + strings.ToLower(end.String())
}
