package chess

type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return ""
	}
}

func (c Color) Opposite() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// homeRow is the row the color's pawns start on.
func (c Color) homeRow() int {
	if c == White {
		return 6
	}
	return 1
}

// forward is the row delta of a pawn advance.
func (c Color) forward() int {
	if c == White {
		return -1
	}
	return 1
}

// backRow is the row the color's king and rooks start on.
func (c Color) backRow() int {
	if c == White {
		return Size - 1
	}
	return 0
}

type PieceKind uint8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return ""
	}
}

// Abbreviation is the upper-case letter used in notation.
func (k PieceKind) Abbreviation() string {
	switch k {
	case Pawn:
		return "P"
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return ""
	}
}

func kindFromLetter(r rune) (PieceKind, Color) {
	color := White
	if r >= 'a' && r <= 'z' {
		color = Black
		r -= 'a' - 'A'
	}
	switch r {
	case 'P':
		return Pawn, color
	case 'N':
		return Knight, color
	case 'B':
		return Bishop, color
	case 'R':
		return Rook, color
	case 'Q':
		return Queen, color
	case 'K':
		return King, color
	default:
		return NoKind, NoColor
	}
}

// Piece is a plain value; its flags are only written by Board when a move executes.
type Piece struct {
	Kind  PieceKind `json:"kind"`
	Color Color     `json:"color"`

	// HasMoved gates castling for kings and rooks.
	HasMoved bool `json:"hasMoved"`
	// JustDoubleStepped is set on a pawn for exactly one opponent turn after a two-square advance.
	JustDoubleStepped bool `json:"justDoubleStepped"`
}

func NewPiece(kind PieceKind, color Color) Piece {
	return Piece{Kind: kind, Color: color}
}

func (p Piece) Abbreviation() string {
	return p.Kind.Abbreviation()
}

// Symbol is the FEN letter, lower case for black.
func (p Piece) Symbol() string {
	s := p.Kind.Abbreviation()
	if p.Color == Black && s != "" {
		return string(s[0] | 0x20)
	}
	return s
}

func (p Piece) String() string {
	return p.Color.String() + " " + p.Kind.String()
}

// Occupancy is the read access move generation needs.
type Occupancy interface {
	PieceAt(c Coordinate) (Piece, bool)
	OccupiedBy(color Color) []Coordinate
}

type direction struct{ dRow, dCol int }

var (
	orthogonal  = []direction{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	diagonal    = []direction{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}
	allDirs     = append(append([]direction{}, orthogonal...), diagonal...)
	knightJumps = []direction{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
)

// PossibleMoves returns the pseudo-legal moves of p standing on at. It does not look up at
// in occ, so it can be asked about hypothetical placements.
func (p Piece) PossibleMoves(occ Occupancy, at Coordinate) []Move {
	switch p.Kind {
	case Pawn:
		return p.pawnMoves(occ, at)
	case Knight:
		return p.knightMoves(occ, at)
	case Bishop:
		return slide(occ, p.Color, at, diagonal, Size-1)
	case Rook:
		return slide(occ, p.Color, at, orthogonal, Size-1)
	case Queen:
		return slide(occ, p.Color, at, allDirs, Size-1)
	case King:
		return append(slide(occ, p.Color, at, allDirs, 1), p.castlingMoves(occ, at)...)
	default:
		return nil
	}
}

// slide walks each direction up to maxDist steps, stopping at the edge, before a friendly
// piece, or on an enemy piece.
func slide(occ Occupancy, color Color, at Coordinate, dirs []direction, maxDist int) []Move {
	var mvs []Move
	for _, d := range dirs {
		for i := 1; i <= maxDist; i++ {
			to := at.add(d.dRow*i, d.dCol*i)
			if !to.InBounds() {
				break
			}
			target, ok := occ.PieceAt(to)
			if ok && target.Color == color {
				break
			}
			mvs = append(mvs, Move{Start: at, End: to, Kind: Regular})
			if ok {
				break
			}
		}
	}
	return mvs
}

func (p Piece) knightMoves(occ Occupancy, at Coordinate) []Move {
	var mvs []Move
	for _, j := range knightJumps {
		to := at.add(j.dRow, j.dCol)
		if !to.InBounds() {
			continue
		}
		if target, ok := occ.PieceAt(to); ok && target.Color == p.Color {
			continue
		}
		mvs = append(mvs, Move{Start: at, End: to, Kind: Regular})
	}
	return mvs
}

func (p Piece) pawnMoves(occ Occupancy, at Coordinate) []Move {
	var mvs []Move
	dir := p.Color.forward()

	one := at.add(dir, 0)
	if one.InBounds() && !occupied(occ, one) {
		mvs = append(mvs, Move{Start: at, End: one, Kind: Regular})
		two := at.add(2*dir, 0)
		if at.Row == p.Color.homeRow() && two.InBounds() && !occupied(occ, two) {
			mvs = append(mvs, Move{Start: at, End: two, Kind: Regular})
		}
	}

	for _, dc := range []int{-1, 1} {
		to := at.add(dir, dc)
		if !to.InBounds() {
			continue
		}
		if target, ok := occ.PieceAt(to); ok {
			if target.Color != p.Color {
				mvs = append(mvs, Move{Start: at, End: to, Kind: Regular})
			}
			continue
		}
		if p.canEnPassant(occ, at, to) {
			mvs = append(mvs, Move{Start: at, End: to, Kind: EnPassant})
		}
	}
	return mvs
}

// canEnPassant assumes to is an empty forward diagonal of at.
func (p Piece) canEnPassant(occ Occupancy, at, to Coordinate) bool {
	if at.Row != p.Color.homeRow()+3*p.Color.forward() {
		return false
	}
	victim, ok := occ.PieceAt(Coordinate{Row: at.Row, Col: to.Col})
	return ok && victim.Kind == Pawn && victim.Color != p.Color && victim.JustDoubleStepped
}

type castleSide struct {
	rookCol, kingTo, rookTo int
	// empty must be vacant, safe must not be attacked
	empty, safe []int
}

var castleSides = []castleSide{
	{rookCol: 7, kingTo: 6, rookTo: 5, empty: []int{5, 6}, safe: []int{5, 6}},
	{rookCol: 0, kingTo: 2, rookTo: 3, empty: []int{1, 2, 3}, safe: []int{3, 2}},
}

const kingCol = 4

func (p Piece) castlingMoves(occ Occupancy, at Coordinate) []Move {
	row := p.Color.backRow()
	if p.HasMoved || at != (Coordinate{Row: row, Col: kingCol}) {
		return nil
	}
	enemy := p.Color.Opposite()
	var (
		mvs     []Move
		checked *bool
	)
	for _, side := range castleSides {
		rook, ok := occ.PieceAt(Coordinate{Row: row, Col: side.rookCol})
		if !ok || rook.Kind != Rook || rook.Color != p.Color || rook.HasMoved {
			continue
		}
		if anyOccupied(occ, row, side.empty) {
			continue
		}
		if checked == nil {
			c := attacked(occ, at, enemy)
			checked = &c
		}
		if *checked || anyAttacked(occ, row, side.safe, enemy) {
			continue
		}
		mvs = append(mvs, Move{Start: at, End: Coordinate{Row: row, Col: side.kingTo}, Kind: Castling})
	}
	return mvs
}

// attacks returns the squares p threatens from at. Pawns threaten both forward diagonals
// whatever stands there; castling never captures so it is left out.
func (p Piece) attacks(occ Occupancy, at Coordinate) []Coordinate {
	switch p.Kind {
	case Pawn:
		var out []Coordinate
		for _, dc := range []int{-1, 1} {
			if to := at.add(p.Color.forward(), dc); to.InBounds() {
				out = append(out, to)
			}
		}
		return out
	case King:
		return Destinations(slide(occ, p.Color, at, allDirs, 1))
	default:
		return Destinations(p.PossibleMoves(occ, at))
	}
}

// attacked reports whether any piece of color by threatens sq.
func attacked(occ Occupancy, sq Coordinate, by Color) bool {
	for _, from := range occ.OccupiedBy(by) {
		p, ok := occ.PieceAt(from)
		if !ok {
			continue
		}
		for _, to := range p.attacks(occ, from) {
			if to == sq {
				return true
			}
		}
	}
	return false
}

func occupied(occ Occupancy, c Coordinate) bool {
	_, ok := occ.PieceAt(c)
	return ok
}

func anyOccupied(occ Occupancy, row int, cols []int) bool {
	for _, col := range cols {
		if occupied(occ, Coordinate{Row: row, Col: col}) {
			return true
		}
	}
	return false
}

func anyAttacked(occ Occupancy, row int, cols []int, by Color) bool {
	for _, col := range cols {
		if attacked(occ, Coordinate{Row: row, Col: col}, by) {
			return true
		}
	}
	return false
}
