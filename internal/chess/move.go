package chess

// MoveKind tags the side effects a move has beyond relocating one piece.
type MoveKind uint8

const (
	Regular MoveKind = iota
	EnPassant
	Castling
)

func (k MoveKind) String() string {
	switch k {
	case Regular:
		return "regular"
	case EnPassant:
		return "en passant"
	case Castling:
		return "castling"
	default:
		return ""
	}
}

type Move struct {
	Start Coordinate `json:"start"`
	End   Coordinate `json:"end"`
	Kind  MoveKind   `json:"kind"`
}

func (m Move) String() string {
	return m.Start.String() + m.End.String()
}

// Destinations returns the end squares of mvs in order.
func Destinations(mvs []Move) []Coordinate {
	out := make([]Coordinate, 0, len(mvs))
	for _, mv := range mvs {
		out = append(out, mv.End)
	}
	return out
}
