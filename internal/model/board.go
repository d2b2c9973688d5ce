package model

import "github.com/benbeisheim/chessrules-backend/internal/chess"

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

// BoardState is the client view of the position. Board[0] is rank 8, Board[r][0] is file a.
type BoardState struct {
	Board [][]*Piece `json:"board"`
}

type Piece struct {
	Type         PieceType   `json:"type"`
	Color        PlayerColor `json:"color"`
	Abbreviation string      `json:"abbreviation"`
	HasMoved     bool        `json:"hasMoved"`
}

func newBoardState(b *chess.Board) *BoardState {
	state := &BoardState{Board: make([][]*Piece, chess.Size)}
	for row := 0; row < chess.Size; row++ {
		state.Board[row] = make([]*Piece, chess.Size)
		for col := 0; col < chess.Size; col++ {
			p, ok := b.PieceAt(chess.Coordinate{Row: row, Col: col})
			if !ok {
				continue
			}
			state.Board[row][col] = &Piece{
				Type:         PieceType(p.Kind.String()),
				Color:        colorOf(p.Color),
				Abbreviation: p.Abbreviation(),
				HasMoved:     p.HasMoved,
			}
		}
	}
	return state
}
