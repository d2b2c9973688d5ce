package model

import "github.com/benbeisheim/chessrules-backend/internal/chess"

type Player struct {
	ID    string
	Color PlayerColor
}

type ClientPlayer struct {
	ID       string      `json:"name"`
	Color    PlayerColor `json:"color"`
	TimeLeft int         `json:"timeLeft"`
}

type PlayerColor string

const (
	PlayerColorWhite PlayerColor = "white"
	PlayerColorBlack PlayerColor = "black"
)

func colorOf(c chess.Color) PlayerColor {
	return PlayerColor(c.String())
}

func (pc PlayerColor) chessColor() chess.Color {
	switch pc {
	case PlayerColorWhite:
		return chess.White
	case PlayerColorBlack:
		return chess.Black
	default:
		return chess.NoColor
	}
}
