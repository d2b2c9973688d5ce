package model

import (
	"strings"

	"github.com/benbeisheim/chessrules-backend/internal/chess"
)

// WSMove is a move request as clients send it, with squares in algebraic notation ("e2").
type WSMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type SimpleMove struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type MatchFoundEvent struct {
	GameID string      `json:"gameId"`
	Color  PlayerColor `json:"color"`
}

func squareName(c chess.Coordinate) string {
	return strings.ToLower(c.String())
}
