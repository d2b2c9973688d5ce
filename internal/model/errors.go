package model

import "errors"

var (
	ErrGameFull      = errors.New("game is full")
	ErrNotInGame     = errors.New("player not in game")
	ErrWrongColor    = errors.New("not this player's turn")
	ErrGameOver      = errors.New("game is over")
	ErrAlreadyQueued = errors.New("player already in queue")
)
