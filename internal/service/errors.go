package service

import (
	"errors"

	"github.com/benbeisheim/chessrules-backend/internal/model"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrNotQueued    = errors.New("player not in matchmaking")

	ErrGameFull      = model.ErrGameFull
	ErrNotInGame     = model.ErrNotInGame
	ErrWrongColor    = model.ErrWrongColor
	ErrGameOver      = model.ErrGameOver
	ErrAlreadyQueued = model.ErrAlreadyQueued
)
