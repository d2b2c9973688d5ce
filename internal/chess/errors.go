package chess

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when a coordinate outside the 8x8 board is dereferenced
	// or converted to notation.
	ErrOutOfBounds = errors.New("coordinate out of bounds")

	// ErrNotYourTurn is returned when the selected square is empty or holds a piece of the
	// side not to move.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrIllegalMove is returned when the destination is not reachable by the selected piece.
	ErrIllegalMove = errors.New("illegal move")

	// ErrKingInCheck is returned when a move would leave the mover's own king in check.
	ErrKingInCheck = fmt.Errorf("%w: king would be left in check", ErrIllegalMove)

	// ErrInvalidFEN is returned when a position string cannot be loaded.
	ErrInvalidFEN = errors.New("invalid fen")
)

// IsRuleViolation reports whether err is an expected gameplay rejection rather than a
// structural fault.
func IsRuleViolation(err error) bool {
	return errors.Is(err, ErrNotYourTurn) || errors.Is(err, ErrIllegalMove)
}
