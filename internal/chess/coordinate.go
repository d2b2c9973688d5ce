package chess

import (
	"fmt"
	"strings"
)

// Size is the number of rows and columns on the board.
const Size = 8

// Coordinate addresses a square. Row 0 is rank 8 and column 0 is file A.
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coordinate) InBounds() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// Notation returns the square name, e.g. "E4".
func (c Coordinate) Notation() (string, error) {
	if !c.InBounds() {
		return "", fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, c.Row, c.Col)
	}
	return fmt.Sprintf("%c%d", 'A'+c.Col, Size-c.Row), nil
}

func (c Coordinate) String() string {
	n, err := c.Notation()
	if err != nil {
		return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
	}
	return n
}

func (c Coordinate) add(dRow, dCol int) Coordinate {
	return Coordinate{Row: c.Row + dRow, Col: c.Col + dCol}
}

// FromNotation converts a file letter and a 1-based rank into a Coordinate.
// The result is not bounds checked.
func FromNotation(file rune, rank int) Coordinate {
	if file >= 'a' && file <= 'z' {
		file -= 'a' - 'A'
	}
	return Coordinate{Row: Size - rank, Col: int(file - 'A')}
}

// ParseCoordinate parses a two character square name such as "e2".
func ParseCoordinate(s string) (Coordinate, error) {
	s = strings.TrimSpace(s)
	if len(s) != 2 || s[1] < '0' || s[1] > '9' {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrOutOfBounds, s)
	}
	c := FromNotation(rune(s[0]), int(s[1]-'0'))
	if !c.InBounds() {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrOutOfBounds, s)
	}
	return c, nil
}
