// Package render draws a chess.Board as text for terminals.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/benbeisheim/chessrules-backend/internal/chess"
	"github.com/fatih/color"
)

// Renderer draws boards with rank 8 at the top. Without colors, empty squares show as dots,
// highlighted squares as "*" or bracketed pieces, and a checked king between "!".
type Renderer struct {
	plain bool

	light, dark *color.Color
	highlight   *color.Color
	check       *color.Color
}

func New(noColor bool) *Renderer {
	r := &Renderer{
		plain:     noColor,
		light:     color.New(color.BgWhite, color.FgBlack),
		dark:      color.New(color.BgHiBlack, color.FgHiWhite),
		highlight: color.New(color.BgYellow, color.FgBlack),
		check:     color.New(color.BgRed, color.FgHiWhite, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{r.light, r.dark, r.highlight, r.check} {
			c.DisableColor()
		}
	}
	return r
}

// Board writes b to w, marking highlight and the king of the side to move when it is in check.
func (r *Renderer) Board(w io.Writer, b *chess.Board, highlight []chess.Coordinate) error {
	marked := make(map[chess.Coordinate]bool, len(highlight))
	for _, c := range highlight {
		marked[c] = true
	}
	var checked chess.Coordinate
	inCheck := b.IsInCheck(b.Turn())
	if inCheck {
		for _, c := range b.OccupiedBy(b.Turn()) {
			if p, _ := b.PieceAt(c); p.Kind == chess.King {
				checked = c
			}
		}
	}

	var sb strings.Builder
	for row := 0; row < chess.Size; row++ {
		fmt.Fprintf(&sb, "%d ", chess.Size-row)
		for col := 0; col < chess.Size; col++ {
			c := chess.Coordinate{Row: row, Col: col}
			p, ok := b.PieceAt(c)
			switch {
			case inCheck && c == checked:
				sb.WriteString(r.square(r.check, p.Symbol(), "!"))
			case marked[c] && ok:
				sb.WriteString(r.square(r.highlight, p.Symbol(), "[]"))
			case marked[c]:
				sb.WriteString(r.square(r.highlight, "*", ""))
			case (row+col)%2 == 0:
				sb.WriteString(r.square(r.light, r.symbol(p, ok), ""))
			default:
				sb.WriteString(r.square(r.dark, r.symbol(p, ok), ""))
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a  b  c  d  e  f  g  h\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func (r *Renderer) symbol(p chess.Piece, ok bool) string {
	switch {
	case ok:
		return p.Symbol()
	case r.plain:
		return "."
	default:
		return " "
	}
}

// square pads s to three cells. In plain mode marks replaces the padding: one rune on both
// sides, or an opening and closing pair.
func (r *Renderer) square(c *color.Color, s, marks string) string {
	left, right := " ", " "
	if r.plain && marks != "" {
		left, right = marks[:1], marks[len(marks)-1:]
	}
	return c.Sprint(left + s + right)
}
