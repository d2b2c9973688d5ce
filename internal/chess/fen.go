package chess

import (
	"fmt"
	"strconv"
	"strings"
)

// Load replaces the position with the one described by fen. Only the placement and side to
// move are required; castling rights and the en passant target seed the pieces' flags, after
// which the board tracks them itself. On error the board is left unchanged.
func (b *Board) Load(fen string) error {
	fields := strings.Fields(fen)
	if len(fields) < 2 || len(fields) > 6 {
		return fmt.Errorf("%w: expected 2 to 6 fields, got %d", ErrInvalidFEN, len(fields))
	}

	pieces, err := parsePlacement(fields[0])
	if err != nil {
		return err
	}

	var turn Color
	switch fields[1] {
	case "w":
		turn = White
	case "b":
		turn = Black
	default:
		return fmt.Errorf("%w: invalid side to move %q", ErrInvalidFEN, fields[1])
	}

	rights := "KQkq"
	if len(fields) > 2 {
		rights = fields[2]
	}
	if err := seedCastling(pieces, rights); err != nil {
		return err
	}

	var (
		epPawn Coordinate
		hasEP  bool
	)
	if len(fields) > 3 && fields[3] != "-" {
		target, err := ParseCoordinate(fields[3])
		if err != nil {
			return fmt.Errorf("%w: invalid en passant target: %v", ErrInvalidFEN, err)
		}
		victim := turn.Opposite()
		if target.Row != victim.homeRow()+victim.forward() {
			return fmt.Errorf("%w: en passant target %s on wrong rank", ErrInvalidFEN, fields[3])
		}
		epPawn = target.add(victim.forward(), 0)
		if p, ok := pieces[epPawn]; ok && p.Kind == Pawn && p.Color == victim {
			p.JustDoubleStepped = true
			pieces[epPawn] = p
			hasEP = true
		}
	}

	halfMove, fullMove := 0, 1
	if len(fields) > 4 {
		if halfMove, err = strconv.Atoi(fields[4]); err != nil || halfMove < 0 {
			return fmt.Errorf("%w: invalid half move clock %q", ErrInvalidFEN, fields[4])
		}
	}
	if len(fields) > 5 {
		if fullMove, err = strconv.Atoi(fields[5]); err != nil || fullMove < 1 {
			return fmt.Errorf("%w: invalid full move number %q", ErrInvalidFEN, fields[5])
		}
	}

	b.pieces = pieces
	b.turn = turn
	b.enPassant, b.hasEnPassant = epPawn, hasEP
	b.halfMoveClock = halfMove
	b.fullMoveNumber = fullMove
	return nil
}

func parsePlacement(placement string) (map[Coordinate]Piece, error) {
	ranks := strings.Split(placement, "/")
	if len(ranks) != Size {
		return nil, fmt.Errorf("%w: expected %d ranks, got %d", ErrInvalidFEN, Size, len(ranks))
	}
	pieces := make(map[Coordinate]Piece, 32)
	for row, rank := range ranks {
		col := 0
		for _, cell := range rank {
			if cell >= '1' && cell <= '8' {
				col += int(cell - '0')
				continue
			}
			kind, color := kindFromLetter(cell)
			if kind == NoKind {
				return nil, fmt.Errorf("%w: unknown symbol %q", ErrInvalidFEN, cell)
			}
			if col >= Size {
				return nil, fmt.Errorf("%w: rank %d describes more than %d files", ErrInvalidFEN, Size-row, Size)
			}
			pieces[Coordinate{Row: row, Col: col}] = NewPiece(kind, color)
			col++
		}
		if col != Size {
			return nil, fmt.Errorf("%w: rank %d describes %d files", ErrInvalidFEN, Size-row, col)
		}
	}
	return pieces, nil
}

// seedCastling marks kings and rooks as moved unless a matching castling right is listed.
func seedCastling(pieces map[Coordinate]Piece, rights string) error {
	if rights != "-" {
		for _, r := range rights {
			if !strings.ContainsRune("KQkq", r) {
				return fmt.Errorf("%w: invalid castling rights %q", ErrInvalidFEN, rights)
			}
		}
	}
	for _, color := range []Color{White, Black} {
		kingside, queenside := 'K', 'Q'
		if color == Black {
			kingside, queenside = 'k', 'q'
		}
		canKingside := strings.ContainsRune(rights, kingside)
		canQueenside := strings.ContainsRune(rights, queenside)
		row := color.backRow()
		for c, p := range pieces {
			if p.Color != color {
				continue
			}
			switch {
			case p.Kind == King:
				p.HasMoved = c != (Coordinate{Row: row, Col: kingCol}) || !(canKingside || canQueenside)
			case p.Kind == Rook && c == (Coordinate{Row: row, Col: 7}):
				p.HasMoved = !canKingside
			case p.Kind == Rook && c == (Coordinate{Row: row, Col: 0}):
				p.HasMoved = !canQueenside
			case p.Kind == Rook:
				p.HasMoved = true
			case p.Kind == Pawn:
				p.HasMoved = c.Row != color.homeRow()
			}
			pieces[c] = p
		}
	}
	return nil
}

// FEN renders the position, including castling rights and en passant target derived from
// the pieces' flags.
func (b *Board) FEN() string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		empty := 0
		for col := 0; col < Size; col++ {
			p, ok := b.pieces[Coordinate{Row: row, Col: col}]
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(p.Symbol())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row < Size-1 {
			sb.WriteByte('/')
		}
	}

	if b.turn == Black {
		sb.WriteString(" b ")
	} else {
		sb.WriteString(" w ")
	}

	rights := b.castlingRights()
	if rights == "" {
		rights = "-"
	}
	sb.WriteString(rights)
	sb.WriteByte(' ')

	if p, ok := b.pieces[b.enPassant]; b.hasEnPassant && ok && p.JustDoubleStepped {
		target := b.enPassant.add(-p.Color.forward(), 0)
		sb.WriteString(strings.ToLower(target.String()))
	} else {
		sb.WriteByte('-')
	}

	fmt.Fprintf(&sb, " %d %d", b.halfMoveClock, b.fullMoveNumber)
	return sb.String()
}

func (b *Board) castlingRights() string {
	var sb strings.Builder
	for _, color := range []Color{White, Black} {
		row := color.backRow()
		king, ok := b.pieces[Coordinate{Row: row, Col: kingCol}]
		if !ok || king.Kind != King || king.Color != color || king.HasMoved {
			continue
		}
		for i, side := range castleSides {
			rook, ok := b.pieces[Coordinate{Row: row, Col: side.rookCol}]
			if !ok || rook.Kind != Rook || rook.Color != color || rook.HasMoved {
				continue
			}
			letter := "KQ"[i]
			if color == Black {
				letter |= 0x20
			}
			sb.WriteByte(letter)
		}
	}
	return sb.String()
}
