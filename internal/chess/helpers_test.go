package chess

import "testing"

func mustBoard(t *testing.T, fen string) *Board {
	t.Helper()
	b, err := NewBoard(WithFEN(fen))
	if err != nil {
		t.Fatalf("NewBoard(%q): %v", fen, err)
	}
	return b
}

func sq(t *testing.T, name string) Coordinate {
	t.Helper()
	c, err := ParseCoordinate(name)
	if err != nil {
		t.Fatalf("ParseCoordinate(%q): %v", name, err)
	}
	return c
}

func mustMove(t *testing.T, b *Board, from, to string) Move {
	t.Helper()
	mv, err := b.Move(sq(t, from), sq(t, to))
	if err != nil {
		t.Fatalf("Move(%s, %s): %v", from, to, err)
	}
	return mv
}

func kinds(mvs []Move, kind MoveKind) []Move {
	var out []Move
	for _, mv := range mvs {
		if mv.Kind == kind {
			out = append(out, mv)
		}
	}
	return out
}
