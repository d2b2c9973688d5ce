package chess

import (
	"sort"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/google/go-cmp/cmp"
)

// The tests in this file cross-check move generation against dragontoothmg. Promotions are
// collapsed to a single from/to pair since this package does not model them.

type fromTo struct {
	From, To Coordinate
}

func squareToCoordinate(sq uint8) Coordinate {
	return Coordinate{Row: Size - 1 - int(sq/8), Col: int(sq % 8)}
}

func referenceMoves(fen string) ([]fromTo, bool) {
	ref := dragontoothmg.ParseFen(fen)
	seen := make(map[fromTo]bool)
	var out []fromTo
	for _, mv := range ref.GenerateLegalMoves() {
		mv := mv
		ft := fromTo{From: squareToCoordinate(mv.From()), To: squareToCoordinate(mv.To())}
		if seen[ft] {
			continue
		}
		seen[ft] = true
		out = append(out, ft)
	}
	sortFromTo(out)
	return out, ref.OurKingInCheck()
}

func legalMoves(b *Board) []Move {
	var out []Move
	for _, from := range b.OccupiedBy(b.Turn()) {
		out = append(out, b.LegalMoves(from)...)
	}
	return out
}

func toFromTo(mvs []Move) []fromTo {
	out := make([]fromTo, 0, len(mvs))
	for _, mv := range mvs {
		out = append(out, fromTo{From: mv.Start, To: mv.End})
	}
	sortFromTo(out)
	return out
}

func sortFromTo(fts []fromTo) {
	key := func(c Coordinate) int { return c.Row*Size + c.Col }
	sort.Slice(fts, func(i, j int) bool {
		if a, b := key(fts[i].From), key(fts[j].From); a != b {
			return a < b
		}
		return key(fts[i].To) < key(fts[j].To)
	})
}

func TestLegalMovesMatchReference(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		fen  string
		want int
	}{
		{name: "start", fen: DefaultStartingPositionFEN, want: 20},
		{name: "kiwipete", fen: "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", want: 48},
		{name: "rook endgame", fen: "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", want: 14},
		{name: "in check", fen: "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", want: 6},
		{name: "en passant", fen: "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3", want: 31},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := mustBoard(t, tt.fen)
			want, inCheck := referenceMoves(tt.fen)
			got := toFromTo(legalMoves(b))

			if len(got) != tt.want {
				t.Errorf("unexpected move count: got=%d want=%d", len(got), tt.want)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("legal moves mismatch (-want +got):\n%s", diff)
			}
			if b.IsInCheck(b.Turn()) != inCheck {
				t.Errorf("IsInCheck(%v) = %v; reference says %v", b.Turn(), !inCheck, inCheck)
			}
		})
	}
}

// TestRandomWalkMatchesReference plays a deterministic game, comparing the legal move set and
// check status after every ply. Moves onto the last rank are never chosen.
func TestRandomWalkMatchesReference(t *testing.T) {
	t.Parallel()
	b := mustBoard(t, DefaultStartingPositionFEN)

	for ply := 0; ply < 120; ply++ {
		fen := b.FEN()
		want, inCheck := referenceMoves(fen)
		mvs := legalMoves(b)
		if diff := cmp.Diff(want, toFromTo(mvs)); diff != "" {
			t.Fatalf("ply %d (%s): legal moves mismatch (-want +got):\n%s", ply, fen, diff)
		}
		if got := b.IsInCheck(b.Turn()); got != inCheck {
			t.Fatalf("ply %d (%s): IsInCheck = %v; reference says %v", ply, fen, got, inCheck)
		}

		if len(mvs) == 0 {
			if b.IsCheckmate(b.Turn()) != inCheck {
				t.Errorf("ply %d (%s): checkmate disagrees with reference", ply, fen)
			}
			return
		}
		var candidates []Move
		for _, mv := range mvs {
			if p, _ := b.PieceAt(mv.Start); p.Kind == Pawn && (mv.End.Row == 0 || mv.End.Row == Size-1) {
				continue
			}
			candidates = append(candidates, mv)
		}
		if len(candidates) == 0 {
			return
		}
		mv := candidates[(ply*7+3)%len(candidates)]
		if _, err := b.Move(mv.Start, mv.End); err != nil {
			t.Fatalf("ply %d (%s): Move(%v): %v", ply, fen, mv, err)
		}
	}
}
