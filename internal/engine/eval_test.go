package engine

import (
	"strings"
	"testing"
	"unicode"

	"github.com/hailam/chesscore/internal/board"
)

// mirrorFEN flips the board vertically and swaps the colors of every
// piece, the side to move, the castling rights and the en passant square.
func mirrorFEN(fen string) string {
	fields := strings.Fields(fen)

	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	fields[0] = swapCase(strings.Join(ranks, "/"))

	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}

	if fields[2] != "-" {
		swapped := swapCase(fields[2])
		var cr strings.Builder
		for _, c := range "KQkq" {
			if strings.ContainsRune(swapped, c) {
				cr.WriteRune(c)
			}
		}
		fields[2] = cr.String()
	}

	if fields[3] != "-" {
		rank := map[byte]byte{'3': '6', '6': '3'}[fields[3][1]]
		fields[3] = string([]byte{fields[3][0], rank})
	}

	return strings.Join(fields, " ")
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsUpper(r) {
			return unicode.ToLower(r)
		}
		return unicode.ToUpper(r)
	}, s)
}

var evalFENs = []string{
	board.StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
	"4k3/1P6/8/8/8/8/6p1/4K3 w - - 0 1",
	"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
	"6k1/5ppp/8/8/8/8/3N1PPP/6K1 b - - 0 1",
}

func TestEvaluateStartingPositionIsZero(t *testing.T) {
	if got := Evaluate(board.NewPosition()); got != 0 {
		t.Errorf("Evaluate(start) = %d, want 0", got)
	}
}

func TestEvaluateMirrorSymmetry(t *testing.T) {
	ev := NewEvaluator()
	for _, fen := range evalFENs {
		pos := mustFEN(t, fen)
		mirror := mustFEN(t, mirrorFEN(fen))

		got, want := Evaluate(mirror), -Evaluate(pos)
		if got != want {
			t.Errorf("%s: mirrored score %d, want %d", fen, got, want)
		}
		// The cached path must agree with the uncached one.
		if cached := ev.Evaluate(pos); cached != Evaluate(pos) {
			t.Errorf("%s: cached score %d, uncached %d", fen, cached, Evaluate(pos))
		}
		if cached := ev.Evaluate(pos); cached != Evaluate(pos) {
			t.Errorf("%s: second cached score %d, uncached %d", fen, cached, Evaluate(pos))
		}
	}
}

func TestEvaluateIgnoresSideToMove(t *testing.T) {
	white := mustFEN(t, "4k3/8/8/3p4/8/2N5/8/4K3 w - - 0 1")
	black := mustFEN(t, "4k3/8/8/3p4/8/2N5/8/4K3 b - - 0 1")
	if Evaluate(white) != Evaluate(black) {
		t.Errorf("Score depends on side to move: %d vs %d", Evaluate(white), Evaluate(black))
	}
}

func TestEvaluateMaterialSign(t *testing.T) {
	up := mustFEN(t, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	if got := Evaluate(up); got <= 0 {
		t.Errorf("White up a queen scores %d", got)
	}
	down := mustFEN(t, "3qk3/8/8/8/8/8/8/4K3 w - - 0 1")
	if got := Evaluate(down); got >= 0 {
		t.Errorf("Black up a queen scores %d", got)
	}
	if got := EvaluateMaterial(up); got != QueenValue {
		t.Errorf("EvaluateMaterial = %d, want %d", got, QueenValue)
	}
}

func TestIsEndgame(t *testing.T) {
	if IsEndgame(board.NewPosition()) {
		t.Error("Starting position is not an endgame")
	}
	if !IsEndgame(mustFEN(t, "4k3/pppp4/8/8/8/8/PPPP4/4K3 w - - 0 1")) {
		t.Error("Eight pawns and two kings is an endgame")
	}
	if IsEndgame(mustFEN(t, "4k3/ppppp3/8/8/8/8/PPPP4/4K3 w - - 0 1")) {
		t.Error("Nine pieces is not an endgame")
	}
}

func TestPawnStructure(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want int
	}{
		{"symmetric", board.StartFEN, 0},
		// White a- and b-pawns are connected, both passed on rank 2.
		{"passed pair", "4k3/8/8/8/8/8/PP6/4K3 w - - 0 1", 2 * passedPawnBonus[1]},
		// Lone white pawn on d5: passed and isolated.
		{"isolated passer", "4k3/8/8/3P4/8/8/8/4K3 w - - 0 1", passedPawnBonus[4] + isolatedPawnPenalty},
		// Doubled isolated black pawns on the c-file, blocked by nothing white.
		{"doubled black", "4k3/2p5/2p5/8/8/8/8/4K3 w - - 0 1",
			-(passedPawnBonus[1] + passedPawnBonus[2] + isolatedPawnPenalty + doubledPawnPenalty)},
		// Doubled isolated white a-pawns held by a black b-pawn. Each side
		// pays the isolated penalty once, so only the doubling counts.
		{"doubled isolated file", "4k3/1p6/8/8/8/P7/P7/4K3 w - - 0 1", doubledPawnPenalty},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustFEN(t, tc.fen)
			if got := evaluatePawnStructure(pos); got != tc.want {
				t.Errorf("evaluatePawnStructure = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPawnShield(t *testing.T) {
	pos := mustFEN(t, "6k1/5ppp/8/8/8/8/5PP1/6K1 w - - 0 1")
	if got := pawnShield(pos, board.White); got != 2*pawnShieldBonus {
		t.Errorf("White shield = %d, want %d", got, 2*pawnShieldBonus)
	}
	if got := pawnShield(pos, board.Black); got != 3*pawnShieldBonus {
		t.Errorf("Black shield = %d, want %d", got, 3*pawnShieldBonus)
	}
}

func TestMirrorFEN(t *testing.T) {
	got := mirrorFEN("rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3")
	want := "rnbqkbnr/pppp1ppp/8/8/3PpP2/8/PPP1P1PP/RNBQKBNR b KQkq f3 0 3"
	if got != want {
		t.Errorf("mirrorFEN = %q, want %q", got, want)
	}
}
