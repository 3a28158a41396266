package engine

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("Failed to parse FEN %q: %v", fen, err)
	}
	return pos
}

func isLegal(pos *board.Position, m board.Move) bool {
	return slices.Contains(pos.LegalMoves(), m)
}

func TestSearchBasic(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16, WithSeed(1))
	eng.SetDifficulty(Easy)

	move := eng.Search(pos)
	if move.IsNull() {
		t.Fatal("Search returned NoMove for starting position")
	}
	if !isLegal(pos, move) {
		t.Errorf("Search returned illegal move %s", move)
	}
	t.Logf("Best move: %s", move.String())
}

func TestSearchLeavesPositionUnchanged(t *testing.T) {
	pos := mustFEN(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	fen, hash, ply := pos.ToFEN(), pos.Hash, pos.Ply()

	eng := NewEngine(16)
	eng.GetBestMove(pos, 3, 0)

	if pos.ToFEN() != fen || pos.Hash != hash || pos.Ply() != ply {
		t.Errorf("Position changed by search: got %s, want %s", pos.ToFEN(), fen)
	}
}

func TestMateInOne(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want string
	}{
		{"white back rank", "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8"},
		{"black back rank", "r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1", "a8a1"},
		{"queen and king", "k7/8/1K6/8/8/8/8/2Q5 w - - 0 1", "c1c8"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustFEN(t, tc.fen)
			eng := NewEngine(16)

			for depth := 1; depth <= 3; depth++ {
				move, score := eng.SearchDepth(pos, depth)
				if move.String() != tc.want {
					t.Errorf("depth %d: got %s, want %s", depth, move, tc.want)
				}
				if !IsMateScore(score) {
					t.Errorf("depth %d: score %d is not a mate score", depth, score)
				}
				if pos.SideToMove == board.White && score <= 0 {
					t.Errorf("depth %d: White mates but score is %d", depth, score)
				}
				if pos.SideToMove == board.Black && score >= 0 {
					t.Errorf("depth %d: Black mates but score is %d", depth, score)
				}
			}
		})
	}
}

func TestAvoidsStalemateWhenWinning(t *testing.T) {
	// Qc7 stalemates; Qc8 mates.
	pos := mustFEN(t, "k7/8/1K6/8/8/8/8/2Q5 w - - 0 1")
	eng := NewEngine(16)

	for depth := 1; depth <= 3; depth++ {
		move, _ := eng.SearchDepth(pos, depth)
		if move.String() == "c1c7" {
			t.Errorf("depth %d: engine chose the stalemating move", depth)
		}
	}
}

func TestSearchDeterministic(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}

	for _, fen := range fens {
		pos := mustFEN(t, fen)
		first, firstScore := NewEngine(8).SearchDepth(pos, 3)

		eng := NewEngine(8)
		for i := 0; i < 3; i++ {
			move, score := eng.SearchDepth(pos, 3)
			if move != first || score != firstScore {
				t.Errorf("%s: run %d got %s (%d), first run got %s (%d)",
					fen, i, move, score, first, firstScore)
			}
		}
	}
}

func TestSearchTimeoutReturnsLegalMove(t *testing.T) {
	pos := mustFEN(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	fen := pos.ToFEN()

	eng := NewEngine(16, WithSeed(7))
	move := eng.GetBestMove(pos, 20, time.Nanosecond)

	if move.IsNull() {
		t.Fatal("Expected a fallback move after timeout")
	}
	if !isLegal(pos, move) {
		t.Errorf("Fallback move %s is not legal", move)
	}
	// Kiwipete has captures, so the fallback is the best capture.
	if !move.IsCapture() {
		t.Errorf("Fallback move %s is not a capture", move)
	}
	if pos.ToFEN() != fen {
		t.Errorf("Position changed: got %s, want %s", pos.ToFEN(), fen)
	}
}

func TestSearchRespectsBudget(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timed search in short mode")
	}
	pos := board.NewPosition()
	eng := NewEngine(16)

	budget := 200 * time.Millisecond
	start := time.Now()
	move := eng.GetBestMove(pos, 64, budget)
	elapsed := time.Since(start)

	if move.IsNull() {
		t.Fatal("Expected a move")
	}
	if elapsed > budget+150*time.Millisecond {
		t.Errorf("Search took %v with a %v budget", elapsed, budget)
	}
}

func TestSearchNoMoves(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		checkmate bool
	}{
		{"checkmate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", true},
		{"stalemate", "8/8/8/8/8/kq6/8/K7 w - - 0 1", false},
		{"bare kings", "8/8/4k3/8/8/3K4/8/8 w - - 0 1", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustFEN(t, tc.fen)
			move := NewEngine(1).GetBestMove(pos, 3, time.Second)
			if !move.IsNull() {
				t.Errorf("Expected NoMove, got %s", move)
			}
			if pos.Checkmate != tc.checkmate {
				t.Errorf("Checkmate = %v, want %v", pos.Checkmate, tc.checkmate)
			}
			if pos.Stalemate == tc.checkmate {
				t.Errorf("Stalemate = %v, want %v", pos.Stalemate, !tc.checkmate)
			}
		})
	}
}

func TestSearchRecoversFromPanic(t *testing.T) {
	pos := board.NewPosition()
	pos.ApplyMove(mustParse(t, pos, "e2e4"))
	fen, ply := pos.ToFEN(), pos.Ply()

	eng := NewEngine(1, WithSeed(3))
	// A nil evaluator fails on the first leaf, several moves below the root.
	eng.eval = nil

	move := eng.GetBestMove(pos, 3, 0)
	if move.IsNull() || !isLegal(pos, move) {
		t.Errorf("Expected a legal fallback move, got %s", move)
	}
	if pos.ToFEN() != fen || pos.Ply() != ply {
		t.Errorf("Position not restored: got %s at ply %d, want %s at ply %d",
			pos.ToFEN(), pos.Ply(), fen, ply)
	}
}

func mustParse(t *testing.T, pos *board.Position, s string) board.Move {
	t.Helper()
	m, err := board.ParseMove(s, pos)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", s, err)
	}
	return m
}

func TestSearchInfo(t *testing.T) {
	pos := board.NewPosition()
	var infos []SearchInfo
	eng := NewEngine(16, WithInfo(func(info SearchInfo) {
		infos = append(infos, info)
	}))

	move := eng.GetBestMove(pos, 3, 0)

	if len(infos) != 3 {
		t.Fatalf("Expected 3 info reports, got %d", len(infos))
	}
	for i, info := range infos {
		if info.Depth != i+1 {
			t.Errorf("report %d: depth %d", i, info.Depth)
		}
		if info.Nodes == 0 {
			t.Errorf("report %d: no nodes counted", i)
		}
	}
	last := infos[len(infos)-1]
	if len(last.PV) == 0 || last.PV[0] != move {
		t.Errorf("PV %v does not start with the returned move %s", last.PV, move)
	}
	if last.Left != 0 {
		t.Errorf("Unlimited search reported %v left", last.Left)
	}

	// With a budget the report carries the time still available.
	infos = nil
	eng.GetBestMove(pos, 2, time.Hour)
	if len(infos) == 0 {
		t.Fatal("No info reports with a budget")
	}
	for _, info := range infos {
		if info.Left <= 0 || info.Left > time.Hour {
			t.Errorf("depth %d: Left = %v", info.Depth, info.Left)
		}
	}
}

func TestDifficulty(t *testing.T) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		got, err := ParseDifficulty(strings.ToUpper(d.String()))
		if err != nil || got != d {
			t.Errorf("ParseDifficulty(%q) = %v, %v", d.String(), got, err)
		}
	}
	if _, err := ParseDifficulty("grandmaster"); err == nil {
		t.Error("Expected error for unknown difficulty")
	}

	if DifficultySettings[Easy].Depth != 2 || DifficultySettings[Medium].Depth != 3 || DifficultySettings[Hard].Depth != 4 {
		t.Errorf("Unexpected difficulty depths: %+v", DifficultySettings)
	}

	eng := NewEngine(1, WithDifficulty(Hard))
	if eng.Difficulty() != Hard {
		t.Errorf("Difficulty = %v, want hard", eng.Difficulty())
	}
}

func TestPerft(t *testing.T) {
	pos := board.NewPosition()
	want := []uint64{1, 20, 400, 8902}
	for depth, n := range want {
		if got := Perft(pos, depth); got != n {
			t.Errorf("Perft(%d) = %d, want %d", depth, got, n)
		}
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "+0.00"},
		{150, "+1.50"},
		{-75, "-0.75"},
		{MateScore - 1, "White mates in 1"},
		{-(MateScore - 3), "Black mates in 2"},
	}
	for _, tc := range tests {
		if got := ScoreToString(tc.score); got != tc.want {
			t.Errorf("ScoreToString(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
