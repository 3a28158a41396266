package board

import (
	"slices"
	"strings"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"
)

// uci renders a move as from-to squares plus promotion letter, with
// castling written as the king's step.
func uci(m Move) string {
	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += string(m.PromotionPiece().Type().Char())
	}
	return s
}

// oracleMoves lists the legal moves of fen according to dragontoothmg.
// Underpromotions are dropped since only queen promotions are generated.
func oracleMoves(fen string) []string {
	b := dragontoothmg.ParseFen(fen)
	var out []string
	for _, m := range b.GenerateLegalMoves() {
		s := m.String()
		if len(s) == 5 && !strings.HasSuffix(s, "q") {
			continue
		}
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

func ourMoves(p *Position) []string {
	var out []string
	for _, m := range p.LegalMoves() {
		out = append(out, uci(m))
	}
	slices.Sort(out)
	return out
}

// compareTree checks every node to the given depth against the oracle.
func compareTree(t *testing.T, p *Position, depth int) {
	fen := p.ToFEN()
	want := oracleMoves(fen)
	got := ourMoves(p)
	if !slices.Equal(got, want) {
		t.Fatalf("%s\n got  %v\n want %v", fen, got, want)
	}
	if depth == 0 {
		return
	}
	for _, m := range p.LegalMoves() {
		p.ApplyMove(m)
		compareTree(t, p, depth-1)
		p.UnapplyMove()
	}
}

func TestMovesMatchOracle(t *testing.T) {
	fens := append(slices.Clone(testFENs),
		"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	)
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			pos, err := ParseFEN(fen)
			if err != nil {
				t.Fatal(err)
			}
			depth := 2
			if testing.Short() {
				depth = 1
			}
			compareTree(t, pos, depth)
		})
	}
}

func TestTerminalMatchesOracle(t *testing.T) {
	tests := []struct {
		fen    string
		method chess.Method
	}{
		{"R6k/6pp/8/8/8/8/8/K7 b - - 0 1", chess.Checkmate},
		{"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", chess.Checkmate},
		{"8/8/8/8/8/kq6/8/K7 w - - 0 1", chess.Stalemate},
		{"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", chess.Stalemate},
		{"6Rk/8/8/8/8/8/8/K7 b - - 0 1", chess.NoMethod},
	}

	for _, tc := range tests {
		t.Run(tc.fen, func(t *testing.T) {
			fen, err := chess.FEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			game := chess.NewGame(fen)
			if got := game.Position().Status(); got != tc.method {
				t.Fatalf("oracle status = %v, want %v", got, tc.method)
			}

			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			moves := pos.ValidMoves()
			if pos.Checkmate != (tc.method == chess.Checkmate) {
				t.Errorf("checkmate = %v, oracle says %v", pos.Checkmate, tc.method)
			}
			if pos.Stalemate != (tc.method == chess.Stalemate) {
				t.Errorf("stalemate = %v, oracle says %v", pos.Stalemate, tc.method)
			}
			if len(moves) != len(game.ValidMoves()) {
				t.Errorf("%d moves, oracle has %d", len(moves), len(game.ValidMoves()))
			}
		})
	}
}
