// Package engine implements the chess AI: a handcrafted evaluator and an
// iterative-deepening alpha-beta search.
package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// Evaluation constants
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
)

// Piece values array for quick lookup. The king has no material value;
// mates are scored by the search.
var pieceValues = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, 0, 0}

// Passed pawn bonuses by relative rank. Index 1 is the pawn's start rank,
// index 6 is one step from promotion.
var passedPawnBonus = [8]int{0, 5, 15, 30, 50, 75, 100, 0}

// Pawn structure penalties
const (
	doubledPawnPenalty  = -10 // Per extra pawn on a file
	isolatedPawnPenalty = -15 // Per file with no friendly pawn on adjacent files
)

const (
	pawnShieldBonus = 5 // Per own pawn directly in front of the king, middlegame only
	centerBonus     = 5 // Pawn or minor piece on c3-f6
	coreCenterBonus = 5 // Extra for d4, e4, d5, e5
)

// endgamePieceCount is the number of non-king pieces at or below which
// the king switches to its endgame table.
const endgamePieceCount = 8

// Piece-Square Tables (PST), laid out as White sees the board: the first
// row is rank 8. White pieces index them with the mirrored square, black
// pieces with the square itself.

// Pawn PST - encourages central control and advancement
var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -25, -25, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

// Knight PST - encourages central positioning
var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

// Bishop PST - encourages central diagonals
var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

// Rook PST - encourages 7th rank
var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

// Queen PST - slight central preference
var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

// King PST (middlegame) - encourages castling
var kingMidgamePST = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

// King PST (endgame) - king should be active
var kingEndgamePST = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

// All PSTs combined for easy lookup; the king row is the middlegame table.
var psts = [...][64]int{
	pawnPST, knightPST, bishopPST, rookPST, queenPST, kingMidgamePST,
}

// pstIndex maps a square to its table entry for a piece of color c.
func pstIndex(sq board.Square, c board.Color) board.Square {
	if c == board.White {
		return sq.Mirror()
	}
	return sq
}

// Evaluator scores positions, caching pawn structure between calls.
// The score depends on the position alone; the cache only saves work.
type Evaluator struct {
	pawns *PawnTable
}

// NewEvaluator creates an evaluator with a 1MB pawn hash table.
func NewEvaluator() *Evaluator {
	return &Evaluator{pawns: NewPawnTable(1)}
}

// Evaluate returns the static evaluation from White's perspective.
func (ev *Evaluator) Evaluate(pos *board.Position) int {
	return evaluate(pos, ev.pawns)
}

// Clear drops the cached pawn structure scores.
func (ev *Evaluator) Clear() {
	ev.pawns.Clear()
}

// Evaluate returns the static evaluation of the position from White's
// perspective: positive favors White. The score is never negated for the
// side to move.
func Evaluate(pos *board.Position) int {
	return evaluate(pos, nil)
}

func evaluate(pos *board.Position, pawnTable *PawnTable) int {
	var material, pst, kingSafety, center [2]int

	endgame := IsEndgame(pos)

	for sq := board.A1; sq <= board.H8; sq++ {
		piece := pos.Board[sq]
		if piece == board.NoPiece {
			continue
		}
		c := piece.Color()
		pt := piece.Type()

		material[c] += pieceValues[pt]

		idx := pstIndex(sq, c)
		if pt == board.King && endgame {
			pst[c] += kingEndgamePST[idx]
		} else {
			pst[c] += psts[pt][idx]
		}

		if pt == board.Pawn || pt.IsMinor() {
			center[c] += centerScore(sq)
		}
	}

	if !endgame {
		kingSafety[board.White] = pawnShield(pos, board.White)
		kingSafety[board.Black] = pawnShield(pos, board.Black)
	}

	pawns := evaluatePawnStructureWithCache(pos, pawnTable)

	// Each term is White minus Black before scaling, so a color-flipped
	// position scores exactly the negation.
	score := material[board.White] - material[board.Black]
	score += (pst[board.White] - pst[board.Black]) / 2
	score += pawns * 4 / 5
	score += kingSafety[board.White] - kingSafety[board.Black]
	score += (center[board.White] - center[board.Black]) * 7 / 10

	return score
}

// EvaluateMaterial returns just the material balance.
func EvaluateMaterial(pos *board.Position) int {
	return pos.Material()
}

// IsEndgame returns true once few enough non-king pieces remain for the
// king to leave shelter.
func IsEndgame(pos *board.Position) bool {
	pieces := 0
	for _, piece := range pos.Board {
		if piece != board.NoPiece && piece.Type() != board.King {
			pieces++
		}
	}
	return pieces <= endgamePieceCount
}

// centerScore rewards occupying the expanded center.
func centerScore(sq board.Square) int {
	f, r := sq.File(), sq.Rank()
	if f < 2 || f > 5 || r < 2 || r > 5 {
		return 0
	}
	score := centerBonus
	if f >= 3 && f <= 4 && r >= 3 && r <= 4 {
		score += coreCenterBonus
	}
	return score
}

// pawnShield counts own pawns on the three squares in front of the king.
func pawnShield(pos *board.Position, c board.Color) int {
	kingSq := pos.KingSquare[c]
	pawn := board.NewPiece(board.Pawn, c)
	bonus := 0
	for df := -1; df <= 1; df++ {
		if sq, ok := kingSq.Offset(df, c.PawnPush()); ok && pos.Board[sq] == pawn {
			bonus += pawnShieldBonus
		}
	}
	return bonus
}

// isPassedPawn checks if a pawn at the given square is a passed pawn:
// no enemy pawn ahead of it on its own or an adjacent file.
func isPassedPawn(pos *board.Position, sq board.Square, color board.Color) bool {
	enemyPawn := board.NewPiece(board.Pawn, color.Other())
	push := color.PawnPush()
	for df := -1; df <= 1; df++ {
		f := sq.File() + df
		if f < 0 || f > 7 {
			continue
		}
		for r := sq.Rank() + push; r >= 0 && r <= 7; r += push {
			if pos.Board[board.NewSquare(f, r)] == enemyPawn {
				return false
			}
		}
	}
	return true
}

// evaluatePawnStructure scores passed, doubled and isolated pawns,
// White minus Black.
func evaluatePawnStructure(pos *board.Position) int {
	var score [2]int
	var fileCount [2][8]int

	for sq := board.A1; sq <= board.H8; sq++ {
		if piece := pos.Board[sq]; piece.Type() == board.Pawn {
			fileCount[piece.Color()][sq.File()]++
		}
	}

	for sq := board.A1; sq <= board.H8; sq++ {
		piece := pos.Board[sq]
		if piece.Type() != board.Pawn {
			continue
		}
		c := piece.Color()
		if isPassedPawn(pos, sq, c) {
			score[c] += passedPawnBonus[sq.RelativeRank(c)]
		}
	}

	// Doubled and isolated penalties are charged once per file.
	for c := board.White; c <= board.Black; c++ {
		for f := 0; f < 8; f++ {
			n := fileCount[c][f]
			if n == 0 {
				continue
			}
			if n > 1 {
				score[c] += doubledPawnPenalty * (n - 1)
			}
			left := f > 0 && fileCount[c][f-1] > 0
			right := f < 7 && fileCount[c][f+1] > 0
			if !left && !right {
				score[c] += isolatedPawnPenalty
			}
		}
	}

	return score[board.White] - score[board.Black]
}

// evaluatePawnStructureWithCache evaluates pawn structure using the pawn hash table.
func evaluatePawnStructureWithCache(pos *board.Position, pt *PawnTable) int {
	if pt == nil {
		return evaluatePawnStructure(pos)
	}
	if score, ok := pt.Probe(pos.PawnKey); ok {
		return score
	}
	score := evaluatePawnStructure(pos)
	pt.Store(pos.PawnKey, score)
	return score
}
