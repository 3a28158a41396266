package engine

import (
	"slices"

	"github.com/hailam/chesscore/internal/board"
)

// Move ordering priorities. Ordering only changes how fast the search
// runs, never the score it returns.
const (
	TTMoveScore    = 10000000 // TT move gets highest priority
	CaptureBonus   = 1000     // Flat bonus putting every capture ahead of quiet moves
	PromotionBonus = 900      // Queen value
	KillerScore1   = 500      // First killer move
	KillerScore2   = 400      // Second killer move
)

// MoveOrderer handles move ordering for the search.
type MoveOrderer struct {
	// Killer moves (quiet moves that caused beta cutoffs)
	killers [MaxPly][2]board.Move
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets the move orderer for a new search.
func (mo *MoveOrderer) Clear() {
	clear(mo.killers[:])
}

// mvvLva scores a capture by victim value times ten minus attacker value.
func mvvLva(m board.Move) int {
	return m.Captured.Value()*10 - m.Piece.Value()
}

// ScoreMove returns the ordering score of a move.
func (mo *MoveOrderer) ScoreMove(m board.Move, ttMove board.Move, ply int) int {
	if !ttMove.IsNull() && m == ttMove {
		return TTMoveScore
	}

	score := 0
	if m.IsCapture() {
		score += mvvLva(m) + CaptureBonus
	}
	if m.IsPromotion() {
		score += PromotionBonus
	}
	if score == 0 && ply < MaxPly {
		if m == mo.killers[ply][0] {
			return KillerScore1
		}
		if m == mo.killers[ply][1] {
			return KillerScore2
		}
	}
	return score
}

// OrderMoves sorts moves best first. The sort is stable, so moves with
// equal scores keep generation order and the search stays deterministic.
func (mo *MoveOrderer) OrderMoves(moves []board.Move, ttMove board.Move, ply int) {
	if len(moves) < 2 {
		return
	}

	type scored struct {
		move  board.Move
		score int
	}
	list := make([]scored, len(moves))
	for i, m := range moves {
		list[i] = scored{m, mo.ScoreMove(m, ttMove, ply)}
	}

	slices.SortStableFunc(list, func(a, b scored) int {
		return b.score - a.score
	})

	for i := range list {
		moves[i] = list[i].move
	}
}

// UpdateKillers records a quiet move that caused a cutoff.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || !m.IsQuiet() {
		return
	}
	if mo.killers[ply][0] != m {
		mo.killers[ply][1] = mo.killers[ply][0]
		mo.killers[ply][0] = m
	}
}
