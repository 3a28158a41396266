package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

const (
	// quiescenceDepth bounds the capture-only search below the horizon.
	quiescenceDepth = 4

	// Node masks for polling the clock.
	checkMask      = 2047
	quiescenceMask = 1023
)

// Stalemate scoring. A draw is pushed away from the side that is ahead
// on material so a winning engine avoids stumbling into one, and a losing
// engine steers towards it. Disable with WithDrawBias(false).
const (
	drawBiasThreshold = 300
	drawBias          = 50
)

// searcher holds the state of one call to GetBestMove.
type searcher struct {
	tt       *TranspositionTable
	eval     *Evaluator
	orderer  *MoveOrderer
	tm       *TimeManager
	drawBias bool

	nodes   uint64
	stopped bool
}

// IsMateScore reports whether a score encodes a forced mate.
func IsMateScore(score int) bool {
	return abs(score) > MateScore-MaxPly
}

// poll checks the clock every mask+1 nodes.
func (s *searcher) poll(mask uint64) bool {
	s.nodes++
	if s.nodes&mask == 0 && s.tm.ShouldStop() {
		s.stopped = true
	}
	return s.stopped
}

// drawScore scores a position with no moves that is not checkmate.
func (s *searcher) drawScore(pos *board.Position) int {
	if !s.drawBias {
		return 0
	}
	material := EvaluateMaterial(pos)
	switch {
	case material > drawBiasThreshold:
		return -drawBias
	case material < -drawBiasThreshold:
		return drawBias
	}
	return 0
}

// mateScore scores a checkmate at the given distance from the root.
// White being mated is the worst outcome for White, and sooner is worse.
func mateScore(pos *board.Position, ply int) int {
	if pos.SideToMove == board.White {
		return -MateScore + ply
	}
	return MateScore - ply
}

// searchRoot searches every root move to the given depth. White
// maximizes and Black minimizes; ties keep the earlier move.
func (s *searcher) searchRoot(pos *board.Position, moves []board.Move, depth int) (board.Move, int) {
	maximizing := pos.SideToMove == board.White
	alpha, beta := -Infinity, Infinity
	bestMove := moves[0]
	bestScore := -Infinity
	if !maximizing {
		bestScore = Infinity
	}

	for _, m := range moves {
		if s.tm.ShouldStop() {
			s.stopped = true
		}
		if s.stopped {
			return board.NoMove, 0
		}

		pos.ApplyMove(m)
		score := s.alphaBeta(pos, depth-1, 1, alpha, beta)
		pos.UnapplyMove()

		if s.stopped {
			return board.NoMove, 0
		}

		if maximizing {
			if score > bestScore {
				bestScore, bestMove = score, m
			}
			alpha = max(alpha, score)
		} else {
			if score < bestScore {
				bestScore, bestMove = score, m
			}
			beta = min(beta, score)
		}
	}

	s.tt.Store(pos.Hash, depth, AdjustScoreToTT(bestScore, 0), TTExact, bestMove)
	return bestMove, bestScore
}

// alphaBeta is a fail-soft minimax search with alpha-beta pruning.
// Scores are from White's perspective throughout.
func (s *searcher) alphaBeta(pos *board.Position, depth, ply, alpha, beta int) int {
	if s.poll(checkMask) {
		return 0
	}

	if pos.Occurrences(pos.Hash) >= 3 {
		return s.drawScore(pos)
	}

	alphaOrig, betaOrig := alpha, beta

	ttMove := board.NoMove
	if entry, ok := s.tt.Probe(pos.Hash); ok {
		ttMove = entry.BestMove
		if int(entry.Depth) >= depth {
			score := AdjustScoreFromTT(int(entry.Score), ply)
			switch entry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				alpha = max(alpha, score)
			case TTUpperBound:
				beta = min(beta, score)
			}
			if alpha >= beta {
				return score
			}
		}
	}

	if depth <= 0 || ply >= MaxPly-1 {
		return s.quiescence(pos, ply, alpha, beta, quiescenceDepth)
	}

	moves := pos.ValidMoves()
	if len(moves) == 0 {
		if pos.Checkmate {
			return mateScore(pos, ply)
		}
		return s.drawScore(pos)
	}

	s.orderer.OrderMoves(moves, ttMove, ply)

	maximizing := pos.SideToMove == board.White
	best := -Infinity
	if !maximizing {
		best = Infinity
	}
	bestMove := moves[0]

	for _, m := range moves {
		pos.ApplyMove(m)
		score := s.alphaBeta(pos, depth-1, ply+1, alpha, beta)
		pos.UnapplyMove()

		if s.stopped {
			return 0
		}

		if maximizing {
			if score > best {
				best, bestMove = score, m
			}
			alpha = max(alpha, score)
		} else {
			if score < best {
				best, bestMove = score, m
			}
			beta = min(beta, score)
		}

		if alpha >= beta {
			s.orderer.UpdateKillers(m, ply)
			break
		}
	}

	flag := TTExact
	if best <= alphaOrig {
		flag = TTUpperBound
	} else if best >= betaOrig {
		flag = TTLowerBound
	}
	s.tt.Store(pos.Hash, depth, AdjustScoreToTT(best, ply), flag, bestMove)

	return best
}

// quiescence searches captures and promotions only, standing pat on the
// static evaluation, until the position is quiet or depthLeft runs out.
func (s *searcher) quiescence(pos *board.Position, ply, alpha, beta, depthLeft int) int {
	if s.poll(quiescenceMask) {
		return 0
	}

	// Standing pat is not allowed when mated.
	if pos.InCheck() && !pos.HasLegalMoves() {
		return mateScore(pos, ply)
	}

	standPat := s.eval.Evaluate(pos)
	if depthLeft == 0 || ply >= MaxPly-1 {
		return standPat
	}

	maximizing := pos.SideToMove == board.White
	if maximizing {
		if standPat >= beta {
			return standPat
		}
		alpha = max(alpha, standPat)
	} else {
		if standPat <= alpha {
			return standPat
		}
		beta = min(beta, standPat)
	}

	moves := pos.LegalCaptures()
	s.orderer.OrderMoves(moves, board.NoMove, ply)

	best := standPat
	for _, m := range moves {
		pos.ApplyMove(m)
		score := s.quiescence(pos, ply+1, alpha, beta, depthLeft-1)
		pos.UnapplyMove()

		if s.stopped {
			return 0
		}

		if maximizing {
			best = max(best, score)
			alpha = max(alpha, score)
		} else {
			best = min(best, score)
			beta = min(beta, score)
		}
		if alpha >= beta {
			break
		}
	}

	return best
}

// principalVariation follows best moves through the transposition table.
// Moves are checked against the legal list before being played, and the
// position is restored before returning.
func (s *searcher) principalVariation(pos *board.Position, maxLen int) []board.Move {
	var pv []board.Move
	seen := make(map[uint64]bool)

	for len(pv) < maxLen && !seen[pos.Hash] {
		seen[pos.Hash] = true
		entry, ok := s.tt.Probe(pos.Hash)
		if !ok || entry.BestMove.IsNull() {
			break
		}
		legal := false
		for _, m := range pos.LegalMoves() {
			if m == entry.BestMove {
				legal = true
				break
			}
		}
		if !legal {
			break
		}
		pos.ApplyMove(entry.BestMove)
		pv = append(pv, entry.BestMove)
	}

	for range pv {
		pos.UnapplyMove()
	}
	return pv
}
