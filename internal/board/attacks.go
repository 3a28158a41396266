package board

// Direction is a (file, rank) step.
type Direction struct {
	DF, DR int
}

var (
	knightSteps = [8]Direction{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8]Direction{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}

	// Rook directions first, then bishop directions.
	queenDirs = [8]Direction{{0, 1}, {1, 0}, {0, -1}, {-1, 0}, {1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
)

// Pre-computed target squares for non-sliding pieces and rays for
// sliders. rays[d][sq] lists the squares walked from sq in queenDirs[d],
// nearest first.
var (
	knightTargets [64][]Square
	kingTargets   [64][]Square
	rays          [8][64][]Square
)

func init() {
	initStepTargets()
	initRays()
}

func initStepTargets() {
	for sq := A1; sq <= H8; sq++ {
		for _, d := range knightSteps {
			if to, ok := sq.Offset(d.DF, d.DR); ok {
				knightTargets[sq] = append(knightTargets[sq], to)
			}
		}
		for _, d := range kingSteps {
			if to, ok := sq.Offset(d.DF, d.DR); ok {
				kingTargets[sq] = append(kingTargets[sq], to)
			}
		}
	}
}

func initRays() {
	for i, d := range queenDirs {
		for sq := A1; sq <= H8; sq++ {
			cur := sq
			for {
				next, ok := cur.Offset(d.DF, d.DR)
				if !ok {
					break
				}
				rays[i][sq] = append(rays[i][sq], next)
				cur = next
			}
		}
	}
}

// KnightTargets returns the squares a knight on sq attacks.
func KnightTargets(sq Square) []Square {
	return knightTargets[sq]
}

// KingTargets returns the squares a king on sq attacks.
func KingTargets(sq Square) []Square {
	return kingTargets[sq]
}

// IsSquareAttacked returns true if the square is attacked by the given color.
// It scans outwards from sq for pawns, knights, the king and sliders
// instead of generating the opponent's moves.
func (p *Position) IsSquareAttacked(sq Square, byColor Color) bool {
	// A pawn of byColor attacks sq from one rank behind it.
	pawn := NewPiece(Pawn, byColor)
	for _, df := range [2]int{-1, 1} {
		if from, ok := sq.Offset(df, -byColor.PawnPush()); ok && p.Board[from] == pawn {
			return true
		}
	}

	knight := NewPiece(Knight, byColor)
	for _, from := range knightTargets[sq] {
		if p.Board[from] == knight {
			return true
		}
	}

	king := NewPiece(King, byColor)
	for _, from := range kingTargets[sq] {
		if p.Board[from] == king {
			return true
		}
	}

	queen := NewPiece(Queen, byColor)
	for d := range queenDirs {
		slider := NewPiece(Rook, byColor)
		if d >= 4 {
			slider = NewPiece(Bishop, byColor)
		}
		for _, from := range rays[d][sq] {
			piece := p.Board[from]
			if piece == NoPiece {
				continue
			}
			if piece == slider || piece == queen {
				return true
			}
			break
		}
	}

	return false
}

// Attackers returns the squares of byColor pieces attacking sq.
func (p *Position) Attackers(sq Square, byColor Color) []Square {
	var out []Square

	pawn := NewPiece(Pawn, byColor)
	for _, df := range [2]int{-1, 1} {
		if from, ok := sq.Offset(df, -byColor.PawnPush()); ok && p.Board[from] == pawn {
			out = append(out, from)
		}
	}
	for _, from := range knightTargets[sq] {
		if p.Board[from] == NewPiece(Knight, byColor) {
			out = append(out, from)
		}
	}
	for _, from := range kingTargets[sq] {
		if p.Board[from] == NewPiece(King, byColor) {
			out = append(out, from)
		}
	}
	for d := range queenDirs {
		slider := Rook
		if d >= 4 {
			slider = Bishop
		}
		for _, from := range rays[d][sq] {
			piece := p.Board[from]
			if piece == NoPiece {
				continue
			}
			if piece.Color() == byColor && (piece.Type() == slider || piece.Type() == Queen) {
				out = append(out, from)
			}
			break
		}
	}

	return out
}
