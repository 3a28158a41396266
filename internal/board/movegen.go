package board

// ValidMoves returns the legal moves for the side to move and sets the
// terminal flags. It is the only move list a caller should trust.
//
// The list is empty when the game is over: checkmate, stalemate, a third
// occurrence of the position, or material too thin for either side to
// mate. The last two are reported as stalemate with Draw set to the
// reason.
func (p *Position) ValidMoves() []Move {
	p.Checkmate = false
	p.Stalemate = false
	p.Draw = NoDraw

	if p.repetitions[p.Hash] >= 3 {
		p.Stalemate = true
		p.Draw = DrawRepetition
		return nil
	}

	moves := p.LegalMoves()

	if len(moves) == 0 {
		if p.InCheck() {
			p.Checkmate = true
		} else {
			p.Stalemate = true
			p.Draw = DrawStalemate
		}
		return nil
	}

	if p.IsInsufficientMaterial() {
		p.Stalemate = true
		p.Draw = DrawInsufficientMaterial
		return nil
	}

	return moves
}

// LegalMoves returns the legal moves without touching the terminal
// flags or applying the draw rules.
func (p *Position) LegalMoves() []Move {
	var ml MoveList
	p.GeneratePseudoLegalMoves(&ml)
	p.generateCastlingMoves(&ml)
	return p.filterLegal(&ml)
}

// LegalCaptures returns the legal captures and promotions.
func (p *Position) LegalCaptures() []Move {
	var ml, tactical MoveList
	p.GeneratePseudoLegalMoves(&ml)
	for i := 0; i < ml.Len(); i++ {
		if m := ml.Get(i); m.IsCapture() || m.IsPromotion() {
			tactical.Add(m)
		}
	}
	return p.filterLegal(&tactical)
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	var ml MoveList
	p.GeneratePseudoLegalMoves(&ml)
	p.generateCastlingMoves(&ml)
	for i := 0; i < ml.Len(); i++ {
		if p.isLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// filterLegal keeps the moves that do not leave the mover's king attacked.
func (p *Position) filterLegal(ml *MoveList) []Move {
	legal := make([]Move, 0, ml.Len())
	for i := 0; i < ml.Len(); i++ {
		if m := ml.Get(i); p.isLegal(m) {
			legal = append(legal, m)
		}
	}
	return legal
}

// isLegal plays m, tests the mover's king and takes the move back.
// En passant and double check need no special handling here.
func (p *Position) isLegal(m Move) bool {
	us := p.SideToMove
	p.ApplyMove(m)
	attacked := p.IsSquareAttacked(p.KingSquare[us], us.Other())
	p.UnapplyMove()
	return !attacked
}

// GeneratePseudoLegalMoves adds every move that obeys piece movement,
// ignoring whether the mover's king is left attacked. Castling is not
// included.
func (p *Position) GeneratePseudoLegalMoves(ml *MoveList) {
	us := p.SideToMove
	for sq := A1; sq <= H8; sq++ {
		piece := p.Board[sq]
		if piece == NoPiece || piece.Color() != us {
			continue
		}
		switch piece.Type() {
		case Pawn:
			p.generatePawnMoves(ml, sq)
		case Knight:
			p.generateStepMoves(ml, sq, knightTargets[sq])
		case Bishop:
			p.generateSliderMoves(ml, sq, 4, 8)
		case Rook:
			p.generateSliderMoves(ml, sq, 0, 4)
		case Queen:
			p.generateSliderMoves(ml, sq, 0, 8)
		case King:
			p.generateStepMoves(ml, sq, kingTargets[sq])
		}
	}
}

// generatePawnMoves generates pushes, captures, en passant and
// promotions for the pawn on from.
func (p *Position) generatePawnMoves(ml *MoveList, from Square) {
	us := p.SideToMove
	push := us.PawnPush()
	startRank, lastRank := 1, 7
	if us == Black {
		startRank, lastRank = 6, 0
	}

	add := func(to Square) {
		if to.Rank() == lastRank {
			ml.Add(NewPromotion(p, from, to, Queen))
			return
		}
		ml.Add(NewMove(p, from, to))
	}

	// Pushes
	if one, ok := from.Offset(0, push); ok && p.Board[one] == NoPiece {
		add(one)
		if from.Rank() == startRank {
			if two, ok := one.Offset(0, push); ok && p.Board[two] == NoPiece {
				ml.Add(NewMove(p, from, two))
			}
		}
	}

	// Captures
	for _, df := range [2]int{-1, 1} {
		to, ok := from.Offset(df, push)
		if !ok {
			continue
		}
		if target := p.Board[to]; target != NoPiece && target.Color() != us {
			add(to)
		} else if to == p.EnPassant && target == NoPiece {
			ml.Add(NewEnPassant(p, from, to))
		}
	}
}

// generateStepMoves generates knight and king steps onto empty or enemy squares.
func (p *Position) generateStepMoves(ml *MoveList, from Square, targets []Square) {
	us := p.SideToMove
	for _, to := range targets {
		if target := p.Board[to]; target == NoPiece || target.Color() != us {
			ml.Add(NewMove(p, from, to))
		}
	}
}

// generateSliderMoves walks rays[lo:hi] from the square until blocked.
// A blocking enemy piece is captured; a blocking own piece is not.
func (p *Position) generateSliderMoves(ml *MoveList, from Square, lo, hi int) {
	us := p.SideToMove
	for d := lo; d < hi; d++ {
		for _, to := range rays[d][from] {
			target := p.Board[to]
			if target == NoPiece {
				ml.Add(NewMove(p, from, to))
				continue
			}
			if target.Color() != us {
				ml.Add(NewMove(p, from, to))
			}
			break
		}
	}
}

// generateCastlingMoves appends castling moves whose preconditions all
// hold: the right is still held, the king is not in check, the squares
// between king and rook are empty, and the king does not pass through or
// land on an attacked square. It never fails; it only omits moves.
func (p *Position) generateCastlingMoves(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	kingSq := p.KingSquare[us]
	homeRank := 0
	if us == Black {
		homeRank = 7
	}

	if kingSq != NewSquare(4, homeRank) || p.IsSquareAttacked(kingSq, them) {
		return
	}

	rook := NewPiece(Rook, us)

	// Kingside: f and g empty, f and g safe.
	if p.CastlingRights.CanCastle(us, true) && p.Board[NewSquare(7, homeRank)] == rook {
		f, g := NewSquare(5, homeRank), NewSquare(6, homeRank)
		if p.Board[f] == NoPiece && p.Board[g] == NoPiece &&
			!p.IsSquareAttacked(f, them) && !p.IsSquareAttacked(g, them) {
			ml.Add(NewCastling(p, kingSq, g))
		}
	}

	// Queenside: b, c and d empty, d and c safe.
	if p.CastlingRights.CanCastle(us, false) && p.Board[NewSquare(0, homeRank)] == rook {
		b, c, d := NewSquare(1, homeRank), NewSquare(2, homeRank), NewSquare(3, homeRank)
		if p.Board[b] == NoPiece && p.Board[c] == NoPiece && p.Board[d] == NoPiece &&
			!p.IsSquareAttacked(d, them) && !p.IsSquareAttacked(c, them) {
			ml.Add(NewCastling(p, kingSq, c))
		}
	}
}

// IsInsufficientMaterial returns true if neither side can checkmate:
// bare kings, a single minor piece against a bare king, or one bishop
// each on the same square color.
func (p *Position) IsInsufficientMaterial() bool {
	var minors [2]int
	var bishops [2]int
	var bishopLight [2]bool

	for sq := A1; sq <= H8; sq++ {
		piece := p.Board[sq]
		switch piece.Type() {
		case Pawn, Rook, Queen:
			return false
		case Knight:
			minors[piece.Color()]++
		case Bishop:
			minors[piece.Color()]++
			bishops[piece.Color()]++
			bishopLight[piece.Color()] = sq.IsLight()
		}
	}

	total := minors[White] + minors[Black]
	switch {
	case total == 0:
		return true
	case total == 1:
		return true
	case total == 2 && bishops[White] == 1 && bishops[Black] == 1:
		return bishopLight[White] == bishopLight[Black]
	}
	return false
}
