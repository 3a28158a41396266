package board

// rightsLostAt gives the castling rights forfeited when a piece leaves or
// lands on each square.
var rightsLostAt [64]CastlingRights

func init() {
	rightsLostAt[E1] = WhiteKingSideCastle | WhiteQueenSideCastle
	rightsLostAt[H1] = WhiteKingSideCastle
	rightsLostAt[A1] = WhiteQueenSideCastle
	rightsLostAt[E8] = BlackKingSideCastle | BlackQueenSideCastle
	rightsLostAt[H8] = BlackKingSideCastle
	rightsLostAt[A8] = BlackQueenSideCastle
}

// ApplyMove plays m on the position. The move must have been generated
// from this exact position; a move whose moved piece is not on its source
// square, or that belongs to the wrong side, panics with a
// *PreconditionError.
func (p *Position) ApplyMove(m Move) {
	us := p.SideToMove
	from, to := m.From, m.To

	if m.Piece == NoPiece || p.Board[from] != m.Piece {
		panic(&PreconditionError{Op: "apply", Reason: "move " + m.String() + " does not match the piece on " + from.String()})
	}
	if m.Piece.Color() != us {
		panic(&PreconditionError{Op: "apply", Reason: "move " + m.String() + " is not for the side to move"})
	}

	p.history = append(p.history, undoEntry{
		move:           m,
		castlingRights: p.CastlingRights,
		enPassant:      p.EnPassant,
		halfMoveClock:  p.HalfMoveClock,
		hash:           p.Hash,
		pawnKey:        p.PawnKey,
	})

	// Take out the old castling and en passant keys; the new ones go back
	// in once known.
	p.Hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	// Captures
	if m.IsEnPassant() {
		capturedSq := NewSquare(to.File(), from.Rank())
		captured := p.removePiece(capturedSq)
		p.Hash ^= zobristPiece[captured][capturedSq]
		p.PawnKey ^= zobristPiece[captured][capturedSq]
	} else if captured := p.Board[to]; captured != NoPiece {
		p.removePiece(to)
		p.Hash ^= zobristPiece[captured][to]
		if captured.Type() == Pawn {
			p.PawnKey ^= zobristPiece[captured][to]
		}
	}

	// Move the piece, substituting the promoted piece on the last rank.
	p.removePiece(from)
	p.Hash ^= zobristPiece[m.Piece][from]
	placed := m.Piece
	if m.IsPromotion() {
		placed = m.PromotionPiece()
	}
	p.setPiece(placed, to)
	p.Hash ^= zobristPiece[placed][to]

	if m.Piece.Type() == Pawn {
		p.PawnKey ^= zobristPiece[m.Piece][from]
		if placed == m.Piece {
			p.PawnKey ^= zobristPiece[m.Piece][to]
		}
	}

	// Castling relocates the rook next to the king.
	if m.IsCastling() {
		rank := from.Rank()
		rookFrom, rookTo := NewSquare(7, rank), NewSquare(5, rank)
		if !m.IsKingSide() {
			rookFrom, rookTo = NewSquare(0, rank), NewSquare(3, rank)
		}
		rook := p.removePiece(rookFrom)
		p.setPiece(rook, rookTo)
		p.Hash ^= zobristPiece[rook][rookFrom]
		p.Hash ^= zobristPiece[rook][rookTo]
	}

	// En passant target for a double push, cleared otherwise.
	p.EnPassant = NoSquare
	if m.Piece.Type() == Pawn && abs(int(to)-int(from)) == 16 {
		p.EnPassant = Square((int(from) + int(to)) / 2)
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	// Rights only ever shrink.
	p.CastlingRights &^= rightsLostAt[from] | rightsLostAt[to]
	p.Hash ^= zobristCastling[p.CastlingRights]

	if m.Piece.Type() == Pawn || m.IsCapture() {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = us.Other()
	p.Hash ^= zobristSideToMove

	if p.repetitions == nil {
		p.repetitions = make(map[uint64]int)
	}
	p.repetitions[p.Hash]++

	p.Checkmate = false
	p.Stalemate = false
	p.Draw = NoDraw
}

// UnapplyMove takes back the last applied move. Rights, en passant
// target and fingerprint come from the undo log rather than being
// recomputed. It panics with a *PreconditionError when there is no move
// to take back.
func (p *Position) UnapplyMove() {
	if len(p.history) == 0 {
		panic(&PreconditionError{Op: "unapply", Reason: "history is empty"})
	}

	// The count being dropped is the one ApplyMove added for this position.
	if n := p.repetitions[p.Hash]; n <= 1 {
		delete(p.repetitions, p.Hash)
	} else {
		p.repetitions[p.Hash] = n - 1
	}

	undo := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	m := undo.move
	from, to := m.From, m.To

	p.removePiece(to)
	p.setPiece(m.Piece, from)

	switch {
	case m.IsEnPassant():
		p.setPiece(m.Captured, NewSquare(to.File(), from.Rank()))
	case m.IsCapture():
		p.setPiece(m.Captured, to)
	}

	if m.IsCastling() {
		rank := from.Rank()
		rookFrom, rookTo := NewSquare(7, rank), NewSquare(5, rank)
		if !m.IsKingSide() {
			rookFrom, rookTo = NewSquare(0, rank), NewSquare(3, rank)
		}
		p.setPiece(p.removePiece(rookTo), rookFrom)
	}

	p.SideToMove = m.Piece.Color()
	if p.SideToMove == Black {
		p.FullMoveNumber--
	}
	p.CastlingRights = undo.castlingRights
	p.EnPassant = undo.enPassant
	p.HalfMoveClock = undo.halfMoveClock
	p.Hash = undo.hash
	p.PawnKey = undo.pawnKey

	p.Checkmate = false
	p.Stalemate = false
	p.Draw = NoDraw
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
