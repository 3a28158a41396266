package board

import (
	"fmt"
	"strings"
)

// MoveFlag marks the special kinds of move.
type MoveFlag uint8

const (
	FlagNormal    MoveFlag = 0
	FlagEnPassant MoveFlag = 1 << 0
	FlagCastling  MoveFlag = 1 << 1
	FlagPromotion MoveFlag = 1 << 2
)

// Move describes a single ply. It is computed against a specific
// Position and is only valid to apply to that same state: the moved and
// captured pieces are read from the board when the move is generated.
type Move struct {
	From      Square
	To        Square
	Piece     Piece
	Captured  Piece
	Flags     MoveFlag
	Promotion PieceType
}

// NoMove is the zero Move. It never matches a generated move since a
// generated move always carries the moved piece.
var NoMove Move

// NewMove creates a normal move, reading the moved and captured pieces
// from the position.
func NewMove(pos *Position, from, to Square) Move {
	return Move{
		From:     from,
		To:       to,
		Piece:    pos.Board[from],
		Captured: pos.Board[to],
	}
}

// NewPromotion creates a pawn move onto the last rank.
func NewPromotion(pos *Position, from, to Square, promo PieceType) Move {
	m := NewMove(pos, from, to)
	m.Flags = FlagPromotion
	m.Promotion = promo
	return m
}

// NewEnPassant creates an en passant capture. The captured pawn sits
// beside the mover, not on the destination square.
func NewEnPassant(pos *Position, from, to Square) Move {
	return Move{
		From:     from,
		To:       to,
		Piece:    pos.Board[from],
		Captured: NewPiece(Pawn, pos.SideToMove.Other()),
		Flags:    FlagEnPassant,
	}
}

// NewCastling creates a castling move expressed as the king's movement.
func NewCastling(pos *Position, from, to Square) Move {
	return Move{
		From:     from,
		To:       to,
		Piece:    pos.Board[from],
		Captured: NoPiece,
		Flags:    FlagCastling,
	}
}

// IsNull reports whether m is NoMove.
func (m Move) IsNull() bool {
	return m.Piece == NoPiece
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Flags&FlagPromotion != 0
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	return m.Flags&FlagCastling != 0
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flags&FlagEnPassant != 0
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return m.Captured != NoPiece
}

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// IsKingSide reports whether a castling move goes towards the h-file.
func (m Move) IsKingSide() bool {
	return m.To > m.From
}

// PromotionPiece returns the piece the pawn turns into. Any kind other
// than knight, bishop or rook promotes to a queen.
func (m Move) PromotionPiece() Piece {
	switch m.Promotion {
	case Knight, Bishop, Rook, Queen:
		return NewPiece(m.Promotion, m.Piece.Color())
	}
	return NewPiece(Queen, m.Piece.Color())
}

// WithPromotion returns a copy of a promotion move with a different
// promotion choice. Non-promotion moves are returned unchanged.
func (m Move) WithPromotion(pt PieceType) Move {
	if !m.IsPromotion() {
		return m
	}
	m.Promotion = pt
	return m
}

// String returns the move notation: "e2e4", "e7e8q", and "O-O" or
// "O-O-O" for castling.
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}

	if m.IsCastling() {
		if m.IsKingSide() {
			return "O-O"
		}
		return "O-O-O"
	}

	s := m.From.String() + m.To.String()

	if m.IsPromotion() {
		s += string(m.PromotionPiece().Type().Char())
	}

	return s
}

// ParseMove resolves a move string against the legal moves of pos.
// It accepts the notation produced by Move.String, the king-step form of
// castling ("e1g1") and any promotion suffix (n, b, r, q).
func ParseMove(s string, pos *Position) (Move, error) {
	s = strings.TrimSpace(s)
	legal := pos.LegalMoves()

	switch s {
	case "O-O", "0-0", "O-O-O", "0-0-0":
		kingSide := len(s) == 3
		for _, m := range legal {
			if m.IsCastling() && m.IsKingSide() == kingSide {
				return m, nil
			}
		}
		return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, s)
	}

	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	promo := NoPieceType
	if len(s) == 5 {
		switch s[4] {
		case 'n', 'N':
			promo = Knight
		case 'b', 'B':
			promo = Bishop
		case 'r', 'R':
			promo = Rook
		case 'q', 'Q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
	}

	for _, m := range legal {
		if m.From != from || m.To != to {
			continue
		}
		if m.IsPromotion() {
			if promo != NoPieceType {
				m = m.WithPromotion(promo)
			}
		} else if promo != NoPieceType {
			continue
		}
		return m, nil
	}

	return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, s)
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Clear empties the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Slice returns a copy of the moves as a slice.
func (ml *MoveList) Slice() []Move {
	out := make([]Move, ml.count)
	copy(out, ml.moves[:ml.count])
	return out
}
