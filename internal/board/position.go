package board

import (
	"fmt"
	"maps"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castleRight(c, kingSide) != 0
}

func castleRight(c Color, kingSide bool) CastlingRights {
	if c == White {
		if kingSide {
			return WhiteKingSideCastle
		}
		return WhiteQueenSideCastle
	}
	if kingSide {
		return BlackKingSideCastle
	}
	return BlackQueenSideCastle
}

// DrawReason says why a position without legal moves is not a loss.
type DrawReason uint8

const (
	NoDraw DrawReason = iota
	DrawStalemate
	DrawRepetition
	DrawInsufficientMaterial
)

func (d DrawReason) String() string {
	switch d {
	case DrawStalemate:
		return "stalemate"
	case DrawRepetition:
		return "threefold repetition"
	case DrawInsufficientMaterial:
		return "insufficient material"
	default:
		return "none"
	}
}

// undoEntry is one record of the undo log: the move plus every piece of
// state that cannot be recomputed from it.
type undoEntry struct {
	move           Move
	castlingRights CastlingRights
	enPassant      Square
	halfMoveClock  int
	hash           uint64
	pawnKey        uint64
}

// Position represents a complete chess position together with the
// history needed to undo moves and detect repetitions. It is mutated in
// place and must not be shared between goroutines; use Copy to hand a
// snapshot to another goroutine.
type Position struct {
	// Board holds one piece per square, NoPiece when empty.
	Board [64]Piece

	// Game state
	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // Square skipped by the last double push, NoSquare if none
	HalfMoveClock  int    // Moves since last pawn move or capture
	FullMoveNumber int    // Full move counter, starts at 1

	// Zobrist hash, the position fingerprint
	Hash uint64

	// Pawn hash key for pawn structure caching
	PawnKey uint64

	// King positions (cached for check detection)
	KingSquare [2]Square

	// Terminal flags, authoritative only right after ValidMoves.
	Checkmate bool
	Stalemate bool
	Draw      DrawReason

	history     []undoEntry
	repetitions map[uint64]int
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// Copy creates a deep copy of the position, including its history and
// repetition counts.
func (p *Position) Copy() *Position {
	newPos := *p
	newPos.history = append([]undoEntry(nil), p.history...)
	newPos.repetitions = maps.Clone(p.repetitions)
	return &newPos
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	return p.Board[sq]
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.Board[sq] == NoPiece
}

// setPiece places a piece and keeps the king cache current.
func (p *Position) setPiece(piece Piece, sq Square) {
	p.Board[sq] = piece
	if piece.Type() == King {
		p.KingSquare[piece.Color()] = sq
	}
}

// removePiece clears a square and returns what was on it.
func (p *Position) removePiece(sq Square) Piece {
	piece := p.Board[sq]
	p.Board[sq] = NoPiece
	return piece
}

// Ply returns the number of moves in the history.
func (p *Position) Ply() int {
	return len(p.history)
}

// LastMove returns the most recently applied move, or NoMove.
func (p *Position) LastMove() Move {
	if len(p.history) == 0 {
		return NoMove
	}
	return p.history[len(p.history)-1].move
}

// History returns the applied moves in order.
func (p *Position) History() []Move {
	moves := make([]Move, len(p.history))
	for i, e := range p.history {
		moves[i] = e.move
	}
	return moves
}

// Occurrences returns how many times the position with the given
// fingerprint has been reached.
func (p *Position) Occurrences(hash uint64) int {
	return p.repetitions[hash]
}

// IsTerminal reports whether the last ValidMoves call found the game over.
func (p *Position) IsTerminal() bool {
	return p.Checkmate || p.Stalemate
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	s := "\n"
	for rank := 7; rank >= 0; rank-- {
		s += fmt.Sprintf("%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.Board[NewSquare(file, rank)]
			if piece == NoPiece {
				s += ". "
			} else {
				s += piece.String() + " "
			}
		}
		s += "\n"
	}
	s += "\n   a b c d e f g h\n\n"
	s += fmt.Sprintf("Side to move: %s\n", p.SideToMove)
	s += fmt.Sprintf("Castling: %s\n", p.CastlingRights)
	s += fmt.Sprintf("En passant: %s\n", p.EnPassant)
	s += fmt.Sprintf("Hash: %016x\n", p.Hash)
	return s
}

// Validate checks if the position is valid.
func (p *Position) Validate() error {
	var kings [2]int
	var pawns [2]int
	for sq := A1; sq <= H8; sq++ {
		piece := p.Board[sq]
		switch piece.Type() {
		case King:
			kings[piece.Color()]++
		case Pawn:
			pawns[piece.Color()]++
			if r := sq.Rank(); r == 0 || r == 7 {
				return fmt.Errorf("pawn on %s: pawns cannot be on rank 1 or 8", sq)
			}
		}
	}

	for c := White; c <= Black; c++ {
		if kings[c] != 1 {
			return fmt.Errorf("%s must have exactly one king", c)
		}
		if pawns[c] > 8 {
			return fmt.Errorf("%s has %d pawns", c, pawns[c])
		}
	}

	// The side that just moved cannot be left in check.
	them := p.SideToMove.Other()
	if p.IsSquareAttacked(p.KingSquare[them], p.SideToMove) {
		return fmt.Errorf("%s king is in check with %s to move", them, p.SideToMove)
	}

	return nil
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	return p.IsSquareAttacked(p.KingSquare[p.SideToMove], p.SideToMove.Other())
}

// Material returns the material balance (positive favors white).
func (p *Position) Material() int {
	score := 0
	for _, piece := range p.Board {
		if piece == NoPiece {
			continue
		}
		if piece.Color() == White {
			score += piece.Value()
		} else {
			score -= piece.Value()
		}
	}
	return score
}

// Count returns how many pieces of the given kind and color are on the board.
func (p *Position) Count(piece Piece) int {
	n := 0
	for _, pc := range p.Board {
		if pc == piece {
			n++
		}
	}
	return n
}
