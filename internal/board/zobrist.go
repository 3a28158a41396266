package board

// Zobrist keys for the position fingerprint.
// Uses PRNG with fixed seed so fingerprints are stable between runs.
var (
	zobristPiece      [13][64]uint64 // [Piece][Square], NoPiece row stays zero
	zobristEnPassant  [8]uint64        // One per file
	zobristCastling   [16]uint64       // All 16 castling combinations
	zobristSideToMove uint64           // XOR when black to move
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234) // Fixed seed

	// Piece keys
	for piece := WhitePawn; piece <= BlackKing; piece++ {
		for sq := A1; sq <= H8; sq++ {
			zobristPiece[piece][sq] = rng.next()
		}
	}

	// En passant keys (one per file)
	for file := 0; file < 8; file++ {
		zobristEnPassant[file] = rng.next()
	}

	// Castling keys (all 16 combinations)
	for i := 0; i < 16; i++ {
		zobristCastling[i] = rng.next()
	}

	// Side to move key
	zobristSideToMove = rng.next()
}

// ZobristPiece returns the Zobrist key for a piece on a square.
func ZobristPiece(piece Piece, sq Square) uint64 {
	return zobristPiece[piece][sq]
}

// ComputeHash computes the fingerprint of the position from scratch:
// board, side to move, castling rights and en passant target.
func (p *Position) ComputeHash() uint64 {
	var hash uint64

	for sq := A1; sq <= H8; sq++ {
		hash ^= zobristPiece[p.Board[sq]][sq]
	}

	if p.SideToMove == Black {
		hash ^= zobristSideToMove
	}

	hash ^= zobristCastling[p.CastlingRights]

	if p.EnPassant != NoSquare {
		hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	return hash
}

// ComputePawnKey computes the pawn hash key from scratch.
// Only includes pawn positions for pawn structure caching.
func (p *Position) ComputePawnKey() uint64 {
	var key uint64

	for sq := A1; sq <= H8; sq++ {
		if p.Board[sq].Type() == Pawn {
			key ^= zobristPiece[p.Board[sq]][sq]
		}
	}

	return key
}
