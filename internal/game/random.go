package game

import (
	"math/rand"

	"github.com/hailam/chesscore/internal/board"
)

// RandomMove picks a uniformly random legal move, or NoMove when the game
// is over.
func RandomMove(pos *board.Position, rng *rand.Rand) board.Move {
	moves := pos.ValidMoves()
	if len(moves) == 0 {
		return board.NoMove
	}
	return moves[rng.Intn(len(moves))]
}
