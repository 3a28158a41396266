package game

import (
	"fmt"

	"github.com/hailam/chesscore/internal/board"
)

// Result is the final score of a game.
type Result int

const (
	Ongoing Result = iota
	WhiteWins
	BlackWins
	Draw
)

func (r Result) String() string {
	switch r {
	case WhiteWins:
		return "1-0"
	case BlackWins:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	default:
		return "*"
	}
}

// Reason says how a game ended.
type Reason int

const (
	NoReason Reason = iota
	Checkmate
	Stalemate
	ThreefoldRepetition
	InsufficientMaterial
	MoveLimit // adjudicated after a fixed number of plies
)

func (r Reason) String() string {
	switch r {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case ThreefoldRepetition:
		return "threefold repetition"
	case InsufficientMaterial:
		return "insufficient material"
	case MoveLimit:
		return "move limit"
	default:
		return "none"
	}
}

// Outcome is the result of a game together with why it ended.
type Outcome struct {
	Result Result
	Reason Reason
}

// IsOver reports whether the game has ended.
func (o Outcome) IsOver() bool {
	return o.Result != Ongoing
}

// Winner returns the winning color. ok is false for draws and games in
// progress.
func (o Outcome) Winner() (c board.Color, ok bool) {
	switch o.Result {
	case WhiteWins:
		return board.White, true
	case BlackWins:
		return board.Black, true
	}
	return board.White, false
}

func (o Outcome) String() string {
	switch o.Result {
	case WhiteWins:
		return fmt.Sprintf("White wins by %s", o.Reason)
	case BlackWins:
		return fmt.Sprintf("Black wins by %s", o.Reason)
	case Draw:
		return fmt.Sprintf("Draw by %s", o.Reason)
	default:
		return "Game in progress"
	}
}

// OutcomeOf refreshes the terminal flags of pos and reports the outcome.
func OutcomeOf(pos *board.Position) Outcome {
	pos.ValidMoves()

	switch {
	case pos.Checkmate:
		if pos.SideToMove == board.White {
			return Outcome{BlackWins, Checkmate}
		}
		return Outcome{WhiteWins, Checkmate}
	case pos.Stalemate:
		switch pos.Draw {
		case board.DrawRepetition:
			return Outcome{Draw, ThreefoldRepetition}
		case board.DrawInsufficientMaterial:
			return Outcome{Draw, InsufficientMaterial}
		default:
			return Outcome{Draw, Stalemate}
		}
	}
	return Outcome{}
}
