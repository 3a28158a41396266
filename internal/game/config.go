package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/book"
	"github.com/hailam/chesscore/internal/engine"
)

// Mode selects who plays each side.
type Mode int

const (
	HumanVsHuman     Mode = iota
	HumanVsComputer       // the computer plays Config.ComputerColor
	ComputerVsRandom      // the engine plays Config.ComputerColor, a random mover the other side
)

func (m Mode) String() string {
	switch m {
	case HumanVsHuman:
		return "hvh"
	case HumanVsComputer:
		return "hvc"
	case ComputerVsRandom:
		return "cvr"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts the short names printed by String as well as
// "human", "computer" and "random".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hvh", "human":
		return HumanVsHuman, nil
	case "hvc", "computer":
		return HumanVsComputer, nil
	case "cvr", "random":
		return ComputerVsRandom, nil
	}
	return HumanVsHuman, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
}

// Config describes a game session.
type Config struct {
	Mode          Mode
	Difficulty    engine.Difficulty
	ComputerColor board.Color
	Depth         int           // Overrides the difficulty depth when > 0
	MoveTime      time.Duration // Overrides the difficulty move time when > 0
	Seed          int64         // Seed for the random mover and the engine fallback
	FEN           string        // Start position, empty for the standard one
	HashMB        int
	Book          *book.Book // Consulted before searching when set
}

// DefaultConfig returns a human vs computer game with the computer
// playing Black at medium difficulty.
func DefaultConfig() Config {
	return Config{
		Mode:          HumanVsComputer,
		Difficulty:    engine.Medium,
		ComputerColor: board.Black,
		Seed:          time.Now().UnixNano(),
		HashMB:        16,
	}
}

// Limits returns the search depth and move time the computer uses.
func (c Config) Limits() engine.SearchLimits {
	limits := engine.DifficultySettings[c.Difficulty]
	if c.Depth > 0 {
		limits.Depth = c.Depth
	}
	if c.MoveTime > 0 {
		limits.MoveTime = c.MoveTime
	}
	return limits
}

// Validate checks the configuration for values that cannot be played.
func (c Config) Validate() error {
	if c.Mode < HumanVsHuman || c.Mode > ComputerVsRandom {
		return fmt.Errorf("%w: mode %d", ErrInvalidConfig, c.Mode)
	}
	if _, ok := engine.DifficultySettings[c.Difficulty]; !ok {
		return fmt.Errorf("%w: difficulty %d", ErrInvalidConfig, c.Difficulty)
	}
	if c.ComputerColor != board.White && c.ComputerColor != board.Black {
		return fmt.Errorf("%w: computer color %d", ErrInvalidConfig, c.ComputerColor)
	}
	if c.Depth < 0 || c.Depth >= engine.MaxPly {
		return fmt.Errorf("%w: depth %d", ErrInvalidConfig, c.Depth)
	}
	return nil
}
