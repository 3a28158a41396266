package game

import "errors"

var (
	ErrNotYourTurn   = errors.New("not your turn")
	ErrGameOver      = errors.New("game over")
	ErrEngineBusy    = errors.New("engine is thinking")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrInvalidConfig = errors.New("invalid configuration")
)
