package board

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFEN  = errors.New("invalid FEN")
	ErrIllegalMove = errors.New("illegal move")
)

// PreconditionError reports a caller bug against the Position, such as
// unapplying with an empty history. It is raised with panic because
// continuing would leave the Position corrupted.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("board: %s: %s", e.Op, e.Reason)
}
