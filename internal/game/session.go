// Package game drives a chess game for a front end: it tracks the
// position and move log, turns square clicks into moves, and runs the
// computer player.
package game

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
)

// Session is one game. Its methods must be called from a single
// goroutine; only the computer's search runs elsewhere, on a copy of the
// position.
type Session struct {
	cfg Config

	// Core game state
	position   *board.Position
	sanHistory []string
	outcome    Outcome

	// Selection state
	selected board.Square
	targets  []board.Move

	// Computer player
	engine   *engine.Engine
	rng      *rand.Rand
	thinking bool
	aiMove   chan board.Move
}

// New starts a session from the configured position.
func New(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pos := board.NewPosition()
	if cfg.FEN != "" {
		var err error
		if pos, err = board.ParseFEN(cfg.FEN); err != nil {
			return nil, err
		}
	}

	s := &Session{
		cfg:      cfg,
		position: pos,
		selected: board.NoSquare,
		engine: engine.NewEngine(max(cfg.HashMB, 1),
			engine.WithSeed(cfg.Seed),
			engine.WithDifficulty(cfg.Difficulty)),
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
	s.outcome = OutcomeOf(pos)
	return s, nil
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Position returns the live position. Callers must not modify it.
func (s *Session) Position() *board.Position {
	return s.position
}

// Snapshot returns an independent copy of the position.
func (s *Session) Snapshot() *board.Position {
	return s.position.Copy()
}

// Outcome returns the state of the game after the last move.
func (s *Session) Outcome() Outcome {
	return s.outcome
}

// MoveHistory returns the moves played so far.
func (s *Session) MoveHistory() []board.Move {
	return s.position.History()
}

// SANHistory returns the moves played so far in SAN.
func (s *Session) SANHistory() []string {
	return s.sanHistory
}

// IsThinking reports whether a background search is running.
func (s *Session) IsThinking() bool {
	return s.thinking
}

// IsHumanTurn reports whether the side to move is played by a person.
func (s *Session) IsHumanTurn() bool {
	switch s.cfg.Mode {
	case HumanVsHuman:
		return true
	case HumanVsComputer:
		return s.position.SideToMove != s.cfg.ComputerColor
	default:
		return false
	}
}

// IsComputerTurn reports whether the side to move is played by the engine
// or the random mover.
func (s *Session) IsComputerTurn() bool {
	return !s.outcome.IsOver() && !s.IsHumanTurn()
}

// Checkers returns the squares of the pieces giving check.
func (s *Session) Checkers() []board.Square {
	us := s.position.SideToMove
	return s.position.Attackers(s.position.KingSquare[us], us.Other())
}

// Selected returns the selected square, or NoSquare.
func (s *Session) Selected() board.Square {
	return s.selected
}

// Targets returns the destination squares of the selected piece.
func (s *Session) Targets() []board.Square {
	squares := make([]board.Square, len(s.targets))
	for i, m := range s.targets {
		squares[i] = m.To
	}
	return squares
}

// Select handles a click on sq. The first click on one of the mover's
// pieces selects it; a click on one of its destinations plays the move,
// promoting to a queen. Clicking the selected square again clears the
// selection, and clicking anything else reselects or clears. The played
// move is returned, NoMove otherwise.
func (s *Session) Select(sq board.Square) (board.Move, error) {
	if err := s.checkHumanInput(); err != nil {
		return board.NoMove, err
	}
	if !sq.IsValid() {
		s.clearSelection()
		return board.NoMove, nil
	}

	if s.selected == sq {
		s.clearSelection()
		return board.NoMove, nil
	}

	if s.selected != board.NoSquare {
		for _, m := range s.targets {
			if m.To == sq {
				return m, s.play(m)
			}
		}
	}

	s.selectSquare(sq)
	return board.NoMove, nil
}

// PlayPromotion plays the promotion from from to to with the given piece.
func (s *Session) PlayPromotion(from, to board.Square, kind board.PieceType) (board.Move, error) {
	if err := s.checkHumanInput(); err != nil {
		return board.NoMove, err
	}
	for _, m := range s.position.ValidMoves() {
		if m.From == from && m.To == to && m.IsPromotion() {
			m = m.WithPromotion(kind)
			return m, s.play(m)
		}
	}
	return board.NoMove, fmt.Errorf("%w: no promotion from %s to %s", board.ErrIllegalMove, from, to)
}

// PlayNotation plays a move given in coordinate notation ("e2e4", "O-O",
// "e7e8n") or SAN ("Nf3", "exd5", "e8=Q").
func (s *Session) PlayNotation(text string) (board.Move, error) {
	if err := s.checkHumanInput(); err != nil {
		return board.NoMove, err
	}
	m, err := board.ParseMove(text, s.position)
	if err != nil {
		var sanErr error
		if m, sanErr = board.ParseSAN(text, s.position); sanErr != nil {
			return board.NoMove, err
		}
	}
	return m, s.play(m)
}

// Play plays m for the side to move, whoever controls it. m must be one
// of the position's valid moves; a promotion may carry any kind.
func (s *Session) Play(m board.Move) error {
	if s.thinking {
		return ErrEngineBusy
	}
	if s.outcome.IsOver() {
		return ErrGameOver
	}
	return s.play(m)
}

// ComputerMove searches the live position, plays the result and returns
// it. It blocks for up to the configured move time.
func (s *Session) ComputerMove() (board.Move, error) {
	if s.thinking {
		return board.NoMove, ErrEngineBusy
	}
	if s.outcome.IsOver() {
		return board.NoMove, ErrGameOver
	}
	if !s.IsComputerTurn() {
		return board.NoMove, ErrNotYourTurn
	}

	m := chooseMove(s.cfg, s.engine, s.rng, s.position)
	if m.IsNull() {
		s.outcome = OutcomeOf(s.position)
		return board.NoMove, ErrGameOver
	}
	return m, s.play(m)
}

// ThinkAsync starts the computer's search on a copy of the position and
// returns immediately. Collect the move with PollComputerMove or
// AwaitComputerMove; the live position is not touched until then.
func (s *Session) ThinkAsync() error {
	if s.thinking {
		return ErrEngineBusy
	}
	if s.outcome.IsOver() {
		return ErrGameOver
	}
	if !s.IsComputerTurn() {
		return ErrNotYourTurn
	}

	s.thinking = true
	s.clearSelection()

	// Each search gets its own channel, so a result from a search that
	// was abandoned by Reset or Undo is never picked up.
	ch := make(chan board.Move, 1)
	s.aiMove = ch
	cfg, eng, rng, pos := s.cfg, s.engine, s.rng, s.position.Copy()

	go func() {
		ch <- chooseMove(cfg, eng, rng, pos)
	}()
	return nil
}

// PollComputerMove plays the background search result if it is ready.
// ok is false while the search is still running.
func (s *Session) PollComputerMove() (m board.Move, ok bool, err error) {
	if !s.thinking {
		return board.NoMove, false, nil
	}
	select {
	case m := <-s.aiMove:
		return m, true, s.finishThinking(m)
	default:
		return board.NoMove, false, nil
	}
}

// AwaitComputerMove blocks until the background search finishes and plays
// its result. If ctx ends first the search keeps running and can still
// be collected later.
func (s *Session) AwaitComputerMove(ctx context.Context) (board.Move, error) {
	if !s.thinking {
		return board.NoMove, ErrNotYourTurn
	}
	select {
	case m := <-s.aiMove:
		return m, s.finishThinking(m)
	case <-ctx.Done():
		return board.NoMove, ctx.Err()
	}
}

func (s *Session) finishThinking(m board.Move) error {
	s.thinking = false
	s.aiMove = nil
	if m.IsNull() {
		s.outcome = OutcomeOf(s.position)
		return ErrGameOver
	}
	return s.play(m)
}

// chooseMove picks the computer's move on pos, which is restored before
// it returns. It touches nothing but its arguments, so a search can run
// on a copy while the session is reset underneath it.
func chooseMove(cfg Config, eng *engine.Engine, rng *rand.Rand, pos *board.Position) board.Move {
	if cfg.Mode == ComputerVsRandom && pos.SideToMove != cfg.ComputerColor {
		return RandomMove(pos, rng)
	}
	if m, ok := cfg.Book.Probe(pos, rng); ok {
		log.Printf("Book move: %s", m.ToSAN(pos))
		return m
	}
	limits := cfg.Limits()
	return eng.GetBestMove(pos, limits.Depth, limits.MoveTime)
}

// Undo takes back the last move. Against the computer it takes back the
// computer's reply as well, so the human is to move again.
func (s *Session) Undo() error {
	if s.thinking {
		return ErrEngineBusy
	}
	if s.position.Ply() == 0 {
		return ErrNothingToUndo
	}

	s.undoOne()
	if s.cfg.Mode == HumanVsComputer && !s.IsHumanTurn() && s.position.Ply() > 0 {
		s.undoOne()
	}

	s.clearSelection()
	s.outcome = OutcomeOf(s.position)
	return nil
}

func (s *Session) undoOne() {
	s.position.UnapplyMove()
	if n := len(s.sanHistory); n > 0 {
		s.sanHistory = s.sanHistory[:n-1]
	}
}

// Reset starts a new game from the configured position, dropping any
// search in progress.
func (s *Session) Reset() error {
	fresh, err := New(s.cfg)
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// play validates m against the legal moves, records it and applies it.
func (s *Session) play(m board.Move) error {
	legal, err := s.resolve(m)
	if err != nil {
		return err
	}

	s.sanHistory = append(s.sanHistory, legal.ToSAN(s.position))
	s.position.ApplyMove(legal)
	s.clearSelection()
	s.outcome = OutcomeOf(s.position)

	if s.outcome.IsOver() {
		log.Printf("Game over: %s", s.outcome)
	}
	return nil
}

// resolve finds the generated move matching m, keeping m's promotion kind.
func (s *Session) resolve(m board.Move) (board.Move, error) {
	for _, legal := range s.position.ValidMoves() {
		if legal.From != m.From || legal.To != m.To {
			continue
		}
		if legal.IsPromotion() && m.IsPromotion() {
			legal = legal.WithPromotion(m.Promotion)
		}
		return legal, nil
	}
	return board.NoMove, fmt.Errorf("%w: %s", board.ErrIllegalMove, m)
}

func (s *Session) checkHumanInput() error {
	if s.thinking {
		return ErrEngineBusy
	}
	if s.outcome.IsOver() {
		return ErrGameOver
	}
	if !s.IsHumanTurn() {
		return ErrNotYourTurn
	}
	return nil
}

// selectSquare selects sq if it holds one of the mover's pieces with at
// least one legal move, and clears the selection otherwise.
func (s *Session) selectSquare(sq board.Square) {
	s.clearSelection()

	piece := s.position.PieceAt(sq)
	if piece == board.NoPiece || piece.Color() != s.position.SideToMove {
		return
	}

	for _, m := range s.position.ValidMoves() {
		if m.From == sq {
			s.targets = append(s.targets, m)
		}
	}
	if len(s.targets) > 0 {
		s.selected = sq
	}
}

// clearSelection clears the current selection.
func (s *Session) clearSelection() {
	s.selected = board.NoSquare
	s.targets = nil
}
