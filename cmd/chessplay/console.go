package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
	"github.com/hailam/chesscore/internal/storage"
)

const helpText = `Commands:
  e2e4, e7e8n, O-O, Nf3   play a move
  moves                   list legal moves
  undo                    take back a move
  board                   print the board
  fen                     print the position as FEN
  eval                    print the static evaluation
  quit                    leave the game`

// play runs one game on the console until it ends or the user quits.
func play(ctx context.Context, cfg game.Config, store *storage.Storage, in io.Reader, out io.Writer) error {
	s, err := game.New(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	scanner := bufio.NewScanner(in)

	fmt.Fprintf(out, "Mode %s, difficulty %s\n", cfg.Mode, cfg.Difficulty)
	fmt.Fprint(out, s.Position())

	for {
		if ctx.Err() != nil {
			return nil
		}

		if outcome := s.Outcome(); outcome.IsOver() {
			fmt.Fprintf(out, "Game over: %s (%s)\n", outcome, outcome.Result)
			recordGame(store, cfg, outcome, time.Since(start))
			return nil
		}

		if s.IsComputerTurn() {
			if err := s.ThinkAsync(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s is thinking...\n", s.Position().SideToMove)
			m, err := s.AwaitComputerMove(ctx)
			switch {
			case errors.Is(err, game.ErrGameOver):
				continue
			case ctx.Err() != nil:
				return nil
			case err != nil:
				return err
			}
			history := s.SANHistory()
			fmt.Fprintf(out, "Computer move: %s (%s)\n", history[len(history)-1], m)
			fmt.Fprint(out, s.Position())
			continue
		}

		fmt.Fprintf(out, "%s to move> ", s.Position().SideToMove)
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
		case "quit", "exit":
			return nil
		case "help", "?":
			fmt.Fprintln(out, helpText)
		case "board":
			fmt.Fprint(out, s.Position())
		case "fen":
			fmt.Fprintln(out, s.Position().ToFEN())
		case "eval":
			fmt.Fprintln(out, engine.ScoreToString(engine.Evaluate(s.Position())))
		case "moves":
			pos := s.Snapshot()
			var sans []string
			for _, m := range pos.ValidMoves() {
				sans = append(sans, m.ToSAN(pos))
			}
			fmt.Fprintln(out, strings.Join(sans, " "))
		case "undo":
			if err := s.Undo(); err != nil {
				fmt.Fprintf(out, "Cannot undo: %v\n", err)
				continue
			}
			fmt.Fprint(out, s.Position())
		default:
			if _, err := s.PlayNotation(line); err != nil {
				fmt.Fprintf(out, "Illegal move %q: %v\n", line, err)
				continue
			}
			if checkers := s.Checkers(); len(checkers) > 0 && !s.Outcome().IsOver() {
				fmt.Fprintln(out, "Check!")
			}
			if cfg.Mode == game.HumanVsHuman {
				fmt.Fprint(out, s.Position())
			}
		}
	}
}

// recordGame stores a finished game. Against the computer the result is
// counted for the human; otherwise for White, or for the engine when it
// plays the random mover.
func recordGame(store *storage.Storage, cfg game.Config, outcome game.Outcome, d time.Duration) {
	if store == nil {
		return
	}

	side := board.White
	switch cfg.Mode {
	case game.HumanVsComputer:
		side = cfg.ComputerColor.Other()
	case game.ComputerVsRandom:
		side = cfg.ComputerColor
	}

	err := store.RecordGame(storage.GameRecord{
		Outcome:    outcome,
		Mode:       cfg.Mode.String(),
		Difficulty: cfg.Difficulty,
		Side:       side,
		Duration:   d,
	})
	if err != nil {
		log.Printf("Warning: Failed to record game: %v", err)
	}
}
