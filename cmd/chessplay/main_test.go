package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
	"github.com/hailam/chesscore/internal/storage"
)

func TestRunPerft(t *testing.T) {
	var out bytes.Buffer
	if err := runPerft(&out, "", 2); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Nodes searched: 400") {
		t.Errorf("Unexpected perft output:\n%s", out.String())
	}
}

func TestPlayFoolsMate(t *testing.T) {
	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	cfg := game.DefaultConfig()
	cfg.Mode = game.HumanVsHuman
	in := strings.NewReader("help\nmoves\nf2f3\ne5\nundo\ne7e5\ng4\nQh4\n")
	var out bytes.Buffer

	if err := play(context.Background(), cfg, store, in, &out); err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out.String(), "Black wins by checkmate") {
		t.Errorf("Game did not end in mate:\n%s", out.String())
	}

	stats, _ := store.LoadStats()
	if stats.GamesPlayed != 1 || stats.Losses != 1 {
		t.Errorf("Stats not recorded: %+v", stats)
	}
}

func TestPlayAgainstComputerQuits(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.Difficulty = engine.Easy
	cfg.Depth = 1
	cfg.Seed = 1
	in := strings.NewReader("e2e4\nbogus\nquit\n")
	var out bytes.Buffer

	if err := play(context.Background(), cfg, nil, in, &out); err != nil {
		t.Fatalf("play: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Computer move:") {
		t.Errorf("Computer never replied:\n%s", text)
	}
	if !strings.Contains(text, `Illegal move "bogus"`) {
		t.Errorf("Bad input not reported:\n%s", text)
	}
}

func TestParseColor(t *testing.T) {
	if c, err := parseColor("Black"); err != nil || c != board.Black {
		t.Errorf("parseColor(Black) = %v, %v", c, err)
	}
	if _, err := parseColor("green"); err == nil {
		t.Error("Expected error for unknown color")
	}
}

func TestLoadBook(t *testing.T) {
	if b, err := loadBook(""); err != nil || b != nil {
		t.Errorf("loadBook(\"\") = %v, %v", b, err)
	}
	if b, err := loadBook("default"); err != nil || b.Size() == 0 {
		t.Errorf("loadBook(default) = %v, %v", b, err)
	}

	path := filepath.Join(t.TempDir(), "book.txt")
	if err := os.WriteFile(path, []byte("// mine\n1. e4 e5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := loadBook(path)
	if err != nil {
		t.Fatalf("loadBook: %v", err)
	}
	if b.Size() != 2 || len(b.Lines()) != 1 {
		t.Errorf("Size() = %d, Lines() = %v", b.Size(), b.Lines())
	}

	if _, err := loadBook(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestRunClosesStoreOnError(t *testing.T) {
	dir := t.TempDir()
	oldDB, oldMode := *dbDir, *modeFlag
	t.Cleanup(func() { *dbDir, *modeFlag = oldDB, oldMode })
	*dbDir = dir
	*modeFlag = "chaos"

	if err := run(); err == nil {
		t.Fatal("Expected error for an unknown mode")
	}

	// Badger holds a directory lock until Close, so reopening only
	// succeeds if run released the database.
	store, err := storage.Open(dir)
	if err != nil {
		t.Fatalf("Database left open after run failed: %v", err)
	}
	store.Close()
}
