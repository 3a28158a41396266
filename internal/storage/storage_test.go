package storage

import (
	"os"
	"testing"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorage(t *testing.T) {
	t.Run("DefaultPreferences", func(t *testing.T) {
		prefs := DefaultPreferences()
		if prefs.Username != "Player" {
			t.Errorf("Expected username 'Player', got '%s'", prefs.Username)
		}
		if prefs.Difficulty != engine.Medium {
			t.Errorf("Expected medium difficulty")
		}
		if prefs.Mode != game.HumanVsComputer {
			t.Errorf("Expected human vs computer mode")
		}
		if prefs.ComputerColor != board.Black {
			t.Errorf("Expected the computer to play Black by default")
		}
	})

	t.Run("NewStats", func(t *testing.T) {
		stats := NewStats()
		if stats.GamesPlayed != 0 {
			t.Errorf("Expected 0 games played")
		}
		if stats.WinRate() != 0 {
			t.Errorf("Expected 0 win rate")
		}
	})

	t.Run("WinRate", func(t *testing.T) {
		stats := &Stats{
			GamesPlayed: 10,
			Wins:        5,
			Losses:      3,
			Draws:       2,
		}
		rate := stats.WinRate()
		if rate != 50 {
			t.Errorf("Expected 50%% win rate, got %.2f%%", rate)
		}
	})
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := openTestStorage(t)

	prefs, err := s.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if prefs.Username != "Player" {
		t.Errorf("Expected defaults before first save, got %+v", prefs)
	}

	prefs.Username = "tester"
	prefs.Mode = game.ComputerVsRandom
	prefs.Difficulty = engine.Hard
	prefs.ComputerColor = board.White
	prefs.MoveTime = 3 * time.Second
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}

	got, err := s.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if got.Username != "tester" || got.Mode != game.ComputerVsRandom ||
		got.Difficulty != engine.Hard || got.ComputerColor != board.White ||
		got.MoveTime != 3*time.Second {
		t.Errorf("Loaded %+v", got)
	}
	if got.LastPlayed.IsZero() {
		t.Error("LastPlayed not set on save")
	}
}

func TestFirstLaunch(t *testing.T) {
	s := openTestStorage(t)

	first, err := s.IsFirstLaunch()
	if err != nil || !first {
		t.Fatalf("IsFirstLaunch = %v, %v", first, err)
	}
	if err := s.MarkFirstLaunchComplete(); err != nil {
		t.Fatal(err)
	}
	if first, _ := s.IsFirstLaunch(); first {
		t.Error("Still first launch after marking complete")
	}
}

func TestRecordGame(t *testing.T) {
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	defer s.Close()

	records := []GameRecord{
		{Outcome: game.Outcome{Result: game.WhiteWins, Reason: game.Checkmate}, Mode: "hvc", Difficulty: engine.Easy, Side: board.White, Duration: time.Minute},
		{Outcome: game.Outcome{Result: game.BlackWins, Reason: game.Checkmate}, Mode: "hvc", Difficulty: engine.Easy, Side: board.Black, Duration: time.Minute},
		{Outcome: game.Outcome{Result: game.Draw, Reason: game.Stalemate}, Mode: "hvc", Side: board.White},
		{Outcome: game.Outcome{Result: game.Draw, Reason: game.ThreefoldRepetition}, Mode: "hvh", Side: board.White},
		{Outcome: game.Outcome{Result: game.BlackWins, Reason: game.Checkmate}, Mode: "hvc", Side: board.White},
		{Outcome: game.Outcome{}, Mode: "hvc", Side: board.White}, // unfinished, ignored
	}
	for _, rec := range records {
		if err := s.RecordGame(rec); err != nil {
			t.Fatalf("RecordGame: %v", err)
		}
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 5 || stats.Wins != 2 || stats.Draws != 2 || stats.Losses != 1 {
		t.Errorf("Unexpected totals: %+v", stats)
	}
	if stats.WinsByMode["hvc"] != 2 || stats.WinsByDifficulty["easy"] != 2 {
		t.Errorf("Unexpected win buckets: %v %v", stats.WinsByMode, stats.WinsByDifficulty)
	}
	if stats.DrawsByReason["stalemate"] != 1 || stats.DrawsByReason["threefold repetition"] != 1 {
		t.Errorf("Unexpected draw reasons: %v", stats.DrawsByReason)
	}
	if stats.LongestWinStreak != 2 || stats.CurrentStreak != 0 {
		t.Errorf("Streaks: longest %d current %d", stats.LongestWinStreak, stats.CurrentStreak)
	}
	if stats.TotalPlayTime != 2*time.Minute {
		t.Errorf("TotalPlayTime = %v", stats.TotalPlayTime)
	}

	if err := s.ResetStats(); err != nil {
		t.Fatal(err)
	}
	if stats, _ := s.LoadStats(); stats.GamesPlayed != 0 {
		t.Errorf("Stats survived reset: %+v", stats)
	}
}

func TestRecordGameAfterEmptyStats(t *testing.T) {
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	defer s.Close()

	// A zero Stats is stored with null maps.
	if err := s.SaveStats(&Stats{}); err != nil {
		t.Fatalf("SaveStats: %v", err)
	}

	win := GameRecord{Outcome: game.Outcome{Result: game.WhiteWins, Reason: game.Checkmate}, Mode: "hvc", Side: board.White}
	draw := GameRecord{Outcome: game.Outcome{Result: game.Draw, Reason: game.Stalemate}, Mode: "hvc", Side: board.White}
	if err := s.RecordGames([]GameRecord{win, draw}); err != nil {
		t.Fatalf("RecordGames: %v", err)
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Wins != 1 || stats.WinsByMode["hvc"] != 1 || stats.DrawsByReason["stalemate"] != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestRecordGames(t *testing.T) {
	s := openTestStorage(t)
	recs := []GameRecord{
		{Outcome: game.Outcome{Result: game.WhiteWins, Reason: game.Checkmate}, Mode: "arena", Side: board.White},
		{Outcome: game.Outcome{Result: game.Draw, Reason: game.MoveLimit}, Mode: "arena", Side: board.Black},
	}
	if err := s.RecordGames(recs); err != nil {
		t.Fatal(err)
	}
	stats, _ := s.LoadStats()
	if stats.GamesPlayed != 2 || stats.WinsByMode["arena"] != 1 || stats.DrawsByReason["move limit"] != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	prefs := DefaultPreferences()
	prefs.Username = "persisted"
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, _ := s.LoadPreferences()
	if got.Username != "persisted" {
		t.Errorf("Username = %q after reopen", got.Username)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	// Test that GetDataDir returns a valid path
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}

	// Verify directory exists
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	t.Logf("Data directory: %s", dataDir)
}
