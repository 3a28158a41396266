package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
)

// ErrNotFound is returned when a key has never been written.
var ErrNotFound = errors.New("storage: not found")

// Preferences stores the settings a new game starts from.
type Preferences struct {
	Username      string            `json:"username"`
	Mode          game.Mode         `json:"mode"`
	Difficulty    engine.Difficulty `json:"difficulty"`
	ComputerColor board.Color       `json:"computer_color"`
	MoveTime      time.Duration     `json:"move_time"` // Zero uses the difficulty default
	LastPlayed    time.Time         `json:"last_played"`
}

// DefaultPreferences returns default user preferences.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Username:      "Player",
		Mode:          game.HumanVsComputer,
		Difficulty:    engine.Medium,
		ComputerColor: board.Black,
		LastPlayed:    time.Now(),
	}
}

// Stats stores aggregated results. Individual games are not kept.
type Stats struct {
	GamesPlayed      int            `json:"games_played"`
	Wins             int            `json:"wins"`
	Losses           int            `json:"losses"`
	Draws            int            `json:"draws"`
	WinsByMode       map[string]int `json:"wins_by_mode"`
	WinsByDifficulty map[string]int `json:"wins_by_difficulty"`
	DrawsByReason    map[string]int `json:"draws_by_reason"`
	TotalPlayTime    time.Duration  `json:"total_play_time"`
	LongestWinStreak int            `json:"longest_win_streak"`
	CurrentStreak    int            `json:"current_streak"`
}

// NewStats returns empty statistics.
func NewStats() *Stats {
	return &Stats{
		WinsByMode:       make(map[string]int),
		WinsByDifficulty: make(map[string]int),
		DrawsByReason:    make(map[string]int),
	}
}

// WinRate returns the win rate as a percentage (0-100).
func (s *Stats) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}

// GameRecord is a finished game as seen by one side.
type GameRecord struct {
	Outcome    game.Outcome
	Mode       string // Stats bucket, e.g. "hvc" or "arena"
	Difficulty engine.Difficulty
	Side       board.Color // Wins and losses are counted for this side
	Duration   time.Duration
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db *badger.DB
}

// Open opens the database in dir, or in the platform data directory when
// dir is empty.
func Open(dir string) (*Storage, error) {
	if dir == "" {
		var err error
		if dir, err = GetDatabaseDir(); err != nil {
			return nil, err
		}
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	return open(opts)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Storage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// get decodes the JSON value stored under key into v.
func (s *Storage) get(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// put stores v under key as JSON.
func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// IsFirstLaunch returns true if this is the first launch.
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete.
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SavePreferences saves user preferences.
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads user preferences, returning defaults if none were saved.
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	if err := s.get(keyPreferences, prefs); err != nil && !errors.Is(err, ErrNotFound) {
		return prefs, err
	}
	return prefs, nil
}

// SaveStats saves game statistics.
func (s *Storage) SaveStats(stats *Stats) error {
	return s.put(keyStats, stats)
}

// LoadStats loads game statistics, returning empty stats if none were saved.
func (s *Storage) LoadStats() (*Stats, error) {
	stats := NewStats()
	if err := s.get(keyStats, stats); err != nil && !errors.Is(err, ErrNotFound) {
		return stats, err
	}
	// Maps saved as null decode back to nil.
	if stats.WinsByMode == nil {
		stats.WinsByMode = make(map[string]int)
	}
	if stats.WinsByDifficulty == nil {
		stats.WinsByDifficulty = make(map[string]int)
	}
	if stats.DrawsByReason == nil {
		stats.DrawsByReason = make(map[string]int)
	}
	return stats, nil
}

// ResetStats deletes all statistics.
func (s *Storage) ResetStats() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyStats))
	})
}

// RecordGame adds a finished game to the statistics. Games still in
// progress are ignored.
func (s *Storage) RecordGame(rec GameRecord) error {
	if !rec.Outcome.IsOver() {
		return nil
	}

	stats, err := s.LoadStats()
	if err != nil {
		return err
	}
	stats.add(rec)
	return s.SaveStats(stats)
}

// RecordGames adds several finished games in one update.
func (s *Storage) RecordGames(recs []GameRecord) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.Outcome.IsOver() {
			stats.add(rec)
		}
	}
	return s.SaveStats(stats)
}

func (s *Stats) add(rec GameRecord) {
	s.GamesPlayed++
	s.TotalPlayTime += rec.Duration

	winner, decisive := rec.Outcome.Winner()
	switch {
	case !decisive:
		s.Draws++
		s.DrawsByReason[rec.Outcome.Reason.String()]++
		s.CurrentStreak = 0
	case winner == rec.Side:
		s.Wins++
		s.CurrentStreak++
		s.LongestWinStreak = max(s.LongestWinStreak, s.CurrentStreak)
		s.WinsByMode[rec.Mode]++
		s.WinsByDifficulty[rec.Difficulty.String()]++
	default:
		s.Losses++
		s.CurrentStreak = 0
	}
}
