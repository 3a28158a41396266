// Command chessplay plays chess in the terminal against a person, the
// engine or a random mover, and runs engine matches and perft counts.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/hailam/chesscore/internal/arena"
	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/book"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
	"github.com/hailam/chesscore/internal/storage"
)

var (
	modeFlag       = flag.String("mode", "", "game mode: hvh, hvc or cvr (default from preferences)")
	difficultyFlag = flag.String("difficulty", "", "engine difficulty: easy, medium or hard (default from preferences)")
	colorFlag      = flag.String("color", "", "color the computer plays: white or black (default from preferences)")
	moveTime       = flag.Duration("movetime", 0, "time per computer move, overrides the difficulty")
	depth          = flag.Int("depth", 0, "search depth, overrides the difficulty")
	fen            = flag.String("fen", "", "start position in FEN")
	seed           = flag.Int64("seed", 0, "random seed, 0 for time based")
	bookFlag       = flag.String("book", "", `opening book: "default" for the built-in lines or a file of SAN lines`)

	games       = flag.Int("games", 0, "play an arena match of this many games instead of a single game")
	opponent    = flag.String("opponent", "random", "arena opponent: random or a difficulty")
	concurrency = flag.Int("concurrency", 0, "arena games played at once (default NumCPU)")
	maxPlies    = flag.Int("maxplies", arena.DefaultMaxPlies, "arena ply cap, reached games are drawn")

	perft = flag.Int("perft", 0, "print the perft count to this depth and exit")

	dbDir      = flag.String("db", "", "database directory (default platform data dir)")
	noDB       = flag.Bool("nodb", false, "do not load or save preferences and statistics")
	showStats  = flag.Bool("stats", false, "print statistics and exit")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run does the work of main. It returns instead of exiting so that the
// deferred profile flush and database close always happen.
func run() error {
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", *cpuprofile)
	}

	if *perft > 0 {
		return runPerft(os.Stdout, *fen, *perft)
	}

	var store *storage.Storage
	if !*noDB {
		var err error
		if store, err = storage.Open(*dbDir); err != nil {
			log.Printf("Warning: Failed to initialize storage: %v", err)
		} else {
			defer store.Close()
		}
	}

	if *showStats {
		if store == nil {
			return fmt.Errorf("statistics need a database")
		}
		return printStats(os.Stdout, store)
	}

	cfg, err := buildConfig(store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *games > 0 {
		return runArena(ctx, cfg, store)
	}
	return play(ctx, cfg, store, os.Stdin, os.Stdout)
}

// buildConfig starts from the saved preferences and applies the flags
// that were given on the command line.
func buildConfig(store *storage.Storage) (game.Config, error) {
	cfg := game.DefaultConfig()

	prefs := storage.DefaultPreferences()
	if store != nil {
		loaded, err := store.LoadPreferences()
		if err != nil {
			log.Printf("Warning: Failed to load preferences: %v", err)
		} else {
			prefs = loaded
		}
		if first, err := store.IsFirstLaunch(); err == nil && first {
			fmt.Printf("Welcome, %s. Moves are typed as e2e4 or Nf3; type help for commands.\n", prefs.Username)
			if err := store.MarkFirstLaunchComplete(); err != nil {
				log.Printf("Warning: %v", err)
			}
		}
	}
	cfg.Mode = prefs.Mode
	cfg.Difficulty = prefs.Difficulty
	cfg.ComputerColor = prefs.ComputerColor
	cfg.MoveTime = prefs.MoveTime

	var err error
	if *modeFlag != "" {
		if cfg.Mode, err = game.ParseMode(*modeFlag); err != nil {
			return cfg, err
		}
	}
	if *difficultyFlag != "" {
		if cfg.Difficulty, err = engine.ParseDifficulty(*difficultyFlag); err != nil {
			return cfg, err
		}
	}
	if *colorFlag != "" {
		if cfg.ComputerColor, err = parseColor(*colorFlag); err != nil {
			return cfg, err
		}
	}
	if *moveTime > 0 {
		cfg.MoveTime = *moveTime
	}
	cfg.Depth = *depth
	cfg.FEN = *fen
	if *seed != 0 {
		cfg.Seed = *seed
	}

	if cfg.Book, err = loadBook(*bookFlag); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	if store != nil {
		prefs.Mode = cfg.Mode
		prefs.Difficulty = cfg.Difficulty
		prefs.ComputerColor = cfg.ComputerColor
		prefs.MoveTime = cfg.MoveTime
		if err := store.SavePreferences(prefs); err != nil {
			log.Printf("Warning: Failed to save preferences: %v", err)
		}
	}
	return cfg, nil
}

func loadBook(name string) (*book.Book, error) {
	switch name {
	case "":
		return nil, nil
	case "default":
		return book.Default(), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := book.Load(f)
	if err != nil {
		return nil, err
	}
	log.Printf("Opening book loaded: %d positions", b.Size())
	return b, nil
}

func parseColor(s string) (board.Color, error) {
	switch strings.ToLower(s) {
	case "w", "white":
		return board.White, nil
	case "b", "black":
		return board.Black, nil
	}
	return board.White, fmt.Errorf("unknown color %q", s)
}

func runPerft(w io.Writer, fen string, depth int) error {
	pos := board.NewPosition()
	if fen != "" {
		var err error
		if pos, err = board.ParseFEN(fen); err != nil {
			return err
		}
	}

	var total uint64
	start := time.Now()
	for _, m := range pos.LegalMoves() {
		pos.ApplyMove(m)
		n := engine.Perft(pos, depth-1)
		pos.UnapplyMove()
		total += n
		fmt.Fprintf(w, "%s: %d\n", m, n)
	}
	elapsed := time.Since(start)
	fmt.Fprintf(w, "\nNodes searched: %d (%v)\n", total, elapsed.Round(time.Millisecond))
	return nil
}

func runArena(ctx context.Context, cfg game.Config, store *storage.Storage) error {
	a := arena.Player{
		Difficulty: cfg.Difficulty,
		Depth:      cfg.Depth,
		MoveTime:   cfg.MoveTime,
	}

	b := arena.Player{Random: true}
	if *opponent != "random" {
		d, err := engine.ParseDifficulty(*opponent)
		if err != nil {
			return err
		}
		b = arena.Player{Difficulty: d, MoveTime: cfg.MoveTime}
	}

	match := arena.Config{
		A:           a,
		B:           b,
		Games:       *games,
		Concurrency: *concurrency,
		MaxPlies:    *maxPlies,
		FEN:         cfg.FEN,
		Seed:        cfg.Seed,
	}
	if cfg.Book != nil && cfg.FEN == "" {
		match.Openings = cfg.Book.Lines()
	}

	summary, err := arena.Run(ctx, match)
	if err != nil {
		return err
	}

	fmt.Println(summary)
	for reason, n := range summary.Reasons {
		fmt.Printf("  %-22s %d\n", reason, n)
	}

	if store == nil {
		return nil
	}
	recs := make([]storage.GameRecord, 0, len(summary.Results))
	for _, res := range summary.Results {
		side := board.Black
		if res.AIsWhite {
			side = board.White
		}
		recs = append(recs, storage.GameRecord{
			Outcome:    res.Outcome,
			Mode:       "arena",
			Difficulty: cfg.Difficulty,
			Side:       side,
			Duration:   res.Duration,
		})
	}
	if err := store.RecordGames(recs); err != nil {
		log.Printf("Warning: Failed to record arena games: %v", err)
	}
	return nil
}

func printStats(w io.Writer, store *storage.Storage) error {
	stats, err := store.LoadStats()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Games played: %d\n", stats.GamesPlayed)
	fmt.Fprintf(w, "Wins/Losses/Draws: %d/%d/%d (%.1f%%)\n", stats.Wins, stats.Losses, stats.Draws, stats.WinRate())
	fmt.Fprintf(w, "Longest win streak: %d\n", stats.LongestWinStreak)
	for mode, n := range stats.WinsByMode {
		fmt.Fprintf(w, "  wins in %s: %d\n", mode, n)
	}
	for reason, n := range stats.DrawsByReason {
		fmt.Fprintf(w, "  draws by %s: %d\n", reason, n)
	}
	fmt.Fprintf(w, "Total play time: %v\n", stats.TotalPlayTime.Round(time.Second))
	return nil
}
