// Package arena plays batches of computer games concurrently, each game
// on its own position with its own engines.
package arena

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/book"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
)

// DefaultMaxPlies adjudicates a game as drawn after 200 half-moves.
const DefaultMaxPlies = 200

// Player describes one side of a match. A Random player ignores the
// search settings and picks uniformly among the legal moves.
type Player struct {
	Name       string
	Random     bool
	Difficulty engine.Difficulty
	Depth      int           // Overrides the difficulty depth when > 0
	MoveTime   time.Duration // Overrides the difficulty move time when > 0
}

func (p Player) String() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Random {
		return "random"
	}
	return "engine-" + p.Difficulty.String()
}

func (p Player) limits() engine.SearchLimits {
	limits := engine.DifficultySettings[p.Difficulty]
	if p.Depth > 0 {
		limits.Depth = p.Depth
	}
	if p.MoveTime > 0 {
		limits.MoveTime = p.MoveTime
	}
	return limits
}

// Config describes a match between A and B. Colors alternate, A playing
// White in odd-numbered games.
type Config struct {
	A, B        Player
	Games       int
	Concurrency int    // Games played at once, NumCPU when zero
	MaxPlies    int    // DefaultMaxPlies when zero
	FEN         string // Start position, empty for the standard one
	Seed        int64

	// Openings are SAN lines played before the engines take over. Games
	// 2k+1 and 2k+2 share an opening with colors swapped. Cannot be
	// combined with FEN.
	Openings []string
}

// GameResult is one finished game.
type GameResult struct {
	Number   int
	AIsWhite bool
	Opening  string
	Outcome  game.Outcome
	Plies    int      // Played after the opening
	Moves    []string // SAN, after the opening
	Duration time.Duration
	FinalFEN string
}

// ScoreA returns A's points from the game: 1, 0.5 or 0.
func (r GameResult) ScoreA() float64 {
	winner, ok := r.Outcome.Winner()
	if !ok {
		return 0.5
	}
	if (winner == board.White) == r.AIsWhite {
		return 1
	}
	return 0
}

// Summary aggregates a match from A's point of view.
type Summary struct {
	Games   int
	WinsA   int
	WinsB   int
	Draws   int
	Reasons map[game.Reason]int
	Results []GameResult // ordered by game number
}

// Score returns A's total points.
func (s Summary) Score() float64 {
	return float64(s.WinsA) + float64(s.Draws)/2
}

func (s Summary) String() string {
	return fmt.Sprintf("games %d: A +%d -%d =%d (%.1f/%d)",
		s.Games, s.WinsA, s.WinsB, s.Draws, s.Score(), s.Games)
}

type gameInfo struct {
	number   int
	aIsWhite bool
	opening  string
}

// Run plays the match and returns its summary. If ctx is cancelled or a
// game fails, the summary holds the games finished so far and the error
// is returned with it.
func Run(ctx context.Context, cfg Config) (Summary, error) {
	if cfg.Games <= 0 {
		return Summary{}, fmt.Errorf("arena: games must be positive, got %d", cfg.Games)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	cfg.Concurrency = min(cfg.Concurrency, cfg.Games)
	if cfg.MaxPlies <= 0 {
		cfg.MaxPlies = DefaultMaxPlies
	}
	if cfg.FEN != "" {
		if len(cfg.Openings) > 0 {
			return Summary{}, fmt.Errorf("arena: openings cannot be combined with a start FEN")
		}
		if _, err := board.ParseFEN(cfg.FEN); err != nil {
			return Summary{}, err
		}
	}
	for _, line := range cfg.Openings {
		if _, err := book.Position(line); err != nil {
			return Summary{}, err
		}
	}

	log.Printf("arena: %s vs %s, %d games, concurrency %d", cfg.A, cfg.B, cfg.Games, cfg.Concurrency)

	g, ctx := errgroup.WithContext(ctx)

	gameInfos := make(chan gameInfo)
	gameResults := make(chan GameResult)

	g.Go(func() error {
		defer close(gameInfos)
		for i := 1; i <= cfg.Games; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case gameInfos <- newGameInfo(cfg, i):
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return playGames(ctx, cfg, gameInfos, gameResults)
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(gameResults)
		return nil
	})

	summary := Summary{Reasons: make(map[game.Reason]int)}
	g.Go(func() error {
		for res := range gameResults {
			summary.add(res)
			log.Printf("arena: game %d %s (%s) after %d plies; %s",
				res.Number, res.Outcome.Result, res.Outcome.Reason, res.Plies, summary)
		}
		return nil
	})

	err := g.Wait()
	slices.SortFunc(summary.Results, func(a, b GameResult) int {
		return a.Number - b.Number
	})
	return summary, err
}

func newGameInfo(cfg Config, number int) gameInfo {
	info := gameInfo{number: number, aIsWhite: number%2 == 1}
	if len(cfg.Openings) > 0 {
		info.opening = cfg.Openings[(number-1)/2%len(cfg.Openings)]
	}
	return info
}

func (s *Summary) add(res GameResult) {
	s.Games++
	switch res.ScoreA() {
	case 1:
		s.WinsA++
	case 0:
		s.WinsB++
	default:
		s.Draws++
	}
	s.Reasons[res.Outcome.Reason]++
	s.Results = append(s.Results, res)
}

// playGames is one worker. Engines are not shared between goroutines, so
// each worker owns a pair.
func playGames(
	ctx context.Context,
	cfg Config,
	gameInfos <-chan gameInfo,
	gameResults chan<- GameResult,
) error {
	engineA := newEngine(cfg.A, cfg.Seed)
	engineB := newEngine(cfg.B, cfg.Seed+1)

	for info := range gameInfos {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(info.number)))
		res, err := playGame(ctx, cfg, engineA, engineB, rng, info)
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case gameResults <- res:
		}
	}
	return nil
}

func newEngine(p Player, seed int64) *engine.Engine {
	if p.Random {
		return nil
	}
	return engine.NewEngine(16, engine.WithSeed(seed), engine.WithDifficulty(p.Difficulty))
}

// playGame plays one game to its end or the ply cap.
func playGame(
	ctx context.Context,
	cfg Config,
	engineA, engineB *engine.Engine,
	rng *rand.Rand,
	info gameInfo,
) (GameResult, error) {
	start := time.Now()

	pos := board.NewPosition()
	var err error
	switch {
	case cfg.FEN != "":
		pos, err = board.ParseFEN(cfg.FEN)
	case info.opening != "":
		pos, err = book.Position(info.opening)
	}
	if err != nil {
		return GameResult{}, err
	}

	res := GameResult{Number: info.number, AIsWhite: info.aIsWhite, Opening: info.opening}

	for {
		if err := ctx.Err(); err != nil {
			return GameResult{}, err
		}

		res.Outcome = game.OutcomeOf(pos)
		if res.Outcome.IsOver() {
			break
		}
		if res.Plies >= cfg.MaxPlies {
			res.Outcome = game.Outcome{Result: game.Draw, Reason: game.MoveLimit}
			break
		}

		aToMove := (pos.SideToMove == board.White) == info.aIsWhite
		player, eng := cfg.B, engineB
		if aToMove {
			player, eng = cfg.A, engineA
		}

		var m board.Move
		if player.Random {
			m = game.RandomMove(pos, rng)
		} else {
			limits := player.limits()
			m = eng.GetBestMove(pos, limits.Depth, limits.MoveTime)
		}
		if m.IsNull() {
			return GameResult{}, fmt.Errorf("arena: game %d: %s produced no move in %s", info.number, player, pos.ToFEN())
		}

		res.Moves = append(res.Moves, m.ToSAN(pos))
		pos.ApplyMove(m)
		res.Plies++
	}

	res.Duration = time.Since(start)
	res.FinalFEN = pos.ToFEN()
	return res, nil
}
