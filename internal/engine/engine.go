package engine

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	Left     time.Duration // Budget remaining, zero without a limit
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth
	MoveTime time.Duration // Time for this move (0 = no limit)
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply
	Medium                   // 3 ply
	Hard                     // 4 ply
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2, MoveTime: 2 * time.Second},
	Medium: {Depth: 3, MoveTime: 5 * time.Second},
	Hard:   {Depth: 4, MoveTime: 10 * time.Second},
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

// Engine is the chess AI engine. An Engine is not safe for concurrent
// use; give each goroutine its own.
type Engine struct {
	tt         *TranspositionTable
	eval       *Evaluator
	orderer    *MoveOrderer
	tm         *TimeManager
	rng        *rand.Rand
	difficulty Difficulty
	drawBias   bool

	// Callbacks
	OnInfo func(SearchInfo)
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed seeds the random choice used when no search result is available.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithDrawBias toggles the material-dependent stalemate score.
func WithDrawBias(on bool) Option {
	return func(e *Engine) {
		e.drawBias = on
	}
}

// WithDifficulty sets the difficulty used by Search.
func WithDifficulty(d Difficulty) Option {
	return func(e *Engine) {
		e.difficulty = d
	}
}

// WithInfo installs a callback receiving one report per completed depth.
func WithInfo(fn func(SearchInfo)) Option {
	return func(e *Engine) {
		e.OnInfo = fn
	}
}

// NewEngine creates a new chess engine with the given transposition table size in MB.
func NewEngine(ttSizeMB int, opts ...Option) *Engine {
	e := &Engine{
		tt:         NewTranspositionTable(ttSizeMB),
		eval:       NewEvaluator(),
		orderer:    NewMoveOrderer(),
		tm:         NewTimeManager(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		difficulty: Medium,
		drawBias:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// Difficulty returns the engine difficulty.
func (e *Engine) Difficulty() Difficulty {
	return e.difficulty
}

// Search finds the best move using the current difficulty's limits.
func (e *Engine) Search(pos *board.Position) board.Move {
	limits := DifficultySettings[e.difficulty]
	return e.GetBestMove(pos, limits.Depth, limits.MoveTime)
}

// GetBestMove searches pos by iterative deepening up to maxDepth within
// the time budget and returns the best move of the deepest completed
// iteration. When no iteration completes it falls back to the most
// valuable capture, or else a random legal move. It returns NoMove only
// when the side to move has no legal moves; pos.Checkmate and
// pos.Stalemate then say why.
//
// pos is restored to its original state before GetBestMove returns.
func (e *Engine) GetBestMove(pos *board.Position, maxDepth int, budget time.Duration) board.Move {
	move, _ := e.search(pos, 1, max(maxDepth, 1), budget)
	return move
}

// SearchDepth runs a single search at exactly depth with no time limit
// and returns the move and its score from White's perspective. The result
// is the same on every call for the same position.
func (e *Engine) SearchDepth(pos *board.Position, depth int) (board.Move, int) {
	depth = max(depth, 1)
	return e.search(pos, depth, depth, 0)
}

func (e *Engine) search(pos *board.Position, minDepth, maxDepth int, budget time.Duration) (best board.Move, bestScore int) {
	rootPly := pos.Ply()

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if pos.Ply() < rootPly {
			panic(fmt.Sprintf("search unwound below the root: %v", r))
		}
		for pos.Ply() > rootPly {
			pos.UnapplyMove()
		}
		log.Printf("Warning: search aborted, playing fallback move: %v", r)
		best, bestScore = e.fallbackMove(pos, pos.ValidMoves()), 0
	}()

	moves := pos.ValidMoves()
	if len(moves) == 0 {
		return board.NoMove, 0
	}

	e.tt.Clear()
	e.orderer.Clear()
	e.tm.Init(budget)

	s := &searcher{
		tt:       e.tt,
		eval:     e.eval,
		orderer:  e.orderer,
		tm:       e.tm,
		drawBias: e.drawBias,
	}

	e.orderer.OrderMoves(moves, board.NoMove, 0)

	for depth := minDepth; depth <= maxDepth && depth < MaxPly; depth++ {
		move, score := s.searchRoot(pos, moves, depth)
		if s.stopped {
			break
		}

		best, bestScore = move, score

		// Search the previous best first at the next depth.
		e.orderer.OrderMoves(moves, best, 0)

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    bestScore,
				Nodes:    s.nodes,
				Time:     e.tm.Elapsed(),
				Left:     e.tm.Remaining(),
				PV:       s.principalVariation(pos, depth),
				HashFull: e.tt.HashFull(),
			})
		}

		if IsMateScore(score) || e.tm.PastSoftLimit() {
			break
		}
	}

	if best.IsNull() {
		best = e.fallbackMove(pos, moves)
	}
	return best, bestScore
}

// fallbackMove picks the highest MVV-LVA capture, or a random legal move
// when there are no captures.
func (e *Engine) fallbackMove(pos *board.Position, moves []board.Move) board.Move {
	if len(moves) == 0 {
		return board.NoMove
	}

	best := board.NoMove
	bestScore := 0
	for _, m := range moves {
		if !m.IsCapture() {
			continue
		}
		if score := mvvLva(m); best.IsNull() || score > bestScore {
			best, bestScore = m, score
		}
	}
	if !best.IsNull() {
		return best
	}

	return moves[e.rng.Intn(len(moves))]
}

// Clear clears the transposition table and other caches.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.eval.Clear()
	e.orderer.Clear()
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return e.eval.Evaluate(pos)
}

// Perft counts leaf nodes of the legal move tree (for debugging move
// generation).
func Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, move := range moves {
		pos.ApplyMove(move)
		nodes += Perft(pos, depth-1)
		pos.UnapplyMove()
	}

	return nodes
}

// ScoreToString converts a White-relative score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-MaxPly {
		return fmt.Sprintf("White mates in %d", (MateScore-score+1)/2)
	}
	if score < -MateScore+MaxPly {
		return fmt.Sprintf("Black mates in %d", (MateScore+score+1)/2)
	}
	return fmt.Sprintf("%+.2f", float64(score)/100)
}
