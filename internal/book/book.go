// Package book is a small opening book built from lines of SAN moves.
package book

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"strings"

	"github.com/hailam/chesscore/internal/board"
)

// BookEntry represents a single book entry.
type BookEntry struct {
	Move   board.Move
	Weight uint16 // Number of lines playing the move from this position
}

// Book maps position fingerprints to the moves the lines play there.
type Book struct {
	entries map[uint64][]BookEntry
	lines   []string
}

// New creates an empty book.
func New() *Book {
	return &Book{
		entries: make(map[uint64][]BookEntry),
	}
}

// Default returns a book holding the built-in lines.
func Default() *Book {
	b, err := FromLines(defaultLines)
	if err != nil {
		panic(err)
	}
	return b
}

// FromLines builds a book from lines such as "1. e4 e5 2. Nf3 Nc6". Move
// numbers are optional.
func FromLines(lines []string) (*Book, error) {
	b := New()
	for _, line := range lines {
		if err := b.AddLine(line); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Load reads one line per row, skipping blank rows and rows starting
// with "//".
func Load(r io.Reader) (*Book, error) {
	b := New()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if err := b.AddLine(line); err != nil {
			return nil, err
		}
	}
	return b, scanner.Err()
}

// AddLine plays line from the starting position, adding one weight to
// every move along it.
func (b *Book) AddLine(line string) error {
	pos := board.NewPosition()
	for _, san := range tokens(line) {
		m, err := board.ParseSAN(san, pos)
		if err != nil {
			return fmt.Errorf("book line %q: %w", line, err)
		}
		b.add(pos.Hash, m)
		pos.ApplyMove(m)
	}
	b.lines = append(b.lines, line)
	return nil
}

func (b *Book) add(key uint64, m board.Move) {
	entries := b.entries[key]
	for i := range entries {
		if entries[i].Move == m {
			entries[i].Weight++
			return
		}
	}
	b.entries[key] = append(entries, BookEntry{Move: m, Weight: 1})
}

// tokens drops move numbers and result markers from a line.
func tokens(line string) []string {
	var out []string
	for _, f := range strings.Fields(line) {
		if i := strings.LastIndexByte(f, '.'); i >= 0 {
			f = f[i+1:]
		}
		switch f {
		case "", "*", "1-0", "0-1", "1/2-1/2":
			continue
		}
		out = append(out, f)
	}
	return out
}

// Probe looks up a position in the book and returns a move using weighted
// random selection. The same rng state always gives the same move.
func (b *Book) Probe(pos *board.Position, rng *rand.Rand) (board.Move, bool) {
	entries := b.ProbeAll(pos)
	if len(entries) == 0 {
		return board.NoMove, false
	}

	totalWeight := 0
	for _, e := range entries {
		totalWeight += int(e.Weight)
	}

	r := rng.Intn(totalWeight)
	cumulative := 0
	for _, e := range entries {
		cumulative += int(e.Weight)
		if r < cumulative {
			return verify(pos, e.Move)
		}
	}

	return verify(pos, entries[0].Move)
}

// ProbeAll returns all book moves for the position, heaviest first.
func (b *Book) ProbeAll(pos *board.Position) []BookEntry {
	if b == nil {
		return nil
	}

	entries, ok := b.entries[pos.Hash]
	if !ok {
		return nil
	}

	result := slices.Clone(entries)
	slices.SortStableFunc(result, func(x, y BookEntry) int {
		return int(y.Weight) - int(x.Weight)
	})
	return result
}

// verify returns the legal move matching m. A fingerprint collision could
// otherwise hand back a move for a different position.
func verify(pos *board.Position, m board.Move) (board.Move, bool) {
	for _, legal := range pos.LegalMoves() {
		if legal == m {
			return legal, true
		}
	}
	return board.NoMove, false
}

// Size returns the number of unique positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Lines returns the lines the book was built from, in insertion order.
func (b *Book) Lines() []string {
	if b == nil {
		return nil
	}
	return b.lines
}

// Position plays line from the starting position.
func Position(line string) (*board.Position, error) {
	pos := board.NewPosition()
	for _, san := range tokens(line) {
		m, err := board.ParseSAN(san, pos)
		if err != nil {
			return nil, fmt.Errorf("book line %q: %w", line, err)
		}
		pos.ApplyMove(m)
	}
	return pos, nil
}
