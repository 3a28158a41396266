package book

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func TestDefaultBook(t *testing.T) {
	b := Default()
	if b.Size() == 0 {
		t.Fatal("Default book is empty")
	}
	if len(b.Lines()) != len(defaultLines) {
		t.Errorf("Lines() = %d, want %d", len(b.Lines()), len(defaultLines))
	}

	// Every line replays to a legal, unfinished position.
	for _, line := range b.Lines() {
		pos, err := Position(line)
		if err != nil {
			t.Fatalf("Position(%q): %v", line, err)
		}
		if len(pos.ValidMoves()) == 0 {
			t.Errorf("%q ends the game", line)
		}
	}
}

func TestBookLoadAndProbe(t *testing.T) {
	text := `// test book
1. e4 e5 2. Nf3
1. e4 c5

1. d4 d5`
	b, err := Load(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Failed to load book: %v", err)
	}

	pos := board.NewPosition()
	entries := b.ProbeAll(pos)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 moves from the start, got %d", len(entries))
	}
	if entries[0].Move.String() != "e2e4" || entries[0].Weight != 2 {
		t.Errorf("Heaviest entry %s weight %d, want e2e4 weight 2", entries[0].Move, entries[0].Weight)
	}

	rng := rand.New(rand.NewSource(1))
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		move, found := b.Probe(pos, rng)
		if !found {
			t.Fatal("Expected to find move in book")
		}
		seen[move.String()] = true
	}
	if !seen["e2e4"] || !seen["d2d4"] || len(seen) != 2 {
		t.Errorf("Weighted probe picked %v", seen)
	}

	m, _ := board.ParseMove("e2e4", pos)
	pos.ApplyMove(m)
	if got := b.ProbeAll(pos); len(got) != 2 {
		t.Errorf("Expected e5 and c5 after e4, got %v", got)
	}
}

func TestBookProbeDeterministic(t *testing.T) {
	b := Default()
	pos := board.NewPosition()
	first, _ := b.Probe(pos, rand.New(rand.NewSource(9)))
	for i := 0; i < 5; i++ {
		if m, _ := b.Probe(pos, rand.New(rand.NewSource(9))); m != first {
			t.Errorf("Probe with the same seed gave %s then %s", first, m)
		}
	}
}

func TestBookMiss(t *testing.T) {
	b := New()
	pos := board.NewPosition()

	move, found := b.Probe(pos, rand.New(rand.NewSource(1)))
	if found {
		t.Error("Expected book miss on empty book")
	}
	if move != board.NoMove {
		t.Errorf("Expected NoMove on miss, got %s", move.String())
	}

	var nilBook *Book
	if nilBook.Size() != 0 || nilBook.ProbeAll(pos) != nil {
		t.Error("nil book should be empty")
	}
}

func TestBadLine(t *testing.T) {
	if _, err := FromLines([]string{"1. e4 e4"}); err == nil {
		t.Error("Expected error for illegal line")
	}
	if _, err := Position("1. Ke2 Ke7 2. Kd4"); err == nil {
		t.Error("Expected error for illegal king move")
	}
}

func TestTokens(t *testing.T) {
	got := strings.Join(tokens("1. e4 e5 2.Nf3 Nc6 3... a6 1-0"), " ")
	if got != "e4 e5 Nf3 Nc6 a6" {
		t.Errorf("tokens = %q", got)
	}
}
