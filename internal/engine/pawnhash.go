package engine

// PawnEntry stores a cached pawn structure score.
type PawnEntry struct {
	Key   uint64
	Score int16 // White minus Black
	Used  bool
}

// PawnTable is a hash table for caching pawn structure evaluations.
// Passed, doubled and isolated pawn terms depend on pawn placement alone,
// so they are keyed by the position's pawn key.
type PawnTable struct {
	entries []PawnEntry
	mask    uint64
}

// NewPawnTable creates a new pawn hash table with the given size in MB.
func NewPawnTable(sizeMB int) *PawnTable {
	entrySize := 16
	numEntries := (max(sizeMB, 1) * 1024 * 1024) / entrySize

	// Round down to power of 2
	size := 1
	for size*2 <= numEntries {
		size *= 2
	}

	return &PawnTable{
		entries: make([]PawnEntry, size),
		mask:    uint64(size - 1),
	}
}

// Probe looks up a pawn structure evaluation in the hash table.
func (pt *PawnTable) Probe(key uint64) (int, bool) {
	entry := &pt.entries[key&pt.mask]
	if entry.Used && entry.Key == key {
		return int(entry.Score), true
	}
	return 0, false
}

// Store saves a pawn structure evaluation in the hash table.
func (pt *PawnTable) Store(key uint64, score int) {
	pt.entries[key&pt.mask] = PawnEntry{Key: key, Score: int16(score), Used: true}
}

// Clear clears the pawn hash table.
func (pt *PawnTable) Clear() {
	clear(pt.entries)
}
