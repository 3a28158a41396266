package book

// defaultLines are short main lines of common openings.
var defaultLines = []string{
	// Open games
	"1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6",
	"1. e4 e5 2. Nf3 Nc6 3. Bc4 Bc5 4. c3 Nf6",
	"1. e4 e5 2. Nf3 Nc6 3. d4 exd4 4. Nxd4 Nf6",
	"1. e4 e5 2. Nf3 Nf6 3. Nxe5 d6 4. Nf3 Nxe4",
	// Sicilian
	"1. e4 c5 2. Nf3 d6 3. d4 cxd4 4. Nxd4 Nf6 5. Nc3 a6",
	"1. e4 c5 2. Nf3 Nc6 3. d4 cxd4 4. Nxd4 g6",
	"1. e4 c5 2. c3 Nf6 3. e5 Nd5 4. d4 cxd4",
	// French and Caro-Kann
	"1. e4 e6 2. d4 d5 3. Nc3 Nf6 4. e5 Nfd7 5. f4 c5",
	"1. e4 e6 2. d4 d5 3. Nd2 c5 4. exd5 exd5",
	"1. e4 c6 2. d4 d5 3. Nc3 dxe4 4. Nxe4 Bf5 5. Ng3 Bg6",
	"1. e4 c6 2. d4 d5 3. e5 Bf5 4. Nf3 e6",
	// Queen's pawn
	"1. d4 d5 2. c4 e6 3. Nc3 Nf6 4. Bg5 Be7",
	"1. d4 d5 2. c4 c6 3. Nf3 Nf6 4. Nc3 dxc4",
	"1. d4 d5 2. c4 dxc4 3. Nf3 Nf6 4. e3 e6",
	"1. d4 Nf6 2. c4 g6 3. Nc3 Bg7 4. e4 d6 5. Nf3 O-O",
	"1. d4 Nf6 2. c4 e6 3. Nc3 Bb4 4. e3 O-O",
	"1. d4 Nf6 2. c4 e6 3. Nf3 b6 4. g3 Bb7",
	"1. d4 Nf6 2. Bf4 d5 3. e3 c5 4. c3 Nc6",
	// Flank openings
	"1. c4 e5 2. Nc3 Nf6 3. Nf3 Nc6 4. g3 d5",
	"1. Nf3 d5 2. g3 Nf6 3. Bg2 c6 4. O-O Bg4",
}
