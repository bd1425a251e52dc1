package position

import "fmt"

// Ply is one per-ply index record: the position the move was played
// from, full game-state fields, and the move with its resulting
// position. Halfmove and fullmove are informational only and excluded
// from identities.
type Ply struct {
	Ply int // 1-based

	Identity   string
	SideToMove string
	Castling   string
	EnPassant  string
	Halfmove   int
	Fullmove   int
	Material   string

	MoveSAN       string
	MoveUCI       string
	IdentityAfter string
}

// Indexer replays games against a rules engine.
type Indexer struct {
	rules Rules
}

func NewIndexer(rules Rules) *Indexer { return &Indexer{rules: rules} }

// Replay applies moves one at a time from startFEN ("" = standard
// start) and emits one record per successfully applied ply. A move the
// engine rejects truncates the remainder: the game is partially
// indexed, never failed. The returned error covers only an unusable
// starting position.
func (ix *Indexer) Replay(startFEN string, san []string) ([]Ply, error) {
	b, err := ix.rules.NewGame(startFEN)
	if err != nil {
		return nil, fmt.Errorf("start position: %w", err)
	}
	before, err := ParseFEN(b.FEN())
	if err != nil {
		return nil, fmt.Errorf("start position: %w", err)
	}
	// The engine round-trips positions without counters; when the
	// original start FEN carries them, prefer its values.
	if startFEN != "" {
		if f, err := ParseFEN(startFEN); err == nil {
			before.Halfmove = f.Halfmove
			before.Fullmove = f.Fullmove
		}
	}

	plies := make([]Ply, 0, len(san))
	for i, mv := range san {
		if err := b.Apply(mv); err != nil {
			break // truncate; remaining moves are unreachable
		}
		after, err := ParseFEN(b.FEN())
		if err != nil {
			break
		}
		facts, err := DeriveMove(before, after)
		if err != nil {
			break
		}

		// Maintain the counters the engine state does not carry.
		after.Halfmove = before.Halfmove + 1
		if facts.PawnMove || facts.Capture {
			after.Halfmove = 0
		}
		after.Fullmove = before.Fullmove
		if before.SideToMove == "b" {
			after.Fullmove++
		}

		plies = append(plies, Ply{
			Ply:           i + 1,
			Identity:      before.Identity(),
			SideToMove:    before.SideToMove,
			Castling:      before.Castling,
			EnPassant:     before.EnPassant,
			Halfmove:      before.Halfmove,
			Fullmove:      before.Fullmove,
			Material:      MaterialKey(before.Placement),
			MoveSAN:       mv,
			MoveUCI:       facts.UCI,
			IdentityAfter: after.Identity(),
		})
		before = after
	}
	return plies, nil
}
