package position

import (
	"fmt"
	"strings"

	"github.com/freeeve/pgn/v3"
)

// Board is one game in progress. Apply advances the position by one SAN
// move or reports it illegal; the position is unchanged on error.
type Board interface {
	FEN() string
	Apply(san string) error
}

// Rules is the narrow rules-engine capability the indexer consumes.
// Implementations must treat startFEN == "" as the standard initial
// position.
type Rules interface {
	NewGame(startFEN string) (Board, error)
}

// NewRules returns the pgn-backed rules engine.
func NewRules() Rules { return pgnRules{} }

type pgnRules struct{}

func (pgnRules) NewGame(startFEN string) (Board, error) {
	if startFEN == "" {
		return &pgnBoard{gs: pgn.NewStartingPosition()}, nil
	}
	keyStr, err := pgn.PackedPositionFromFEN(startFEN)
	if err != nil {
		return nil, fmt.Errorf("parse FEN: %w", err)
	}
	key, err := pgn.ParsePackedPosition(keyStr)
	if err != nil {
		return nil, fmt.Errorf("parse position key: %w", err)
	}
	gs := key.Unpack()
	if gs == nil {
		return nil, fmt.Errorf("unpack position for FEN %q", startFEN)
	}
	return &pgnBoard{gs: gs}, nil
}

type pgnBoard struct {
	gs *pgn.GameState
}

func (b *pgnBoard) FEN() string { return b.gs.ToFEN() }

func (b *pgnBoard) Apply(san string) error {
	// Check and mate symbols are redundant for move resolution.
	san = strings.TrimSuffix(san, "+")
	san = strings.TrimSuffix(san, "#")
	mv, err := pgn.ParseSAN(b.gs, san)
	if err != nil {
		return fmt.Errorf("parse %q: %w", san, err)
	}
	if err := pgn.ApplyMove(b.gs, mv); err != nil {
		return fmt.Errorf("apply %q: %w", san, err)
	}
	return nil
}
