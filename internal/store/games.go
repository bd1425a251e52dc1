package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freeeve/gamevault/internal/norm"
	"github.com/freeeve/gamevault/internal/position"
)

// FindDuplicate checks the two content hashes independently for this
// user. Either hit means the game must not be inserted again.
func (s *Store) FindDuplicate(userID, movesHash, canonicalHash string) (byMoves, byCanonical bool, err error) {
	var n int64
	if err := s.db.Model(&Game{}).
		Where("user_id = ? AND moves_hash = ?", userID, movesHash).
		Count(&n).Error; err != nil {
		return false, false, fmt.Errorf("lookup moves hash: %w", err)
	}
	byMoves = n > 0

	if err := s.db.Model(&Game{}).
		Where("user_id = ? AND canonical_hash = ?", userID, canonicalHash).
		Count(&n).Error; err != nil {
		return false, false, fmt.Errorf("lookup canonical hash: %w", err)
	}
	byCanonical = n > 0
	return byMoves, byCanonical, nil
}

// CreateGame inserts the game row with its raw-text and move-tree
// companions, returning the new game id.
func (t *Tx) CreateGame(userID string, g *norm.Game) (string, error) {
	row := Game{
		ID:            uuid.NewString(),
		UserID:        userID,
		White:         g.White,
		Black:         g.Black,
		WhiteKey:      g.WhiteKey,
		BlackKey:      g.BlackKey,
		Result:        g.Result,
		Event:         g.Event,
		EventKey:      g.EventKey,
		Site:          g.Site,
		ECO:           g.ECO,
		TimeControl:   g.TimeControl,
		DatePlayed:    g.Date,
		Rated:         g.Rated,
		WhiteElo:      g.WhiteElo,
		BlackElo:      g.BlackElo,
		StartFEN:      g.StartFEN,
		PlyCount:      g.PlyCount,
		MovesHash:     g.MovesHash,
		CanonicalHash: g.CanonicalHash,
	}
	if err := t.db.Create(&row).Error; err != nil {
		return "", fmt.Errorf("insert game: %w", err)
	}
	if err := t.db.Create(&GameText{GameID: row.ID, RawPGN: g.RawPGN}).Error; err != nil {
		return "", fmt.Errorf("insert game text: %w", err)
	}
	tree, err := json.Marshal(g.Moves)
	if err != nil {
		return "", fmt.Errorf("encode move tree: %w", err)
	}
	if err := t.db.Create(&GameMoves{
		GameID:   row.ID,
		Shape:    string(g.Moves.Shape),
		TreeJSON: string(tree),
	}).Error; err != nil {
		return "", fmt.Errorf("insert move tree: %w", err)
	}
	return row.ID, nil
}

// ReplacePositions deletes and reinserts the per-ply index rows for one
// game, keeping them consistent with the game's current move tree.
func (t *Tx) ReplacePositions(userID, gameID string, plies []position.Ply) error {
	if err := t.db.Where("game_id = ?", gameID).Delete(&GamePosition{}).Error; err != nil {
		return fmt.Errorf("delete positions: %w", err)
	}
	if len(plies) == 0 {
		return nil
	}
	rows := make([]GamePosition, 0, len(plies))
	for _, p := range plies {
		rows = append(rows, GamePosition{
			UserID:        userID,
			GameID:        gameID,
			Ply:           p.Ply,
			Identity:      p.Identity,
			SideToMove:    p.SideToMove,
			Castling:      p.Castling,
			EnPassant:     p.EnPassant,
			Halfmove:      p.Halfmove,
			Fullmove:      p.Fullmove,
			Material:      p.Material,
			MoveSAN:       p.MoveSAN,
			MoveUCI:       p.MoveUCI,
			IdentityAfter: p.IdentityAfter,
		})
	}
	if err := t.db.CreateInBatches(rows, 200).Error; err != nil {
		return fmt.Errorf("insert positions: %w", err)
	}
	return nil
}

// GetGame loads a game row by id.
func (s *Store) GetGame(id string) (*Game, error) {
	var g Game
	if err := s.db.First(&g, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("game %s not found", id)
		}
		return nil, err
	}
	return &g, nil
}

// PositionsForGame returns a game's index rows ordered by ply.
func (s *Store) PositionsForGame(gameID string) ([]GamePosition, error) {
	var rows []GamePosition
	err := s.db.Where("game_id = ?", gameID).Order("ply asc").Find(&rows).Error
	return rows, err
}
