package store

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/freeeve/gamevault/internal/openings"
)

// UpsertOpeningStat folds one delta into the per-user aggregate as a
// single atomic conditional write. It is never read-then-write: two
// simultaneous imports for the same user cannot lose an update to each
// other. All SET expressions evaluate against the pre-update row, so
// `games` still holds the old count inside the running-mean updates and
// `result_identity` its old value inside the transposition check.
func (t *Tx) UpsertOpeningStat(userID string, d openings.Delta) error {
	resultIdentity := d.ResultIdentity
	row := OpeningStat{
		UserID:         userID,
		Identity:       d.Identity,
		MoveUCI:        d.MoveUCI,
		Games:          1,
		WhiteWins:      d.WhiteWin,
		Draws:          d.Draw,
		BlackWins:      d.BlackWin,
		RatingMean:     d.Rating,
		PerfMean:       d.Perf,
		Transpositions: 0,
		ResultIdentity: &resultIdentity,
	}
	err := t.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "identity"}, {Name: "move_uci"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"games":      gorm.Expr("games + 1"),
			"white_wins": gorm.Expr("white_wins + excluded.white_wins"),
			"draws":      gorm.Expr("draws + excluded.draws"),
			"black_wins": gorm.Expr("black_wins + excluded.black_wins"),
			"rating_mean": gorm.Expr(
				"CASE WHEN excluded.rating_mean IS NULL THEN rating_mean " +
					"WHEN rating_mean IS NULL THEN excluded.rating_mean " +
					"ELSE (rating_mean * games + excluded.rating_mean) / (games + 1) END"),
			"perf_mean": gorm.Expr(
				"CASE WHEN excluded.perf_mean IS NULL THEN perf_mean " +
					"WHEN perf_mean IS NULL THEN excluded.perf_mean " +
					"ELSE (perf_mean * games + excluded.perf_mean) / (games + 1) END"),
			"transpositions": gorm.Expr(
				"transpositions + CASE WHEN result_identity IS NOT NULL " +
					"AND excluded.result_identity IS NOT NULL " +
					"AND result_identity <> excluded.result_identity THEN 1 ELSE 0 END"),
			"result_identity": gorm.Expr("COALESCE(result_identity, excluded.result_identity)"),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert opening stat: %w", err)
	}
	return nil
}

// GetOpeningStat reads one aggregate row, for the explorer and tests.
func (s *Store) GetOpeningStat(userID, identity, moveUCI string) (*OpeningStat, error) {
	var row OpeningStat
	err := s.db.
		Where("user_id = ? AND identity = ? AND move_uci = ?", userID, identity, moveUCI).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// OpeningStatsAt lists a user's aggregate rows for one position,
// most-played move first.
func (s *Store) OpeningStatsAt(userID, identity string) ([]OpeningStat, error) {
	var rows []OpeningStat
	err := s.db.
		Where("user_id = ? AND identity = ?", userID, identity).
		Order("games desc").
		Find(&rows).Error
	return rows, err
}
