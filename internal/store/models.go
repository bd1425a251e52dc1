package store

import "time"

// Job statuses.
const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// ImportJob tracks one upload through the pipeline. Mutated only by the
// job controller; never deleted here.
type ImportJob struct {
	ID     string `gorm:"primaryKey;size:36"`
	UserID string `gorm:"size:64;index;uniqueIndex:uniq_user_idem,priority:1"`
	// IdempotencyKey makes repeated creation requests return the
	// existing job instead of enqueueing a second one.
	IdempotencyKey *string `gorm:"size:128;uniqueIndex:uniq_user_idem,priority:2"`
	Status         string  `gorm:"size:16;index"`
	ObjectKey      string  `gorm:"size:512"`

	StrictDuplicates bool
	MaxGames         int // 0 = unlimited

	Parsed         int
	Inserted       int
	DupByMoves     int
	DupByCanonical int
	ParseErrors    int

	Error      string `gorm:"type:text"`
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// Counters is the running-counter snapshot persisted with the job row.
type Counters struct {
	Parsed         int
	Inserted       int
	DupByMoves     int
	DupByCanonical int
	ParseErrors    int
}

// ImportError is an append-only per-game failure record. Retention per
// job is bounded at insert time.
type ImportError struct {
	ID         uint   `gorm:"primaryKey"`
	JobID      string `gorm:"size:36;index"`
	Line       *int   // 1-based line number in the source file
	GameOffset *int   // 1-based game offset within the file
	Message    string `gorm:"type:text"`
	CreatedAt  time.Time
}

// Game is one accepted, deduplicated game. MovesHash is the
// authoritative per-user dedup key.
type Game struct {
	ID       string `gorm:"primaryKey;size:36"`
	UserID   string `gorm:"size:64;index;uniqueIndex:uniq_user_moves,priority:1;index:idx_user_canonical,priority:1"`
	White    string `gorm:"size:128"`
	Black    string `gorm:"size:128"`
	WhiteKey string `gorm:"size:128;index"`
	BlackKey string `gorm:"size:128;index"`
	Result   string `gorm:"size:8"`

	Event       *string    `gorm:"size:256"`
	EventKey    *string    `gorm:"size:256;index"`
	Site        *string    `gorm:"size:256"`
	ECO         *string    `gorm:"column:eco;size:8;index"`
	TimeControl *string    `gorm:"size:32"`
	DatePlayed  *time.Time `gorm:"index"`
	Rated       *bool
	WhiteElo    *int
	BlackElo    *int

	StartFEN *string `gorm:"column:start_fen;size:100"` // nil = standard
	PlyCount *int

	MovesHash     string `gorm:"size:64;uniqueIndex:uniq_user_moves,priority:2"`
	CanonicalHash string `gorm:"size:64;index:idx_user_canonical,priority:2"`

	CreatedAt time.Time
}

// GameText is the raw-text companion row.
type GameText struct {
	GameID string `gorm:"primaryKey;size:36"`
	RawPGN string `gorm:"column:raw_pgn;type:text"`
}

// GameMoves is the move-tree companion row. Shape is the tagged variant
// decided during normalization.
type GameMoves struct {
	GameID   string `gorm:"primaryKey;size:36"`
	Shape    string `gorm:"size:16"`
	TreeJSON string `gorm:"type:text"`
}

// GamePosition is one row per (user, game, ply). Rows for a game are
// fully replaced whenever it is (re)indexed.
type GamePosition struct {
	ID     uint   `gorm:"primaryKey"`
	UserID string `gorm:"size:64;index:idx_user_identity,priority:1;index:idx_user_material,priority:1"`
	GameID string `gorm:"size:36;index"`
	Ply    int    // 1-based

	Identity   string `gorm:"size:128;index:idx_user_identity,priority:2"`
	SideToMove string `gorm:"size:1"`
	Castling   string `gorm:"size:4"`
	EnPassant  string `gorm:"size:2"`
	// Halfmove and fullmove are informational only, excluded from identity.
	Halfmove int
	Fullmove int
	Material string `gorm:"size:64;index:idx_user_material,priority:2"`

	MoveSAN       string `gorm:"size:16"`
	MoveUCI       string `gorm:"column:move_uci;size:8"`
	IdentityAfter string `gorm:"size:128"`
}

// OpeningStat is the per-user opening aggregate, one row per
// (position identity, move). Rows are only ever incremented.
type OpeningStat struct {
	ID       uint   `gorm:"primaryKey"`
	UserID   string `gorm:"size:64;uniqueIndex:uniq_user_pos_move,priority:1"`
	Identity string `gorm:"size:128;uniqueIndex:uniq_user_pos_move,priority:2"`
	MoveUCI  string `gorm:"column:move_uci;size:8;uniqueIndex:uniq_user_pos_move,priority:3"`

	Games     int
	WhiteWins int
	Draws     int
	BlackWins int

	RatingMean *float64
	PerfMean   *float64

	// Transpositions counts folds whose resulting identity disagreed
	// with the stored one: a source-data inconsistency signal, recorded
	// rather than rejected. Monotonically non-decreasing.
	Transpositions int
	// ResultIdentity is the first-seen resulting position identity.
	ResultIdentity *string `gorm:"size:128"`
}
