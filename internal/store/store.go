// Package store persists games, per-ply position indices, opening
// aggregates and import jobs behind gorm.
package store

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps the database handle shared by the pipeline.
type Store struct {
	db *gorm.DB
	// maxErrorsPerJob bounds ImportError retention per job.
	maxErrorsPerJob int
}

// Option configures a Store.
type Option func(*Store)

// WithMaxErrorsPerJob overrides the per-job error retention bound.
func WithMaxErrorsPerJob(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxErrorsPerJob = n
		}
	}
}

// Open opens (creating if needed) the sqlite database at path and
// migrates the schema.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&ImportJob{}, &ImportError{},
		&Game{}, &GameText{}, &GameMoves{},
		&GamePosition{}, &OpeningStat{},
	); err != nil {
		return nil, err
	}
	s := &Store{db: db, maxErrorsPerJob: 100}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Tx exposes the per-game write operations inside one transaction.
type Tx struct {
	db *gorm.DB
}

// Transaction runs fn inside one database transaction; a crash mid-game
// never leaves position or aggregate rows inconsistent with a committed
// game row.
func (s *Store) Transaction(fn func(tx *Tx) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Tx{db: tx})
	})
}
