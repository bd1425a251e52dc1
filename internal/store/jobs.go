package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobOptions carries the per-job knobs supplied at creation.
type JobOptions struct {
	IdempotencyKey   *string
	StrictDuplicates bool
	MaxGames         int // 0 = unlimited
}

// CreateJob creates a queued import job. When an idempotency key is
// supplied and a job with that (user, key) already exists, the existing
// job is returned unchanged and created is false.
func (s *Store) CreateJob(userID, objectKey string, opts JobOptions) (job *ImportJob, created bool, err error) {
	if opts.IdempotencyKey != nil {
		if existing, err := s.findByIdempotencyKey(userID, *opts.IdempotencyKey); err != nil {
			return nil, false, err
		} else if existing != nil {
			return existing, false, nil
		}
	}
	row := &ImportJob{
		ID:               uuid.NewString(),
		UserID:           userID,
		IdempotencyKey:   opts.IdempotencyKey,
		Status:           JobQueued,
		ObjectKey:        objectKey,
		StrictDuplicates: opts.StrictDuplicates,
		MaxGames:         opts.MaxGames,
	}
	if err := s.db.Create(row).Error; err != nil {
		// Lost a creation race on the (user, key) unique index.
		if opts.IdempotencyKey != nil {
			if existing, ferr := s.findByIdempotencyKey(userID, *opts.IdempotencyKey); ferr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("create job: %w", err)
	}
	return row, true, nil
}

func (s *Store) findByIdempotencyKey(userID, key string) (*ImportJob, error) {
	var job ImportJob
	err := s.db.Where("user_id = ? AND idempotency_key = ?", userID, key).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup idempotency key: %w", err)
	}
	return &job, nil
}

// GetJob loads a job by id.
func (s *Store) GetJob(id string) (*ImportJob, error) {
	var job ImportJob
	if err := s.db.First(&job, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("load job %s: %w", id, err)
	}
	return &job, nil
}

// ListQueuedJobs returns up to limit jobs still waiting to run, oldest
// first.
func (s *Store) ListQueuedJobs(limit int) ([]ImportJob, error) {
	var jobs []ImportJob
	err := s.db.Where("status = ?", JobQueued).
		Order("created_at asc").Limit(limit).Find(&jobs).Error
	return jobs, err
}

// MarkRunning transitions queued -> running.
func (s *Store) MarkRunning(id string) error {
	now := time.Now().UTC()
	return s.db.Model(&ImportJob{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": JobRunning, "started_at": &now}).Error
}

// MarkCompleted finishes a job with its final counters. A job that
// processed at least one game completes even when some games errored.
func (s *Store) MarkCompleted(id string, c Counters) error {
	now := time.Now().UTC()
	return s.db.Model(&ImportJob{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           JobCompleted,
			"finished_at":      &now,
			"parsed":           c.Parsed,
			"inserted":         c.Inserted,
			"dup_by_moves":     c.DupByMoves,
			"dup_by_canonical": c.DupByCanonical,
			"parse_errors":     c.ParseErrors,
		}).Error
}

// MarkFailed finishes a job that could not run to completion.
func (s *Store) MarkFailed(id, msg string) error {
	now := time.Now().UTC()
	return s.db.Model(&ImportJob{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": JobFailed, "finished_at": &now, "error": msg}).Error
}

// SaveCounters persists a counter snapshot outside a game transaction
// (duplicate and error outcomes have no accompanying insert).
func (s *Store) SaveCounters(id string, c Counters) error {
	return saveCounters(s.db, id, c)
}

// SaveCounters inside the per-game transaction: the job never reports
// more processed games than are actually committed.
func (t *Tx) SaveCounters(id string, c Counters) error {
	return saveCounters(t.db, id, c)
}

func saveCounters(db *gorm.DB, id string, c Counters) error {
	return db.Model(&ImportJob{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"parsed":           c.Parsed,
			"inserted":         c.Inserted,
			"dup_by_moves":     c.DupByMoves,
			"dup_by_canonical": c.DupByCanonical,
			"parse_errors":     c.ParseErrors,
		}).Error
}

// AddImportError appends a bounded per-game failure record. Once the
// job's retention bound is reached further records are dropped; the
// parse-error counter still reflects every failure.
func (s *Store) AddImportError(jobID string, line, gameOffset *int, msg string) error {
	var n int64
	if err := s.db.Model(&ImportError{}).Where("job_id = ?", jobID).Count(&n).Error; err != nil {
		return err
	}
	if n >= int64(s.maxErrorsPerJob) {
		return nil
	}
	return s.db.Create(&ImportError{
		JobID:      jobID,
		Line:       line,
		GameOffset: gameOffset,
		Message:    msg,
	}).Error
}

// ListErrors returns a job's failure records in insertion order.
func (s *Store) ListErrors(jobID string, limit int) ([]ImportError, error) {
	var errs []ImportError
	q := s.db.Where("job_id = ?", jobID).Order("id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&errs).Error
	return errs, err
}
