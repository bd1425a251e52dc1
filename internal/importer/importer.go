// Package importer drives one import job end to end: stream decode,
// normalize, dedup, index, aggregate, and job lifecycle.
package importer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/gamevault/internal/metrics"
	"github.com/freeeve/gamevault/internal/norm"
	"github.com/freeeve/gamevault/internal/objstore"
	"github.com/freeeve/gamevault/internal/openings"
	"github.com/freeeve/gamevault/internal/pgnstream"
	"github.com/freeeve/gamevault/internal/position"
	"github.com/freeeve/gamevault/internal/queue"
	"github.com/freeeve/gamevault/internal/store"
)

// Importer processes import jobs. All dependencies are explicit.
type Importer struct {
	store   *store.Store
	storage objstore.Storage
	rules   position.Rules
	log     zerolog.Logger
}

func New(st *store.Store, storage objstore.Storage, rules position.Rules, log zerolog.Logger) *Importer {
	return &Importer{store: st, storage: storage, rules: rules, log: log}
}

// Handle is the queue handler for {importJobId, userId} payloads.
// Transport and storage failures fail the whole job and propagate so
// the surrounding retry/dead-letter policy can act; per-game failures
// are recorded and skipped.
func (im *Importer) Handle(ctx context.Context, p queue.Payload) error {
	job, err := im.store.GetJob(p.ImportJobID)
	if err != nil {
		return err
	}
	if job.Status == store.JobCompleted || job.Status == store.JobFailed {
		im.log.Info().Str("job_id", job.ID).Str("status", job.Status).Msg("job already finished, skipping")
		return nil
	}
	if err := im.store.MarkRunning(job.ID); err != nil {
		return err
	}

	rc, comp, err := im.storage.Open(ctx, job.ObjectKey)
	if err != nil {
		_ = im.store.MarkFailed(job.ID, err.Error())
		metrics.JobsFinished.WithLabelValues(store.JobFailed).Inc()
		return err
	}
	defer rc.Close()

	counters, err := im.run(job, rc, comp)
	if err != nil {
		_ = im.store.MarkFailed(job.ID, err.Error())
		metrics.JobsFinished.WithLabelValues(store.JobFailed).Inc()
		return err
	}
	if err := im.store.MarkCompleted(job.ID, counters); err != nil {
		return err
	}
	metrics.JobsFinished.WithLabelValues(store.JobCompleted).Inc()
	im.log.Info().
		Str("job_id", job.ID).
		Str("user_id", job.UserID).
		Int("parsed", counters.Parsed).
		Int("inserted", counters.Inserted).
		Int("dup_by_moves", counters.DupByMoves).
		Int("dup_by_canonical", counters.DupByCanonical).
		Int("parse_errors", counters.ParseErrors).
		Msg("import complete")
	return nil
}

func (im *Importer) run(job *store.ImportJob, r io.Reader, comp pgnstream.Compression) (store.Counters, error) {
	var counters store.Counters

	sc, err := pgnstream.NewScanner(r, comp)
	if err != nil {
		return counters, fmt.Errorf("open stream: %w", err)
	}
	defer sc.Close()

	indexer := position.NewIndexer(im.rules)
	startTime := time.Now()
	lastLog := time.Now()
	offset := 0

	for sc.Scan() {
		// Once the cap is reached, further blocks are simply not
		// processed; they are not errors.
		if job.MaxGames > 0 && counters.Parsed >= job.MaxGames {
			break
		}
		offset++
		im.processBlock(job, sc.Block(), offset, indexer, &counters)

		if time.Since(lastLog) > 10*time.Second {
			elapsed := time.Since(startTime)
			im.log.Info().
				Str("job_id", job.ID).
				Int("parsed", counters.Parsed).
				Int("inserted", counters.Inserted).
				Int("errors", counters.ParseErrors).
				Float64("games_per_sec", float64(counters.Parsed)/elapsed.Seconds()).
				Msg("import progress")
			lastLog = time.Now()
		}
	}
	if err := sc.Err(); err != nil {
		// Broken stream mid-file is fatal to the job.
		return counters, fmt.Errorf("read source: %w", err)
	}
	return counters, nil
}

// processBlock runs one game through normalize -> dedup -> transaction.
// A failure here never fails the job.
func (im *Importer) processBlock(job *store.ImportJob, block pgnstream.Block, offset int, indexer *position.Indexer, counters *store.Counters) {
	line := block.Line

	raw, err := pgnstream.ParseBlock(block.Text)
	if err != nil {
		im.recordError(job, &line, &offset, err, counters)
		return
	}
	g := norm.Normalize(raw, block.Text)

	byMoves, byCanonical, err := im.store.FindDuplicate(job.UserID, g.MovesHash, g.CanonicalHash)
	if err != nil {
		im.recordError(job, &line, &offset, err, counters)
		return
	}
	if byMoves || byCanonical {
		counters.Parsed++
		metrics.GamesParsed.Inc()
		if byMoves {
			counters.DupByMoves++
			metrics.GamesDuplicate.WithLabelValues("moves").Inc()
		} else {
			counters.DupByCanonical++
			metrics.GamesDuplicate.WithLabelValues("canonical").Inc()
			if job.StrictDuplicates {
				// Strict mode surfaces near-duplicates (same text,
				// different moves identity) to the uploader.
				_ = im.store.AddImportError(job.ID, &line, &offset,
					fmt.Sprintf("near-duplicate of an existing game (canonical text match): %s vs %s", g.White, g.Black))
			}
		}
		_ = im.store.SaveCounters(job.ID, *counters)
		return
	}

	startFEN := ""
	if g.StartFEN != nil {
		startFEN = *g.StartFEN
	}
	plies, err := indexer.Replay(startFEN, g.Moves.Mainline)
	if err != nil {
		im.recordError(job, &line, &offset, err, counters)
		return
	}
	deltas := openings.Fold(plies, g.Result, g.WhiteElo, g.BlackElo)

	next := *counters
	next.Parsed++
	next.Inserted++
	err = im.store.Transaction(func(tx *store.Tx) error {
		gameID, err := tx.CreateGame(job.UserID, g)
		if err != nil {
			return err
		}
		if err := tx.ReplacePositions(job.UserID, gameID, plies); err != nil {
			return err
		}
		for _, d := range deltas {
			if err := tx.UpsertOpeningStat(job.UserID, d); err != nil {
				return err
			}
		}
		return tx.SaveCounters(job.ID, next)
	})
	if err != nil {
		im.recordError(job, &line, &offset, err, counters)
		return
	}
	*counters = next
	metrics.GamesParsed.Inc()
	metrics.GamesInserted.Inc()
}

// recordError captures one per-game failure and moves on.
func (im *Importer) recordError(job *store.ImportJob, line, offset *int, cause error, counters *store.Counters) {
	counters.ParseErrors++
	metrics.GameErrors.Inc()
	if err := im.store.AddImportError(job.ID, line, offset, cause.Error()); err != nil {
		im.log.Warn().Err(err).Str("job_id", job.ID).Msg("record import error failed")
	}
	_ = im.store.SaveCounters(job.ID, *counters)
	im.log.Debug().Err(cause).
		Str("job_id", job.ID).
		Int("game_offset", *offset).
		Msg("game skipped")
}
