// One-shot import of a single PGN file, bypassing the queue. Useful for
// local testing and bulk backfills.
package main

import (
	"context"
	"flag"
	"path/filepath"

	"github.com/freeeve/gamevault/internal/importer"
	"github.com/freeeve/gamevault/internal/logx"
	"github.com/freeeve/gamevault/internal/objstore"
	"github.com/freeeve/gamevault/internal/position"
	"github.com/freeeve/gamevault/internal/queue"
	"github.com/freeeve/gamevault/internal/store"
)

func main() {
	dbPath := flag.String("db", "gamevault.db", "sqlite database path")
	pgnPath := flag.String("pgn", "", "pgn file to import (.pgn, .pgn.zst, .pgn.gz)")
	userID := flag.String("user", "local", "owning user id")
	maxGames := flag.Int("max-games", 0, "stop after N games (0 = no cap)")
	strict := flag.Bool("strict", false, "record near-duplicates as import errors")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger := logx.NewLogger(*logLevel)
	if *pgnPath == "" {
		logger.Fatal().Msg("--pgn is required")
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	// The file's directory doubles as the object store root, so the
	// file itself is already "uploaded" under its base name.
	abs, err := filepath.Abs(*pgnPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("resolve pgn path")
	}
	storage, err := objstore.NewFS(filepath.Dir(abs))
	if err != nil {
		logger.Fatal().Err(err).Msg("open object storage")
	}

	job, created, err := st.CreateJob(*userID, filepath.Base(abs), store.JobOptions{
		StrictDuplicates: *strict,
		MaxGames:         *maxGames,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("create job")
	}
	if !created {
		logger.Info().Str("job_id", job.ID).Msg("reusing existing job")
	}

	im := importer.New(st, storage, position.NewRules(), logger)
	if err := im.Handle(context.Background(), queue.Payload{ImportJobID: job.ID, UserID: *userID}); err != nil {
		logger.Fatal().Err(err).Str("job_id", job.ID).Msg("import failed")
	}
}
