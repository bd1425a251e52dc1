package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/freeeve/gamevault/internal/config"
	"github.com/freeeve/gamevault/internal/importer"
	"github.com/freeeve/gamevault/internal/logx"
	"github.com/freeeve/gamevault/internal/metrics"
	"github.com/freeeve/gamevault/internal/objstore"
	"github.com/freeeve/gamevault/internal/position"
	"github.com/freeeve/gamevault/internal/queue"
	"github.com/freeeve/gamevault/internal/store"
)

const pollInterval = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logx.NewLogger("info")
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := logx.NewLogger(cfg.LogLevel)
	logger.Info().
		Str("db", cfg.DBPath).
		Str("storage", cfg.StorageDir).
		Int("workers", cfg.Workers).
		Msg("starting import worker")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(cfg.DBPath, store.WithMaxErrorsPerJob(cfg.MaxErrorsPerJob))
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	storage, err := objstore.NewFS(cfg.StorageDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("open object storage")
	}

	im := importer.New(st, storage, position.NewRules(), logger)

	var ctrl *importer.Controller
	q := queue.New(cfg.Workers, cfg.QueueSize,
		func(ctx context.Context, p queue.Payload) error {
			return ctrl.Wrap(im.Handle)(ctx, p)
		},
		queue.LogDeadLetter{Log: logger}, logger)
	ctrl = importer.NewController(st, q, logger)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
	}

	// Intake: hand still-queued jobs to the pool, on startup and on a
	// steady poll (the upload tier only writes job rows).
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			n, err := ctrl.EnqueuePending(ctx, cfg.QueueSize)
			if err != nil {
				logger.Warn().Err(err).Msg("enqueue pending jobs failed")
			} else if n > 0 {
				logger.Info().Int("jobs", n).Msg("enqueued pending jobs")
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	q.Run(ctx)
	logger.Info().Msg("worker stopped")
}
