// Package metrics exposes pipeline outcome counters. External
// metrics/error-reporting wiring stays outside the core; the worker
// binary decides whether to serve them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GamesParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gamevault_games_parsed_total",
		Help: "Games parsed from uploaded files, including duplicates.",
	})
	GamesInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gamevault_games_inserted_total",
		Help: "Games accepted and persisted.",
	})
	GamesDuplicate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamevault_games_duplicate_total",
		Help: "Games skipped as duplicates, by dedup signal.",
	}, []string{"kind"}) // moves | canonical
	GameErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gamevault_game_errors_total",
		Help: "Per-game failures recorded during import.",
	})
	JobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamevault_jobs_finished_total",
		Help: "Import jobs finished, by terminal status.",
	}, []string{"status"}) // completed | failed
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
