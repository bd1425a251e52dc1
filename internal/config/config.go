// Package config defines worker configuration and its loading rules.
package config

import (
	"os"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config contains process configuration for the import worker.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DBPath is the sqlite database file.
	DBPath string `koanf:"db_path" validate:"required"`

	// StorageDir is the root of the filesystem object store holding
	// uploaded PGN files, addressed by object key.
	StorageDir string `koanf:"storage_dir" validate:"required"`

	// Workers bounds how many import jobs run concurrently.
	// One job never runs on more than one worker.
	Workers int `koanf:"workers" validate:"gte=1"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size" validate:"gte=1"`

	// MaxErrorsPerJob bounds ImportError retention per job.
	MaxErrorsPerJob int `koanf:"max_errors_per_job" validate:"gte=1"`

	// MetricsAddr exposes /metrics when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`
}

// Defaults returns a Config with default values.
func Defaults() *Config {
	return &Config{
		LogLevel:        "info",
		DBPath:          "./data/gamevault.db",
		StorageDir:      "./data/objects",
		Workers:         runtime.NumCPU(),
		QueueSize:       1024,
		MaxErrorsPerJob: 100,
	}
}

// Load builds a Config by layering defaults, an optional YAML file, and
// environment variables.
// Order of precedence (low -> high):
//  1. defaults
//  2. file (YAML) if GAMEVAULT_CONFIG is set
//  3. env (prefix GAMEVAULT_)
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("GAMEVAULT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// GAMEVAULT_DB_PATH -> db_path, GAMEVAULT_WORKERS -> workers, ...
	envProvider := env.Provider("GAMEVAULT_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "gamevault_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
