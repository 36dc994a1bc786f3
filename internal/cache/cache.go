// Package cache keeps the interactive job list warm between requests. It is
// used only by the read API; static generation always reads the store directly.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/mission-site/internal/logging"
	"github.com/JakeFAU/mission-site/internal/metrics"
	"github.com/JakeFAU/mission-site/internal/mission"
)

// DefaultFetchTimeout bounds one upstream read behind the cache.
const DefaultFetchTimeout = 30 * time.Second

// Cache stores job snapshots by key.
type Cache interface {
	// Get returns the cached jobs and whether the key was present and fresh.
	Get(ctx context.Context, key string) ([]mission.Job, bool, error)
	Set(ctx context.Context, key string, jobs []mission.Job, ttl time.Duration) error
}

// LoadFunc reads the full job list from the store.
type LoadFunc func(ctx context.Context) ([]mission.Job, error)

// Jobs is a read-through view of the job list.
type Jobs struct {
	cache   Cache
	load    LoadFunc
	key     string
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.Logger
}

// JobsConfig tunes a Jobs view.
type JobsConfig struct {
	Key     string
	TTL     time.Duration
	Timeout time.Duration
}

// NewJobs wires a cache in front of load.
func NewJobs(c Cache, load LoadFunc, cfg JobsConfig, logger *zap.Logger) (*Jobs, error) {
	if c == nil {
		return nil, errors.New("cache is required")
	}
	if load == nil {
		return nil, errors.New("load func is required")
	}
	if cfg.Key == "" {
		cfg.Key = "missions:jobs"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFetchTimeout
	}
	return &Jobs{
		cache:   c,
		load:    load,
		key:     cfg.Key,
		ttl:     cfg.TTL,
		timeout: cfg.Timeout,
		logger:  logging.OrNop(logger).Named("cache"),
	}, nil
}

// List returns the cached job list, loading it on a miss. Cache failures are
// logged and bypassed; load failures are returned.
func (j *Jobs) List(ctx context.Context) ([]mission.Job, error) {
	jobs, ok, err := j.cache.Get(ctx, j.key)
	if err != nil {
		j.logger.Warn("cache read failed", zap.String("key", j.key), zap.Error(err))
	}
	metrics.ObserveCacheLookup(ok)
	if ok {
		return jobs, nil
	}

	loadCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	jobs, err = j.load(loadCtx)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	if err := j.cache.Set(ctx, j.key, jobs, j.ttl); err != nil {
		j.logger.Warn("cache write failed", zap.String("key", j.key), zap.Error(err))
	}
	return jobs, nil
}
