// Package source reads job records from the collection store and applies the
// fallback policy of the build and on-demand paths.
package source

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/mission-site/internal/logging"
	"github.com/JakeFAU/mission-site/internal/mission"
)

var (
	// ErrNotConfigured means the store's connection parameters are absent.
	ErrNotConfigured = errors.New("job source not configured")
	// ErrUpstream wraps non-success answers from the store.
	ErrUpstream = errors.New("job source upstream error")
)

// Query selects columns and ordering for one fetch.
type Query struct {
	Columns    []string
	OrderBy    string
	Descending bool
}

// AllColumns selects every field, newest first.
func AllColumns() Query {
	return Query{OrderBy: "created_at", Descending: true}
}

// SitemapColumns is the projection used by the on-demand sitemap. Title and
// location ride along so records without a stored slug can still be addressed.
func SitemapColumns() Query {
	return Query{
		Columns:    []string{"slug", "title", "location", "updated_at"},
		OrderBy:    "created_at",
		Descending: true,
	}
}

// Fetcher performs a single read of the job collection.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) ([]mission.Job, error)
}

// Outcome tells callers whether the jobs came from the store or the fixed dataset.
type Outcome string

// Outcome values.
const (
	OutcomeFetched  Outcome = "fetched"
	OutcomeFallback Outcome = "fallback"
)

// Result is the build-path answer: data plus how it was obtained.
type Result struct {
	Jobs    []mission.Job
	Outcome Outcome
	// Cause explains a fallback; nil when Outcome is OutcomeFetched.
	Cause error
}

// ErrEmpty is the fallback cause when the store answered with zero rows.
var ErrEmpty = errors.New("job source returned no records")

// Loader wraps a Fetcher with the fallback policy. A nil Fetcher means the
// store is not configured.
type Loader struct {
	fetcher Fetcher
	logger  *zap.Logger
}

// NewLoader constructs a Loader.
func NewLoader(fetcher Fetcher, logger *zap.Logger) *Loader {
	return &Loader{fetcher: fetcher, logger: logging.OrNop(logger)}
}

// LoadForBuild fetches every job once. It never fails: missing configuration,
// upstream errors and empty answers all yield the fixed fallback dataset so a
// build never emits a job-less site.
func (l *Loader) LoadForBuild(ctx context.Context) Result {
	if l.fetcher == nil {
		l.logger.Warn("job source not configured, using fallback dataset")
		return fallback(ErrNotConfigured)
	}
	jobs, err := l.fetcher.Fetch(ctx, AllColumns())
	switch {
	case errors.Is(err, ErrNotConfigured):
		l.logger.Warn("job source not configured, using fallback dataset")
		return fallback(err)
	case err != nil:
		l.logger.Error("fetch jobs failed, using fallback dataset", zap.Error(err))
		return fallback(err)
	case len(jobs) == 0:
		l.logger.Warn("job source returned no records, using fallback dataset")
		return fallback(ErrEmpty)
	}
	l.logger.Info("fetched jobs", zap.Int("count", len(jobs)))
	return Result{Jobs: jobs, Outcome: OutcomeFetched}
}

// LoadForSitemap fetches the sitemap projection once and returns the real,
// possibly empty, result. Errors are returned so the caller can degrade.
func (l *Loader) LoadForSitemap(ctx context.Context) ([]mission.Job, error) {
	if l.fetcher == nil {
		return nil, ErrNotConfigured
	}
	jobs, err := l.fetcher.Fetch(ctx, SitemapColumns())
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap entries: %w", err)
	}
	return jobs, nil
}

// LoadAll fetches every job without any fallback. The interactive read path
// uses it behind its own cache.
func (l *Loader) LoadAll(ctx context.Context) ([]mission.Job, error) {
	if l.fetcher == nil {
		return nil, ErrNotConfigured
	}
	jobs, err := l.fetcher.Fetch(ctx, AllColumns())
	if err != nil {
		return nil, fmt.Errorf("fetch jobs: %w", err)
	}
	return jobs, nil
}

func fallback(cause error) Result {
	return Result{Jobs: FallbackJobs(), Outcome: OutcomeFallback, Cause: cause}
}
