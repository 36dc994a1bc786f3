package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/mission-site/internal/mission"
	"github.com/JakeFAU/mission-site/internal/slug"
)

type fakeFetcher struct {
	jobs    []mission.Job
	err     error
	queries []Query
}

func (f *fakeFetcher) Fetch(_ context.Context, q Query) ([]mission.Job, error) {
	f.queries = append(f.queries, q)
	return f.jobs, f.err
}

func TestLoadForBuild_Fetched(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{jobs: []mission.Job{{ID: "1"}, {ID: "2"}, {ID: "3"}}}
	res := NewLoader(fetcher, zap.NewNop()).LoadForBuild(context.Background())

	assert.Equal(t, OutcomeFetched, res.Outcome)
	assert.NoError(t, res.Cause)
	assert.Len(t, res.Jobs, 3)
	require.Len(t, fetcher.queries, 1)
	assert.Empty(t, fetcher.queries[0].Columns)
	assert.Equal(t, "created_at", fetcher.queries[0].OrderBy)
	assert.True(t, fetcher.queries[0].Descending)
}

func TestLoadForBuild_FallbackCases(t *testing.T) {
	t.Parallel()

	upstream := fmt.Errorf("status 500: %w", ErrUpstream)
	cases := []struct {
		name    string
		fetcher Fetcher
		cause   error
	}{
		{"unconfigured", nil, ErrNotConfigured},
		{"fetcher reports unconfigured", &fakeFetcher{err: ErrNotConfigured}, ErrNotConfigured},
		{"upstream error", &fakeFetcher{err: upstream}, ErrUpstream},
		{"transport error", &fakeFetcher{err: errors.New("dial tcp: connection refused")}, nil},
		{"empty answer", &fakeFetcher{jobs: []mission.Job{}}, ErrEmpty},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := NewLoader(tc.fetcher, nil).LoadForBuild(context.Background())
			assert.Equal(t, OutcomeFallback, res.Outcome)
			require.Error(t, res.Cause)
			if tc.cause != nil {
				assert.ErrorIs(t, res.Cause, tc.cause)
			}
			assert.Equal(t, FallbackJobs(), res.Jobs)
			assert.GreaterOrEqual(t, len(res.Jobs), 2)
		})
	}
}

func TestLoadForSitemap(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{jobs: []mission.Job{}}
	jobs, err := NewLoader(fetcher, nil).LoadForSitemap(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs, "sitemap path must not substitute demo content")
	require.Len(t, fetcher.queries, 1)
	assert.Equal(t, SitemapColumns(), fetcher.queries[0])

	failing := &fakeFetcher{err: ErrUpstream}
	_, err = NewLoader(failing, nil).LoadForSitemap(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = NewLoader(nil, nil).LoadForSitemap(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestLoadAll(t *testing.T) {
	t.Parallel()

	jobs, err := NewLoader(&fakeFetcher{jobs: []mission.Job{{ID: "x"}}}, nil).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	_, err = NewLoader(nil, nil).LoadAll(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFallbackJobsAreRenderable(t *testing.T) {
	t.Parallel()

	jobs := FallbackJobs()
	require.GreaterOrEqual(t, len(jobs), 2)
	seen := map[string]bool{}
	for _, job := range jobs {
		require.NoError(t, job.Validate())
		s := job.SlugOrDerived()
		assert.True(t, slug.Valid(s), s)
		assert.False(t, seen[s], "duplicate slug %s", s)
		seen[s] = true
	}

	jobs[0].Title = "mutated"
	assert.NotEqual(t, "mutated", FallbackJobs()[0].Title, "fallback must return a fresh copy")
}
