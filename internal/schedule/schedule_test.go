package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JakeFAU/mission-site/internal/build"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
	panic bool
}

func (r *countingRunner) Run(ctx context.Context) (build.Report, error) {
	r.calls.Add(1)
	if r.panic {
		panic("render exploded")
	}
	if err := ctx.Err(); err != nil {
		return build.Report{}, err
	}
	return build.Report{RunID: "run", Pages: 3}, r.err
}

func TestValidate(t *testing.T) {
	t.Parallel()

	for _, spec := range []string{"0 * * * *", "*/15 6-22 * * 1-5", "@hourly", "@every 5m"} {
		assert.NoError(t, Validate(spec), spec)
	}
	for _, spec := range []string{"", "* * *", "0 0 * * * *", "@sometimes"} {
		assert.Error(t, Validate(spec), spec)
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	_, err := New(nil, "@hourly", nil)
	assert.Error(t, err)
	_, err = New(&countingRunner{}, "not a schedule", nil)
	assert.Error(t, err)
}

func TestRebuilderRunsOnSchedule(t *testing.T) {
	t.Parallel()

	runner := &countingRunner{}
	core, logs := observer.New(zap.InfoLevel)
	r, err := New(runner, "@every 1s", zap.New(core))
	require.NoError(t, err)

	require.NoError(t, r.Start(context.Background()))
	assert.Error(t, r.Start(context.Background()))
	assert.Eventually(t, func() bool { return runner.calls.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)
	r.Stop()
	r.Stop()

	assert.GreaterOrEqual(t, logs.FilterMessage("scheduled rebuild finished").Len(), 1)
}

func TestRebuilderSurvivesFailuresAndPanics(t *testing.T) {
	t.Parallel()

	for name, runner := range map[string]*countingRunner{
		"error": {err: errors.New("disk full")},
		"panic": {panic: true},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r, err := New(runner, "@every 1s", zap.NewNop())
			require.NoError(t, err)
			require.NoError(t, r.Start(context.Background()))
			defer r.Stop()
			assert.Eventually(t, func() bool { return runner.calls.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)
		})
	}
}
