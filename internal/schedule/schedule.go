// Package schedule reruns the static build on a cron schedule while the
// server is up, so published pages follow the collection without a deploy.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/JakeFAU/mission-site/internal/build"
	"github.com/JakeFAU/mission-site/internal/logging"
)

// Parser accepts standard five-field expressions and descriptors such as "@hourly".
var Parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Runner performs one build.
type Runner interface {
	Run(ctx context.Context) (build.Report, error)
}

// Rebuilder triggers builds from cron. Runs never overlap.
type Rebuilder struct {
	runner Runner
	spec   string
	cron   *cron.Cron
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Validate parses spec without scheduling anything.
func Validate(spec string) error {
	if _, err := Parser.Parse(spec); err != nil {
		return fmt.Errorf("parse cron expression %q: %w", spec, err)
	}
	return nil
}

// New builds a Rebuilder for spec.
func New(runner Runner, spec string, logger *zap.Logger) (*Rebuilder, error) {
	if runner == nil {
		return nil, errors.New("runner is required")
	}
	if err := Validate(spec); err != nil {
		return nil, err
	}
	logger = logging.OrNop(logger).Named("schedule")
	cl := cronLogger{logger: logger.Sugar()}
	return &Rebuilder{
		runner: runner,
		spec:   spec,
		logger: logger,
		cron: cron.New(
			cron.WithParser(Parser),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
			cron.WithLogger(cl),
		),
	}, nil
}

// Start registers the rebuild job and starts the cron loop. Builds run with a
// context derived from ctx and are canceled by Stop.
func (r *Rebuilder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return errors.New("rebuilder already started")
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.running = true
	r.mu.Unlock()

	if _, err := r.cron.AddFunc(r.spec, r.tick); err != nil {
		return fmt.Errorf("schedule rebuild: %w", err)
	}
	r.cron.Start()
	next := r.cron.Entries()[0].Next
	r.logger.Info("scheduled rebuilds started", zap.String("schedule", r.spec), zap.Time("next_run", next))
	return nil
}

// Stop halts the cron loop and waits for a running build to return.
func (r *Rebuilder) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel := r.cancel
	r.mu.Unlock()

	cancel()
	<-r.cron.Stop().Done()
	r.logger.Info("scheduled rebuilds stopped")
}

func (r *Rebuilder) tick() {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()
	if ctx == nil {
		return
	}
	report, err := r.runner.Run(ctx)
	if err != nil {
		r.logger.Error("scheduled rebuild failed", zap.Error(err))
		return
	}
	r.logger.Info("scheduled rebuild finished",
		zap.String("run_id", report.RunID),
		zap.Int("pages", report.Pages),
	)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
