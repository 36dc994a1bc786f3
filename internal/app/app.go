// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"

	gpubsub "cloud.google.com/go/pubsub"
	gstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/JakeFAU/mission-site/internal/api"
	"github.com/JakeFAU/mission-site/internal/build"
	"github.com/JakeFAU/mission-site/internal/cache"
	"github.com/JakeFAU/mission-site/internal/clock/system"
	"github.com/JakeFAU/mission-site/internal/config"
	"github.com/JakeFAU/mission-site/internal/id/uuid"
	"github.com/JakeFAU/mission-site/internal/logging"
	"github.com/JakeFAU/mission-site/internal/mission"
	pubsubpublisher "github.com/JakeFAU/mission-site/internal/publisher/pubsub"
	"github.com/JakeFAU/mission-site/internal/schedule"
	"github.com/JakeFAU/mission-site/internal/site"
	"github.com/JakeFAU/mission-site/internal/source"
	"github.com/JakeFAU/mission-site/internal/source/postgres"
	"github.com/JakeFAU/mission-site/internal/source/rest"
	"github.com/JakeFAU/mission-site/internal/storage"
	"github.com/JakeFAU/mission-site/internal/storage/gcs"
	"github.com/JakeFAU/mission-site/internal/storage/local"
	"github.com/JakeFAU/mission-site/internal/storage/memory"
)

// App holds the shared, long-lived services of one process: the job source,
// the output sink, the notification publisher, the interactive cache and the
// build orchestrator built on top of them.
type App struct {
	cfg          config.Config
	logger       *zap.Logger
	clock        mission.Clock
	site         site.Site
	loader       *source.Loader
	sink         storage.Sink
	publisher    mission.Publisher
	jobs         *cache.Jobs
	orchestrator *build.Orchestrator
	readyChecks  map[string]api.ReadyCheck
	closers      []closer
}

type closer struct {
	name string
	fn   func() error
}

// GetConfig returns the configuration the App was built from.
func (a *App) GetConfig() config.Config {
	return a.cfg
}

// GetLogger returns the shared zap logger.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetLoader exposes the job source with its fallback policy.
func (a *App) GetLoader() *source.Loader {
	return a.loader
}

// GetSink exposes the configured output sink.
func (a *App) GetSink() storage.Sink {
	return a.sink
}

// GetOrchestrator returns the build orchestrator.
func (a *App) GetOrchestrator() *build.Orchestrator {
	return a.orchestrator
}

// GetSitemap returns a live sitemap handler over the job source.
func (a *App) GetSitemap() *api.SitemapHandler {
	return api.NewSitemapHandler(a.loader, a.site, a.clock, a.logger)
}

// GetServer assembles the HTTP surface.
func (a *App) GetServer() *api.Server {
	return api.NewServer(api.Deps{
		Site:        a.site,
		Sitemap:     a.GetSitemap(),
		Jobs:        api.NewJobsHandler(a.jobs, a.site, a.logger),
		ReadyChecks: a.readyChecks,
		Logger:      a.logger,
	})
}

// GetRebuilder returns the periodic rebuild scheduler, or nil when no
// schedule is configured.
func (a *App) GetRebuilder() (*schedule.Rebuilder, error) {
	if a.cfg.Schedule.RebuildCron == "" {
		return nil, nil
	}
	return schedule.New(a.orchestrator, a.cfg.Schedule.RebuildCron, a.logger)
}

// NewApp creates and initializes the services described by cfg. It fails fast
// if any configured backend cannot be reached; resources opened before the
// failure are released.
func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		cfg:         cfg,
		logger:      logging.OrNop(logger),
		clock:       system.New(),
		site:        cfg.SiteInfo(),
		readyChecks: make(map[string]api.ReadyCheck),
	}
	if err := a.init(ctx); err != nil {
		_ = a.release()
		return nil, err
	}
	a.logger.Info("application services initialized",
		zap.String("source", cfg.Source.Driver),
		zap.Bool("source_configured", cfg.SourceConfigured()),
		zap.String("output", cfg.Output.Target),
		zap.Bool("notifications", a.publisher != nil),
	)
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	fetcher, err := a.initFetcher(ctx)
	if err != nil {
		return err
	}
	a.loader = source.NewLoader(fetcher, a.logger.Named("source"))

	if a.sink, err = a.initSink(ctx); err != nil {
		return err
	}
	if err := a.initPublisher(ctx); err != nil {
		return err
	}
	if err := a.initCache(ctx); err != nil {
		return err
	}

	invalid := build.InvalidFail
	if a.cfg.Build.SkipInvalid {
		invalid = build.InvalidSkip
	}
	a.orchestrator, err = build.New(build.Deps{
		Loader:    a.loader,
		Sink:      a.sink,
		Site:      a.site,
		Clock:     a.clock,
		IDs:       uuid.New(),
		Publisher: a.publisher,
		Logger:    a.logger,
	}, build.Options{
		JobsDir:         a.cfg.Output.JobsDir,
		SuccessPagePath: a.cfg.Build.SuccessPage,
		InvalidJobs:     invalid,
		Topic:           a.cfg.PubSub.TopicName,
	})
	if err != nil {
		return fmt.Errorf("init orchestrator: %w", err)
	}
	return nil
}

// initFetcher returns nil when the store is not configured so the loader
// falls back to the fixed dataset.
func (a *App) initFetcher(ctx context.Context) (source.Fetcher, error) {
	switch a.cfg.Source.Driver {
	case config.DriverPostgres:
		store, err := postgres.NewStore(ctx, postgres.Config{
			DSN:      a.cfg.Source.DSN,
			Table:    a.cfg.Source.Table,
			MaxConns: a.cfg.Source.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("init postgres source: %w", err)
		}
		a.onClose("postgres", func() error { store.Close(); return nil })
		a.readyChecks["postgres"] = store.Ping
		return store, nil
	default:
		if !a.cfg.SourceConfigured() {
			a.logger.Warn("job source not configured, builds use the fallback dataset")
			return nil, nil
		}
		return rest.New(rest.Config{
			BaseURL: a.cfg.Source.URL,
			APIKey:  a.cfg.Source.APIKey,
			Table:   a.cfg.Source.Table,
			Timeout: a.cfg.SourceTimeout(),
		}, nil), nil
	}
}

func (a *App) initSink(ctx context.Context) (storage.Sink, error) {
	switch a.cfg.Output.Target {
	case config.TargetGCS:
		client, err := gstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		a.onClose("gcs", client.Close)
		sink, err := gcs.New(client, gcs.Config{Bucket: a.cfg.Output.GCSBucket, Prefix: a.cfg.Output.Prefix})
		if err != nil {
			return nil, fmt.Errorf("init gcs sink: %w", err)
		}
		a.logger.Info("writing build output to gcs", zap.String("bucket", a.cfg.Output.GCSBucket))
		return sink, nil
	case config.TargetMemory:
		a.logger.Info("writing build output to memory, artifacts are discarded on exit")
		return memory.NewBlobStore(), nil
	default:
		sink, err := local.New(local.Config{BaseDir: a.cfg.Output.Dir})
		if err != nil {
			return nil, fmt.Errorf("init local sink: %w", err)
		}
		a.logger.Info("writing build output to disk", zap.String("dir", sink.BaseDir()))
		return sink, nil
	}
}

func (a *App) initPublisher(ctx context.Context) error {
	if a.cfg.PubSub.TopicName == "" {
		return nil
	}
	client, err := gpubsub.NewClient(ctx, a.cfg.PubSub.ProjectID)
	if err != nil {
		return fmt.Errorf("init pubsub client: %w", err)
	}
	a.onClose("pubsub", client.Close)
	pub := pubsubpublisher.New(client.Topic(a.cfg.PubSub.TopicName))
	a.onClose("pubsub topic", func() error { pub.Stop(); return nil })
	a.publisher = pub
	a.logger.Info("publishing build notifications", zap.String("topic", a.cfg.PubSub.TopicName))
	return nil
}

func (a *App) initCache(ctx context.Context) error {
	var c cache.Cache
	if a.cfg.Cache.RedisAddress != "" {
		client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Address:  a.cfg.Cache.RedisAddress,
			Password: a.cfg.Cache.RedisPassword,
			DB:       a.cfg.Cache.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("init redis cache: %w", err)
		}
		a.onClose("redis", client.Close)
		a.readyChecks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		c = cache.NewRedis(client)
	} else {
		c = cache.NewMemory(a.clock)
	}

	jobs, err := cache.NewJobs(c, a.loader.LoadAll, cache.JobsConfig{
		Key: a.cfg.Cache.Key,
		TTL: a.cfg.CacheTTL(),
	}, a.logger)
	if err != nil {
		return fmt.Errorf("init job cache: %w", err)
	}
	a.jobs = jobs
	return nil
}

func (a *App) onClose(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// release closes resources in reverse order of acquisition.
func (a *App) release() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(); err != nil {
			a.logger.Warn("error closing service", zap.String("service", c.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Close gracefully shuts down all services in the App container.
// It is called by a Cobra hook after the command finishes execution.
func (a *App) Close() {
	a.logger.Info("shutting down application services")
	_ = a.release()
	// Sync fails on stdout/stderr on some platforms; nothing useful to do then.
	_ = a.logger.Sync()
}
