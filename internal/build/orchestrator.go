// Package build runs one static generation pass: load jobs, write a page per
// job, then the sitemap, robots.txt and the optional success page.
package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/mission-site/internal/logging"
	"github.com/JakeFAU/mission-site/internal/metrics"
	"github.com/JakeFAU/mission-site/internal/mission"
	"github.com/JakeFAU/mission-site/internal/page"
	"github.com/JakeFAU/mission-site/internal/site"
	"github.com/JakeFAU/mission-site/internal/sitemap"
	"github.com/JakeFAU/mission-site/internal/source"
	"github.com/JakeFAU/mission-site/internal/storage"
)

// Artifact names at the output root.
const (
	SitemapFile    = "sitemap.xml"
	RobotsFile     = "robots.txt"
	SuccessFile    = "success.html"
	PageFile       = "index.html"
	DefaultJobsDir = "jobs"
	DefaultTopic   = "site-builds"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
	pageWritten   = "written"
	pageSkipped   = "skipped"
	pageFailed    = "failed"
)

// InvalidPolicy decides what happens to records that fail validation.
type InvalidPolicy int

const (
	// InvalidFail aborts the run on the first invalid record.
	InvalidFail InvalidPolicy = iota
	// InvalidSkip logs and skips invalid records.
	InvalidSkip
)

// JobLoader supplies the build-time job snapshot.
type JobLoader interface {
	LoadForBuild(ctx context.Context) source.Result
}

// Deps are the collaborators of an Orchestrator. Publisher and IDs are optional.
type Deps struct {
	Loader    JobLoader
	Sink      storage.Sink
	Site      site.Site
	Clock     mission.Clock
	IDs       mission.IDGenerator
	Publisher mission.Publisher
	Logger    *zap.Logger
}

// Options tune a run.
type Options struct {
	JobsDir         string
	SuccessPagePath string
	InvalidJobs     InvalidPolicy
	Topic           string
}

// Report summarizes a finished run.
type Report struct {
	RunID             string
	Outcome           source.Outcome
	Pages             int
	Skipped           int
	SitemapURLs       int
	SuccessPageCopied bool
	Duration          time.Duration
	Artifacts         []string
}

// Completed is the notification published after a successful run.
type Completed struct {
	RunID        string    `json:"run_id"`
	SourceResult string    `json:"source_outcome"`
	Pages        int       `json:"pages"`
	Skipped      int       `json:"skipped"`
	SitemapURLs  int       `json:"sitemap_urls"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Orchestrator sequences a build.
type Orchestrator struct {
	deps    Deps
	opts    Options
	pages   *page.Synthesizer
	sitemap *sitemap.Builder
	logger  *zap.Logger
}

// New validates dependencies and returns an Orchestrator.
func New(deps Deps, opts Options) (*Orchestrator, error) {
	if deps.Loader == nil {
		return nil, errors.New("build: loader is required")
	}
	if deps.Sink == nil {
		return nil, errors.New("build: sink is required")
	}
	if deps.Clock == nil {
		return nil, errors.New("build: clock is required")
	}
	if strings.TrimSpace(opts.JobsDir) == "" {
		opts.JobsDir = DefaultJobsDir
	}
	if opts.Topic == "" {
		opts.Topic = DefaultTopic
	}
	logger := logging.OrNop(deps.Logger).Named("build")
	return &Orchestrator{
		deps:    deps,
		opts:    opts,
		pages:   page.New(deps.Site),
		sitemap: sitemap.NewBuilder(deps.Site, sitemap.BuildVariant, deps.Clock),
		logger:  logger,
	}, nil
}

// Run performs one build. Any write failure aborts the run and is returned;
// the success page and the notification are best effort.
func (o *Orchestrator) Run(ctx context.Context) (Report, error) {
	start := o.deps.Clock.Now()
	report, err := o.run(ctx)
	report.Duration = o.deps.Clock.Now().Sub(start)
	if err != nil {
		metrics.ObserveBuild(resultFailure, report.Duration)
		o.logger.Error("build failed", zap.String("run_id", report.RunID), zap.Error(err))
		return report, err
	}
	metrics.ObserveBuild(resultSuccess, report.Duration)
	o.logger.Info("build complete",
		zap.String("run_id", report.RunID),
		zap.String("source", string(report.Outcome)),
		zap.Int("pages", report.Pages),
		zap.Int("skipped", report.Skipped),
		zap.Int("sitemap_urls", report.SitemapURLs),
		zap.Duration("duration", report.Duration),
	)
	o.notify(ctx, report)
	return report, nil
}

func (o *Orchestrator) run(ctx context.Context) (Report, error) {
	var report Report
	if o.deps.IDs != nil {
		id, err := o.deps.IDs.NewID()
		if err != nil {
			return report, fmt.Errorf("generate run id: %w", err)
		}
		report.RunID = id
	}
	logger := o.logger.With(zap.String("run_id", report.RunID))

	loaded := o.deps.Loader.LoadForBuild(ctx)
	report.Outcome = loaded.Outcome
	metrics.ObserveSourceLoad("build", string(loaded.Outcome))
	if loaded.Cause != nil {
		logger.Warn("building from fallback dataset", zap.Error(loaded.Cause))
	}

	if err := o.deps.Sink.EnsureDir(ctx, o.opts.JobsDir); err != nil {
		return report, fmt.Errorf("create jobs directory: %w", err)
	}

	published, err := o.writePages(ctx, logger, loaded.Jobs, &report)
	if err != nil {
		return report, err
	}

	doc, err := o.sitemap.Build(sitemap.StaticRoutes(), published)
	if err != nil {
		return report, fmt.Errorf("build sitemap: %w", err)
	}
	report.SitemapURLs = len(sitemap.StaticRoutes()) + len(published)
	if err := o.put(ctx, &report, SitemapFile, storage.ContentTypeXML, doc); err != nil {
		return report, err
	}
	if err := o.put(ctx, &report, RobotsFile, storage.ContentTypeText, sitemap.Robots(o.deps.Site)); err != nil {
		return report, err
	}

	report.SuccessPageCopied = o.copySuccessPage(ctx, logger, &report)
	return report, nil
}

// writePages renders one page per job and returns the jobs that made it into
// the output, in first-seen order with later duplicates replacing earlier ones.
func (o *Orchestrator) writePages(ctx context.Context, logger *zap.Logger, jobs []mission.Job, report *Report) ([]mission.Job, error) {
	var order []string
	bySlug := make(map[string]mission.Job, len(jobs))

	for _, raw := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build interrupted: %w", err)
		}
		job := raw.Normalize()
		if err := job.Validate(); err != nil {
			if o.opts.InvalidJobs == InvalidSkip {
				report.Skipped++
				metrics.ObservePage(pageSkipped)
				logger.Warn("skipping invalid job", zap.String("id", job.ID), zap.Error(err))
				continue
			}
			metrics.ObservePage(pageFailed)
			return nil, err
		}

		slug := job.SlugOrDerived()
		if _, dup := bySlug[slug]; dup {
			logger.Warn("duplicate slug, later record overwrites", zap.String("slug", slug), zap.String("id", job.ID))
		} else {
			order = append(order, slug)
		}

		dir := path.Join(o.opts.JobsDir, slug)
		if err := o.deps.Sink.EnsureDir(ctx, dir); err != nil {
			metrics.ObservePage(pageFailed)
			return nil, fmt.Errorf("create page directory %s: %w", dir, err)
		}
		html, err := o.pages.Synthesize(job)
		if err != nil {
			metrics.ObservePage(pageFailed)
			return nil, err
		}
		if err := o.put(ctx, report, path.Join(dir, PageFile), storage.ContentTypeHTML, []byte(html)); err != nil {
			metrics.ObservePage(pageFailed)
			return nil, err
		}
		metrics.ObservePage(pageWritten)
		logger.Debug("page written", zap.String("slug", slug))
		bySlug[slug] = job
	}

	out := make([]mission.Job, 0, len(order))
	for _, slug := range order {
		out = append(out, bySlug[slug])
	}
	report.Pages = len(out)
	return out, nil
}

func (o *Orchestrator) put(ctx context.Context, report *Report, name, contentType string, data []byte) error {
	uri, err := o.deps.Sink.PutObject(ctx, name, contentType, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	report.Artifacts = append(report.Artifacts, uri)
	return nil
}

func (o *Orchestrator) copySuccessPage(ctx context.Context, logger *zap.Logger, report *Report) bool {
	if o.opts.SuccessPagePath == "" {
		return false
	}
	data, err := os.ReadFile(o.opts.SuccessPagePath)
	if err != nil {
		logger.Warn("success page not copied", zap.String("path", o.opts.SuccessPagePath), zap.Error(err))
		return false
	}
	if err := o.put(ctx, report, SuccessFile, storage.ContentTypeHTML, data); err != nil {
		logger.Warn("success page not copied", zap.Error(err))
		return false
	}
	return true
}

func (o *Orchestrator) notify(ctx context.Context, report Report) {
	if o.deps.Publisher == nil {
		return
	}
	event := Completed{
		RunID:        report.RunID,
		SourceResult: string(report.Outcome),
		Pages:        report.Pages,
		Skipped:      report.Skipped,
		SitemapURLs:  report.SitemapURLs,
		FinishedAt:   o.deps.Clock.Now().UTC(),
	}
	id, err := o.deps.Publisher.Publish(ctx, o.opts.Topic, event)
	if err != nil {
		o.logger.Warn("publish build notification failed", zap.String("run_id", report.RunID), zap.Error(err))
		return
	}
	o.logger.Debug("build notification published", zap.String("message_id", id))
}
