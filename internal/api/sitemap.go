package api

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/mission-site/internal/logging"
	"github.com/JakeFAU/mission-site/internal/metrics"
	"github.com/JakeFAU/mission-site/internal/mission"
	"github.com/JakeFAU/mission-site/internal/site"
	"github.com/JakeFAU/mission-site/internal/sitemap"
)

// CacheControlSitemap lets the CDN serve a generated sitemap for an hour and
// keep serving it while revalidating.
const CacheControlSitemap = "public, s-maxage=3600, stale-while-revalidate=3600"

// SitemapLoader reads the sitemap projection of the collection.
type SitemapLoader interface {
	LoadForSitemap(ctx context.Context) ([]mission.Job, error)
}

// Response is a complete HTTP answer, independent of any server framework.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// SitemapHandler answers sitemap requests from the live collection. It never
// fails: any error yields the minimal one-entry sitemap. It holds no
// per-request state and is safe for concurrent use.
type SitemapHandler struct {
	loader  SitemapLoader
	site    site.Site
	clock   mission.Clock
	builder *sitemap.Builder
	logger  *zap.Logger
}

// NewSitemapHandler constructs a SitemapHandler.
func NewSitemapHandler(loader SitemapLoader, s site.Site, clock mission.Clock, logger *zap.Logger) *SitemapHandler {
	return &SitemapHandler{
		loader:  loader,
		site:    s,
		clock:   clock,
		builder: sitemap.NewBuilder(s, sitemap.LiveVariant, clock),
		logger:  logging.OrNop(logger).Named("sitemap"),
	}
}

// Respond fetches the projection once and renders the live sitemap.
func (h *SitemapHandler) Respond(ctx context.Context) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("sitemap render panicked", zap.Any("panic", rec))
			resp = h.degraded()
		}
	}()

	if h.loader == nil {
		h.logger.Warn("job source not configured, serving minimal sitemap")
		return h.degraded()
	}
	jobs, err := h.loader.LoadForSitemap(ctx)
	if err != nil {
		h.logger.Error("sitemap fetch failed, serving minimal sitemap", zap.Error(err))
		return h.degraded()
	}
	body, err := h.builder.Build(sitemap.StaticRoutes(), jobs)
	if err != nil {
		h.logger.Error("sitemap build failed, serving minimal sitemap", zap.Error(err))
		return h.degraded()
	}
	metrics.ObserveSitemapResponse("live")
	return Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":  sitemap.ContentType(),
			"Cache-Control": CacheControlSitemap,
		},
		Body: body,
	}
}

func (h *SitemapHandler) degraded() Response {
	metrics.ObserveSitemapResponse("degraded")
	return Response{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": sitemap.ContentType()},
		Body:       sitemap.Minimal(h.site, h.clock.Now()),
	}
}

// ServeHTTP writes the Respond result.
func (h *SitemapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, h.Respond(r.Context()), h.logger)
}

// RobotsHandler serves robots.txt for the site.
func RobotsHandler(s site.Site) http.HandlerFunc {
	body := sitemap.Robots(s)
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", sitemap.RobotsContentType())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

func writeResponse(w http.ResponseWriter, resp Response, logger *zap.Logger) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		logger.Warn("write response failed", zap.Error(fmt.Errorf("write body: %w", err)))
	}
}
