package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/mission-site/internal/logging"
	"github.com/JakeFAU/mission-site/internal/mission"
	"github.com/JakeFAU/mission-site/internal/page"
	"github.com/JakeFAU/mission-site/internal/site"
	"github.com/JakeFAU/mission-site/internal/source"
)

const (
	defaultJobLimit = 50
	maxJobLimit     = 500
)

// JobLister returns the current job list, typically through a cache.
type JobLister interface {
	List(ctx context.Context) ([]mission.Job, error)
}

// JobsHandler exposes the read-only job list to the interactive listing.
type JobsHandler struct {
	lister JobLister
	site   site.Site
	logger *zap.Logger
}

// NewJobsHandler wires the lister and logger.
func NewJobsHandler(lister JobLister, s site.Site, logger *zap.Logger) *JobsHandler {
	return &JobsHandler{lister: lister, site: s, logger: logging.OrNop(logger).Named("jobs")}
}

// ListJobs handles GET /api/jobs?type=&featured=&limit=&offset=. It returns
// {"jobs": [...], "total": n}, 400 for invalid filters, 503 when the store is
// not configured, or 502 when the store fails.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parseLimitOffset(r, defaultJobLimit, maxJobLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	featured, err := parseOptionalBool(r.URL.Query().Get("featured"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid featured")
		return
	}
	jobs, ok := h.load(w, r)
	if !ok {
		return
	}

	contract := strings.TrimSpace(r.URL.Query().Get("type"))
	filtered := make([]mission.Job, 0, len(jobs))
	for _, job := range jobs {
		if contract != "" && !strings.EqualFold(job.Type, contract) {
			continue
		}
		if featured != nil && job.Featured != *featured {
			continue
		}
		filtered = append(filtered, job)
	}

	total := len(filtered)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":  h.toJobDTOs(filtered[offset:end]),
		"total": total,
	})
}

// GetJob handles GET /api/jobs/{slug}. It returns {"job": {...}} or 404.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "slug is required")
		return
	}
	jobs, ok := h.load(w, r)
	if !ok {
		return
	}
	for _, job := range jobs {
		if job.SlugOrDerived() == slug {
			writeJSON(w, http.StatusOK, map[string]any{"job": h.toJobDTO(job)})
			return
		}
	}
	writeError(w, http.StatusNotFound, "job not found")
}

func (h *JobsHandler) load(w http.ResponseWriter, r *http.Request) ([]mission.Job, bool) {
	if h.lister == nil {
		writeError(w, http.StatusServiceUnavailable, "job source unavailable")
		return nil, false
	}
	jobs, err := h.lister.List(r.Context())
	switch {
	case errors.Is(err, source.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "job source not configured")
		return nil, false
	case err != nil:
		h.logger.Error("list jobs failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to list jobs")
		return nil, false
	}
	return jobs, true
}

func parseLimitOffset(r *http.Request, def, maxLimit int) (int, int, error) {
	q := r.URL.Query()
	limit := def
	if limStr := q.Get("limit"); limStr != "" {
		val, err := strconv.Atoi(limStr)
		if err != nil || val <= 0 {
			return 0, 0, errors.New("invalid limit")
		}
		if val > maxLimit {
			val = maxLimit
		}
		limit = val
	}
	offset := 0
	if offStr := q.Get("offset"); offStr != "" {
		val, err := strconv.Atoi(offStr)
		if err != nil || val < 0 {
			return 0, 0, errors.New("invalid offset")
		}
		offset = val
	}
	return limit, offset, nil
}

func parseOptionalBool(raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (h *JobsHandler) toJobDTOs(in []mission.Job) []jobDTO {
	out := make([]jobDTO, 0, len(in))
	for _, job := range in {
		out = append(out, h.toJobDTO(job))
	}
	return out
}

func (h *JobsHandler) toJobDTO(job mission.Job) jobDTO {
	job = job.Normalize()
	slug := job.SlugOrDerived()
	dto := jobDTO{
		ID:           job.ID,
		Slug:         slug,
		URL:          h.site.JobURL(slug),
		Title:        job.Title,
		Company:      job.Company,
		Location:     job.Location,
		Type:         job.Type,
		Salary:       page.SalaryText(job),
		Requirements: job.Requirements,
		Benefits:     job.Benefits,
		Applicants:   job.Applicants,
		Featured:     job.Featured,
	}
	if posted, ok := job.Published(); ok {
		dto.PostedAt = &posted
	}
	return dto
}

type jobDTO struct {
	ID           string     `json:"id"`
	Slug         string     `json:"slug"`
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Location     string     `json:"location"`
	Type         string     `json:"type"`
	Salary       string     `json:"salary,omitempty"`
	Requirements []string   `json:"requirements,omitempty"`
	Benefits     []string   `json:"benefits,omitempty"`
	PostedAt     *time.Time `json:"posted_at,omitempty"`
	Applicants   int        `json:"applicants"`
	Featured     bool       `json:"featured"`
}
