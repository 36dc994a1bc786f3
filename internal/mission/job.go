package mission

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JakeFAU/mission-site/internal/slug"
)

// Contract types as stored in the job collection.
const (
	TypeMission   = "Mission"
	TypeCDI       = "CDI"
	TypeCDD       = "CDD"
	TypeFreelance = "Freelance"
	TypeStage     = "Stage"
)

// Salary units.
const (
	SalaryDayRate = "TJM"
	SalaryAnnual  = "Annuel"
)

// ErrInvalidJob marks records the page synthesizer cannot render.
var ErrInvalidJob = errors.New("invalid job record")

// Job is one freelance mission posting as read from the collection store.
type Job struct {
	ID           string     `json:"id"`
	Slug         string     `json:"slug,omitempty"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Location     string     `json:"location"`
	Type         string     `json:"type"`
	Description  string     `json:"description"`
	Salary       string     `json:"salary,omitempty"`
	SalaryType   string     `json:"salary_type,omitempty"`
	Requirements []string   `json:"requirements,omitempty"`
	Benefits     []string   `json:"benefits,omitempty"`
	PostedDate   *time.Time `json:"posted_date,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	Applicants   int        `json:"applicants"`
	Featured     bool       `json:"featured"`
}

// SlugOrDerived returns the stored slug, or derives one from title and location.
// A stored slug is never re-derived so published URLs stay stable.
func (j Job) SlugOrDerived() string {
	if s := strings.TrimSpace(j.Slug); s != "" {
		return s
	}
	return slug.Derive(j.Title, j.Location)
}

// Published returns the authoritative creation date.
func (j Job) Published() (time.Time, bool) {
	if j.PostedDate != nil {
		return *j.PostedDate, true
	}
	if j.CreatedAt != nil {
		return *j.CreatedAt, true
	}
	return time.Time{}, false
}

// LastModified returns updated_at, falling back to created_at.
func (j Job) LastModified() (time.Time, bool) {
	if j.UpdatedAt != nil {
		return *j.UpdatedAt, true
	}
	if j.CreatedAt != nil {
		return *j.CreatedAt, true
	}
	return time.Time{}, false
}

// IsDayRate reports whether the salary is a daily rate (TJM).
func (j Job) IsDayRate() bool {
	return j.SalaryType == SalaryDayRate
}

// Normalize returns a copy with blank list entries removed and applicants clamped.
// An empty list is collapsed to nil so "absent" and "empty" render the same way.
func (j Job) Normalize() Job {
	out := j
	out.Requirements = compact(j.Requirements)
	out.Benefits = compact(j.Benefits)
	if out.Applicants < 0 {
		out.Applicants = 0
	}
	return out
}

// Validate reports whether the record carries the fields page synthesis relies on.
func (j Job) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return fmt.Errorf("%w: job %q has no title", ErrInvalidJob, j.ID)
	}
	if strings.TrimSpace(j.Description) == "" {
		return fmt.Errorf("%w: job %q has no description", ErrInvalidJob, j.ID)
	}
	if j.SlugOrDerived() == "" {
		return fmt.Errorf("%w: job %q has no usable slug", ErrInvalidJob, j.ID)
	}
	// A stored slug names a directory under jobs/, so it must be a single
	// well-formed segment.
	if s := strings.TrimSpace(j.Slug); s != "" && !slug.Valid(s) {
		return fmt.Errorf("%w: job %q has malformed slug %q", ErrInvalidJob, j.ID, s)
	}
	return nil
}

func compact(items []string) []string {
	var out []string
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
