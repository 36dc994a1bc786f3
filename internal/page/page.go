// Package page renders the static HTML document published for each job.
//
// Free-text fields are escaped on output through html/template, and the
// JSON-LD block is marshalled with HTML-safe escaping, so a title such as
// "</title>" cannot break the document structure.
package page

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/JakeFAU/mission-site/internal/mission"
	"github.com/JakeFAU/mission-site/internal/site"
)

//go:embed templates/job.html.tmpl
var templateFS embed.FS

var jobTemplate = template.Must(template.ParseFS(templateFS, "templates/job.html.tmpl"))

// Synthesizer renders job pages for one site.
type Synthesizer struct {
	site site.Site
	tmpl *template.Template
}

// New returns a Synthesizer bound to the site constants.
func New(s site.Site) *Synthesizer {
	return &Synthesizer{site: s, tmpl: jobTemplate}
}

type view struct {
	Site             site.Site
	Job              mission.Job
	PageTitle        string
	MetaDescription  string
	Keywords         string
	Canonical        string
	Home             string
	ApplyURL         string
	Salary           string
	Applicants       string
	DescriptionLines []string
	StructuredData   template.JS
}

// Synthesize returns the complete HTML document for job.
func (s *Synthesizer) Synthesize(job mission.Job) (string, error) {
	var buf bytes.Buffer
	if err := s.Render(&buf, job); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render writes the HTML document for job to w.
func (s *Synthesizer) Render(w io.Writer, job mission.Job) error {
	job = job.Normalize()
	slug := job.SlugOrDerived()
	posting := BuildJobPosting(s.site, job)
	structured, err := json.MarshalIndent(posting, "  ", "  ")
	if err != nil {
		return fmt.Errorf("marshal structured data for %q: %w", slug, err)
	}
	v := view{
		Site:             s.site,
		Job:              job,
		PageTitle:        PageTitle(s.site, job),
		MetaDescription:  MetaDescription(job.Description),
		Keywords:         Keywords(job),
		Canonical:        s.site.JobURL(slug),
		Home:             s.site.URL("/"),
		ApplyURL:         s.site.ApplyURL(job.ID),
		Salary:           SalaryText(job),
		Applicants:       ApplicantsText(job.Applicants),
		DescriptionLines: splitLines(job.Description),
		// MarshalIndent escapes <, > and & so the block cannot close the script element.
		StructuredData: template.JS("  " + string(structured)),
	}
	if err := s.tmpl.Execute(w, v); err != nil {
		return fmt.Errorf("render page %q: %w", slug, err)
	}
	return nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
