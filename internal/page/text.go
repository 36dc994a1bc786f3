package page

import (
	"fmt"
	"strings"

	"github.com/JakeFAU/mission-site/internal/mission"
	"github.com/JakeFAU/mission-site/internal/site"
)

const metaDescriptionRunes = 150

// PageTitle combines job title, company, location and brand.
func PageTitle(s site.Site, job mission.Job) string {
	parts := []string{job.Title}
	if job.Company != "" {
		parts[0] = job.Title + " - " + job.Company
	}
	if job.Location != "" {
		parts = append(parts, job.Location)
	}
	parts = append(parts, s.Name)
	return strings.Join(parts, " | ")
}

// MetaDescription keeps the first 150 characters of the description on one
// line and appends an ellipsis.
func MetaDescription(description string) string {
	flat := strings.Join(strings.Fields(description), " ")
	runes := []rune(flat)
	if len(runes) > metaDescriptionRunes {
		runes = runes[:metaDescriptionRunes]
	}
	return string(runes) + "..."
}

// Keywords lists title, company, location, type and salary, skipping blanks.
func Keywords(job mission.Job) string {
	var out []string
	for _, k := range []string{job.Title, job.Company, job.Location, job.Type, SalaryText(job)} {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return strings.Join(out, ", ")
}

// SalaryText formats the salary as a day rate or an annual amount.
func SalaryText(job mission.Job) string {
	salary := strings.TrimSpace(job.Salary)
	if salary == "" {
		return ""
	}
	if job.IsDayRate() {
		return salary + "€/jour"
	}
	return salary + "€/an"
}

// ApplicantsText is the applicant-count sentence; French treats 0 and 1 as singular.
func ApplicantsText(n int) string {
	if n < 0 {
		n = 0
	}
	if n <= 1 {
		return fmt.Sprintf("%d personne a postulé", n)
	}
	return fmt.Sprintf("%d personnes ont postulé", n)
}
