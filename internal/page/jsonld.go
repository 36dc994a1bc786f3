package page

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/JakeFAU/mission-site/internal/mission"
	"github.com/JakeFAU/mission-site/internal/site"
)

var plainNumber = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

const (
	dateLayout     = "2006-01-02"
	validityPeriod = 90
)

// JobPosting is the schema.org structured data embedded in each page. Field
// order is the serialization order.
type JobPosting struct {
	Context            string          `json:"@context"`
	Type               string          `json:"@type"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Identifier         PropertyValue   `json:"identifier"`
	DatePosted         string          `json:"datePosted,omitempty"`
	ValidThrough       string          `json:"validThrough,omitempty"`
	EmploymentType     string          `json:"employmentType"`
	HiringOrganization Organization    `json:"hiringOrganization"`
	JobLocation        Place           `json:"jobLocation"`
	BaseSalary         *MonetaryAmount `json:"baseSalary,omitempty"`
}

// PropertyValue identifies the posting on the site.
type PropertyValue struct {
	Type  string `json:"@type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Organization is the hiring company.
type Organization struct {
	Type   string `json:"@type"`
	Name   string `json:"name"`
	SameAs string `json:"sameAs,omitempty"`
	Logo   string `json:"logo,omitempty"`
}

// Place is the job location.
type Place struct {
	Type    string        `json:"@type"`
	Address PostalAddress `json:"address"`
}

// PostalAddress carries locality and country only.
type PostalAddress struct {
	Type            string `json:"@type"`
	AddressLocality string `json:"addressLocality"`
	AddressCountry  string `json:"addressCountry"`
}

// MonetaryAmount is the advertised pay.
type MonetaryAmount struct {
	Type     string            `json:"@type"`
	Currency string            `json:"currency"`
	Value    QuantitativeValue `json:"value"`
}

// QuantitativeValue is the amount and its unit (DAY or YEAR).
type QuantitativeValue struct {
	Type     string `json:"@type"`
	Value    any    `json:"value"`
	UnitText string `json:"unitText"`
}

// BuildJobPosting maps a job onto the JobPosting vocabulary.
func BuildJobPosting(s site.Site, job mission.Job) JobPosting {
	posting := JobPosting{
		Context:     "https://schema.org/",
		Type:        "JobPosting",
		Title:       job.Title,
		Description: job.Description,
		Identifier: PropertyValue{
			Type:  "PropertyValue",
			Name:  s.Name,
			Value: job.ID,
		},
		EmploymentType: EmploymentType(job.Type),
		HiringOrganization: Organization{
			Type: "Organization",
			Name: job.Company,
			Logo: s.LogoURL,
		},
		JobLocation: Place{
			Type: "Place",
			Address: PostalAddress{
				Type:            "PostalAddress",
				AddressLocality: Locality(job.Location),
				AddressCountry:  s.Country,
			},
		},
	}
	if posted, ok := job.Published(); ok {
		posting.DatePosted = posted.UTC().Format(dateLayout)
		posting.ValidThrough = posted.UTC().AddDate(0, 0, validityPeriod).Format(dateLayout)
	}
	if salary := strings.TrimSpace(job.Salary); salary != "" {
		unit := "YEAR"
		if job.IsDayRate() {
			unit = "DAY"
		}
		posting.BaseSalary = &MonetaryAmount{
			Type:     "MonetaryAmount",
			Currency: s.Currency,
			Value: QuantitativeValue{
				Type:     "QuantitativeValue",
				Value:    salaryValue(salary),
				UnitText: unit,
			},
		}
	}
	return posting
}

// EmploymentType maps the contract type: only CDI is full-time.
func EmploymentType(contract string) string {
	if contract == mission.TypeCDI {
		return "FULL_TIME"
	}
	return "CONTRACTOR"
}

// Locality is the part of a location before its first comma.
func Locality(location string) string {
	locality, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(locality)
}

func salaryValue(salary string) any {
	if plainNumber.MatchString(salary) {
		return json.Number(salary)
	}
	return salary
}
