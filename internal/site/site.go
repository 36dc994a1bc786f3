// Package site carries the brand and origin constants shared by the page
// synthesizer, the sitemap emitter and the on-demand endpoint.
package site

import (
	"net/url"
	"strings"
)

// Site describes the public website the artifacts are generated for.
type Site struct {
	Name     string
	Origin   string
	LogoURL  string
	Locale   string
	Country  string
	Currency string
}

// Default returns the production site constants.
func Default() Site {
	return New("MissionBoard", "https://www.missionboard.fr", "https://www.missionboard.fr/logo.png")
}

// New builds a Site with the French market defaults. Origin is stored without
// a trailing slash.
func New(name, origin, logoURL string) Site {
	return Site{
		Name:     name,
		Origin:   strings.TrimRight(origin, "/"),
		LogoURL:  logoURL,
		Locale:   "fr_FR",
		Country:  "FR",
		Currency: "EUR",
	}
}

// URL joins a site-relative path onto the origin.
func (s Site) URL(path string) string {
	if path == "" || path == "/" {
		return s.Origin + "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.Origin + path
}

// JobURL is the canonical URL of a generated job page.
func (s Site) JobURL(slug string) string {
	return s.URL("/jobs/" + slug)
}

// SitemapURL is the absolute URL of sitemap.xml.
func (s Site) SitemapURL() string {
	return s.URL("/sitemap.xml")
}

// ApplyURL links back to the interactive listing with the job preselected.
func (s Site) ApplyURL(jobID string) string {
	return s.URL("/missions") + "?job=" + url.QueryEscape(jobID)
}
