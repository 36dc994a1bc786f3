// Package sitemap emits sitemap.xml and robots.txt for the generated site.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/JakeFAU/mission-site/internal/mission"
	"github.com/JakeFAU/mission-site/internal/site"
)

// Namespace is the sitemap protocol namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

const (
	dateLayout      = "2006-01-02"
	jobChangeFreq   = "weekly"
	jobPriority     = 0.8
	contentTypeXML  = "application/xml"
	contentTypeText = "text/plain; charset=utf-8"
)

// ContentType is the media type of Build and Minimal output.
func ContentType() string { return contentTypeXML }

// RobotsContentType is the media type of Robots output.
func RobotsContentType() string { return contentTypeText }

// Route is a fixed, non-job page.
type Route struct {
	Path       string
	ChangeFreq string
	Priority   float64
}

// StaticRoutes returns home, listing and about, in that order.
func StaticRoutes() []Route {
	return []Route{
		{Path: "/", ChangeFreq: "daily", Priority: 1.0},
		{Path: "/missions", ChangeFreq: "daily", Priority: 0.9},
		{Path: "/about", ChangeFreq: "monthly", Priority: 0.7},
	}
}

// LastmodPolicy decides what a job without any date gets.
type LastmodPolicy int

const (
	// LastmodFallbackToday stamps undated jobs with the current day.
	LastmodFallbackToday LastmodPolicy = iota
	// LastmodOmitMissing leaves lastmod out for undated jobs.
	LastmodOmitMissing
)

// Variant captures the differences between the build and request-time sitemaps.
type Variant struct {
	JobPathPrefix string
	Lastmod       LastmodPolicy
}

var (
	// BuildVariant is written next to the static pages at build time.
	BuildVariant = Variant{JobPathPrefix: "/jobs/", Lastmod: LastmodFallbackToday}
	// LiveVariant is served by the on-demand endpoint.
	LiveVariant = Variant{JobPathPrefix: "/mission/", Lastmod: LastmodOmitMissing}
)

// URLSet is the sitemap document root.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// URL is one sitemap entry.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Builder renders sitemaps for one site and variant.
type Builder struct {
	site    site.Site
	variant Variant
	clock   mission.Clock
}

// NewBuilder constructs a Builder.
func NewBuilder(s site.Site, variant Variant, clock mission.Clock) *Builder {
	return &Builder{site: s, variant: variant, clock: clock}
}

// Entries lists the url entries: static routes first, then one per job.
// Jobs without a usable slug are left out.
func (b *Builder) Entries(routes []Route, jobs []mission.Job) []URL {
	today := b.clock.Now().UTC().Format(dateLayout)
	out := make([]URL, 0, len(routes)+len(jobs))
	for _, r := range routes {
		out = append(out, URL{
			Loc:        b.site.URL(r.Path),
			LastMod:    today,
			ChangeFreq: r.ChangeFreq,
			Priority:   formatPriority(r.Priority),
		})
	}
	for _, job := range jobs {
		slug := job.SlugOrDerived()
		if slug == "" {
			continue
		}
		entry := URL{
			Loc:        b.site.URL(b.variant.JobPathPrefix + slug),
			ChangeFreq: jobChangeFreq,
			Priority:   formatPriority(jobPriority),
		}
		if modified, ok := job.LastModified(); ok {
			entry.LastMod = modified.UTC().Format(dateLayout)
		} else if b.variant.Lastmod == LastmodFallbackToday {
			entry.LastMod = today
		}
		out = append(out, entry)
	}
	return out
}

// Build renders the sitemap document.
func (b *Builder) Build(routes []Route, jobs []mission.Job) ([]byte, error) {
	return Encode(b.Entries(routes, jobs))
}

// Encode serializes entries as an indented urlset document.
func Encode(entries []URL) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(URLSet{Xmlns: Namespace, URLs: entries}); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Parse decodes a sitemap document.
func Parse(data []byte) (URLSet, error) {
	var set URLSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return URLSet{}, fmt.Errorf("decode sitemap: %w", err)
	}
	return set, nil
}

// Minimal is the degraded sitemap: the home route stamped with now's date.
// It only touches constant data and cannot fail.
func Minimal(s site.Site, now time.Time) []byte {
	var loc bytes.Buffer
	_ = xml.EscapeText(&loc, []byte(s.URL("/")))
	return []byte(xml.Header +
		`<urlset xmlns="` + Namespace + `">` + "\n" +
		"  <url>\n" +
		"    <loc>" + loc.String() + "</loc>\n" +
		"    <lastmod>" + now.UTC().Format(dateLayout) + "</lastmod>\n" +
		"    <changefreq>daily</changefreq>\n" +
		"    <priority>1.0</priority>\n" +
		"  </url>\n" +
		"</urlset>\n")
}

// Robots allows every crawler everywhere and points at the sitemap.
func Robots(s site.Site) []byte {
	return []byte("User-agent: *\nAllow: /\n\nSitemap: " + s.SitemapURL() + "\n")
}

func formatPriority(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}
