package sitemap

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/robotstxt"

	"github.com/JakeFAU/mission-site/internal/mission"
	"github.com/JakeFAU/mission-site/internal/site"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var now = time.Date(2024, 6, 15, 23, 30, 0, 0, time.UTC)

func testSite() site.Site {
	return site.New("MissionBoard", "https://www.missionboard.fr", "https://www.missionboard.fr/logo.png")
}

func ptr(t time.Time) *time.Time { return &t }

func jobs() []mission.Job {
	return []mission.Job{
		{
			ID: "1", Slug: "stored-slug", Title: "Dev Go", Location: "Paris",
			CreatedAt: ptr(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)),
			UpdatedAt: ptr(time.Date(2024, 2, 3, 10, 0, 0, 0, time.UTC)),
		},
		{
			ID: "2", Title: "Data Engineer", Location: "Lyon, France",
			CreatedAt: ptr(time.Date(2024, 4, 5, 8, 0, 0, 0, time.UTC)),
		},
		{ID: "3", Title: "Chef de projet", Location: "Nantes"},
		{ID: "4", Title: "!!!", Location: ""},
	}
}

func build(t *testing.T, v Variant, js []mission.Job) URLSet {
	t.Helper()
	data, err := NewBuilder(testSite(), v, fixedClock{now}).Build(StaticRoutes(), js)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), `<?xml version="1.0" encoding="UTF-8"?>`))
	set, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Namespace, set.Xmlns)
	return set
}

func TestBuildStaticRoutesOnly(t *testing.T) {
	t.Parallel()

	set := build(t, BuildVariant, nil)
	require.Len(t, set.URLs, 3)
	assert.Equal(t, URL{Loc: "https://www.missionboard.fr/", LastMod: "2024-06-15", ChangeFreq: "daily", Priority: "1.0"}, set.URLs[0])
	assert.Equal(t, "https://www.missionboard.fr/missions", set.URLs[1].Loc)
	assert.Equal(t, "0.9", set.URLs[1].Priority)
	assert.Equal(t, "https://www.missionboard.fr/about", set.URLs[2].Loc)
	assert.Equal(t, "monthly", set.URLs[2].ChangeFreq)
	assert.Equal(t, "0.7", set.URLs[2].Priority)
}

func TestBuildVariantLastmod(t *testing.T) {
	t.Parallel()

	set := build(t, BuildVariant, jobs())
	require.Len(t, set.URLs, 6)
	got := set.URLs[3:]

	assert.Equal(t, "https://www.missionboard.fr/jobs/stored-slug", got[0].Loc)
	assert.Equal(t, "2024-02-03", got[0].LastMod)
	assert.Equal(t, "weekly", got[0].ChangeFreq)
	assert.Equal(t, "0.8", got[0].Priority)

	assert.Equal(t, "https://www.missionboard.fr/jobs/data-engineer-lyon-france", got[1].Loc)
	assert.Equal(t, "2024-04-05", got[1].LastMod)

	assert.Equal(t, "https://www.missionboard.fr/jobs/chef-de-projet-nantes", got[2].Loc)
	assert.Equal(t, "2024-06-15", got[2].LastMod)
}

func TestLiveVariantOmitsMissingLastmod(t *testing.T) {
	t.Parallel()

	set := build(t, LiveVariant, jobs())
	require.Len(t, set.URLs, 6)
	got := set.URLs[3:]
	assert.Equal(t, "https://www.missionboard.fr/mission/stored-slug", got[0].Loc)
	assert.Equal(t, "2024-02-03", got[0].LastMod)
	assert.Equal(t, "https://www.missionboard.fr/mission/chef-de-projet-nantes", got[2].Loc)
	assert.Empty(t, got[2].LastMod)

	data, err := NewBuilder(testSite(), LiveVariant, fixedClock{now}).Build(StaticRoutes(), jobs()[2:3])
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "<lastmod>"))
}

func TestLastmodUsesUTCDate(t *testing.T) {
	t.Parallel()

	paris := time.FixedZone("CEST", 2*60*60)
	js := []mission.Job{{Slug: "late", CreatedAt: ptr(time.Date(2024, 3, 1, 1, 0, 0, 0, paris))}}
	set := build(t, BuildVariant, js)
	assert.Equal(t, "2024-02-29", set.URLs[3].LastMod)
}

func TestBuildEscapesLocations(t *testing.T) {
	t.Parallel()

	js := []mission.Job{{Slug: "a&b"}}
	data, err := NewBuilder(testSite(), BuildVariant, fixedClock{now}).Build(nil, js)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<loc>https://www.missionboard.fr/jobs/a&amp;b</loc>")
}

func TestMinimal(t *testing.T) {
	t.Parallel()

	data := Minimal(testSite(), now)
	set, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Namespace, set.Xmlns)
	require.Len(t, set.URLs, 1)
	assert.Equal(t, URL{Loc: "https://www.missionboard.fr/", LastMod: "2024-06-15", ChangeFreq: "daily", Priority: "1.0"}, set.URLs[0])
}

func TestRobots(t *testing.T) {
	t.Parallel()

	body := Robots(testSite())
	assert.Equal(t, "User-agent: *\nAllow: /\n\nSitemap: https://www.missionboard.fr/sitemap.xml\n", string(body))

	parsed, err := robotstxt.FromBytes(body)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.missionboard.fr/sitemap.xml"}, parsed.Sitemaps)
	assert.True(t, parsed.TestAgent("/jobs/anything", "Googlebot"))
	assert.True(t, parsed.TestAgent("/", "*"))
}
