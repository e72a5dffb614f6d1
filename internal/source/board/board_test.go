package board

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const devexListing = `<html><body>
<div class="search-result">
  <h2><a href="/jobs/program-manager-ethiopia-998001">Program Manager, Ethiopia</a></h2>
  <span class="organization">Mercy Corps</span>
  <span class="location">Addis Ababa, Ethiopia</span>
</div>
<div class="job-card">
  <a href="https://www.devex.com/jobs/country-director-kenya-998002" class="title">Country Director - Kenya</a>
  <span class="company">IRC</span>
  <span class="place">Nairobi, Kenya</span>
</div>
<div class="listing">
  <a href="/jobs/grants-officer-998003">Grants Officer</a>
  <span class="employer">CARE</span>
</div>
<div class="search-result">
  <a href="/about">Not a job link</a>
</div>
</body></html>`

func parseHTML(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestParseCardsDevex(t *testing.T) {
	recs := parseCards(parseHTML(t, devexListing), devexSite, []string{"USAID"})
	require.Len(t, recs, 3, "the card without a job link is skipped")

	pm := recs[0]
	assert.Equal(t, "Program Manager, Ethiopia", pm.Title)
	assert.Equal(t, "Mercy Corps", pm.Organization)
	assert.Equal(t, "Addis Ababa, Ethiopia", pm.Location)
	assert.Equal(t, "https://www.devex.com/jobs/program-manager-ethiopia-998001", pm.URL,
		"relative hrefs are resolved against the board base URL")
	assert.True(t, strings.HasPrefix(pm.SourceID, "devex:"))
	assert.NotEmpty(t, pm.Fingerprint)

	cd := recs[1]
	assert.Equal(t, "Country Director - Kenya", cd.Title)
	assert.Equal(t, "https://www.devex.com/jobs/country-director-kenya-998002", cd.URL)

	// third card has no named title selector match, so the /jobs/ fallback
	// anchor is used
	assert.Equal(t, "Grants Officer", recs[2].Title)
	assert.Equal(t, "CARE", recs[2].Organization)
}

const ethioJobsListing = `<html><body>
<div class="job-listing">
  <h3><a href="/jobs/view/1122">Project Coordinator</a></h3>
  <span class="company-name">Save the Children</span>
</div>
</body></html>`

func TestParseCardsEthioJobsDefaultLocation(t *testing.T) {
	recs := parseCards(parseHTML(t, ethioJobsListing), ethioJobsSite, nil)
	require.Len(t, recs, 1)
	assert.Equal(t, "Project Coordinator", recs[0].Title)
	assert.Equal(t, "Save the Children", recs[0].Organization)
	assert.Equal(t, "Ethiopia", recs[0].Location, "cards without a location fall back to the site default")
	assert.True(t, strings.HasPrefix(recs[0].SourceID, "ethiojobs:"))
}

const developmentAidListing = `<html><body>
<div class="listing-item">
  <h2><a href="/jobs/776655/meal-specialist">MEAL Specialist</a></h2>
  <span class="organization">NRC</span>
  <span class="country">Somalia</span>
</div>
</body></html>`

func TestParseCardsDevelopmentAid(t *testing.T) {
	recs := parseCards(parseHTML(t, developmentAidListing), developmentAidSite, nil)
	require.Len(t, recs, 1)
	assert.Equal(t, "MEAL Specialist", recs[0].Title)
	assert.Equal(t, "Somalia", recs[0].Location)
	assert.True(t, strings.HasPrefix(recs[0].SourceID, "developmentaid:"))
}

func TestParseCardsRespectsPageCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, `<div class="job-listing"><h3><a href="/jobs/view/%d">Officer Role %d</a></h3></div>`, i, i)
	}
	b.WriteString("</body></html>")

	recs := parseCards(parseHTML(t, b.String()), ethioJobsSite, nil)
	assert.Len(t, recs, ethioJobsSite.MaxPerPage)
}

func TestCardIDStable(t *testing.T) {
	a := cardID("https://www.devex.com/jobs/1", "Officer")
	b := cardID("https://www.devex.com/jobs/1", "Officer")
	c := cardID("https://www.devex.com/jobs/2", "Officer")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 12)
}
