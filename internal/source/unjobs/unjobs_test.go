package unjobs

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleListing = `
<html><body>
  <div class="job">
    <a href="/vacancies/1755000000001">Programme Manager, UNICEF Kenya</a>
    <span class="upd">UNICEF</span>
  </div>
  <div class="job">
    <a href="/vacancies/1755000000002">Logistics Officer</a>
    <span class="upd">WFP</span>
  </div>
  <a href="/duty_stations/nairobi">Nairobi</a>
  <a href="/vacancies/9">bad</a>
</body></html>`

func TestParseListing(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sampleListing))
	require.NoError(t, err)

	records := parseListing(doc, "/duty_stations/nairobi", nil)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "unjobs:1755000000001", first.SourceID)
	assert.Equal(t, "Programme Manager, UNICEF Kenya", first.Title)
	assert.Equal(t, "UNICEF", first.Organization)
	assert.Equal(t, "Nairobi", first.Location)
	assert.Equal(t, "https://unjobs.org/vacancies/1755000000001", first.URL)
}

func TestLocationFromPage(t *testing.T) {
	assert.Equal(t, "Nairobi", locationFromPage("/duty_stations/nairobi"))
	assert.Equal(t, "Addis Ababa", locationFromPage("/duty_stations/addis-ababa"))
	assert.Equal(t, "Kenya", locationFromPage("/search?q=kenya"))
	assert.Empty(t, locationFromPage("/somewhere/else"))
}
