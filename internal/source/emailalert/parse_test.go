package emailalert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAlert = `<html><body>
<p>Your daily job alert</p>
<table>
<tr><td>
  <a href="https://reliefweb.int/job/4100123/wash-officer">WASH Officer - UNICEF</a><br>
  Location: Nairobi, Kenya
</td></tr>
<tr><td>
  <a href="https://click.example.com/track?url=https%3A%2F%2Fwww.devex.com%2Fjobs%2Fgrants-manager-998877">Grants Manager - Save the Children</a><br>
  Duty station: Amman
</td></tr>
<tr><td>
  <a href="https://reliefweb.int/job/4100123/wash-officer?utm=alert">WASH Officer - UNICEF</a>
</td></tr>
</table>
<a href="https://example.com/unsubscribe">Unsubscribe</a>
<a href="mailto:support@example.com">Contact us</a>
</body></html>`

func TestParseAlertHTML(t *testing.T) {
	recs := ParseAlertHTML(sampleAlert, []string{"UNICEF"})
	require.Len(t, recs, 2, "unsubscribe and mailto links must be skipped, duplicate posting collapsed")

	wash := recs[0]
	assert.Equal(t, "WASH Officer", wash.Title)
	assert.Equal(t, "UNICEF", wash.Organization)
	assert.Equal(t, "Nairobi, Kenya", wash.Location)
	assert.Equal(t, "https://reliefweb.int/job/4100123/wash-officer", wash.URL)
	assert.Contains(t, wash.DonorTags, "UNICEF")
	assert.NotEmpty(t, wash.Fingerprint)

	grants := recs[1]
	assert.Equal(t, "Grants Manager", grants.Title)
	assert.Equal(t, "Save the Children", grants.Organization)
	assert.Equal(t, "Amman", grants.Location)
	assert.Equal(t, "https://www.devex.com/jobs/grants-manager-998877", grants.URL,
		"tracking redirect should be unwrapped")
}

func TestParseAlertHTMLDuplicateLinksShareSourceID(t *testing.T) {
	a := ParseAlertHTML(`<a href="https://reliefweb.int/job/1/x?a=1">Field Coordinator - NRC</a>`, nil)
	b := ParseAlertHTML(`<a href="https://reliefweb.int/job/1/x?b=2">Field Coordinator - NRC</a>`, nil)
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, a[0].SourceID, b[0].SourceID, "query strings must not change the link id")
}

func TestResolveTrackedLink(t *testing.T) {
	assert.Equal(t, "", resolveTrackedLink("mailto:x@y.org"))
	assert.Equal(t, "https://unjobs.org/vacancies/123",
		resolveTrackedLink("https://unjobs.org/vacancies/123"))
	assert.Equal(t, "https://reliefweb.int/job/2",
		resolveTrackedLink("https://t.example.com/c?url=https%3A%2F%2Freliefweb.int%2Fjob%2F2"))
}

func TestCommitWithoutPendingIsNoop(t *testing.T) {
	// no UIDs parsed means no connection is made at all
	c := New(Config{})
	assert.NoError(t, c.Commit(context.Background()))
}

func TestFromKnownSender(t *testing.T) {
	c := New(Config{Senders: []string{"alerts@reliefweb.int"}})
	assert.True(t, c.fromKnownSender("ReliefWeb <alerts@reliefweb.int>"))
	assert.False(t, c.fromKnownSender("spam@example.com"))
	assert.False(t, New(Config{}).fromKnownSender("alerts@reliefweb.int"))
}
