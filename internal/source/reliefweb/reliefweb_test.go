package reliefweb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>ReliefWeb - Jobs</title>
  <item>
    <title>Senior Program Manager - Save the Children</title>
    <link>https://reliefweb.int/job/4100001</link>
    <guid>4100001</guid>
    <description>&lt;p&gt;Country: Kenya&lt;/p&gt;&lt;p&gt;Lead budget management and donor compliance for a USAID funded program.&lt;/p&gt;</description>
  </item>
  <item>
    <title>Untitled garbage</title>
    <link>https://reliefweb.int/job/4100002</link>
    <guid>4100002</guid>
    <description>&lt;p&gt;Country: Ethiopia&lt;/p&gt;&lt;p&gt;Something.&lt;/p&gt;</description>
  </item>
</channel>
</rss>`

func TestParseFeed(t *testing.T) {
	records, err := ParseFeed([]byte(sampleFeed), []string{"USAID"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "reliefweb:4100001", first.SourceID)
	assert.Equal(t, "Senior Program Manager", first.Title)
	assert.Equal(t, "Save the Children", first.Organization)
	assert.Equal(t, "Kenya", first.Location)
	assert.Contains(t, first.Description, "budget management")
	assert.NotContains(t, first.Description, "<p>")
	assert.Equal(t, []string{"USAID"}, first.DonorTags)
	assert.NotEmpty(t, first.Fingerprint)
}

func TestParseFeedRejectsInvalidXML(t *testing.T) {
	_, err := ParseFeed([]byte("not xml at all"), nil)
	require.Error(t, err)
}

func TestSplitTitleOrg(t *testing.T) {
	title, org := splitTitleOrg("Program Manager - Health Systems - UNICEF")
	assert.Equal(t, "Program Manager - Health Systems", title)
	assert.Equal(t, "UNICEF", org)

	title, org = splitTitleOrg("Standalone Title")
	assert.Equal(t, "Standalone Title", title)
	assert.Empty(t, org)
}
