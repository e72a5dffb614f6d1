package emailalert

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"aidhunter-engine/internal/domain"
	"aidhunter-engine/internal/source"
)

// hosts whose links we treat as job postings inside alert bodies
var jobHosts = []string{
	"reliefweb.int",
	"devex.com",
	"unjobs.org",
	"impactpool.org",
}

// ParseAlertHTML pulls job links out of an alert email body. Each qualifying
// anchor becomes one record; the anchor text is split into title and
// organization on the last " - " separator, matching how the alert digests
// format their listings.
func ParseAlertHTML(body string, donors []string) []domain.JobRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var out []domain.JobRecord
	seen := map[string]bool{}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		link := resolveTrackedLink(href)
		if link == "" || !isJobLink(link) {
			return
		}

		text := source.CleanText(sel.Text())
		if len(text) < 5 {
			return
		}

		title, org := splitTitleOrg(text)
		raw := domain.JobRecord{
			SourceID:     "email:" + linkID(link),
			Title:        title,
			Organization: org,
			Location:     locationNear(sel),
			URL:          link,
		}
		rec, ok := source.Normalize(raw, donors)
		if !ok || seen[rec.SourceID] {
			return
		}
		seen[rec.SourceID] = true
		out = append(out, rec)
	})

	return out
}

// resolveTrackedLink unwraps click-tracking redirects (the url= query
// parameter) and drops non-http links.
func resolveTrackedLink(href string) string {
	href = strings.TrimSpace(href)
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("url"); target != "" {
		if dec, err := url.QueryUnescape(target); err == nil && strings.HasPrefix(dec, "http") {
			return dec
		}
	}
	return href
}

func isJobLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range jobHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// linkID gives a stable short id for a posting URL so the same link in two
// alert emails collapses to one record.
func linkID(link string) string {
	if u, err := url.Parse(link); err == nil {
		link = u.Hostname() + u.EscapedPath()
	}
	sum := sha256.Sum256([]byte(strings.ToLower(link)))
	return hex.EncodeToString(sum[:])[:12]
}

func splitTitleOrg(text string) (title, org string) {
	if idx := strings.LastIndex(text, " - "); idx > 0 {
		return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx+3:])
	}
	return text, ""
}

// locationNear looks for a "Location: X" line in the anchor's parent block.
func locationNear(sel *goquery.Selection) string {
	parent := sel.Closest("td, div, li, p")
	if parent.Length() == 0 {
		return ""
	}
	for _, line := range strings.Split(parent.Text(), "\n") {
		line = strings.TrimSpace(line)
		for _, prefix := range []string{"Location:", "Duty station:", "Country:"} {
			if strings.HasPrefix(line, prefix) {
				return source.NormalizeLocation(strings.TrimPrefix(line, prefix))
			}
		}
	}
	return ""
}
