// Package reliefweb collects job postings from ReliefWeb RSS feeds, one feed
// per target country.
package reliefweb

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"aidhunter-engine/internal/domain"
	"aidhunter-engine/internal/source"
)

const maxPerFeed = 30

type Config struct {
	Feeds  []string
	Donors []string
}

type Collector struct {
	cfg Config
	hc  *http.Client
	lim *source.HostLimiter
}

func New(cfg Config, lim *source.HostLimiter) *Collector {
	return &Collector{
		cfg: cfg,
		hc:  &http.Client{Timeout: 30 * time.Second},
		lim: lim,
	}
}

func (c *Collector) Name() string { return "reliefweb" }

func (c *Collector) Fetch(ctx context.Context) ([]domain.JobRecord, error) {
	var out []domain.JobRecord
	var lastErr error
	seen := map[string]bool{}

	for _, feedURL := range c.cfg.Feeds {
		records, err := c.fetchFeed(ctx, feedURL)
		if err != nil {
			// a single broken feed shouldn't drop the whole source
			lastErr = err
			continue
		}
		for _, r := range records {
			if seen[r.SourceID] {
				continue
			}
			seen[r.SourceID] = true
			out = append(out, r)
		}
	}

	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (c *Collector) fetchFeed(ctx context.Context, feedURL string) ([]domain.JobRecord, error) {
	if c.lim != nil {
		if err := c.lim.WaitURL(ctx, feedURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "aidhunter/1.0 (+local)")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reliefweb get feed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("reliefweb feed status %d", res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("reliefweb read feed: %w", err)
	}

	return ParseFeed(body, c.cfg.Donors)
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Description string `xml:"description"`
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

// ParseFeed turns one RSS payload into normalized records. ReliefWeb titles
// follow "Job Title - Organization"; the country/duty-station line sits at
// the top of the HTML description.
func ParseFeed(body []byte, donors []string) ([]domain.JobRecord, error) {
	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("reliefweb parse rss: %w", err)
	}

	items := feed.Channel.Items
	if len(items) > maxPerFeed {
		items = items[:maxPerFeed]
	}

	var out []domain.JobRecord
	for _, item := range items {
		title, org := splitTitleOrg(item.Title)
		desc := stripHTML(item.Description)

		id := item.GUID
		if id == "" {
			id = item.Link
		}

		rec, ok := source.Normalize(domain.JobRecord{
			SourceID:     "reliefweb:" + id,
			Title:        title,
			Organization: org,
			Location:     extractCountry(desc),
			Description:  desc,
			URL:          item.Link,
		}, donors)
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func splitTitleOrg(s string) (title, org string) {
	if i := strings.LastIndex(s, " - "); i > 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+3:])
	}
	return strings.TrimSpace(s), ""
}

func stripHTML(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, " "))
}

var countryRe = regexp.MustCompile(`(?i)country:\s*([^\n,;]+)`)

func extractCountry(desc string) string {
	if m := countryRe.FindStringSubmatch(desc); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
