// Package unjobs collects postings from unjobs.org duty-station and search
// pages.
package unjobs

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"aidhunter-engine/internal/domain"
	"aidhunter-engine/internal/source"
)

const baseURL = "https://unjobs.org"

type Config struct {
	// Pages are paths under unjobs.org, e.g. /duty_stations/nairobi or
	// /search?q=ethiopia.
	Pages  []string
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

func (c *Collector) Name() string { return "unjobs" }

func (c *Collector) Fetch(ctx context.Context) ([]domain.JobRecord, error) {
	var out []domain.JobRecord
	var lastErr error
	seen := map[string]bool{}

	for _, page := range c.cfg.Pages {
		records, err := c.fetchPage(ctx, page)
		if err != nil {
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

func (c *Collector) fetchPage(ctx context.Context, page string) ([]domain.JobRecord, error) {
	pageURL := baseURL + page
	if c.lim != nil {
		if err := c.lim.WaitURL(ctx, pageURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "aidhunter/1.0 (+local)")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unjobs get page: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("unjobs page status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("unjobs parse html: %w", err)
	}

	return parseListing(doc, page, c.cfg.Donors), nil
}

// parseListing walks vacancy anchors. UNJobs listing pages link each job as
// /vacancies/<id>; the surrounding job block carries organization and
// closing-date spans.
func parseListing(doc *goquery.Document, page string, donors []string) []domain.JobRecord {
	var out []domain.JobRecord
	location := locationFromPage(page)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if !strings.Contains(href, "/vacancies/") {
			return
		}

		title := source.CleanText(a.Text())
		if len(title) < 5 {
			return
		}

		abs := href
		if strings.HasPrefix(href, "/") {
			abs = baseURL + href
		}

		id := href[strings.LastIndex(href, "/")+1:]
		if id == "" {
			return
		}

		card := a.Closest(".job")
		org := source.CleanText(card.Find(".upd, .org, span.source").First().Text())

		rec, ok := source.Normalize(domain.JobRecord{
			SourceID:     "unjobs:" + id,
			Title:        title,
			Organization: org,
			Location:     location,
			URL:          abs,
		}, donors)
		if !ok {
			return
		}
		out = append(out, rec)
	})
	return out
}

// locationFromPage recovers a duty station from paths like
// /duty_stations/nairobi or a country from /search?q=kenya.
func locationFromPage(page string) string {
	if i := strings.Index(page, "duty_stations/"); i >= 0 {
		station := page[i+len("duty_stations/"):]
		if k := strings.IndexAny(station, "/?"); k >= 0 {
			station = station[:k]
		}
		return titleCase(strings.ReplaceAll(station, "-", " "))
	}
	if u, err := url.Parse(page); err == nil {
		if q := u.Query().Get("q"); q != "" {
			return titleCase(q)
		}
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
