// Package board collects postings from development-sector job boards whose
// listing pages share a card shape: a container per job holding a title
// anchor plus organization and location elements. Devex, EthioJobs and
// DevelopmentAid differ only in selectors, so each is a Site preset over the
// same walk.
package board

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"aidhunter-engine/internal/domain"
	"aidhunter-engine/internal/source"
)

// Site describes how one board lays out its listing cards.
type Site struct {
	Name    string
	BaseURL string

	CardSelector  string
	TitleSelector string
	// LinkFilter is the fallback when no TitleSelector matches: any anchor
	// in the card whose href contains this fragment.
	LinkFilter  string
	OrgSelector string
	LocSelector string

	// DefaultLocation fills in when a card carries no location element
	// (EthioJobs lists Ethiopian postings only).
	DefaultLocation string
	MaxPerPage      int
}

var devexSite = Site{
	Name:          "devex",
	BaseURL:       "https://www.devex.com",
	CardSelector:  ".job-card, .search-result, .listing",
	TitleSelector: "h2 a, h3 a, a.title, .job-title a",
	LinkFilter:    "/jobs/",
	OrgSelector:   ".organization, .company, .employer",
	LocSelector:   ".location, .place",
	MaxPerPage:    25,
}

var ethioJobsSite = Site{
	Name:            "ethiojobs",
	BaseURL:         "https://www.ethiojobs.net",
	CardSelector:    ".job-listing, .job-item, article.job",
	TitleSelector:   "h2 a, h3 a, .job-title a, a.title",
	OrgSelector:     ".company-name, .employer, .organization",
	LocSelector:     ".location, .job-location",
	DefaultLocation: "Ethiopia",
	MaxPerPage:      30,
}

var developmentAidSite = Site{
	Name:          "developmentaid",
	BaseURL:       "https://www.developmentaid.org",
	CardSelector:  ".job-item, .listing-item, article.job, .search-result",
	TitleSelector: "h2 a, h3 a, a.title, .job-title a",
	LinkFilter:    "/jobs/",
	OrgSelector:   ".organization, .company, .employer",
	LocSelector:   ".location, .country",
	MaxPerPage:    25,
}

type Config struct {
	// Pages are search or category paths under the board's base URL.
	Pages  []string
	Donors []string
}

type Collector struct {
	site Site
	cfg  Config
	hc   *http.Client
	lim  *source.HostLimiter
}

func New(site Site, cfg Config, lim *source.HostLimiter) *Collector {
	return &Collector{
		site: site,
		cfg:  cfg,
		hc:   &http.Client{Timeout: 30 * time.Second},
		lim:  lim,
	}
}

func Devex(cfg Config, lim *source.HostLimiter) *Collector {
	return New(devexSite, cfg, lim)
}

func EthioJobs(cfg Config, lim *source.HostLimiter) *Collector {
	return New(ethioJobsSite, cfg, lim)
}

func DevelopmentAid(cfg Config, lim *source.HostLimiter) *Collector {
	return New(developmentAidSite, cfg, lim)
}

func (c *Collector) Name() string { return c.site.Name }

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
	pageURL := c.site.BaseURL + page
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
		return nil, fmt.Errorf("%s get page: %w", c.site.Name, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("%s page status %d", c.site.Name, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s parse html: %w", c.site.Name, err)
	}

	return parseCards(doc, c.site, c.cfg.Donors), nil
}

func parseCards(doc *goquery.Document, site Site, donors []string) []domain.JobRecord {
	var out []domain.JobRecord

	doc.Find(site.CardSelector).EachWithBreak(func(i int, card *goquery.Selection) bool {
		if site.MaxPerPage > 0 && i >= site.MaxPerPage {
			return false
		}

		anchor := card.Find(site.TitleSelector).First()
		if anchor.Length() == 0 && site.LinkFilter != "" {
			anchor = card.Find(fmt.Sprintf("a[href*='%s']", site.LinkFilter)).First()
		}
		if anchor.Length() == 0 {
			return true
		}

		title := source.CleanText(anchor.Text())
		href, _ := anchor.Attr("href")
		href = strings.TrimSpace(href)
		if title == "" || href == "" {
			return true
		}
		if !strings.HasPrefix(href, "http") {
			href = site.BaseURL + href
		}

		location := source.CleanText(card.Find(site.LocSelector).First().Text())
		if location == "" {
			location = site.DefaultLocation
		}

		rec, ok := source.Normalize(domain.JobRecord{
			SourceID:     site.Name + ":" + cardID(href, title),
			Title:        title,
			Organization: source.CleanText(card.Find(site.OrgSelector).First().Text()),
			Location:     location,
			URL:          href,
		}, donors)
		if !ok {
			return true
		}
		out = append(out, rec)
		return true
	})

	return out
}

// cardID derives a stable id from the posting URL and title; boards here
// expose no numeric vacancy id in their listing markup.
func cardID(url, title string) string {
	sum := sha256.Sum256([]byte(url + ":" + title))
	return hex.EncodeToString(sum[:])[:12]
}
