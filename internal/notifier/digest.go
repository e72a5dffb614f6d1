package notifier

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"aidhunter-engine/internal/domain"
)

// DigestStats is the run summary rendered at the bottom of the email.
type DigestStats struct {
	TotalScanned int
	HighMatches  int
	GoodMatches  int
	CoverLetters int
}

type digestJob struct {
	Title        string
	Organization string
	Location     string
	URL          string
	Score        int
	Badge        string
	BadgeColor   string
}

type digestData struct {
	Date  string
	High  []digestJob
	Good  []digestJob
	Stats DigestStats
}

const (
	colorHigh = "#22c55e"
	colorGood = "#eab308"
)

var digestTmpl = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background: #f9fafb; padding: 20px; margin: 0;">
<div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 12px; overflow: hidden;">
  <div style="background: linear-gradient(135deg, #3b82f6, #1d4ed8); padding: 24px; color: white;">
    <h1 style="margin: 0; font-size: 24px;">Job Match Digest</h1>
    <p style="margin: 8px 0 0 0; opacity: 0.9;">{{.Date}}</p>
  </div>
  <div style="padding: 24px;">
{{- if .High}}
    <h2 style="color: ` + colorHigh + `; border-bottom: 2px solid ` + colorHigh + `; padding-bottom: 8px;">High Matches ({{len .High}})</h2>
{{- range .High}}{{template "job" .}}{{end}}
{{- else}}
    <p style="color: #6b7280;">No high matches today.</p>
{{- end}}
{{- if .Good}}
    <h2 style="color: ` + colorGood + `; border-bottom: 2px solid ` + colorGood + `; padding-bottom: 8px; margin-top: 24px;">Good Matches ({{len .Good}})</h2>
{{- range .Good}}{{template "job" .}}{{end}}
{{- end}}
    <div style="background: #f3f4f6; border-radius: 8px; padding: 16px; margin-top: 24px;">
      <h3 style="margin: 0 0 12px 0; color: #374151;">Stats</h3>
      <ul style="margin: 0; padding-left: 20px; color: #4b5563;">
        <li>Jobs scanned: {{.Stats.TotalScanned}}</li>
        <li>High matches: {{.Stats.HighMatches}}</li>
        <li>Good matches: {{.Stats.GoodMatches}}</li>
        <li>Cover letters generated: {{.Stats.CoverLetters}}</li>
      </ul>
    </div>
    <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 24px 0;">
    <p style="color: #9ca3af; font-size: 12px; text-align: center;">This digest was generated automatically.</p>
  </div>
</div>
</body>
</html>
{{define "job"}}
    <div style="border: 1px solid #e5e7eb; border-radius: 8px; padding: 16px; margin-bottom: 16px; background: #fff;">
      <span style="background: {{.BadgeColor}}; color: white; padding: 4px 8px; border-radius: 4px; font-size: 12px; font-weight: bold;">{{.Badge}} ({{.Score}}%)</span>
      <h3 style="margin: 8px 0; color: #1f2937;"><a href="{{.URL}}" style="color: #1f2937; text-decoration: none;">{{.Title}}</a></h3>
      <p style="margin: 4px 0; color: #4b5563;"><strong>{{.Organization}}</strong></p>
      <p style="margin: 4px 0; color: #6b7280; font-size: 14px;">{{.Location}}</p>
      <a href="{{.URL}}" style="background: #3b82f6; color: white; padding: 8px 16px; border-radius: 4px; text-decoration: none; font-size: 14px;">View Job</a>
    </div>
{{end}}`))

// RenderDigest produces the HTML body for a digest email.
func RenderDigest(high, good []domain.JobRecord, stats DigestStats, now time.Time) (string, error) {
	data := digestData{
		Date:  now.Format("January 2, 2006"),
		High:  toDigestJobs(high, "HIGH MATCH", colorHigh),
		Good:  toDigestJobs(good, "GOOD MATCH", colorGood),
		Stats: stats,
	}

	var b strings.Builder
	if err := digestTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return b.String(), nil
}

func toDigestJobs(recs []domain.JobRecord, badge, color string) []digestJob {
	out := make([]digestJob, 0, len(recs))
	for _, r := range recs {
		loc := r.Location
		if loc == "" {
			loc = "Location not specified"
		}
		out = append(out, digestJob{
			Title:        r.Title,
			Organization: r.Organization,
			Location:     loc,
			URL:          r.URL,
			Score:        r.Score,
			Badge:        badge,
			BadgeColor:   color,
		})
	}
	return out
}
