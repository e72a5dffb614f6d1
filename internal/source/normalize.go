package source

import (
	"strings"

	"aidhunter-engine/internal/domain"
)

// CleanText collapses whitespace and strips non-breaking spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// NormalizeLocation trims scrape prefixes and de-duplicates comma parts.
func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimPrefix(loc, "LOCATIONS:")
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// ExtractDonorTags scans free text for known donor names. Matching is a
// case-insensitive substring check against the configured vocabulary.
func ExtractDonorTags(text string, donors []string) []string {
	lt := strings.ToLower(text)
	var tags []string
	for _, d := range donors {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if strings.Contains(lt, strings.ToLower(d)) {
			tags = append(tags, d)
		}
	}
	return tags
}

// Normalize converts a raw scraped record into the strict shape the engine
// consumes: cleaned text, normalized location, donor tags derived from the
// description, fingerprint computed. Records with no title are unusable for
// identity and are rejected.
func Normalize(raw domain.JobRecord, donors []string) (domain.JobRecord, bool) {
	raw.Title = CleanText(raw.Title)
	raw.Organization = CleanText(raw.Organization)
	raw.Location = NormalizeLocation(raw.Location)
	raw.Description = CleanText(raw.Description)

	if raw.Title == "" {
		return raw, false
	}

	if len(raw.DonorTags) == 0 {
		raw.DonorTags = ExtractDonorTags(raw.Organization+" "+raw.Description, donors)
	}
	raw.Fingerprint = domain.Fingerprint(raw.Title, raw.Organization, raw.Location)
	raw.Status = domain.StatusNew
	return raw, true
}
