package store

import (
	"strings"
	"time"

	"aidhunter-engine/internal/domain"
)

// MergeResult reports what a merge changed. Changed lists the fingerprints
// that need (re)scoring, which bounds per-run scoring cost to the delta.
type MergeResult struct {
	Records map[string]domain.JobRecord
	Changed []string
	New     int
	Updated int
}

// Merge folds a batch of incoming records into the store snapshot. It never
// mutates its inputs and is idempotent: merging the same batch twice with
// the same clock yields the same result as merging it once.
//
// A record already present keeps its firstSeenAt, score and status; mutable
// fields are refreshed from the re-scrape. Only a description that drifted
// below rescoreSimilarity (token Jaccard) re-flags the record for scoring.
func Merge(existing map[string]domain.JobRecord, incoming []domain.JobRecord, now time.Time, rescoreSimilarity float64) MergeResult {
	merged := make(map[string]domain.JobRecord, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}

	res := MergeResult{Records: merged}
	changedSet := make(map[string]struct{})

	for _, in := range incoming {
		fp := in.Fingerprint
		if fp == "" {
			fp = domain.Fingerprint(in.Title, in.Organization, in.Location)
		}

		cur, ok := merged[fp]
		if !ok {
			in.Fingerprint = fp
			in.Status = domain.StatusNew
			in.FirstSeenAt = now
			in.LastSeenAt = now
			merged[fp] = in
			if _, seen := changedSet[fp]; !seen {
				changedSet[fp] = struct{}{}
				res.Changed = append(res.Changed, fp)
				res.New++
			}
			continue
		}

		material := descriptionSimilarity(cur.Description, in.Description) < rescoreSimilarity

		cur.LastSeenAt = now
		cur.Title = in.Title
		cur.Location = in.Location
		if in.Description != "" {
			cur.Description = in.Description
		}
		if in.URL != "" {
			cur.URL = in.URL
		}
		cur.DonorTags = unionTags(cur.DonorTags, in.DonorTags)

		if material {
			cur.Status = domain.StatusNew
			if _, seen := changedSet[fp]; !seen {
				changedSet[fp] = struct{}{}
				res.Changed = append(res.Changed, fp)
				res.Updated++
			}
		}
		merged[fp] = cur
	}

	return res
}

// descriptionSimilarity is a cheap token Jaccard; it only has to decide
// "materially changed or not", so no IDF weighting is needed here.
func descriptionSimilarity(a, b string) float64 {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == b {
		return 1
	}
	if b == "" {
		// re-scrapes sometimes drop the description; that is not a change
		return 1
	}

	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}

	inter := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range strings.Fields(strings.ToLower(s)) {
		out[strings.Trim(f, ".,;:!?()[]\"'")] = struct{}{}
	}
	delete(out, "")
	return out
}

func unionTags(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a))
	out := make([]string, 0, len(a)+len(b))
	for _, t := range a {
		k := strings.ToLower(t)
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, t)
		}
	}
	for _, t := range b {
		k := strings.ToLower(t)
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
