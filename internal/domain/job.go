package domain

import "time"

// Status tracks where a record sits in the pipeline lifecycle. Collectors
// produce records as StatusNew; the scorer moves them to StatusScored or
// StatusSkipped; downstream consumers own the remaining transitions.
type Status string

const (
	StatusNew         Status = "new"
	StatusScored      Status = "scored"
	StatusSkipped     Status = "skipped"
	StatusDigested    Status = "digested"
	StatusCoverLetter Status = "cover_letter_generated"
)

// Factor names used in the score breakdown. Fixed set of five.
const (
	FactorTitle      = "title_match"
	FactorLocation   = "location_match"
	FactorSkills     = "skills_overlap"
	FactorExperience = "experience_fit"
	FactorDonor      = "donor_match"
)

// Factor holds one component of a match score: the raw [0,1] value and its
// weighted contribution on the 0-100 scale. Both are kept so every total is
// attributable to named factors.
type Factor struct {
	Raw      float64 `json:"raw"`
	Weighted float64 `json:"weighted"`
}

// JobRecord is the normalized representation of one posting regardless of
// which source produced it. Identity across sources and runs is the
// Fingerprint, not the SourceID.
type JobRecord struct {
	SourceID     string
	Fingerprint  string
	Title        string
	Organization string
	Location     string
	Description  string
	URL          string
	DonorTags    []string

	FirstSeenAt time.Time // immutable once set
	LastSeenAt  time.Time // refreshed on every observation

	Score     int               // 0..100, meaningful once scored
	Breakdown map[string]Factor // five entries once scored
	Status    Status

	// Diagnostics collects per-record degradations (missing title,
	// missing description) so a score stays explainable.
	Diagnostics []string
}

// Scored reports whether the record has been through the scoring engine.
func (j *JobRecord) Scored() bool {
	return j.Status != StatusNew && j.Breakdown != nil
}
