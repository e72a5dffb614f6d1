// Package rank scores job records against the candidate profile. Five fixed
// factors contribute to a 0-100 total; each factor's raw value and weighted
// contribution are kept so a score is never a black box.
package rank

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"aidhunter-engine/internal/domain"
	"aidhunter-engine/internal/profile"
	"aidhunter-engine/internal/textsim"
)

// skillsBoost stretches the cosine similarity before clamping; raw cosine
// between a long description and a short skill list rarely approaches 1.
const skillsBoost = 1.5

var yearsRe = regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?)`)

// Weights are the factor weights as fractions summing to 1.
type Weights struct {
	Title      float64
	Location   float64
	Skills     float64
	Experience float64
	Donor      float64
}

type Scorer struct {
	profile        *profile.Profile
	corpus         *textsim.Corpus
	weights        Weights
	toleranceYears int
	locationScores map[string]float64
}

type Option func(*Scorer)

// WithLocationScores sets partial scores for regional/remote locations that
// match no target location.
func WithLocationScores(scores map[string]float64) Option {
	return func(s *Scorer) { s.locationScores = scores }
}

// WithExperienceTolerance sets how many years over the candidate's
// experience a requirement may grow before the factor decays to zero.
func WithExperienceTolerance(years int) Option {
	return func(s *Scorer) {
		if years > 0 {
			s.toleranceYears = years
		}
	}
}

func New(p *profile.Profile, weights Weights, opts ...Option) *Scorer {
	s := &Scorer{
		profile:        p,
		corpus:         textsim.NewCorpus(p.CorpusPhrases()),
		weights:        weights,
		toleranceYears: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the weighted total and per-factor breakdown for one record.
// Malformed fields degrade the corresponding factor to zero and surface as
// diagnostics; Score itself never fails.
func (s *Scorer) Score(j domain.JobRecord) (total int, breakdown map[string]domain.Factor, diags []string) {
	raw := map[string]float64{}

	if strings.TrimSpace(j.Title) == "" {
		raw[domain.FactorTitle] = 0
		diags = append(diags, "missing title: title factor degraded to 0")
	} else {
		raw[domain.FactorTitle] = s.titleMatch(j.Title)
	}

	raw[domain.FactorLocation] = s.locationMatch(j.Location)

	if strings.TrimSpace(j.Description) == "" {
		raw[domain.FactorSkills] = 0
		diags = append(diags, "missing description: skills factor degraded to 0")
	} else {
		raw[domain.FactorSkills] = s.skillsOverlap(j.Description)
	}

	raw[domain.FactorExperience] = s.experienceFit(j.Description)
	raw[domain.FactorDonor] = s.donorMatch(j.DonorTags)

	weightFor := map[string]float64{
		domain.FactorTitle:      s.weights.Title,
		domain.FactorLocation:   s.weights.Location,
		domain.FactorSkills:     s.weights.Skills,
		domain.FactorExperience: s.weights.Experience,
		domain.FactorDonor:      s.weights.Donor,
	}

	breakdown = make(map[string]domain.Factor, len(raw))
	sum := 0.0
	for name, r := range raw {
		w := weightFor[name] * r * 100
		breakdown[name] = domain.Factor{Raw: r, Weighted: w}
		sum += w
	}

	total = int(math.Round(sum))
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	return total, breakdown, diags
}

// titleMatch returns the best match across target titles: a full substring
// hit scores 1.0, all words present 0.9, otherwise the matched-word fraction
// scaled by 0.8.
func (s *Scorer) titleMatch(title string) float64 {
	tl := strings.ToLower(title)
	best := 0.0

	for _, role := range s.profile.TargetTitles {
		rl := strings.ToLower(strings.TrimSpace(role))
		if rl == "" {
			continue
		}
		if strings.Contains(tl, rl) {
			return 1.0
		}

		words := strings.Fields(rl)
		matched := 0
		for _, w := range words {
			if strings.Contains(tl, w) {
				matched++
			}
		}
		switch {
		case matched == len(words):
			best = math.Max(best, 0.9)
		case matched > 0:
			best = math.Max(best, float64(matched)/float64(len(words))*0.8)
		}
	}
	return best
}

// locationMatch scores 1.0 on any target-location substring hit (either
// direction, case-insensitive), falls back to the configured partials for
// remote/regional postings, else 0.
func (s *Scorer) locationMatch(location string) float64 {
	ll := strings.ToLower(strings.TrimSpace(location))
	if ll == "" {
		return 0
	}

	for _, target := range s.profile.TargetLocations {
		tl := strings.ToLower(strings.TrimSpace(target))
		if tl == "" {
			continue
		}
		if strings.Contains(ll, tl) || strings.Contains(tl, ll) {
			return 1.0
		}
	}

	best := 0.0
	for key, score := range s.locationScores {
		if strings.Contains(ll, strings.ToLower(key)) {
			best = math.Max(best, score)
		}
	}
	return best
}

func (s *Scorer) skillsOverlap(description string) float64 {
	skills := s.profile.SkillsText()
	if skills == "" {
		return 0
	}
	sim := s.corpus.Similarity(description, skills)
	return math.Min(1, sim*skillsBoost)
}

// experienceFit extracts the minimum years requirement from the description.
// No stated requirement scores 1.0; a requirement above the candidate's
// experience decays linearly to 0 across the tolerance window.
func (s *Scorer) experienceFit(description string) float64 {
	matches := yearsRe.FindAllStringSubmatch(strings.ToLower(description), -1)
	if len(matches) == 0 {
		return 1.0
	}

	required := math.MaxInt
	for _, m := range matches {
		if n, err := strconv.Atoi(m[1]); err == nil && n < required {
			required = n
		}
	}
	if required == math.MaxInt {
		return 1.0
	}

	gap := required - s.profile.ExperienceYears
	if gap <= 0 {
		return 1.0
	}
	fit := 1 - float64(gap)/float64(s.toleranceYears)
	return math.Max(0, fit)
}

func (s *Scorer) donorMatch(tags []string) float64 {
	if len(tags) == 0 || len(s.profile.PriorDonors) == 0 {
		return 0
	}
	prior := make(map[string]struct{}, len(s.profile.PriorDonors))
	for _, d := range s.profile.PriorDonors {
		prior[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	for _, tag := range tags {
		if _, ok := prior[strings.ToLower(strings.TrimSpace(tag))]; ok {
			return 1.0
		}
	}
	return 0
}

// Explain renders a one-line human-readable breakdown, highest contribution
// first is not guaranteed; order follows the fixed factor list.
func Explain(breakdown map[string]domain.Factor) string {
	names := []string{
		domain.FactorTitle, domain.FactorLocation, domain.FactorSkills,
		domain.FactorExperience, domain.FactorDonor,
	}
	parts := make([]string, 0, len(names))
	for _, n := range names {
		f := breakdown[n]
		parts = append(parts, fmt.Sprintf("%s=%.0f", n, f.Weighted))
	}
	return strings.Join(parts, " ")
}
