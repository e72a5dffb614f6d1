// Package profile loads the candidate profile that every score is computed
// against. The profile is read once per run and is read-only to the engine.
package profile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Profile struct {
	Name            string   `yaml:"name"`
	TargetTitles    []string `yaml:"target_titles"`
	TargetLocations []string `yaml:"target_locations"`
	Skills          []string `yaml:"skills"`
	ExperienceYears int      `yaml:"experience_years"`
	PriorDonors     []string `yaml:"prior_donors"`

	// Secondary fields; they enrich the similarity corpus and the
	// cover-letter prompt but carry no factor of their own.
	Sectors        []string `yaml:"sectors"`
	Languages      []string `yaml:"languages"`
	Certifications []string `yaml:"certifications"`
	Organizations  []string `yaml:"organizations_worked"`
	KeywordsBoost  []string `yaml:"keywords_boost"`
}

func Load(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate rejects only what makes scoring impossible. Empty skill or title
// sets are legal: the corresponding factors contribute zero instead.
func (p *Profile) Validate() error {
	if p.ExperienceYears < 0 {
		return fmt.Errorf("profile: experience_years must be >= 0, got %d", p.ExperienceYears)
	}
	return nil
}

// CorpusPhrases returns the phrases the TF-IDF vocabulary is built from:
// skills, sectors, donors, boost keywords and one "<role> experience" phrase
// per target title.
func (p *Profile) CorpusPhrases() []string {
	out := make([]string, 0, len(p.Skills)+len(p.Sectors)+len(p.PriorDonors)+len(p.TargetTitles)+len(p.KeywordsBoost))
	out = append(out, p.Skills...)
	out = append(out, p.Sectors...)
	out = append(out, p.PriorDonors...)
	for _, role := range p.TargetTitles {
		out = append(out, role+" experience")
	}
	out = append(out, p.KeywordsBoost...)
	return out
}

// SkillsText joins the profile skills into the query text compared against
// job descriptions.
func (p *Profile) SkillsText() string {
	parts := make([]string, 0, len(p.Skills)+len(p.Sectors))
	parts = append(parts, p.Skills...)
	parts = append(parts, p.Sectors...)
	return strings.Join(parts, " ")
}
