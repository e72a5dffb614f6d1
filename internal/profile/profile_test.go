package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeProfile(t, `
name: Test Candidate
target_titles: ["Program Manager"]
target_locations: ["Kenya", "Ethiopia"]
skills: ["budget management", "donor compliance"]
experience_years: 5
prior_donors: ["USAID"]
sectors: ["humanitarian response"]
`)

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, p.ExperienceYears)
	assert.Equal(t, []string{"Kenya", "Ethiopia"}, p.TargetLocations)
	assert.Contains(t, p.SkillsText(), "budget management")
	assert.Contains(t, p.CorpusPhrases(), "Program Manager experience")
}

func TestLoadRejectsNegativeExperience(t *testing.T) {
	path := writeProfile(t, "experience_years: -1\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestEmptySetsAreLegal(t *testing.T) {
	p := &Profile{}
	require.NoError(t, p.Validate())
	assert.Empty(t, p.CorpusPhrases())
	assert.Empty(t, p.SkillsText())
}
