package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidhunter-engine/internal/domain"
	"aidhunter-engine/internal/profile"
)

func defaultWeights() Weights {
	return Weights{Title: 0.30, Location: 0.20, Skills: 0.25, Experience: 0.15, Donor: 0.10}
}

func testProfile() *profile.Profile {
	return &profile.Profile{
		Name:            "Test Candidate",
		TargetTitles:    []string{"Program Manager"},
		TargetLocations: []string{"Kenya"},
		Skills:          []string{"budget management", "donor compliance"},
		ExperienceYears: 5,
		PriorDonors:     []string{"USAID"},
	}
}

func testScorer() *Scorer {
	return New(testProfile(), defaultWeights(),
		WithLocationScores(map[string]float64{"remote": 0.7, "global": 0.6}),
		WithExperienceTolerance(5),
	)
}

func TestHighMatchScenario(t *testing.T) {
	s := testScorer()
	job := domain.JobRecord{
		Title:        "Senior Program Manager",
		Organization: "Save the Children",
		Location:     "Nairobi, Kenya",
		Description:  "Lead the country program with strong budget management and donor compliance responsibilities.",
		DonorTags:    []string{"USAID"},
	}

	total, breakdown, diags := s.Score(job)

	require.Empty(t, diags)
	assert.GreaterOrEqual(t, total, 70)
	require.Len(t, breakdown, 5)
	for name, f := range breakdown {
		assert.Greater(t, f.Raw, 0.0, "factor %s", name)
	}
	assert.Equal(t, BucketHigh, Classify(total, Thresholds{High: 70, Good: 50}))
}

func TestUnrelatedJobIsSkipped(t *testing.T) {
	s := testScorer()
	job := domain.JobRecord{
		Title:        "Graphic Designer",
		Organization: "Design Studio",
		Location:     "Berlin",
		Description:  "Create visual identities, illustrations and brand assets for clients.",
	}

	total, _, _ := s.Score(job)

	assert.Less(t, total, 50)
	assert.Equal(t, BucketSkipped, Classify(total, Thresholds{High: 70, Good: 50}))
}

func TestScoreBoundsAndBreakdownSum(t *testing.T) {
	s := testScorer()
	jobs := []domain.JobRecord{
		{Title: "Program Manager", Location: "Kenya", Description: "budget management donor compliance", DonorTags: []string{"USAID"}},
		{Title: "Driver", Location: "Mars"},
		{},
		{Title: "Program Officer", Location: "remote", Description: "8+ years of experience required"},
	}

	for _, job := range jobs {
		total, breakdown, _ := s.Score(job)
		require.GreaterOrEqual(t, total, 0)
		require.LessOrEqual(t, total, 100)
		require.Len(t, breakdown, 5)

		sum := 0.0
		for _, f := range breakdown {
			sum += f.Weighted
		}
		assert.InDelta(t, float64(total), sum, 0.5, "weighted contributions must sum to total within rounding")
	}
}

func TestScoreDeterminism(t *testing.T) {
	job := domain.JobRecord{
		Title:       "Program Manager",
		Location:    "Nairobi, Kenya",
		Description: "budget management and donor compliance, 4 years experience",
		DonorTags:   []string{"USAID"},
	}

	first, firstBreakdown, _ := testScorer().Score(job)
	for i := 0; i < 5; i++ {
		total, breakdown, _ := testScorer().Score(job)
		require.Equal(t, first, total)
		require.Equal(t, firstBreakdown, breakdown)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	th := Thresholds{High: 70, Good: 50}
	assert.Equal(t, BucketHigh, Classify(70, th))
	assert.Equal(t, BucketGood, Classify(69, th))
	assert.Equal(t, BucketGood, Classify(50, th))
	assert.Equal(t, BucketSkipped, Classify(49, th))
}

func TestMalformedRecordDegradesNotFails(t *testing.T) {
	s := testScorer()
	total, breakdown, diags := s.Score(domain.JobRecord{Location: "Kenya"})

	assert.Len(t, diags, 2) // missing title, missing description
	assert.Equal(t, 0.0, breakdown[domain.FactorTitle].Raw)
	assert.Equal(t, 0.0, breakdown[domain.FactorSkills].Raw)
	// location still matches, experience defaults to fit
	assert.Equal(t, 1.0, breakdown[domain.FactorLocation].Raw)
	assert.Equal(t, 1.0, breakdown[domain.FactorExperience].Raw)
	assert.Equal(t, 35, total)
}

func TestTitleMatchGradations(t *testing.T) {
	s := testScorer()

	exact, _, _ := s.Score(domain.JobRecord{Title: "Program Manager"})
	reordered, _, _ := s.Score(domain.JobRecord{Title: "Manager, Health Program"})
	partial, _, _ := s.Score(domain.JobRecord{Title: "Program Officer"})
	none, _, _ := s.Score(domain.JobRecord{Title: "Accountant"})

	assert.Greater(t, exact, reordered)
	assert.Greater(t, reordered, partial)
	assert.Greater(t, partial, none)
}

func TestExperienceFitDecay(t *testing.T) {
	s := testScorer() // 5 years experience, tolerance 5

	within, _, _ := s.Score(domain.JobRecord{Title: "x", Description: "requires 3 years of experience"})
	over, _, _ := s.Score(domain.JobRecord{Title: "x", Description: "requires 7 years of experience"})
	far, _, _ := s.Score(domain.JobRecord{Title: "x", Description: "requires 15 years of experience"})

	assert.Greater(t, within, over)
	assert.Greater(t, over, far)
}

func TestEmptyProfileDegradesToZeroNotError(t *testing.T) {
	s := New(&profile.Profile{}, defaultWeights())
	total, breakdown, _ := s.Score(domain.JobRecord{
		Title:       "Program Manager",
		Location:    "Kenya",
		Description: "budget management",
		DonorTags:   []string{"USAID"},
	})

	assert.Equal(t, 0.0, breakdown[domain.FactorTitle].Raw)
	assert.Equal(t, 0.0, breakdown[domain.FactorSkills].Raw)
	assert.Equal(t, 0.0, breakdown[domain.FactorDonor].Raw)
	// only experience (no requirement stated) contributes
	assert.Equal(t, 15, total)
}
