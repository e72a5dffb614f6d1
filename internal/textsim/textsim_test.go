package textsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarityIdenticalTexts(t *testing.T) {
	c := NewCorpus([]string{"budget management", "donor compliance", "project planning"})
	sim := c.Similarity("budget management and donor compliance", "budget management and donor compliance")
	assert.InDelta(t, 1.0, sim, 1e-9)
}

func TestSimilarityDisjointTexts(t *testing.T) {
	c := NewCorpus([]string{"budget management", "donor compliance"})
	sim := c.Similarity("budget management", "graphic design portfolio")
	assert.Equal(t, 0.0, sim)
}

func TestSimilarityPartialOverlap(t *testing.T) {
	c := NewCorpus([]string{"budget management", "donor compliance", "field coordination"})
	sim := c.Similarity("budget management donor compliance", "budget management field coordination")
	assert.Greater(t, sim, 0.0)
	assert.Less(t, sim, 1.0)
}

func TestOutOfVocabularyTermsIgnored(t *testing.T) {
	c := NewCorpus([]string{"budget management"})
	with := c.Similarity("budget management", "budget management")
	noisy := c.Similarity("budget management", "budget management quantum blockchain")
	assert.InDelta(t, with, noisy, 1e-9)
}

func TestZeroVectorYieldsZero(t *testing.T) {
	c := NewCorpus([]string{"budget management"})
	assert.Equal(t, 0.0, c.Similarity("", "budget management"))
	assert.Equal(t, 0.0, c.Similarity("unrelated words only", "budget management"))

	empty := NewCorpus(nil)
	assert.Equal(t, 0.0, empty.Similarity("budget", "budget"))
}

func TestDeterminism(t *testing.T) {
	phrases := []string{"budget management", "donor compliance", "monitoring evaluation"}
	a := "managing budgets and ensuring donor compliance in the field"
	b := "donor compliance monitoring"

	first := NewCorpus(phrases).Similarity(a, b)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, NewCorpus(phrases).Similarity(a, b))
	}
}

func TestStopWordsAndPunctuationStripped(t *testing.T) {
	c := NewCorpus([]string{"donor compliance"})
	sim := c.Similarity("the donor, and the compliance!", "donor compliance")
	assert.InDelta(t, 1.0, sim, 1e-9)
}
