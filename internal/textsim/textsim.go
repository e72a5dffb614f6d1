// Package textsim provides TF-IDF cosine similarity over a fixed phrase
// corpus. Given the same corpus and inputs the output is bit-identical:
// there is no randomness and no external state.
package textsim

import (
	"math"
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "in": {},
	"is": {}, "it": {}, "its": {}, "of": {}, "on": {}, "or": {}, "that": {},
	"the": {}, "to": {}, "was": {}, "were": {}, "will": {}, "with": {},
}

// Corpus is a TF-IDF vector space built from a set of phrases. Terms outside
// the corpus vocabulary carry zero weight and are ignored, not scored.
type Corpus struct {
	idf map[string]float64
}

// NewCorpus builds the vocabulary and IDF weights, treating each phrase as
// one document. An empty phrase list yields an empty vocabulary; every
// similarity against it is 0.
func NewCorpus(phrases []string) *Corpus {
	df := make(map[string]int)
	docs := 0
	for _, phrase := range phrases {
		terms := tokenize(phrase)
		if len(terms) == 0 {
			continue
		}
		docs++
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	idf := make(map[string]float64, len(df))
	for term, n := range df {
		// smoothed IDF, always positive so single-document corpora
		// still produce usable weights
		idf[term] = math.Log(float64(1+docs)/float64(1+n)) + 1
	}
	return &Corpus{idf: idf}
}

// Similarity returns the cosine similarity of two texts in the corpus vector
// space, in [0,1]. A zero-magnitude vector on either side yields 0.
func (c *Corpus) Similarity(a, b string) float64 {
	va := c.vector(a)
	vb := c.vector(b)
	if len(va) == 0 || len(vb) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for term, wa := range va {
		magA += wa * wa
		if wb, ok := vb[term]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range vb {
		magB += wb * wb
	}
	if magA == 0 || magB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	// guard against float drift past the bounds
	return math.Min(1, math.Max(0, sim))
}

func (c *Corpus) vector(text string) map[string]float64 {
	tf := make(map[string]int)
	for _, term := range tokenize(text) {
		if _, ok := c.idf[term]; !ok {
			continue
		}
		tf[term]++
	}
	if len(tf) == 0 {
		return nil
	}
	vec := make(map[string]float64, len(tf))
	for term, n := range tf {
		vec[term] = float64(n) * c.idf[term]
	}
	return vec
}

// tokenize lowercases, splits on word boundaries, strips punctuation and
// drops stop words.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}
