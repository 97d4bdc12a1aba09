// Package suggest finds "did you mean" corrections for misspelled
// keywords and identifiers, for use as diagnostic fix-it hints.
//
// Grounded on the teacher's FuzzyMatcher (internal/semantic/fuzzy_matcher.go),
// trimmed to the one algorithm it actually needs (Jaro-Winkler, the
// best fit for short, keyboard-typo-distance keyword spellings) and
// repurposed from semantic term matching to lexical nearest-keyword
// lookup.
package suggest

import "github.com/hbollon/go-edlib"

// DefaultThreshold is the minimum similarity score (0-1) at which a
// candidate is considered a plausible correction rather than noise.
const DefaultThreshold = 0.80

// Matcher finds the closest match to a misspelled word among a fixed set
// of candidates, using Jaro-Winkler similarity.
type Matcher struct {
	threshold  float64
	candidates []string
}

// NewMatcher creates a Matcher over candidates (e.g. the keyword table's
// spellings) using threshold as the minimum acceptable similarity.
func NewMatcher(candidates []string, threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold, candidates: candidates}
}

// Closest returns the candidate most similar to word and its score, or
// ("", 0, false) if nothing clears the threshold.
func (m *Matcher) Closest(word string) (string, float64, bool) {
	best := ""
	bestScore := 0.0

	for _, c := range m.candidates {
		if c == word {
			continue
		}
		score := similarity(word, c)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}

	if bestScore < m.threshold {
		return "", 0, false
	}
	return best, bestScore, true
}

func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return float64(score)
}
