package survey

import (
	"math/rand"

	"ai-survey-be/internal/constant"
)

// Selector implements the category coverage policy: early questions pin the
// priority categories, later ones diversify across whatever is left. It is a
// heuristic, not a guaranteed-coverage algorithm.
type Selector struct {
	rng *rand.Rand
}

// NewSelector takes the random source so the diversification branch stays
// testable.
func NewSelector(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// Next picks the category for the upcoming question given the number of
// questions already answered and the categories already covered.
func (s *Selector) Next(questionCount int, covered []string) string {
	coveredSet := make(map[string]bool, len(covered))
	for _, c := range covered {
		coveredSet[c] = true
	}

	if questionCount < 3 && !coveredSet[constant.CategoryDemographics] {
		return constant.CategoryDemographics
	}

	if questionCount < 6 && !coveredSet[constant.CategoryNeeds] {
		return constant.CategoryNeeds
	}

	var remaining []string
	for _, key := range constant.CategoryKeys() {
		if !coveredSet[key] {
			remaining = append(remaining, key)
		}
	}

	if len(remaining) > 0 {
		return remaining[s.rng.Intn(len(remaining))]
	}

	// Everything covered: fall back to the most valuable category.
	return constant.CategoryNeeds
}
