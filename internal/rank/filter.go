// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"strings"

	"github.com/brooondooon/ratatouille/pkg/types"
)

// dietaryConflicts maps a dietary restriction to ingredient substrings that
// disqualify a recipe. Matching is substring-based over the joined lowercase
// ingredient list, so "meat" also catches "meatballs".
var dietaryConflicts = map[string][]string{
	"vegetarian":  {"chicken", "beef", "pork", "fish", "meat"},
	"vegan":       {"chicken", "beef", "pork", "fish", "meat", "egg", "dairy", "milk", "cheese", "butter"},
	"gluten-free": {"flour", "wheat", "bread", "pasta"},
}

// minAfterFilter is the survivor count below which dietary filtering is
// considered to have over-filtered and is re-run without restrictions.
const minAfterFilter = 2

// filter applies the three pre-scoring passes in order: exclusion by URL,
// deduplication by URL keeping first-seen, then dietary filtering with the
// over-filtering fallback.
func (e *Engine) filter(candidates []types.Candidate, p Params) (kept []types.Candidate, relaxed bool, dupes int) {
	excluded := make(map[string]struct{}, len(p.ExcludedURLs))
	for _, u := range p.ExcludedURLs {
		excluded[u] = struct{}{}
	}

	seen := make(map[string]struct{}, len(candidates))
	pool := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, skip := excluded[c.URL]; skip {
			continue
		}
		if c.URL != "" {
			if _, dup := seen[c.URL]; dup {
				dupes++
				continue
			}
			seen[c.URL] = struct{}{}
		}
		pool = append(pool, c)
	}

	kept = applyDietary(pool, p.DietaryRestrictions)
	if len(kept) < minAfterFilter && len(p.DietaryRestrictions) > 0 && len(kept) < len(pool) {
		// Over-filtered: better to show something than nothing.
		return pool, true, dupes
	}
	return kept, false, dupes
}

func applyDietary(candidates []types.Candidate, restrictions []string) []types.Candidate {
	if len(restrictions) == 0 {
		return candidates
	}
	kept := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if conflictsDietary(c, restrictions) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func conflictsDietary(c types.Candidate, restrictions []string) bool {
	text := strings.ToLower(strings.Join(c.Ingredients, " "))
	for _, r := range restrictions {
		terms, ok := dietaryConflicts[strings.ToLower(strings.TrimSpace(r))]
		if !ok {
			// Unknown restrictions have no term list and filter nothing.
			continue
		}
		for _, term := range terms {
			if strings.Contains(text, term) {
				return true
			}
		}
	}
	return false
}
