// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import "strings"

// defaultStopWords are title tokens too generic to signal similarity.
var defaultStopWords = []string{
	"with", "and", "the", "in", "for", "to", "recipe",
	"easy", "simple", "best", "a", "an", "how", "make", "homemade",
}

const (
	defaultSelectCount      = 3
	defaultPoolFactor       = 2
	defaultSharedTokenLimit = 2
	defaultOverlapRatio     = 0.3
)

// selectDiverse picks up to SelectCount candidates from the top of the
// scored list, skipping near-duplicate titles. The walk is restricted to a
// pool of the top SelectCount*PoolFactor entries so a long tail of weak
// candidates cannot displace strong ones. When skipping leaves the selection
// short, the pool is replayed ignoring similarity.
func (e *Engine) selectDiverse(scored []ScoredCandidate) []ScoredCandidate {
	k := e.cfg.SelectCount
	if k <= 0 {
		k = defaultSelectCount
	}
	pf := e.cfg.PoolFactor
	if pf <= 0 {
		pf = defaultPoolFactor
	}

	pool := scored
	if len(pool) > k*pf {
		pool = pool[:k*pf]
	}
	if len(pool) <= k {
		out := make([]ScoredCandidate, len(pool))
		copy(out, pool)
		return out
	}

	// The top scorer is always kept.
	selected := make([]ScoredCandidate, 0, k)
	selected = append(selected, pool[0])
	picked := make([]bool, len(pool))
	picked[0] = true

	for i := 1; i < len(pool); i++ {
		if len(selected) >= k {
			break
		}
		cand := pool[i]
		if e.similarToAny(cand, selected) {
			continue
		}
		if hasNewTechnique(cand, selected) || len(selected) < k {
			selected = append(selected, cand)
			picked[i] = true
		}
	}

	// Backfill: a full selection beats a diverse but short one.
	if len(selected) < k {
		for i := range pool {
			if picked[i] {
				continue
			}
			selected = append(selected, pool[i])
			picked[i] = true
			if len(selected) >= k {
				break
			}
		}
	}
	return selected
}

func (e *Engine) similarToAny(cand ScoredCandidate, selected []ScoredCandidate) bool {
	candTokens := e.titleTokens(cand.Candidate.Title)
	for _, s := range selected {
		if e.tooSimilar(candTokens, e.titleTokens(s.Candidate.Title)) {
			return true
		}
	}
	return false
}

// titleTokens lowercases and splits a title, dropping stop words.
func (e *Engine) titleTokens(title string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(title)) {
		if _, skip := e.stop[tok]; skip {
			continue
		}
		tokens[tok] = struct{}{}
	}
	return tokens
}

// tooSimilar reports whether two token sets look like the same dish: either
// they share SharedTokenLimit meaningful tokens, or the overlap relative to
// the smaller set exceeds OverlapRatio.
func (e *Engine) tooSimilar(a, b map[string]struct{}) bool {
	limit := e.cfg.SharedTokenLimit
	if limit <= 0 {
		limit = defaultSharedTokenLimit
	}
	ratio := e.cfg.OverlapRatio
	if ratio <= 0 {
		ratio = defaultOverlapRatio
	}

	shared := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			shared++
		}
	}
	if shared >= limit {
		return true
	}

	if len(a) > 0 && len(b) > 0 {
		smaller := len(a)
		if len(b) < smaller {
			smaller = len(b)
		}
		if float64(shared)/float64(smaller) > ratio {
			return true
		}
	}
	return false
}

// hasNewTechnique reports whether the candidate brings a technique absent
// from everything selected so far.
func hasNewTechnique(cand ScoredCandidate, selected []ScoredCandidate) bool {
	seen := make(map[string]struct{})
	for _, s := range selected {
		for _, t := range s.Candidate.Techniques {
			seen[strings.ToLower(t)] = struct{}{}
		}
	}
	for _, t := range cand.Candidate.Techniques {
		if _, ok := seen[strings.ToLower(t)]; !ok {
			return true
		}
	}
	return false
}
