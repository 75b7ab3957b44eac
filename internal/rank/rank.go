// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank filters, scores, and selects recipe candidates. The engine is
// deterministic: no network, no clock reads, no randomness. Callers supply
// the reference time for recency scoring.
//
// Implements: prd004-ranking (R1.1-R1.4, R2.1-R2.6, R3.1-R3.3).
package rank

import (
	"sort"
	"strings"
	"time"

	"github.com/brooondooon/ratatouille/pkg/types"
)

// Params carries the per-run user inputs the engine ranks against.
type Params struct {
	// LearningGoal is the technique or dish the user wants to learn.
	LearningGoal string

	// SkillLevel is the user's skill level.
	SkillLevel types.SkillLevel

	// DietaryRestrictions are dietary filters applied before scoring.
	DietaryRestrictions []string

	// ExcludedURLs are recipe URLs the user has already seen or rejected.
	ExcludedURLs []string

	// Now anchors recency scoring. The zero value falls back to the wall
	// clock.
	Now time.Time
}

// ScoredCandidate pairs a candidate with its score breakdown.
type ScoredCandidate struct {
	Candidate types.Candidate `json:"candidate" yaml:"candidate"`
	Breakdown Breakdown       `json:"breakdown" yaml:"breakdown"`
}

// Selection is the complete output of one ranking pass.
type Selection struct {
	// Scored holds every filter survivor ordered by descending total
	// score. Ties keep arrival order.
	Scored []ScoredCandidate

	// Picks is the diversity-filtered selection, at most SelectCount.
	Picks []ScoredCandidate

	// Comparison contrasts the two leading picks, or holds the "N/A"
	// sentinel when there are fewer than two.
	Comparison types.Comparison

	// RelaxedDietary is true when dietary filtering left too few
	// candidates and was re-run without restrictions.
	RelaxedDietary bool

	// DuplicatesDropped counts candidates removed by URL deduplication.
	DuplicatesDropped int
}

// Engine ranks candidates under a fixed threshold configuration.
type Engine struct {
	cfg  types.RankingConfig
	stop map[string]struct{}
}

// NewEngine builds an engine. Zero-valued thresholds in cfg fall back to the
// package defaults at the point of use.
func NewEngine(cfg types.RankingConfig) *Engine {
	words := cfg.StopWords
	if len(words) == 0 {
		words = defaultStopWords
	}
	stop := make(map[string]struct{}, len(words))
	for _, w := range words {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Engine{cfg: cfg, stop: stop}
}

// Select runs the full ranking pass: exclusion and dietary filtering, scoring,
// a stable sort by total score, and diversity selection. An empty Picks slice
// means no candidate survived; the caller decides how to surface that.
func (e *Engine) Select(candidates []types.Candidate, p Params) Selection {
	kept, relaxed, dupes := e.filter(candidates, p)

	scored := make([]ScoredCandidate, len(kept))
	for i, c := range kept {
		scored[i] = ScoredCandidate{Candidate: c, Breakdown: scoreCandidate(c, p)}
	}

	// Stable keeps arrival order for equal totals, which keeps reruns over
	// the same candidate set reproducible.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Breakdown.Total > scored[j].Breakdown.Total
	})

	picks := e.selectDiverse(scored)
	return Selection{
		Scored:            scored,
		Picks:             picks,
		Comparison:        compare(picks),
		RelaxedDietary:    relaxed,
		DuplicatesDropped: dupes,
	}
}

// highlightCount is the most techniques a card surfaces.
const highlightCount = 3

// highlights returns the leading techniques of a candidate, at most
// highlightCount, in candidate order.
func highlights(c types.Candidate) []string {
	n := len(c.Techniques)
	if n > highlightCount {
		n = highlightCount
	}
	hs := make([]string, n)
	copy(hs, c.Techniques[:n])
	return hs
}

// compare contrasts the two leading picks by intersecting their technique
// highlights. Fewer than two picks yields the "N/A" sentinel.
func compare(picks []ScoredCandidate) types.Comparison {
	if len(picks) < 2 {
		return types.ComparisonUnavailable()
	}

	second := make(map[string]struct{})
	for _, t := range highlights(picks[1].Candidate) {
		second[strings.ToLower(t)] = struct{}{}
	}

	shared := []string{}
	for _, t := range highlights(picks[0].Candidate) {
		if _, ok := second[strings.ToLower(t)]; ok {
			shared = append(shared, t)
		}
	}

	return types.Comparison{
		FirstFocus:       picks[0].Candidate.Title,
		SecondFocus:      picks[1].Candidate.Title,
		SharedTechniques: shared,
	}
}

// Cards projects the picks into presentation cards. Reasoning and nutrition
// are layered on later by enrichment.
func (s Selection) Cards() []types.Card {
	cards := make([]types.Card, 0, len(s.Picks))
	for _, p := range s.Picks {
		cards = append(cards, types.Card{
			Recipe: types.RecipeSummary{
				Title:         p.Candidate.Title,
				URL:           p.Candidate.URL,
				Source:        p.Candidate.Source,
				Author:        p.Candidate.Author,
				PublishedDate: p.Candidate.PublishedDate,
				Difficulty:    p.Candidate.Difficulty,
				TimeEstimate:  p.Candidate.TimeEstimate,
			},
			TechniqueHighlights: highlights(p.Candidate),
			Score:               p.Breakdown.Total,
		})
	}
	return cards
}
