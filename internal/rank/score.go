// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/brooondooon/ratatouille/pkg/types"
)

// techniqueKeywords maps known learning goals to the canonical techniques
// worth finding in a candidate. Goals outside this map fall back to matching
// the goal's own words.
var techniqueKeywords = map[string][]string{
	"pan sauces":   {"deglazing", "emulsification", "reduction", "mounting butter"},
	"bread baking": {"kneading", "proofing", "scoring", "fermentation"},
	"knife skills": {"julienne", "brunoise", "chiffonade", "dicing"},
	"roasting":     {"searing", "basting", "temperature control", "resting"},
	"pasta":        {"dough making", "rolling", "shaping", "sauce pairing"},
}

// skillAffinity scores a recipe difficulty against a cook's skill level.
// Rows are user skill, columns recipe difficulty. A slight stretch
// (intermediate cook, advanced recipe) scores well; a large gap in either
// direction is penalized.
var skillAffinity = map[types.SkillLevel]map[string]float64{
	types.SkillBeginner:     {"beginner": 25, "intermediate": 8, "advanced": -10},
	types.SkillIntermediate: {"beginner": 3, "intermediate": 25, "advanced": 12},
	types.SkillAdvanced:     {"beginner": -10, "intermediate": 8, "advanced": 25},
}

const (
	learningPerMatch = 10
	learningCap      = 30
	affinityDefault  = 10
	recencyDefault   = 10
	sourceWeight     = 15
)

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// Breakdown records each scoring term alongside the total. Terms are capped
// individually; the total is their plain sum.
type Breakdown struct {
	// LearningValue rewards techniques relevant to the goal, 0..30.
	LearningValue float64 `json:"learning_value" yaml:"learning_value"`

	// SkillMatch scores difficulty fit, -10..25.
	SkillMatch float64 `json:"skill_match" yaml:"skill_match"`

	// Recency rewards recent publication, 5..20.
	Recency float64 `json:"recency" yaml:"recency"`

	// SourceRelevance is the provider relevance score scaled to 0..15.
	SourceRelevance float64 `json:"source_relevance" yaml:"source_relevance"`

	// TagVariety rewards technique breadth, 0..10.
	TagVariety float64 `json:"tag_variety" yaml:"tag_variety"`

	// Total is the sum of all terms.
	Total float64 `json:"total" yaml:"total"`
}

func scoreCandidate(c types.Candidate, p Params) Breakdown {
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	b := Breakdown{
		LearningValue:   learningValue(p.LearningGoal, c.Techniques),
		SkillMatch:      skillMatch(p.SkillLevel, c.Difficulty),
		Recency:         recencyScore(c.PublishedDate, now),
		SourceRelevance: sourceRelevance(c.SearchScore),
		TagVariety:      tagVariety(len(c.Techniques)),
	}
	b.Total = b.LearningValue + b.SkillMatch + b.Recency + b.SourceRelevance + b.TagVariety
	return b
}

// learningValue counts goal keywords found among the candidate's techniques,
// worth learningPerMatch each up to learningCap. A keyword matches when it is
// a substring of any technique, so "kneading" matches "hand kneading".
func learningValue(goal string, techniques []string) float64 {
	goalLower := strings.ToLower(strings.TrimSpace(goal))
	keywords, ok := techniqueKeywords[goalLower]
	if !ok {
		keywords = strings.Fields(goalLower)
	}

	matches := 0
	for _, kw := range keywords {
		for _, tech := range techniques {
			if strings.Contains(strings.ToLower(tech), kw) {
				matches++
				break
			}
		}
	}

	score := float64(matches * learningPerMatch)
	if score > learningCap {
		return learningCap
	}
	return score
}

// skillMatch looks up the affinity matrix. Unrecognized difficulty or skill
// falls back to a neutral default rather than failing the candidate.
func skillMatch(skill types.SkillLevel, difficulty string) float64 {
	row, ok := skillAffinity[skill]
	if !ok {
		return affinityDefault
	}
	score, ok := row[strings.ToLower(strings.TrimSpace(difficulty))]
	if !ok {
		return affinityDefault
	}
	return score
}

// recencyScore rewards publication years close to now. Dates with no
// parseable four-digit year score the neutral default.
func recencyScore(published string, now time.Time) float64 {
	match := yearPattern.FindString(published)
	if match == "" {
		return recencyDefault
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return recencyDefault
	}

	switch delta := now.Year() - year; {
	case delta <= 1:
		return 20
	case delta == 2:
		return 15
	case delta == 3:
		return 10
	default:
		return 5
	}
}

// sourceRelevance scales the provider's relevance score to sourceWeight.
// Out-of-range or NaN input substitutes the documented 0.5 default so the
// total stays finite.
func sourceRelevance(score float64) float64 {
	if math.IsNaN(score) || score < 0 || score > 1 {
		score = 0.5
	}
	return score * sourceWeight
}

func tagVariety(techniqueCount int) float64 {
	switch {
	case techniqueCount >= 3:
		return 10
	case techniqueCount == 2:
		return 5
	default:
		return 0
	}
}
