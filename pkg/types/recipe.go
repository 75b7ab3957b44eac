// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the ratatouille pipeline.
// Implements: prd003-recipe-hunt (Candidate, R2.1-R2.4);
//
//	prd004-ranking (Card, Comparison, R1.2, R3.1-R3.3);
//	prd006-enrichment (Nutrition, R2.2);
//	prd001-intake (SkillLevel, Intent, R1.1);
//	prd007-http-api (Result, RunMetadata, R4.2).
package types

import (
	"fmt"
	"strings"
)

// SkillLevel describes a cook's self-reported experience. The same scale is
// used for recipe difficulty as reported by extraction, where values outside
// the known set are preserved and handled by the scorer.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// ParseSkillLevel validates a user-supplied skill level string.
func ParseSkillLevel(s string) (SkillLevel, error) {
	switch SkillLevel(strings.ToLower(strings.TrimSpace(s))) {
	case SkillBeginner:
		return SkillBeginner, nil
	case SkillIntermediate:
		return SkillIntermediate, nil
	case SkillAdvanced:
		return SkillAdvanced, nil
	}
	return "", fmt.Errorf("unknown skill level %q (want beginner, intermediate, or advanced)", s)
}

// NormalizeSkillLevel maps arbitrary text onto the skill scale, defaulting to
// intermediate. Used at the language-understanding boundary where model output
// cannot be rejected outright.
func NormalizeSkillLevel(s string) SkillLevel {
	if lvl, err := ParseSkillLevel(s); err == nil {
		return lvl
	}
	return SkillIntermediate
}

// SearchStrategy selects the query-planning posture for an extraction pass.
type SearchStrategy string

const (
	// StrategyInitial plans queries narrowly targeted at the learning goal.
	StrategyInitial SearchStrategy = "initial"

	// StrategyBroadened relaxes the queries after a thin first pass.
	StrategyBroadened SearchStrategy = "broadened"
)

// Candidate is one recipe pulled from the web, normalized to flat fields at
// the extraction boundary. Per prd003-recipe-hunt R2.2 every list field holds
// plain strings only; records failing that schema never become Candidates.
type Candidate struct {
	// Title is the recipe title as extracted from the page snippet.
	Title string `json:"title" yaml:"title"`

	// URL is the canonical recipe URL and the candidate's identity for
	// deduplication and exclusion filtering.
	URL string `json:"url" yaml:"url"`

	// Source is a human-readable publication label (e.g. "Serious Eats").
	Source string `json:"source" yaml:"source"`

	// Author is the recipe author, "Unknown" when the source omits it.
	Author string `json:"author" yaml:"author"`

	// PublishedDate is the raw publication date string from the search
	// result, "Unknown" when absent. The scorer extracts a year from it.
	PublishedDate string `json:"published_date" yaml:"published_date"`

	// Difficulty is the extracted difficulty, lowercased. Expected values
	// follow the SkillLevel scale but anything else is carried as-is.
	Difficulty string `json:"difficulty" yaml:"difficulty"`

	// Techniques lists the cooking techniques the recipe exercises.
	Techniques []string `json:"techniques" yaml:"techniques"`

	// Ingredients lists the main ingredients, lowercase preferred.
	Ingredients []string `json:"ingredients" yaml:"ingredients"`

	// Instructions summarizes the key preparation steps.
	Instructions []string `json:"instructions" yaml:"instructions"`

	// TimeEstimate is a rough total time, e.g. "45 minutes".
	TimeEstimate string `json:"time_estimate" yaml:"time_estimate"`

	// SearchScore is the search provider's relevance score in [0,1].
	// Defaults to 0.5 when the provider does not report one.
	SearchScore float64 `json:"search_score" yaml:"search_score"`
}

// RecipeSummary is the card-facing projection of a Candidate.
type RecipeSummary struct {
	Title         string `json:"title" yaml:"title"`
	URL           string `json:"url" yaml:"url"`
	Source        string `json:"source" yaml:"source"`
	Author        string `json:"author" yaml:"author"`
	PublishedDate string `json:"published_date" yaml:"published_date"`
	Difficulty    string `json:"difficulty" yaml:"difficulty"`
	TimeEstimate  string `json:"time_estimate" yaml:"time_estimate"`
}

// Card is one presented recommendation: a selected candidate plus the
// annotations layered on by enrichment.
type Card struct {
	// Recipe identifies the underlying candidate.
	Recipe RecipeSummary `json:"recipe" yaml:"recipe"`

	// Reasoning explains why this recipe fits the learning goal. Always
	// non-empty after enrichment; a canned sentence stands in when the
	// model call fails.
	Reasoning string `json:"reasoning" yaml:"reasoning"`

	// TechniqueHighlights is a deterministic subset (at most three) of the
	// candidate's techniques, chosen at ranking time.
	TechniqueHighlights []string `json:"technique_highlights" yaml:"technique_highlights"`

	// Score is the candidate's total ranking score.
	Score float64 `json:"score" yaml:"score"`

	// Nutrition holds estimated nutrition facts when enrichment ran.
	Nutrition *Nutrition `json:"nutrition,omitempty" yaml:"nutrition,omitempty"`
}

// Comparison contrasts the two leading cards of a selection.
type Comparison struct {
	// FirstFocus and SecondFocus name what each leading recipe emphasizes.
	// Both hold "N/A" when fewer than two cards were selected.
	FirstFocus  string `json:"recipe_1_focus" yaml:"recipe_1_focus"`
	SecondFocus string `json:"recipe_2_focus" yaml:"recipe_2_focus"`

	// SharedTechniques lists techniques highlighted by both leading cards,
	// at most three, in first-card order. Empty, never nil, when absent.
	SharedTechniques []string `json:"shared_techniques" yaml:"shared_techniques"`
}

// ComparisonUnavailable is the sentinel comparison for selections with fewer
// than two cards.
func ComparisonUnavailable() Comparison {
	return Comparison{FirstFocus: "N/A", SecondFocus: "N/A", SharedTechniques: []string{}}
}

// Nutrition holds model-estimated nutrition facts for one recipe.
// All figures are per serving and approximate.
type Nutrition struct {
	Calories   float64 `json:"calories,omitempty" yaml:"calories,omitempty"`
	ProteinG   float64 `json:"protein_g,omitempty" yaml:"protein_g,omitempty"`
	CarbsG     float64 `json:"carbs_g,omitempty" yaml:"carbs_g,omitempty"`
	FatG       float64 `json:"fat_g,omitempty" yaml:"fat_g,omitempty"`
	FiberG     float64 `json:"fiber_g,omitempty" yaml:"fiber_g,omitempty"`
	SodiumMG   float64 `json:"sodium_mg,omitempty" yaml:"sodium_mg,omitempty"`
	Servings   int     `json:"servings,omitempty" yaml:"servings,omitempty"`
	Disclaimer string  `json:"disclaimer" yaml:"disclaimer"`
}

// NutritionUnavailable is the degraded-mode placeholder used when estimation
// fails. Per prd006-enrichment R2.4 enrichment failures never abort a run.
// Servings keeps the standard 4-portion assumption so clients can still
// render a serving line.
func NutritionUnavailable() *Nutrition {
	return &Nutrition{Servings: 4, Disclaimer: "Nutrition data unavailable"}
}

// Intent is the structured reading of a free-form chat message.
type Intent struct {
	// LearningGoal is the technique or dish the user wants to learn.
	LearningGoal string `json:"learning_goal" yaml:"learning_goal"`

	// SkillLevel is the inferred skill, intermediate when unstated.
	SkillLevel SkillLevel `json:"skill_level" yaml:"skill_level"`

	// DietaryRestrictions lists inferred dietary constraints.
	DietaryRestrictions []string `json:"dietary_restrictions" yaml:"dietary_restrictions"`

	// Constraints lists other stated constraints (time, equipment).
	Constraints []string `json:"constraints" yaml:"constraints"`
}

// RunMetadata summarizes one pipeline run for callers.
type RunMetadata struct {
	// RunID is a ULID assigned when the run starts.
	RunID string `json:"run_id" yaml:"run_id"`

	// SearchCalls counts search API requests made during the run.
	SearchCalls int `json:"search_calls" yaml:"search_calls"`

	// LLMCalls counts model invocations made during the run.
	LLMCalls int `json:"llm_calls" yaml:"llm_calls"`

	// RetryCount is the number of broadened extraction passes taken.
	RetryCount int `json:"retry_count" yaml:"retry_count"`

	// ProcessingTimeMS is wall-clock run duration in milliseconds.
	ProcessingTimeMS int64 `json:"processing_time_ms" yaml:"processing_time_ms"`

	// Warnings carries non-fatal degradations accumulated during the run.
	Warnings []string `json:"warnings" yaml:"warnings"`
}

// Result is the complete outcome of one recommendation run.
type Result struct {
	Recipes    []Card      `json:"recipes" yaml:"recipes"`
	Comparison Comparison  `json:"comparison" yaml:"comparison"`
	Metadata   RunMetadata `json:"metadata" yaml:"metadata"`
}
