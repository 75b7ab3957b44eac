// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline implements the staged recommendation pipeline: an explicit
// finite-state machine that drives extraction, a bounded retry decision,
// ranking, and enrichment over a shared run state.
//
// Implements: prd005-pipeline-core (R1.1-R1.5, R2.1-R2.3).
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/brooondooon/ratatouille/internal/rank"
	"github.com/brooondooon/ratatouille/pkg/types"
)

// State is the single shared record one run reads and writes. It is owned by
// exactly one goroutine for the duration of a run; concurrent runs each get
// their own State.
type State struct {
	// Inputs, fixed at construction.
	LearningGoal        string
	SkillLevel          types.SkillLevel
	DietaryRestrictions []string
	ExcludedURLs        []string

	// Retry bookkeeping, written only by the decision stage.
	Strategy   types.SearchStrategy
	RetryCount int

	// Extraction output. Each pass replaces both fields.
	Queries    []string
	Candidates []types.Candidate

	// Ranking output.
	Scored     []rank.ScoredCandidate
	Cards      []types.Card
	Comparison types.Comparison

	// Accounting.
	SearchCalls int
	LLMCalls    int
	Warnings    []string
	StartedAt   time.Time
}

// NewState builds the initial state for a run. Strategy starts at initial;
// the decision stage is the only writer that moves it to broadened.
func NewState(goal string, skill types.SkillLevel, dietary, excluded []string) *State {
	return &State{
		LearningGoal:        strings.TrimSpace(goal),
		SkillLevel:          skill,
		DietaryRestrictions: dietary,
		ExcludedURLs:        excluded,
		Strategy:            types.StrategyInitial,
		StartedAt:           time.Now(),
	}
}

// Warn appends a formatted entry to the run's warning log.
func (s *State) Warn(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// Metadata summarizes the run for callers. Warnings is never nil so the
// serialized form is always a list.
func (s *State) Metadata(runID string) types.RunMetadata {
	warnings := s.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return types.RunMetadata{
		RunID:            runID,
		SearchCalls:      s.SearchCalls,
		LLMCalls:         s.LLMCalls,
		RetryCount:       s.RetryCount,
		ProcessingTimeMS: time.Since(s.StartedAt).Milliseconds(),
		Warnings:         warnings,
	}
}
