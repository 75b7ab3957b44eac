// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/brooondooon/ratatouille/internal/enrich"
	"github.com/brooondooon/ratatouille/internal/hunt"
	"github.com/brooondooon/ratatouille/internal/plan"
	"github.com/brooondooon/ratatouille/internal/rank"
	"github.com/brooondooon/ratatouille/pkg/types"
)

// QueryPlanner turns one request into search queries.
type QueryPlanner interface {
	Plan(ctx context.Context, req plan.Request) ([]string, error)
}

// RecipeHunter runs planned queries and parses results into candidates.
type RecipeHunter interface {
	Hunt(ctx context.Context, queries []string, w io.Writer) (hunt.Outcome, error)
}

// CardAnnotator fills reasoning and nutrition on cards in place.
type CardAnnotator interface {
	Annotate(ctx context.Context, cards []types.Card, byURL map[string]types.Candidate, goal string, skill types.SkillLevel, w io.Writer) (enrich.Outcome, error)
}

// SearchExtractor implements Extractor with a query planner and a web
// searcher. Planner failures downgrade the pass to zero candidates with a
// warning so the decision stage can spend the retry budget on a broadened
// pass; hunter errors are infrastructure faults and propagate.
type SearchExtractor struct {
	Planner QueryPlanner
	Hunter  RecipeHunter
	Log     io.Writer
}

func (e *SearchExtractor) Extract(ctx context.Context, st *State) error {
	w := e.Log
	if w == nil {
		w = io.Discard
	}

	queries, err := e.Planner.Plan(ctx, plan.Request{
		Goal:     st.LearningGoal,
		Skill:    st.SkillLevel,
		Dietary:  st.DietaryRestrictions,
		Strategy: st.Strategy,
	})
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		st.Warn("query planning failed: %v", err)
		fmt.Fprintf(w, "warning: query planning failed: %v\n", err)
		st.Queries = nil
		st.Candidates = nil
		return nil
	}
	st.LLMCalls++
	st.Queries = queries
	fmt.Fprintf(w, "planned %d queries\n", len(queries))

	out, err := e.Hunter.Hunt(ctx, queries, w)
	if err != nil {
		return err
	}
	st.Candidates = out.Candidates
	st.SearchCalls += out.SearchCalls
	st.LLMCalls += out.LLMCalls
	st.Warnings = append(st.Warnings, out.Warnings...)
	return nil
}

// EngineRanker implements Ranker with the deterministic selection engine.
type EngineRanker struct {
	Engine *rank.Engine

	// Now anchors recency scoring. Nil uses the wall clock.
	Now func() time.Time
}

func (r *EngineRanker) Rank(_ context.Context, st *State) error {
	var now time.Time
	if r.Now != nil {
		now = r.Now()
	}

	sel := r.Engine.Select(st.Candidates, rank.Params{
		LearningGoal:        st.LearningGoal,
		SkillLevel:          st.SkillLevel,
		DietaryRestrictions: st.DietaryRestrictions,
		ExcludedURLs:        st.ExcludedURLs,
		Now:                 now,
	})

	st.Scored = sel.Scored
	st.Cards = sel.Cards()
	st.Comparison = sel.Comparison
	if sel.RelaxedDietary {
		st.Warn("dietary filters removed too many recipes, relaxed for this run")
	}
	return nil
}

// CardEnricher implements Enricher by delegating to an annotator with the
// full candidate records in reach.
type CardEnricher struct {
	Annotator CardAnnotator
	Log       io.Writer
}

func (e *CardEnricher) Enrich(ctx context.Context, st *State) error {
	byURL := make(map[string]types.Candidate, len(st.Candidates))
	for _, c := range st.Candidates {
		if _, ok := byURL[c.URL]; !ok {
			byURL[c.URL] = c
		}
	}

	out, err := e.Annotator.Annotate(ctx, st.Cards, byURL, st.LearningGoal, st.SkillLevel, e.Log)
	st.LLMCalls += out.LLMCalls
	st.Warnings = append(st.Warnings, out.Warnings...)
	return err
}
