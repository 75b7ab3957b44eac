// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/brooondooon/ratatouille/pkg/types"
)

// scriptedExtractor returns a fixed candidate set per pass and records what
// the decision stage asked for.
type scriptedExtractor struct {
	perPass     [][]types.Candidate
	passes      int
	strategies  []types.SearchStrategy
	retryCounts []int
	err         error
}

func (s *scriptedExtractor) Extract(_ context.Context, st *State) error {
	if s.err != nil {
		return s.err
	}
	s.strategies = append(s.strategies, st.Strategy)
	s.retryCounts = append(s.retryCounts, st.RetryCount)

	var cands []types.Candidate
	if s.passes < len(s.perPass) {
		cands = s.perPass[s.passes]
	}
	s.passes++

	st.Queries = []string{"stub query"}
	st.Candidates = cands
	st.SearchCalls++
	return nil
}

type recordingRanker struct {
	calls int
	cards []types.Card
	err   error
}

func (r *recordingRanker) Rank(_ context.Context, st *State) error {
	if r.err != nil {
		return r.err
	}
	r.calls++
	st.Cards = r.cards
	st.Comparison = types.ComparisonUnavailable()
	return nil
}

type recordingEnricher struct {
	calls int
	err   error
}

func (e *recordingEnricher) Enrich(_ context.Context, st *State) error {
	if e.err != nil {
		return e.err
	}
	e.calls++
	for i := range st.Cards {
		st.Cards[i].Reasoning = "stub reasoning"
	}
	return nil
}

func cands(n int) []types.Candidate {
	out := make([]types.Candidate, n)
	for i := range out {
		out[i] = types.Candidate{
			Title: fmt.Sprintf("Recipe %d", i),
			URL:   fmt.Sprintf("https://example.com/%d", i),
		}
	}
	return out
}

func TestRunExhaustsRetryBudgetOnThinResults(t *testing.T) {
	ex := &scriptedExtractor{} // every pass returns zero candidates
	rk := &recordingRanker{}
	en := &recordingEnricher{}
	o := &Orchestrator{Extractor: ex, Ranker: rk, Enricher: en}

	st := NewState("pan sauces", types.SkillBeginner, nil, nil)
	if err := o.Run(context.Background(), st); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if ex.passes != DefaultMaxRetries+1 {
		t.Errorf("extraction ran %d times, want %d", ex.passes, DefaultMaxRetries+1)
	}
	if st.RetryCount != DefaultMaxRetries {
		t.Errorf("RetryCount = %d, want %d", st.RetryCount, DefaultMaxRetries)
	}

	wantStrategies := []types.SearchStrategy{types.StrategyInitial, types.StrategyBroadened, types.StrategyBroadened}
	for i, want := range wantStrategies {
		if ex.strategies[i] != want {
			t.Errorf("pass %d strategy = %q, want %q", i, ex.strategies[i], want)
		}
	}

	// The counter only climbs.
	for i := 1; i < len(ex.retryCounts); i++ {
		if ex.retryCounts[i] < ex.retryCounts[i-1] {
			t.Errorf("retry count decreased between passes: %v", ex.retryCounts)
		}
	}

	if rk.calls != 1 || en.calls != 1 {
		t.Errorf("ranker ran %d times, enricher %d, want 1 and 1", rk.calls, en.calls)
	}
	if len(st.Cards) != 0 {
		t.Errorf("Cards = %v, want empty", st.Cards)
	}
	if len(st.Warnings) != 2 {
		t.Fatalf("Warnings = %v, want 2 retry warnings", st.Warnings)
	}
	for _, w := range st.Warnings {
		if !strings.Contains(w, "low recipe count") {
			t.Errorf("warning %q missing low recipe count", w)
		}
	}
}

func TestRunAdvancesWithEnoughCandidates(t *testing.T) {
	ex := &scriptedExtractor{perPass: [][]types.Candidate{cands(2)}}
	rk := &recordingRanker{}
	en := &recordingEnricher{}
	o := &Orchestrator{Extractor: ex, Ranker: rk, Enricher: en}

	st := NewState("pan sauces", types.SkillBeginner, nil, nil)
	if err := o.Run(context.Background(), st); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ex.passes != 1 {
		t.Errorf("extraction ran %d times, want 1", ex.passes)
	}
	if st.RetryCount != 0 {
		t.Errorf("RetryCount = %d, want 0", st.RetryCount)
	}
	if len(st.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", st.Warnings)
	}
	if rk.calls != 1 || en.calls != 1 {
		t.Errorf("ranker ran %d times, enricher %d, want 1 and 1", rk.calls, en.calls)
	}
}

func TestRunSecondPassReplacesCandidates(t *testing.T) {
	ex := &scriptedExtractor{perPass: [][]types.Candidate{cands(1), cands(3)}}
	o := &Orchestrator{Extractor: ex, Ranker: &recordingRanker{}, Enricher: &recordingEnricher{}}

	var log bytes.Buffer
	o.Log = &log

	st := NewState("pan sauces", types.SkillBeginner, nil, nil)
	if err := o.Run(context.Background(), st); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ex.passes != 2 {
		t.Errorf("extraction ran %d times, want 2", ex.passes)
	}
	if st.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", st.RetryCount)
	}
	if len(st.Candidates) != 3 {
		t.Errorf("Candidates = %d, want the second pass to replace the first", len(st.Candidates))
	}
	if len(st.Warnings) != 1 || !strings.Contains(st.Warnings[0], "low recipe count (1)") {
		t.Errorf("Warnings = %v, want one thin-pass warning", st.Warnings)
	}
	if !strings.Contains(log.String(), "broadening search (retry 1/2)") {
		t.Errorf("log missing retry line: %q", log.String())
	}
}

func TestRunHonorsConfiguredBudget(t *testing.T) {
	ex := &scriptedExtractor{perPass: [][]types.Candidate{cands(2), cands(2)}}
	o := &Orchestrator{
		Extractor:     ex,
		Ranker:        &recordingRanker{},
		Enricher:      &recordingEnricher{},
		MaxRetries:    1,
		MinCandidates: 3,
	}

	st := NewState("pan sauces", types.SkillBeginner, nil, nil)
	if err := o.Run(context.Background(), st); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ex.passes != 2 {
		t.Errorf("extraction ran %d times, want 2 under MaxRetries=1", ex.passes)
	}
	if st.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", st.RetryCount)
	}
}

func TestRunStageErrorsCarryStageName(t *testing.T) {
	boom := errors.New("provider down")

	cases := []struct {
		name string
		o    *Orchestrator
		want string
	}{
		{
			"extraction",
			&Orchestrator{Extractor: &scriptedExtractor{err: boom}, Ranker: &recordingRanker{}, Enricher: &recordingEnricher{}},
			"extraction stage:",
		},
		{
			"ranking",
			&Orchestrator{Extractor: &scriptedExtractor{perPass: [][]types.Candidate{cands(2)}}, Ranker: &recordingRanker{err: boom}, Enricher: &recordingEnricher{}},
			"ranking stage:",
		},
		{
			"enrichment",
			&Orchestrator{Extractor: &scriptedExtractor{perPass: [][]types.Candidate{cands(2)}}, Ranker: &recordingRanker{}, Enricher: &recordingEnricher{err: boom}},
			"enrichment stage:",
		},
	}

	for _, tc := range cases {
		st := NewState("pan sauces", types.SkillBeginner, nil, nil)
		err := tc.o.Run(context.Background(), st)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: err = %q, want %q prefix", tc.name, err, tc.want)
		}
		if !errors.Is(err, boom) {
			t.Errorf("%s: err does not wrap the stage error", tc.name)
		}
	}
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := &scriptedExtractor{}
	o := &Orchestrator{Extractor: ex, Ranker: &recordingRanker{}, Enricher: &recordingEnricher{}}

	st := NewState("pan sauces", types.SkillBeginner, nil, nil)
	if err := o.Run(ctx, st); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if ex.passes != 0 {
		t.Errorf("extraction ran %d times after cancellation", ex.passes)
	}
}

func TestStateWarnAndMetadata(t *testing.T) {
	st := NewState("  pan sauces  ", types.SkillAdvanced, []string{"vegetarian"}, nil)
	if st.LearningGoal != "pan sauces" {
		t.Errorf("LearningGoal = %q, want trimmed", st.LearningGoal)
	}
	if st.Strategy != types.StrategyInitial {
		t.Errorf("Strategy = %q, want initial", st.Strategy)
	}

	meta := st.Metadata("01TEST")
	if meta.Warnings == nil || len(meta.Warnings) != 0 {
		t.Errorf("fresh Warnings = %#v, want empty non-nil", meta.Warnings)
	}

	st.Warn("pass %d was thin", 1)
	st.Warn("search failed")
	st.SearchCalls = 3
	st.LLMCalls = 7
	st.RetryCount = 1

	meta = st.Metadata("01TEST")
	if meta.RunID != "01TEST" {
		t.Errorf("RunID = %q, want 01TEST", meta.RunID)
	}
	if len(meta.Warnings) != 2 || meta.Warnings[0] != "pass 1 was thin" {
		t.Errorf("Warnings = %v", meta.Warnings)
	}
	if meta.SearchCalls != 3 || meta.LLMCalls != 7 || meta.RetryCount != 1 {
		t.Errorf("counters = %+v, want 3/7/1", meta)
	}
	if meta.ProcessingTimeMS < 0 {
		t.Errorf("ProcessingTimeMS = %d, want non-negative", meta.ProcessingTimeMS)
	}
}

func TestRecommendReturnsResult(t *testing.T) {
	ex := &scriptedExtractor{perPass: [][]types.Candidate{cands(3)}}
	rk := &recordingRanker{cards: []types.Card{
		{Recipe: types.RecipeSummary{Title: "Pan Sauce Chicken", URL: "https://example.com/0"}},
		{Recipe: types.RecipeSummary{Title: "Braised Leeks", URL: "https://example.com/1"}},
	}}
	r := NewRunner(&Orchestrator{Extractor: ex, Ranker: rk, Enricher: &recordingEnricher{}}, nil)

	res, err := r.Recommend(context.Background(), Request{LearningGoal: "pan sauces", SkillLevel: types.SkillBeginner})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(res.Recipes) != 2 {
		t.Fatalf("Recipes = %d, want 2", len(res.Recipes))
	}
	if res.Recipes[0].Reasoning != "stub reasoning" {
		t.Errorf("Reasoning = %q, want the enricher's output", res.Recipes[0].Reasoning)
	}
	if res.Metadata.RunID == "" {
		t.Error("RunID empty")
	}

	again, err := r.Recommend(context.Background(), Request{LearningGoal: "pan sauces", SkillLevel: types.SkillBeginner})
	if err != nil {
		t.Fatalf("second Recommend: %v", err)
	}
	if again.Metadata.RunID == res.Metadata.RunID {
		t.Error("run IDs repeat across runs")
	}
}

func TestRecommendNoRecipes(t *testing.T) {
	ex := &scriptedExtractor{} // nothing found, ever
	r := NewRunner(&Orchestrator{Extractor: ex, Ranker: &recordingRanker{}, Enricher: &recordingEnricher{}}, nil)

	res, err := r.Recommend(context.Background(), Request{LearningGoal: "pan sauces", SkillLevel: types.SkillBeginner})
	if !errors.Is(err, ErrNoRecipes) {
		t.Fatalf("err = %v, want ErrNoRecipes", err)
	}
	if res == nil {
		t.Fatal("result nil, want metadata for the failed run")
	}
	if res.Recipes == nil || len(res.Recipes) != 0 {
		t.Errorf("Recipes = %#v, want empty non-nil", res.Recipes)
	}
	if res.Metadata.RunID == "" || res.Metadata.RetryCount != DefaultMaxRetries {
		t.Errorf("Metadata = %+v, want run ID and exhausted retries", res.Metadata)
	}
	if res.Comparison.FirstFocus != "N/A" {
		t.Errorf("Comparison = %+v, want the N/A sentinel", res.Comparison)
	}
}

func TestRecommendPropagatesStageFault(t *testing.T) {
	boom := errors.New("provider down")
	r := NewRunner(&Orchestrator{Extractor: &scriptedExtractor{err: boom}, Ranker: &recordingRanker{}, Enricher: &recordingEnricher{}}, nil)

	res, err := r.Recommend(context.Background(), Request{LearningGoal: "pan sauces", SkillLevel: types.SkillBeginner})
	if res != nil {
		t.Error("result should be nil on a stage fault")
	}
	if err == nil || errors.Is(err, ErrNoRecipes) {
		t.Fatalf("err = %v, want the stage fault", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped provider error", err)
	}
}

func TestRunIDsUniqueUnderConcurrency(t *testing.T) {
	r := NewRunner(&Orchestrator{}, nil)

	const workers, perWorker = 8, 50
	ids := make(chan string, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				ids <- r.newRunID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{})
	for id := range ids {
		if id == "" {
			t.Fatal("empty run ID")
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate run ID %s", id)
		}
		seen[id] = struct{}{}
	}
}
