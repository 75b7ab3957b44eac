// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/brooondooon/ratatouille/pkg/types"
)

// Stage enumerates the pipeline's states. Transitions are linear except for
// the decision stage, which may loop back to extraction a bounded number of
// times.
type Stage int

const (
	StageExtract Stage = iota
	StageDecide
	StageRank
	StageEnrich
	StageEnd
)

func (s Stage) String() string {
	switch s {
	case StageExtract:
		return "extraction"
	case StageDecide:
		return "decision"
	case StageRank:
		return "ranking"
	case StageEnrich:
		return "enrichment"
	case StageEnd:
		return "end"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Extractor produces a fresh candidate set for the current strategy.
// Reads goal, skill, dietary restrictions, and Strategy; replaces Queries and
// Candidates; may add to SearchCalls, LLMCalls, and Warnings. External-call
// failures are recorded as warnings with an empty candidate set; a returned
// error means an infrastructure fault and aborts the run.
type Extractor interface {
	Extract(ctx context.Context, st *State) error
}

// Ranker filters, scores, and selects from the accumulated candidates.
// Reads the inputs and Candidates; writes Scored, Cards, and Comparison.
type Ranker interface {
	Rank(ctx context.Context, st *State) error
}

// Enricher annotates the selected cards in place with reasoning and nutrition.
// Reads Cards and Candidates; may add to LLMCalls and Warnings. Per-card
// failures degrade to placeholders rather than erroring.
type Enricher interface {
	Enrich(ctx context.Context, st *State) error
}

// Default retry policy. A thin pass is retried with a broadened strategy at
// most DefaultMaxRetries times, so extraction runs at most three passes.
const (
	DefaultMaxRetries    = 2
	DefaultMinCandidates = 2
)

// Orchestrator drives one run through the stage machine.
type Orchestrator struct {
	Extractor Extractor
	Ranker    Ranker
	Enricher  Enricher

	// MaxRetries caps broadened passes. Zero uses DefaultMaxRetries.
	MaxRetries int

	// MinCandidates is the threshold below which the decision stage
	// retries. Zero uses DefaultMinCandidates.
	MinCandidates int

	// Log receives progress lines. Nil discards them.
	Log io.Writer
}

// Run executes the machine from extraction until StageEnd.
//
// Termination: every transition either advances toward StageEnd or moves from
// decision back to extraction, and the latter increments RetryCount, which
// decide bounds by MaxRetries. Extraction therefore runs at most
// MaxRetries+1 times and the loop cannot spin.
//
// Stage errors come back wrapped with the stage name and leave the partially
// populated state readable for diagnostics.
func (o *Orchestrator) Run(ctx context.Context, st *State) error {
	w := o.Log
	if w == nil {
		w = io.Discard
	}

	stage := StageExtract
	for stage != StageEnd {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, err := o.step(ctx, stage, st, w)
		if err != nil {
			return fmt.Errorf("%s stage: %w", stage, err)
		}
		stage = next
	}
	return nil
}

// step runs one stage and returns the next. This is the whole transition
// function; there is no other control flow.
func (o *Orchestrator) step(ctx context.Context, stage Stage, st *State, w io.Writer) (Stage, error) {
	switch stage {
	case StageExtract:
		fmt.Fprintf(w, "extraction: pass %d, %s strategy\n", st.RetryCount+1, st.Strategy)
		if err := o.Extractor.Extract(ctx, st); err != nil {
			return StageEnd, err
		}
		return StageDecide, nil

	case StageDecide:
		return o.decide(st, w), nil

	case StageRank:
		if err := o.Ranker.Rank(ctx, st); err != nil {
			return StageEnd, err
		}
		fmt.Fprintf(w, "ranking: %d scored, %d selected\n", len(st.Scored), len(st.Cards))
		return StageEnrich, nil

	case StageEnrich:
		if err := o.Enricher.Enrich(ctx, st); err != nil {
			return StageEnd, err
		}
		return StageEnd, nil
	}
	return StageEnd, fmt.Errorf("invalid stage %s", stage)
}

// decide is the only conditional transition. Exactly one decision follows
// each extraction pass: retry with a broadened strategy while the candidate
// set is thin and budget remains, otherwise proceed to ranking with whatever
// was found. Empty candidate sets are a legitimate outcome here, not an
// error; ranking over nothing yields the not-found result downstream.
func (o *Orchestrator) decide(st *State, w io.Writer) Stage {
	minCandidates := o.MinCandidates
	if minCandidates <= 0 {
		minCandidates = DefaultMinCandidates
	}
	maxRetries := o.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	if len(st.Candidates) < minCandidates && st.RetryCount < maxRetries {
		st.Strategy = types.StrategyBroadened
		st.RetryCount++
		st.Warn("low recipe count (%d), retrying with broader search", len(st.Candidates))
		fmt.Fprintf(w, "decision: low recipe count (%d), broadening search (retry %d/%d)\n",
			len(st.Candidates), st.RetryCount, maxRetries)
		return StageExtract
	}

	fmt.Fprintf(w, "decision: %d candidates, proceeding to ranking\n", len(st.Candidates))
	return StageRank
}
