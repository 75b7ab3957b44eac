// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/brooondooon/ratatouille/pkg/types"
)

// ErrNoRecipes reports a run that completed without producing any cards.
// Callers translate it into a not-found outcome rather than a server fault.
var ErrNoRecipes = errors.New("no recipes found")

// Request is one recommendation ask.
type Request struct {
	LearningGoal        string
	SkillLevel          types.SkillLevel
	DietaryRestrictions []string
	ExcludedURLs        []string
}

// Runner executes complete recommendation passes over a wired orchestrator.
// Safe for concurrent use; each run gets its own State.
type Runner struct {
	Orchestrator *Orchestrator

	// Log receives run progress lines. Nil discards them.
	Log io.Writer

	// MonotonicEntropy is not safe for concurrent readers.
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewRunner builds a runner around a wired orchestrator.
func NewRunner(o *Orchestrator, log io.Writer) *Runner {
	return &Runner{
		Orchestrator: o,
		Log:          log,
		entropy:      ulid.Monotonic(rand.Reader, 0),
	}
}

func (r *Runner) newRunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := ulid.New(ulid.Now(), r.entropy)
	if err != nil {
		return ulid.Make().String()
	}
	return id.String()
}

// Recommend runs the pipeline for one request. When the run completes but
// selects nothing, the error is ErrNoRecipes and the returned result still
// carries the full run metadata. Any other error is an infrastructure fault
// from a stage.
func (r *Runner) Recommend(ctx context.Context, req Request) (*types.Result, error) {
	w := r.Log
	if w == nil {
		w = io.Discard
	}

	st := NewState(req.LearningGoal, req.SkillLevel, req.DietaryRestrictions, req.ExcludedURLs)
	runID := r.newRunID()
	fmt.Fprintf(w, "run %s: %q (%s)\n", runID, st.LearningGoal, st.SkillLevel)

	if err := r.Orchestrator.Run(ctx, st); err != nil {
		return nil, err
	}

	meta := st.Metadata(runID)
	if len(st.Cards) == 0 {
		fmt.Fprintf(w, "run %s: no recipes after %d retries\n", runID, st.RetryCount)
		return &types.Result{
			Recipes:    []types.Card{},
			Comparison: st.Comparison,
			Metadata:   meta,
		}, ErrNoRecipes
	}

	fmt.Fprintf(w, "run %s: %d cards in %dms (search %d, llm %d, retries %d)\n",
		runID, len(st.Cards), meta.ProcessingTimeMS, meta.SearchCalls, meta.LLMCalls, meta.RetryCount)

	return &types.Result{
		Recipes:    st.Cards,
		Comparison: st.Comparison,
		Metadata:   meta,
	}, nil
}
