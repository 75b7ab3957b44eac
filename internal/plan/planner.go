// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan turns a learning goal into targeted web search queries.
// The planner adapts its posture when the decision stage signals a broadened
// retry: queries get more general and pull in adjacent techniques.
//
// Implements: prd002-query-planning (R1.1-R1.3).
package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brooondooon/ratatouille/internal/llm"
	"github.com/brooondooon/ratatouille/pkg/types"
)

// Request carries the inputs query planning reads.
type Request struct {
	Goal     string
	Skill    types.SkillLevel
	Dietary  []string
	Strategy types.SearchStrategy
}

// Planner generates search queries with one model call per plan.
type Planner struct {
	AI llm.Completer
}

// Plan asks the model for recipe search queries and parses the reply. The
// reply should be a JSON array of strings; anything else goes through a
// lenient line-and-comma fallback before giving up.
func (p *Planner) Plan(ctx context.Context, req Request) ([]string, error) {
	prompt, err := renderQueryPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("rendering query prompt: %w", err)
	}

	reply, err := p.AI.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating queries: %w", err)
	}

	queries := parseQueries(reply)
	if len(queries) == 0 {
		return nil, fmt.Errorf("model returned no usable queries")
	}
	return queries, nil
}

func parseQueries(reply string) []string {
	text := llm.StripCodeFence(reply)

	var queries []string
	if err := json.Unmarshal([]byte(text), &queries); err == nil {
		return compact(queries)
	}

	// Fallback: strip brackets, then split on commas and newlines.
	text = strings.NewReplacer("[", "", "]", "").Replace(text)
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	return compact(parts)
}

func compact(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, q := range raw {
		q = strings.Trim(strings.TrimSpace(q), `"'`)
		if q != "" {
			out = append(out, q)
		}
	}
	return out
}
