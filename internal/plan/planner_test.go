// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brooondooon/ratatouille/pkg/types"
)

type mockCompleter struct {
	reply     string
	err       error
	calls     int
	gotPrompt string
}

func (m *mockCompleter) Complete(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.gotPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func TestPlanParsesJSONArray(t *testing.T) {
	mock := &mockCompleter{reply: `["lemon butter pan sauce chicken recipe", "balsamic pan sauce pork recipe"]`}
	p := &Planner{AI: mock}

	queries, err := p.Plan(context.Background(), Request{
		Goal:     "pan sauces",
		Skill:    types.SkillIntermediate,
		Strategy: types.StrategyInitial,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("len(queries) = %d, want 2", len(queries))
	}
	if queries[0] != "lemon butter pan sauce chicken recipe" {
		t.Errorf("queries[0] = %q", queries[0])
	}
	if mock.calls != 1 {
		t.Errorf("model calls = %d, want 1", mock.calls)
	}
}

func TestPlanStripsCodeFence(t *testing.T) {
	mock := &mockCompleter{reply: "```json\n[\"focaccia recipe beginner\"]\n```"}
	p := &Planner{AI: mock}

	queries, err := p.Plan(context.Background(), Request{Goal: "bread baking", Skill: types.SkillBeginner})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(queries) != 1 || queries[0] != "focaccia recipe beginner" {
		t.Errorf("queries = %v", queries)
	}
}

func TestPlanFallbackParsing(t *testing.T) {
	// Not valid JSON, but still a recognizable list.
	mock := &mockCompleter{reply: `"seared duck breast recipe",
"roast chicken with herbs recipe",
"porchetta roasting recipe advanced"`}
	p := &Planner{AI: mock}

	queries, err := p.Plan(context.Background(), Request{Goal: "roasting", Skill: types.SkillAdvanced})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := []string{
		"seared duck breast recipe",
		"roast chicken with herbs recipe",
		"porchetta roasting recipe advanced",
	}
	if len(queries) != len(want) {
		t.Fatalf("queries = %v, want %v", queries, want)
	}
	for i := range want {
		if queries[i] != want[i] {
			t.Errorf("queries[%d] = %q, want %q", i, queries[i], want[i])
		}
	}
}

func TestPlanEmptyReplyIsError(t *testing.T) {
	mock := &mockCompleter{reply: `[]`}
	p := &Planner{AI: mock}

	_, err := p.Plan(context.Background(), Request{Goal: "pasta", Skill: types.SkillBeginner})
	if err == nil {
		t.Fatal("want error for empty query list")
	}
	if !strings.Contains(err.Error(), "no usable queries") {
		t.Errorf("error = %v", err)
	}
}

func TestPlanPropagatesCompleterError(t *testing.T) {
	wantErr := errors.New("api down")
	p := &Planner{AI: &mockCompleter{err: wantErr}}

	_, err := p.Plan(context.Background(), Request{Goal: "pasta", Skill: types.SkillBeginner})
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapped %v", err, wantErr)
	}
}

// --- prompt construction ---

func TestPlanPromptCarriesDietaryTerms(t *testing.T) {
	mock := &mockCompleter{reply: `["x"]`}
	p := &Planner{AI: mock}

	_, err := p.Plan(context.Background(), Request{
		Goal:    "pan sauces",
		Skill:   types.SkillBeginner,
		Dietary: []string{"vegetarian", "gluten-free"},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !strings.Contains(mock.gotPrompt, "vegetarian gluten-free pan sauces") {
		t.Errorf("prompt missing dietary-prefixed goal:\n%s", mock.gotPrompt)
	}
}

func TestPlanPromptFollowsStrategy(t *testing.T) {
	mock := &mockCompleter{reply: `["x"]`}
	p := &Planner{AI: mock}

	_, err := p.Plan(context.Background(), Request{Goal: "pan sauces", Skill: types.SkillBeginner, Strategy: types.StrategyInitial})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !strings.Contains(mock.gotPrompt, "MAXIMIZE VARIETY") {
		t.Error("initial prompt missing variety instructions")
	}
	if strings.Contains(mock.gotPrompt, "Broaden the queries") {
		t.Error("initial prompt contains broadened instructions")
	}

	_, err = p.Plan(context.Background(), Request{Goal: "pan sauces", Skill: types.SkillBeginner, Strategy: types.StrategyBroadened})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !strings.Contains(mock.gotPrompt, "Broaden the queries") {
		t.Error("broadened prompt missing broadened instructions")
	}
}

// --- parseQueries ---

func TestParseQueries(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{
			name:  "json array",
			reply: `["a recipe", "b recipe"]`,
			want:  []string{"a recipe", "b recipe"},
		},
		{
			name:  "json with surrounding noise stripped by fallback",
			reply: "[\"a recipe\", \"b recipe\"],",
			want:  []string{"a recipe", "b recipe"},
		},
		{
			name:  "drops empty entries",
			reply: `["a recipe", "", "  "]`,
			want:  []string{"a recipe"},
		},
		{
			name:  "single quoted lines",
			reply: "'tuscan bread soup recipe'\n'ribollita beginner recipe'",
			want:  []string{"tuscan bread soup recipe", "ribollita beginner recipe"},
		},
		{
			name:  "whitespace only",
			reply: "   \n  ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseQueries(tt.reply)
			if len(got) != len(tt.want) {
				t.Fatalf("parseQueries(%q) = %v, want %v", tt.reply, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("queries[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
