// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hunt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/brooondooon/ratatouille/internal/llm"
	"github.com/brooondooon/ratatouille/pkg/types"
)

// parsePromptTmpl asks the model for a strict JSON object; anything outside
// that shape is rejected and the snippet dropped with a warning.
var parsePromptTmpl = template.Must(template.New("parse").Parse(`Extract recipe information from this search result snippet.

Title: {{.Title}}
Snippet: {{.Content}}

Return this exact JSON format:
{
    "title": "recipe name",
    "difficulty": "beginner|intermediate|advanced",
    "techniques": ["technique1", "technique2"],
    "ingredients": ["ingredient1", "ingredient2"],
    "instructions": ["step1", "step2"],
    "time_estimate": "30 minutes"
}

If you cannot determine a field, use reasonable defaults based on the snippet. Return ONLY the JSON object.`))

type parsePromptData struct {
	Title   string
	Content string
}

// snippetRecipe is the schema the model must return. Fields with the wrong
// JSON type fail the decode, which surfaces as a parse warning.
type snippetRecipe struct {
	Title        string   `json:"title"`
	Difficulty   string   `json:"difficulty"`
	Techniques   []string `json:"techniques"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	TimeEstimate string   `json:"time_estimate"`
}

// parseSnippet turns one search result into a candidate via the model.
// Metadata the search response omits gets a conservative default; difficulty
// is lowercased and defaults to intermediate when absent, but unknown values
// pass through for the scorer to handle.
func (s *Searcher) parseSnippet(ctx context.Context, res searchResult) (types.Candidate, error) {
	var prompt strings.Builder
	if err := parsePromptTmpl.Execute(&prompt, parsePromptData{Title: res.Title, Content: res.Content}); err != nil {
		return types.Candidate{}, fmt.Errorf("rendering parse prompt: %w", err)
	}

	reply, err := s.AI.Complete(ctx, prompt.String())
	if err != nil {
		return types.Candidate{}, fmt.Errorf("parsing snippet: %w", err)
	}

	var parsed snippetRecipe
	if err := json.Unmarshal([]byte(llm.StripCodeFence(reply)), &parsed); err != nil {
		return types.Candidate{}, fmt.Errorf("decoding recipe JSON: %w", err)
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		title = res.Title
	}

	difficulty := strings.ToLower(strings.TrimSpace(parsed.Difficulty))
	if difficulty == "" {
		difficulty = "intermediate"
	}

	score := 0.5
	if res.Score != nil {
		score = *res.Score
	}
	published := res.PublishedDate
	if published == "" {
		published = "Unknown"
	}

	return types.Candidate{
		Title:         title,
		URL:           res.URL,
		Source:        SourceLabel(res.URL),
		Author:        "Unknown",
		PublishedDate: published,
		Difficulty:    difficulty,
		Techniques:    cleanList(parsed.Techniques),
		Ingredients:   cleanList(parsed.Ingredients),
		Instructions:  cleanList(parsed.Instructions),
		TimeEstimate:  strings.TrimSpace(parsed.TimeEstimate),
		SearchScore:   score,
	}, nil
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if t := strings.TrimSpace(item); t != "" {
			out = append(out, t)
		}
	}
	return out
}
