// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich layers model-generated explanations and nutrition estimates
// onto selected recipe cards. Every per-card failure degrades to a canned
// fallback plus a warning; only context cancellation aborts a pass.
//
// Implements: prd006-enrichment (R1.1-R1.3, R2.1-R2.4).
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/brooondooon/ratatouille/internal/llm"
	"github.com/brooondooon/ratatouille/pkg/types"
)

// Annotator enriches ranked cards with reasoning and nutrition.
type Annotator struct {
	// AI generates the explanations and estimates.
	AI llm.Completer
}

// Outcome reports what one enrichment pass did.
type Outcome struct {
	LLMCalls int
	Warnings []string
}

// Annotate fills Reasoning and Nutrition on every card in place. byURL maps
// candidate URLs to their full records, which carry the ingredient and
// technique detail the prompts need. The returned error is non-nil only for
// context cancellation.
func (a *Annotator) Annotate(ctx context.Context, cards []types.Card, byURL map[string]types.Candidate, goal string, skill types.SkillLevel, w io.Writer) (Outcome, error) {
	if w == nil {
		w = io.Discard
	}

	var out Outcome
	for i := range cards {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		card := &cards[i]

		cand, ok := byURL[card.Recipe.URL]
		if !ok {
			msg := fmt.Sprintf("no candidate record for %q, using fallbacks", card.Recipe.Title)
			out.Warnings = append(out.Warnings, msg)
			fmt.Fprintf(w, "warning: %s\n", msg)
			card.Reasoning = fallbackReasoning(card.TechniqueHighlights)
			card.Nutrition = types.NutritionUnavailable()
			continue
		}

		reasoning, err := a.Explain(ctx, cand, goal, skill)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			msg := fmt.Sprintf("reasoning generation failed for %q: %v", cand.Title, err)
			out.Warnings = append(out.Warnings, msg)
			fmt.Fprintf(w, "warning: %s\n", msg)
			card.Reasoning = fallbackReasoning(cand.Techniques)
		} else {
			out.LLMCalls++
			card.Reasoning = reasoning
		}

		nutrition, err := a.Estimate(ctx, cand)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			msg := fmt.Sprintf("nutrition estimation failed for %q: %v", cand.Title, err)
			out.Warnings = append(out.Warnings, msg)
			fmt.Fprintf(w, "warning: %s\n", msg)
			card.Nutrition = types.NutritionUnavailable()
		} else {
			out.LLMCalls++
			card.Nutrition = nutrition
		}

		fmt.Fprintf(w, "enriched %q\n", card.Recipe.Title)
	}
	return out, nil
}

var reasoningPromptTmpl = template.Must(template.New("reasoning").Parse(`You are a professional chef and culinary educator. Generate a concise explanation for why this recipe is perfect for the user's learning goals.

User context:
- Skill level: {{.Skill}}
- Learning goal: {{.Goal}}

Recipe:
- Title: {{.Title}}
- Techniques: {{.Techniques}}
- Difficulty: {{.Difficulty}}

Generate a "why this recipe" explanation: 2-3 sentences, learning-focused and encouraging.

Return ONLY valid JSON with no markdown:
{
  "reasoning": "Your 2-3 sentence explanation here"
}`))

type reasoningPromptData struct {
	Skill      types.SkillLevel
	Goal       string
	Title      string
	Techniques string
	Difficulty string
}

type reasoningReply struct {
	Reasoning string `json:"reasoning"`
}

// Explain asks the model why this recipe fits the user's goal and skill.
func (a *Annotator) Explain(ctx context.Context, cand types.Candidate, goal string, skill types.SkillLevel) (string, error) {
	var prompt strings.Builder
	err := reasoningPromptTmpl.Execute(&prompt, reasoningPromptData{
		Skill:      skill,
		Goal:       goal,
		Title:      cand.Title,
		Techniques: strings.Join(cand.Techniques, ", "),
		Difficulty: cand.Difficulty,
	})
	if err != nil {
		return "", fmt.Errorf("rendering reasoning prompt: %w", err)
	}

	reply, err := a.AI.Complete(ctx, prompt.String())
	if err != nil {
		return "", err
	}

	var parsed reasoningReply
	if err := json.Unmarshal([]byte(llm.StripCodeFence(reply)), &parsed); err != nil {
		return "", fmt.Errorf("decoding reasoning JSON: %w", err)
	}
	reasoning := strings.TrimSpace(parsed.Reasoning)
	if reasoning == "" {
		return "", errors.New("model returned empty reasoning")
	}
	return reasoning, nil
}

// fallbackReasoning is the canned explanation used when the model cannot
// produce one.
func fallbackReasoning(techniques []string) string {
	subject := "essential cooking skills"
	if len(techniques) > 0 {
		subject = strings.Join(techniques, ", ")
	}
	return fmt.Sprintf("This recipe teaches %s.", subject)
}
