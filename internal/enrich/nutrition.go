// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/brooondooon/ratatouille/internal/llm"
	"github.com/brooondooon/ratatouille/pkg/types"
)

const (
	defaultServings = 4

	// maxPromptIngredients caps how much of the ingredient list reaches
	// the prompt; beyond this the extra tokens stop improving estimates.
	maxPromptIngredients = 15

	estimateDisclaimer = "Estimated values - actual nutrition may vary"
)

// servingPatterns match explicit serving counts in recipe text, tried in
// order.
var servingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`serves?\s+(\d+)`),
	regexp.MustCompile(`(\d+)\s+servings?`),
	regexp.MustCompile(`makes\s+(\d+)\s+portions?`),
}

var nutritionPromptTmpl = template.Must(template.New("nutrition").Parse(`You are a nutritionist. Estimate the nutritional information PER SERVING for this recipe.

Recipe: {{.Title}}
Estimated Servings: {{.Servings}}
Ingredients: {{.Ingredients}}

Provide reasonable estimates based on typical portion sizes and cooking methods.

Return ONLY valid JSON with no markdown:
{
  "calories": 450,
  "protein_g": 25,
  "carbs_g": 35,
  "fat_g": 18,
  "fiber_g": 5,
  "sodium_mg": 600,
  "servings": {{.Servings}},
  "disclaimer": "Estimated values - actual nutrition may vary"
}

Be realistic with estimates. Return ONLY the JSON object.`))

type nutritionPromptData struct {
	Title       string
	Servings    int
	Ingredients string
}

// Estimate asks the model for per-serving nutrition. These are estimates from
// ingredient lists, not database lookups, and the disclaimer says so.
func (a *Annotator) Estimate(ctx context.Context, cand types.Candidate) (*types.Nutrition, error) {
	servings := estimateServings(cand)

	ingredients := cand.Ingredients
	if len(ingredients) > maxPromptIngredients {
		ingredients = ingredients[:maxPromptIngredients]
	}

	var prompt strings.Builder
	err := nutritionPromptTmpl.Execute(&prompt, nutritionPromptData{
		Title:       cand.Title,
		Servings:    servings,
		Ingredients: strings.Join(ingredients, ", "),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering nutrition prompt: %w", err)
	}

	reply, err := a.AI.Complete(ctx, prompt.String())
	if err != nil {
		return nil, err
	}

	var parsed types.Nutrition
	if err := json.Unmarshal([]byte(llm.StripCodeFence(reply)), &parsed); err != nil {
		return nil, fmt.Errorf("decoding nutrition JSON: %w", err)
	}
	if parsed.Servings <= 0 {
		parsed.Servings = servings
	}
	if parsed.Disclaimer == "" {
		parsed.Disclaimer = estimateDisclaimer
	}
	return &parsed, nil
}

// estimateServings scans instructions and ingredients for an explicit
// serving count, defaulting to 4 portions.
func estimateServings(cand types.Candidate) int {
	text := strings.ToLower(strings.Join(cand.Instructions, " ") + " " + strings.Join(cand.Ingredients, " "))
	for _, pat := range servingPatterns {
		if m := pat.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	return defaultServings
}
