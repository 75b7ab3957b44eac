// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"strings"
	"text/template"

	"github.com/brooondooon/ratatouille/pkg/types"
)

// initialInstructions steer the first pass toward specific, varied dishes.
const initialInstructions = `Generate specific, targeted queries for ACTUAL RECIPE DISHES that teach this skill.

CRITICAL REQUIREMENTS:
- Focus on SPECIFIC DISHES using the technique, NOT technique tutorials
- Each query should find a COMPLETE RECIPE for a dish
- Include dish names plus the technique plus the skill level
- MAXIMIZE VARIETY: each query must use DIFFERENT ingredients, proteins, or flavor profiles
- Avoid near-identical variations (do not return both "red wine pan sauce" and "red wine reduction")

GOOD EXAMPLES:
- "crispy shallow fried chicken cutlet recipe"
- "pan fried fish with lemon butter recipe beginner"
- "japanese tonkatsu shallow frying recipe"

BAD EXAMPLES (DO NOT USE):
- "shallow frying technique guide"
- "how to shallow fry tutorial"`

// broadenedInstructions relax the queries after a thin first pass.
const broadenedInstructions = `IMPORTANT: The previous search found too few results. Broaden the queries by:
- Using more general terms (e.g. "pan sauce" becomes "sauce techniques")
- Including related techniques (e.g. "pan sauce" brings in "butter emulsions", "reduction")
- Adding beginner-friendly variations if the original goal was too advanced
- Still targeting ACTUAL DISH RECIPES, not technique tutorials`

var queryPromptTmpl = template.Must(template.New("queries").Parse(`You are a culinary education expert. Given a learning goal and skill level,
generate 3-5 specific search queries that will find RECIPE DISHES (not technique guides) teaching this skill.

Learning Goal: {{.Goal}}
Skill Level: {{.Skill}}

{{.Instructions}}

Return ONLY a JSON array of search query strings, nothing else.
Example: ["crispy pan-fried chicken cutlet recipe", "shallow fried pork schnitzel beginner", "korean chicken katsu recipe"]
`))

type queryPromptData struct {
	Goal         string
	Skill        string
	Instructions string
}

func renderQueryPrompt(req Request) (string, error) {
	goal := req.Goal
	if len(req.Dietary) > 0 {
		// Dietary terms ride along in the goal so queries target compliant
		// dishes from the start.
		goal = strings.Join(req.Dietary, " ") + " " + goal
	}

	instructions := initialInstructions
	if req.Strategy == types.StrategyBroadened {
		instructions = broadenedInstructions
	}

	var sb strings.Builder
	err := queryPromptTmpl.Execute(&sb, queryPromptData{
		Goal:         goal,
		Skill:        string(req.Skill),
		Instructions: instructions,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
