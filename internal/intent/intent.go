// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intent turns free-form cooking requests into structured recipe
// parameters and builds the conversational replies around them.
//
// Implements: prd001-intake (R1.1-R1.4, R2.1-R2.2).
package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/brooondooon/ratatouille/internal/llm"
	"github.com/brooondooon/ratatouille/pkg/types"
)

// Parser extracts structured intents from natural language.
type Parser struct {
	// AI interprets the message.
	AI llm.Completer
}

var intentPromptTmpl = template.Must(template.New("intent").Parse(`You are a culinary education assistant. Parse this cooking recipe request into structured data.

User message: "{{.Message}}"

Extract the following information:

1. **learning_goal** (required): The main cooking technique, dish, or skill they want to learn
   - Examples: "pan sauces", "shallow frying", "bread baking", "knife skills", "pasta", "fried rice"
   - Be specific but concise (2-4 words max)

2. **skill_level** (required): Infer their experience level from context
   - "beginner": No experience, learning basics, mentions "first time", "never done", "new to", "easy", "simple"
   - "intermediate": Some experience, wants to improve, no qualifiers = default to this
   - "advanced": Mentions "advanced", "master", "professional", or complex techniques

3. **dietary_restrictions** (optional): Any dietary constraints mentioned
   - Possible values: "vegetarian", "vegan", "gluten-free", "dairy-free", "kosher", "halal"
   - Return empty list if none mentioned

4. **constraints** (optional): Special requirements like "quick", "minimal oil", "budget-friendly"
   - Extract any mentioned, empty list if none

Return ONLY valid JSON in this exact format:
{
  "learning_goal": "pan sauces",
  "skill_level": "intermediate",
  "dietary_restrictions": ["vegetarian"],
  "constraints": ["minimal oil"]
}

CRITICAL: Return ONLY the JSON object, no markdown, no explanations.`))

type intentPromptData struct {
	Message string
}

type intentReply struct {
	LearningGoal        string   `json:"learning_goal"`
	SkillLevel          string   `json:"skill_level"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Constraints         []string `json:"constraints"`
}

// Extract parses a free-form message into a structured intent. A reply the
// model cannot ground in a learning goal is an error; everything else is
// defaulted, with unrecognized skill levels normalized to intermediate.
func (p *Parser) Extract(ctx context.Context, message string) (types.Intent, error) {
	var prompt strings.Builder
	if err := intentPromptTmpl.Execute(&prompt, intentPromptData{Message: message}); err != nil {
		return types.Intent{}, fmt.Errorf("rendering intent prompt: %w", err)
	}

	reply, err := p.AI.Complete(ctx, prompt.String())
	if err != nil {
		return types.Intent{}, fmt.Errorf("extracting intent: %w", err)
	}

	var parsed intentReply
	if err := json.Unmarshal([]byte(llm.StripCodeFence(reply)), &parsed); err != nil {
		return types.Intent{}, fmt.Errorf("decoding intent JSON: %w", err)
	}

	goal := strings.TrimSpace(parsed.LearningGoal)
	if goal == "" {
		return types.Intent{}, errors.New("no learning goal in message")
	}

	intent := types.Intent{
		LearningGoal:        goal,
		SkillLevel:          types.NormalizeSkillLevel(parsed.SkillLevel),
		DietaryRestrictions: compact(parsed.DietaryRestrictions),
		Constraints:         compact(parsed.Constraints),
	}
	return intent, nil
}

const followUpPersona = "You are Ratatouille, a friendly culinary education assistant. Answer cooking questions concisely and helpfully. Keep responses to 2-3 sentences unless more detail is needed. Be warm and encouraging."

// AnswerFollowUp answers a cooking question conversationally, for messages
// that ask about technique rather than request recipes.
func (p *Parser) AnswerFollowUp(ctx context.Context, question string) (string, error) {
	reply, err := p.AI.Complete(ctx, followUpPersona+"\n\nQuestion: "+question)
	if err != nil {
		return "", fmt.Errorf("answering follow-up: %w", err)
	}
	answer := strings.TrimSpace(reply)
	if answer == "" {
		return "", errors.New("model returned an empty answer")
	}
	return answer, nil
}

// Reply builds the conversational banner for a completed recommendation run.
func Reply(goal string, skill types.SkillLevel, count int) string {
	noun := "recipe"
	if count > 1 {
		noun = "recipes"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d great %s for learning %s", count, noun, goal)
	switch skill {
	case types.SkillBeginner:
		b.WriteString(" that are perfect for beginners")
	case types.SkillAdvanced:
		b.WriteString(" with advanced techniques")
	}
	b.WriteString(". Check them out below!")
	return b.String()
}

// compact trims entries and drops empties, returning a non-nil slice so the
// intent serializes with empty arrays rather than nulls.
func compact(items []string) []string {
	out := []string{}
	for _, item := range items {
		if t := strings.TrimSpace(item); t != "" {
			out = append(out, t)
		}
	}
	return out
}
