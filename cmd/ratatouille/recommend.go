// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/brooondooon/ratatouille/internal/pipeline"
	"github.com/brooondooon/ratatouille/pkg/types"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [learning goal]",
	Short: "Recommend recipes for a cooking skill you want to learn",
	Long: `Recommend runs the full pipeline for a structured request: it plans search
queries around the learning goal, extracts recipes from the results, ranks
them for teaching value and variety, and annotates the picks with reasoning
and nutrition estimates.

Thin results are retried automatically with broadened queries before the
run settles for what it found.`,
	Example: `  ratatouille recommend "pan sauces" --skill beginner
  ratatouille recommend bread baking --dietary vegan --format json`,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().String("skill", "intermediate", "skill level: beginner, intermediate, or advanced")
	recommendCmd.Flags().StringSlice("dietary", nil, "dietary restrictions (e.g. vegetarian, gluten-free)")
	recommendCmd.Flags().StringSlice("exclude", nil, "recipe URLs to exclude from the results")
	recommendCmd.Flags().String("format", "table", "output format: table, json, or yaml")
	pipelineFlags(recommendCmd)

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a learning goal, e.g. %q", "pan sauces")
	}
	goal := strings.Join(args, " ")

	skillFlag, _ := cmd.Flags().GetString("skill")
	skill, err := types.ParseSkillLevel(skillFlag)
	if err != nil {
		return err
	}
	dietary, _ := cmd.Flags().GetStringSlice("dietary")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")

	cfg := pipelineConfig(cmd)
	store, closeCache, err := openSearchCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache()
	runner := buildRunner(cfg, store, progressWriter())

	res, err := runner.Recommend(context.Background(), pipeline.Request{
		LearningGoal:        goal,
		SkillLevel:          skill,
		DietaryRestrictions: dietary,
		ExcludedURLs:        exclude,
	})
	if errors.Is(err, pipeline.ErrNoRecipes) {
		printWarnings(res.Metadata.Warnings)
		return fmt.Errorf("no recipes found after %d broadened retries: try a different goal or fewer filters", res.Metadata.RetryCount)
	}
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	return formatResult(res, format)
}

func formatResult(res *types.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		data, err := yaml.Marshal(res)
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	case "table", "":
	default:
		return fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
	}

	for i, card := range res.Recipes {
		r := card.Recipe
		fmt.Fprintf(os.Stdout, "%d. %s  [%s, %s]\n", i+1, r.Title, r.Source, r.Difficulty)
		fmt.Fprintf(os.Stdout, "   %s\n", r.URL)
		if len(card.TechniqueHighlights) > 0 {
			fmt.Fprintf(os.Stdout, "   Techniques: %s\n", strings.Join(card.TechniqueHighlights, ", "))
		}
		if r.TimeEstimate != "" {
			fmt.Fprintf(os.Stdout, "   Time: %s\n", r.TimeEstimate)
		}
		fmt.Fprintf(os.Stdout, "   Why: %s\n", card.Reasoning)
		if n := card.Nutrition; n != nil && n.Calories > 0 {
			fmt.Fprintf(os.Stdout, "   Per serving: %.0f cal, %.0fg protein, %.0fg carbs, %.0fg fat (serves %d)\n",
				n.Calories, n.ProteinG, n.CarbsG, n.FatG, n.Servings)
		}
		fmt.Fprintln(os.Stdout)
	}

	if len(res.Recipes) >= 2 {
		fmt.Fprintf(os.Stdout, "Focus: %s vs %s\n", res.Comparison.FirstFocus, res.Comparison.SecondFocus)
		if len(res.Comparison.SharedTechniques) > 0 {
			fmt.Fprintf(os.Stdout, "Shared techniques: %s\n", strings.Join(res.Comparison.SharedTechniques, ", "))
		}
		fmt.Fprintln(os.Stdout)
	}

	meta := res.Metadata
	fmt.Fprintf(os.Stdout, "%d recipes in %dms (%d searches, %d model calls, %d retries)\n",
		len(res.Recipes), meta.ProcessingTimeMS, meta.SearchCalls, meta.LLMCalls, meta.RetryCount)
	printWarnings(meta.Warnings)
	return nil
}

func printWarnings(warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
	}
}
