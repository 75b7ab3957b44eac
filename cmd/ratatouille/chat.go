package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brooondooon/ratatouille/internal/intent"
	"github.com/brooondooon/ratatouille/internal/pipeline"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask for recipes in natural language",
	Long: `Chat reads a free-form message, extracts the learning goal, skill level,
and dietary restrictions from it, and runs the same pipeline as recommend.`,
	Example: `  ratatouille chat "I've never made bread before, teach me something easy"
  ratatouille chat "advanced pasta techniques, vegetarian please" --format json`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().String("format", "table", "output format: table, json, or yaml")
	pipelineFlags(chatCmd)

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a message, e.g. %q", "I want to learn pan sauces")
	}
	message := strings.Join(args, " ")

	cfg := pipelineConfig(cmd)
	ctx := context.Background()

	parser := &intent.Parser{AI: newCompleter(cfg)}
	it, err := parser.Extract(ctx, message)
	if err != nil {
		return fmt.Errorf("could not understand the request, try rephrasing: %w", err)
	}
	fmt.Fprintf(os.Stderr, "understood: learn %s (%s)\n", it.LearningGoal, it.SkillLevel)

	store, closeCache, err := openSearchCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache()
	runner := buildRunner(cfg, store, progressWriter())

	res, err := runner.Recommend(ctx, pipeline.Request{
		LearningGoal:        it.LearningGoal,
		SkillLevel:          it.SkillLevel,
		DietaryRestrictions: it.DietaryRestrictions,
	})
	if errors.Is(err, pipeline.ErrNoRecipes) {
		printWarnings(res.Metadata.Warnings)
		return fmt.Errorf("no recipes found after %d broadened retries: try rephrasing the request", res.Metadata.RetryCount)
	}
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "table" || format == "" {
		fmt.Fprintf(os.Stdout, "%s\n\n", intent.Reply(it.LearningGoal, it.SkillLevel, len(res.Recipes)))
	}
	return formatResult(res, format)
}
