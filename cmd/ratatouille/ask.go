package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brooondooon/ratatouille/internal/intent"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a cooking question without searching for recipes",
	Long: `Ask answers a one-off cooking question conversationally. No searches run
and no recipes are recommended; use it for technique questions like "why
did my pan sauce break".`,
	RunE: runAsk,
}

func init() {
	pipelineFlags(askCmd)

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a question, e.g. %q", "how do I deglaze a pan")
	}
	question := strings.Join(args, " ")

	parser := &intent.Parser{AI: newCompleter(pipelineConfig(cmd))}
	answer, err := parser.AnswerFollowUp(context.Background(), question)
	if err != nil {
		return err
	}

	fmt.Println(answer)
	return nil
}
