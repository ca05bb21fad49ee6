package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/pagerag/internal/domain"
)

type answerResult struct {
	hits   []domain.Hit
	answer domain.Answer
}

func newAskCmd(c *cli) *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "ask <question>...",
		Short: "Answer a question from the indexed pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")

			ctx := cmd.Context()
			a := newApp(ctx, c.cfg, c.logger, true)
			defer a.Close()

			res, err := a.ask(ctx, question, topK)
			if err != nil {
				return err
			}
			printAnswer(cmd.OutOrStdout(), question, res)
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "pages to retrieve (default: retrieval.top_k)")
	return cmd
}

func printAnswer(w io.Writer, question string, res answerResult) {
	fmt.Fprintf(w, "QUESTION: %s\n", question)
	for _, h := range res.hits {
		fmt.Fprintf(w, "  - Page %d, score %.3f\n", h.Page, h.Score)
	}
	if res.answer.Outcome == domain.OutcomeNoContext {
		fmt.Fprintln(w, "No context found")
		return
	}
	fmt.Fprintf(w, "ANSWER: %s\n", res.answer.Text)
}
