package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/belljun3395/okchat/internal/usecase/pipeline"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Run the pipeline for one question",
	Long: `ask runs analysis, search, fusion, permission filtering and context
assembly for a single question and prints the rendered prompt with its
sources. With --answer the chat model is called as well.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("email", "", "user email for permission filtering")
	askCmd.Flags().Bool("deep-think", false, "re-rank the top results by embedding similarity")
	askCmd.Flags().Bool("answer", false, "call the chat model with the rendered prompt")
	askCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	email, _ := cmd.Flags().GetString("email")
	deepThink, _ := cmd.Flags().GetBool("deep-think")
	withAnswer, _ := cmd.Flags().GetBool("answer")
	asJSON, _ := cmd.Flags().GetBool("json")

	in := pipeline.UserInput{
		Query:     strings.Join(args, " "),
		Email:     email,
		DeepThink: deepThink,
	}

	var ans pipeline.Answer
	if withAnswer {
		ans, err = a.pipeline.Answer(cmd.Context(), in)
	} else {
		ans.CompleteContext, err = a.pipeline.Run(cmd.Context(), in)
	}
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ans) //nolint:wrapcheck // terminal output
	}
	printAnswer(out, ans)
	return nil
}

func printAnswer(w io.Writer, ans pipeline.Answer) {
	fmt.Fprintf(w, "Request: %s\nType: %s (%.2f)\n\n", ans.RequestID, ans.QueryType, ans.Confidence)
	if ans.Text != "" {
		fmt.Fprintf(w, "%s\n\n", ans.Text)
	} else {
		fmt.Fprintf(w, "%s\n\n", ans.PromptText)
	}
	if len(ans.Sources) == 0 {
		fmt.Fprintln(w, "No sources.")
		return
	}
	fmt.Fprintln(w, "Sources:")
	for i, s := range ans.Sources {
		fmt.Fprintf(w, "  [%d] %s (%.3f)", i+1, s.Title, s.Score)
		if s.URL != "" {
			fmt.Fprintf(w, " %s", s.URL)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\nTokens: chat %d, embedding %d\n", ans.Usage.ChatTokens, ans.Usage.EmbeddingTokens)
}
