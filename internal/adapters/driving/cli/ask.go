package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question with citations",
	Long: `Retrieves the most relevant pages and asks the language model to answer
using only those pages, citing them by their [n] markers.

When the model fails or times out the retrieved passages are still shown.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", domain.DefaultTopK, "number of passages to ground the answer on")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return fmt.Errorf("ask: %w", errNoService)
	}

	result, err := answerService.Ask(cmd.Context(), domain.Query{Question: args[0], TopK: askTopK})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, result)
	}

	st := newStyler(cmd)
	switch result.Status {
	case domain.AnswerOK:
		cmd.Println(st.render(titleStyle, "Answer:"))
		cmd.Println(result.Answer)
	case domain.AnswerNoPassages:
		cmd.Println("No passages found; nothing to answer from.")
		return nil
	default:
		cmd.Printf("No answer (%s): %s\n", result.Status, result.AnswerError)
	}

	cmd.Println()
	cmd.Println("Sources:")
	cmd.Println()
	printPassages(cmd, result.Question, result.Passages)
	return nil
}
