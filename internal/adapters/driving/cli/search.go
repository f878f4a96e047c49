package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

var (
	searchTopK     int
	searchJSON     bool
	searchMinScore float64
	searchDocs     bool
)

var searchCmd = &cobra.Command{
	Use:   "search <question>...",
	Short: "Find the most relevant pages",
	Long: `Embeds the question and lists the closest pages of the indexed PDFs by
inner-product similarity, best first. No answer is generated.

Words after the command are joined into one question, so quoting is optional.`,
	Example: `  mediamind search why do cats sleep so much
  mediamind search "interest rates" -k 10 --min-score 0.5
  mediamind search inflation --docs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", domain.DefaultTopK, "maximum number of passages")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "drop passages scoring below this")
	searchCmd.Flags().BoolVar(&searchDocs, "docs", false, "list matching documents instead of pages")
	rootCmd.AddCommand(searchCmd)
}

// docHit is one document in --docs output.
type docHit struct {
	DocPath   string  `json:"doc_path"`
	BestScore float64 `json:"best_score"`
	Pages     []int   `json:"pages"`
}

// groupByDocument folds passages into documents, keeping the rank order of
// each document's best page.
func groupByDocument(passages []domain.Passage) []docHit {
	var hits []docHit
	index := make(map[string]int)
	for _, p := range passages {
		i, ok := index[p.DocPath]
		if !ok {
			i = len(hits)
			index[p.DocPath] = i
			hits = append(hits, docHit{DocPath: p.DocPath, BestScore: p.Score})
		}
		hits[i].Pages = append(hits[i].Pages, p.Loc.Page)
	}
	return hits
}

func aboveScore(passages []domain.Passage, floor float64) []domain.Passage {
	kept := passages[:0:0]
	for _, p := range passages {
		if p.Score >= floor {
			kept = append(kept, p)
		}
	}
	return kept
}

func runSearch(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	if searchService == nil {
		return fmt.Errorf("search: %w", errNoService)
	}

	passages, err := searchService.Search(cmd.Context(), question, searchTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if cmd.Flags().Changed("min-score") {
		passages = aboveScore(passages, searchMinScore)
	}

	if searchDocs {
		docs := groupByDocument(passages)
		if searchJSON {
			return printJSON(cmd, docs)
		}
		if len(docs) == 0 {
			cmd.Println("No documents found.")
			return nil
		}
		for _, d := range docs {
			cmd.Printf("  %-40s %.3f  pages %s\n", d.DocPath, d.BestScore, joinInts(d.Pages))
		}
		return nil
	}

	if searchJSON {
		return printJSON(cmd, passages)
	}
	if len(passages) == 0 {
		cmd.Println("No passages found.")
		return nil
	}

	cmd.Println("Passages:")
	cmd.Println()
	printPassages(cmd, question, passages)
	return nil
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
