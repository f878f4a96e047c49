package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediamind/internal/logger"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract page passages from stored PDFs",
	Long: `Downloads every PDF under the raw prefix, extracts one passage per page
(with OCR of embedded images when enabled) and writes the chunk set that the
index command reads. Encrypted or unreadable PDFs are skipped and reported.`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the vector index",
	Long: `Embeds every extracted passage and publishes a new index snapshot.
Queries keep using the previous snapshot until the new one is complete.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run extract and index in sequence",
	Long: `Runs extraction followed by a full index rebuild. Pass --ingest to
upload new files from the incoming directory first.`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

var pipelineIngest bool

func init() {
	pipelineCmd.Flags().BoolVar(&pipelineIngest, "ingest", false, "ingest the incoming directory first")
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(pipelineCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	if extractService == nil {
		return fmt.Errorf("extract: %w", errNoService)
	}

	report, err := extractService.ExtractAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	cmd.Printf("Extracted %d passages from %d PDFs (%d skipped)\n",
		len(report.Chunks), report.Documents, len(report.Skipped))
	for _, s := range report.Skipped {
		cmd.Printf("  skipped %s: %s\n", s.Path, s.Reason)
	}
	return nil
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return fmt.Errorf("index: %w", errNoService)
	}

	info, err := indexService.Build(cmd.Context())
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	cmd.Printf("Published snapshot %s: %d passages, %d dimensions (%s)\n",
		info.Version, info.Records, info.Dimensions, info.Model)
	return nil
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	if pipelineIngest {
		logger.Section("Ingest")
		if err := runIngest(cmd, nil); err != nil {
			return err
		}
	}
	if err := runExtract(cmd, nil); err != nil {
		return err
	}
	return runIndex(cmd, nil)
}
