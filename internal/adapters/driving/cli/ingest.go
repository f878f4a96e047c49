package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/logger"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Upload new files to object storage",
	Long: `Walks the directory (default: the configured incoming directory) and
uploads every file that has not been ingested before. A file is skipped iff
its exact path is already recorded; contents are not compared.

With --watch the command keeps running and ingests again whenever files
appear under the directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

var ingestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested files",
	Args:  cobra.NoArgs,
	RunE:  runIngestList,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the directory for new files")
	ingestCmd.AddCommand(ingestListCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest: %w", errNoService)
	}

	dir := settings.Local.IncomingDir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return domain.NewValidationError("dir", "no directory given and none configured")
	}

	ctx := cmd.Context()
	if err := ingestOnce(ctx, cmd, dir); err != nil {
		return err
	}
	if !ingestWatch {
		return nil
	}

	if changeNotifier == nil {
		return fmt.Errorf("watch: %w", errNoService)
	}
	changes, err := changeNotifier.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	cmd.Printf("Watching %s for new files (Ctrl+C to stop)...\n", dir)

	for range changes {
		err := ingestOnce(ctx, cmd, dir)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrDedupStore):
			// Continuing would re-upload everything.
			return err
		default:
			logger.Warn("%v; still watching %s", err, dir)
		}
	}
	return nil
}

// ingestOnce runs one ingestion pass and prints its report.
func ingestOnce(ctx context.Context, cmd *cobra.Command, dir string) error {
	cmd.Printf("Ingesting %s...\n", dir)

	report, err := ingestService.IngestDir(ctx, dir)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Uploaded %d, skipped %d, failed %d\n", report.Uploaded, report.Skipped, report.Failed())
	for _, f := range report.Failures {
		logger.Warn("Upload failed: %s: %s", f.Path, f.Error)
	}
	return nil
}

func runIngestList(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest: %w", errNoService)
	}

	records, err := ingestService.Ingested(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list ingested files: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No files ingested yet.")
		return nil
	}

	for _, r := range records {
		cmd.Printf("%s  %s -> %s\n", r.UploadedAt.Format("2006-01-02 15:04:05"), r.LocalPath, r.StorageKey)
	}
	cmd.Printf("\n%d files\n", len(records))
	return nil
}
