package cli

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

var (
	previewOutput string
	previewURL    bool
)

var previewCmd = &cobra.Command{
	Use:   "preview [key] [page]",
	Short: "Render a page of a stored PDF",
	Long: `Renders one page of a stored PDF to PNG. The key is the storage key shown
in search results, e.g. raw/pdf/report.pdf. Pages start at 1.

With --url only the presigned download link of the document is printed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "output file (default: <name>-p<page>.png)")
	previewCmd.Flags().BoolVar(&previewURL, "url", false, "print a presigned download URL instead")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	if previewService == nil {
		return fmt.Errorf("preview: %w", errNoService)
	}
	key := args[0]

	if previewURL {
		url, err := previewService.DocumentURL(cmd.Context(), key)
		if err != nil {
			return fmt.Errorf("presign failed: %w", err)
		}
		cmd.Println(url)
		return nil
	}

	if len(args) < 2 {
		return domain.NewValidationError("page", "required unless --url is set")
	}
	page, err := strconv.Atoi(args[1])
	if err != nil {
		return domain.NewValidationError("page", "must be a number")
	}

	png, err := previewService.RenderPage(cmd.Context(), key, page)
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}

	out := previewOutput
	if out == "" {
		out = fmt.Sprintf("%s-p%d.png", strings.TrimSuffix(path.Base(key), path.Ext(key)), page)
	}
	if err := os.WriteFile(out, png, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	cmd.Printf("Wrote %s (%d bytes)\n", out, len(png))
	return nil
}
