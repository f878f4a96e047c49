package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediamind/internal/adapters/driven/ai"
)

// errUnhealthy is returned when a required dependency fails its check.
var errUnhealthy = errors.New("one or more services are unreachable")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check connectivity to external services",
	Long: `Pings object storage, the embedding and language model providers, and
the OCR and rendering tools. Services that are not configured are reported
as skipped.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	results := ai.Check(cmd.Context(), healthTargets...)

	st := newStyler(cmd)
	for _, r := range results {
		switch {
		case r.Skipped:
			cmd.Printf("  %-16s %s\n", r.Name, st.render(dimStyle, "skipped (not configured)"))
		case r.OK():
			cmd.Printf("  %-16s ok (%s)\n", r.Name, r.Duration.Round(time.Millisecond))
		default:
			cmd.Printf("  %-16s FAILED: %v\n", r.Name, r.Err)
		}
	}

	if !ai.Healthy(results) {
		return fmt.Errorf("check: %w", errUnhealthy)
	}
	return nil
}
