package cli

import (
	"bytes"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui"
	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/logger"
)

var tuiTopK int

var errNotTerminal = errors.New("tui needs an interactive terminal; use ask or search instead")

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Ask questions in a full-screen terminal UI",
	Long: `Ask questions about the indexed PDFs in a full-screen terminal UI.

Each answer cites passages by number; open a passage to read the whole
page and fetch a download link for its document. Press ? for keys.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiTopK, "top-k", "k", domain.DefaultTopK, "passages retrieved per question")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	app, err := tui.NewApp(tui.NewPorts(answerService, previewService))
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if !isTerminal(cmd.OutOrStdout()) {
		return errNotTerminal
	}
	app.WithContext(cmd.Context()).WithTopK(tuiTopK)

	// Log lines would tear the alternate screen; hold them until it closes.
	var held bytes.Buffer
	prev := logger.Output()
	logger.SetOutput(&held)
	defer func() {
		logger.SetOutput(prev)
		_, _ = held.WriteTo(prev)
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tui: panic: %v\n%s", r, debug.Stack())
		}
	}()

	if err := app.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
