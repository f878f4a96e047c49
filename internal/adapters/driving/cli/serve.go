package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediamind/internal/adapters/driving/httpapi"
)

var serveAddr string

// writeTimeoutMargin keeps the response deadline past the synthesis bound.
const writeTimeoutMargin = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API:

  POST /chat           {"question": "...", "top_k": 5}
  GET  /preview        ?key=raw/pdf/report.pdf&page=3
  GET  /documents/url  ?key=raw/pdf/report.pdf
  GET  /ping

The server stops gracefully on Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := serveAddr
	if addr == "" {
		addr = settings.Server.Addr
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Answer:  answerService,
		Preview: previewService,
	}, httpapi.Options{
		Addr:              addr,
		RequestsPerSecond: settings.Server.RequestsPerSecond,
		Burst:             settings.Server.Burst,
		WriteTimeout:      settings.LLM.Timeout + writeTimeoutMargin,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run(cmd.Context())
}
