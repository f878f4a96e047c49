// Package cli implements the mediamind command line.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediamind/internal/adapters/driven/ai"
	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
	"github.com/custodia-labs/mediamind/internal/core/ports/driving"
	"github.com/custodia-labs/mediamind/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// annotationNoServices marks commands that run without wiring services.
const annotationNoServices = "mediamind/no-services"

// Services used by the commands. They are wired from configuration before
// a command runs, or injected directly by SetServices.
var (
	settings       domain.Settings
	ingestService  driving.IngestService
	extractService driving.ExtractService
	indexService   driving.IndexService
	searchService  driving.SearchService
	answerService  driving.AnswerService
	previewService driving.PreviewService
	changeNotifier driven.ChangeNotifier
	healthTargets  []ai.Target
)

var (
	configPath string
	verbose    bool

	// injected is true when services were provided by SetServices.
	injected bool

	// closeServices releases wired resources.
	closeServices func()
)

var rootCmd = &cobra.Command{
	Use:   "mediamind",
	Short: "Ask questions over a PDF library",
	Long: `MediaMind ingests PDF documents into object storage, extracts one
passage per page, indexes the passages with an embedding model and answers
questions with citations to the passages it used.

Typical flow:
  mediamind ingest ./incoming
  mediamind pipeline
  mediamind ask "What drives stock prices?"`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		release()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default: ./config.toml or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
}

// Execute runs the root command.
func Execute() error {
	defer release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// Services groups the ports a command may use.
type Services struct {
	Settings       domain.Settings
	Ingest         driving.IngestService
	Extract        driving.ExtractService
	Index          driving.IndexService
	Search         driving.SearchService
	Answer         driving.AnswerService
	Preview        driving.PreviewService
	ChangeNotifier driven.ChangeNotifier
	HealthTargets  []ai.Target
}

// SetServices injects services and disables wiring from configuration.
// Passing nil restores configuration-driven wiring.
func SetServices(s *Services) {
	if s == nil {
		injected = false
		s = &Services{}
	} else {
		injected = true
	}
	settings = s.Settings
	ingestService = s.Ingest
	extractService = s.Extract
	indexService = s.Index
	searchService = s.Search
	answerService = s.Answer
	previewService = s.Preview
	changeNotifier = s.ChangeNotifier
	healthTargets = s.HealthTargets
}

func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if injected || cmd.Annotations[annotationNoServices] == "true" {
		return nil
	}

	w, err := wire(configPath)
	if err != nil {
		return err
	}
	SetServices(&w.Services)
	injected = false
	closeServices = w.Close
	return nil
}

func release() {
	if closeServices != nil {
		closeServices()
		closeServices = nil
	}
}
