package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediamind/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mediamind/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Show the effective configuration",
	Long:        `Shows the configuration after defaults, the config file and MEDIAMIND_* environment overrides are applied. Secrets are masked.`,
	Annotations: map[string]string{annotationNoServices: "true"},
	RunE:        runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show the effective configuration",
	Annotations: map[string]string{annotationNoServices: "true"},
	RunE:        runConfigShow,
}

var configKeysCmd = &cobra.Command{
	Use:         "keys",
	Short:       "List configuration keys and their environment variables",
	Annotations: map[string]string{annotationNoServices: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, key := range file.Keys() {
			cmd.Printf("  %-30s %s\n", key, file.EnvName(key))
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	s, err := file.LoadUnvalidated(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printSettings(cmd, s)

	if err := s.Validate(); err != nil {
		cmd.Println()
		cmd.Printf("Configuration is incomplete: %v\n", err)
	}
	return nil
}

func printSettings(cmd *cobra.Command, s domain.Settings) {
	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[S3]")
	cmd.Printf("  Endpoint: %s\n", orUnset(s.Storage.Endpoint))
	cmd.Printf("  Bucket: %s\n", orUnset(s.Storage.Bucket))
	cmd.Printf("  Raw prefix: %s\n", orUnset(s.Storage.RawPrefix))
	cmd.Printf("  Access key: %s\n", maskOrUnset(s.Storage.AccessKey))
	cmd.Printf("  Secret key: %s\n", maskOrUnset(s.Storage.SecretKey))
	cmd.Println()

	cmd.Println("[Local]")
	cmd.Printf("  Data dir: %s\n", s.Local.DataDir)
	cmd.Printf("  Incoming dir: %s\n", s.Local.IncomingDir)
	cmd.Printf("  Snapshots kept: %d\n", s.Local.KeepSnapshots)
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", s.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", s.Embedding.Model)
	if s.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", s.Embedding.BaseURL)
	}
	if s.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskOrUnset(s.Embedding.APIKey))
	}
	cmd.Printf("  Max chars: %d\n", s.Embedding.MaxChars)
	cmd.Printf("  Status: %s\n", configuredStatus(s.Embedding.IsConfigured()))
	cmd.Println()

	// LLM settings
	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", s.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", s.LLM.Model)
	if s.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", s.LLM.BaseURL)
	}
	if s.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskOrUnset(s.LLM.APIKey))
	}
	cmd.Printf("  Max tokens: %d, timeout: %s\n", s.LLM.MaxTokens, s.LLM.Timeout)
	cmd.Printf("  Status: %s\n", configuredStatus(s.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[OCR]")
	cmd.Printf("  Enabled: %t (%s)\n", s.OCR.Enabled, s.OCR.Language)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", s.Server.Addr)
	cmd.Printf("  Rate limit: %.1f req/s, burst %d\n", s.Server.RequestsPerSecond, s.Server.Burst)
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func orUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func maskOrUnset(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

// maskAPIKey masks an API key for display.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
