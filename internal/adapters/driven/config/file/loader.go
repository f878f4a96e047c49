package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/logger"
)

// EnvPrefix prefixes environment overrides: s3.bucket is MEDIAMIND_S3_BUCKET.
const EnvPrefix = "MEDIAMIND_"

// DefaultFiles are searched in the working directory when no path is given.
var DefaultFiles = []string{"config.toml", "config.yaml", "config.yml"}

// binding maps one configuration key onto a settings field.
type binding struct {
	key   string
	apply func(v *Values, key string, s *domain.Settings) error
}

var bindings = []binding{
	{"s3.endpoint_url", str(func(s *domain.Settings) *string { return &s.Storage.Endpoint })},
	{"s3.aws_access_key_id", str(func(s *domain.Settings) *string { return &s.Storage.AccessKey })},
	{"s3.aws_secret_access_key", str(func(s *domain.Settings) *string { return &s.Storage.SecretKey })},
	{"s3.bucket", str(func(s *domain.Settings) *string { return &s.Storage.Bucket })},
	{"s3.raw_prefix", str(func(s *domain.Settings) *string { return &s.Storage.RawPrefix })},
	{"s3.region", str(func(s *domain.Settings) *string { return &s.Storage.Region })},
	{"s3.insecure_skip_verify", boolean(func(s *domain.Settings) *bool { return &s.Storage.InsecureSkipVerify })},
	{"s3.presign_expiry_secs", seconds(func(s *domain.Settings) *time.Duration { return &s.Storage.PresignExpiry })},

	{"local.data_dir", str(func(s *domain.Settings) *string { return &s.Local.DataDir })},
	{"local.incoming_dir", str(func(s *domain.Settings) *string { return &s.Local.IncomingDir })},
	{"local.keep_snapshots", integer(func(s *domain.Settings) *int { return &s.Local.KeepSnapshots })},

	{"embedding.provider", provider(func(s *domain.Settings) *domain.AIProvider { return &s.Embedding.Provider })},
	{"embedding.model", str(func(s *domain.Settings) *string { return &s.Embedding.Model })},
	{"embedding.base_url", str(func(s *domain.Settings) *string { return &s.Embedding.BaseURL })},
	{"embedding.api_key", str(func(s *domain.Settings) *string { return &s.Embedding.APIKey })},
	{"embedding.dimensions", integer(func(s *domain.Settings) *int { return &s.Embedding.Dimensions })},
	{"embedding.max_chars", integer(func(s *domain.Settings) *int { return &s.Embedding.MaxChars })},
	{"embedding.batch_size", integer(func(s *domain.Settings) *int { return &s.Embedding.BatchSize })},
	{"embedding.timeout_secs", seconds(func(s *domain.Settings) *time.Duration { return &s.Embedding.Timeout })},

	{"llm.provider", provider(func(s *domain.Settings) *domain.AIProvider { return &s.LLM.Provider })},
	{"llm.model", str(func(s *domain.Settings) *string { return &s.LLM.Model })},
	{"llm.base_url", str(func(s *domain.Settings) *string { return &s.LLM.BaseURL })},
	{"llm.api_key", str(func(s *domain.Settings) *string { return &s.LLM.APIKey })},
	{"llm.max_tokens", integer(func(s *domain.Settings) *int { return &s.LLM.MaxTokens })},
	{"llm.temperature", float(func(s *domain.Settings) *float64 { return &s.LLM.Temperature })},
	{"llm.timeout_secs", seconds(func(s *domain.Settings) *time.Duration { return &s.LLM.Timeout })},
	{"llm.keep_alive", str(func(s *domain.Settings) *string { return &s.LLM.KeepAlive })},

	{"ocr.enabled", boolean(func(s *domain.Settings) *bool { return &s.OCR.Enabled })},
	{"ocr.tesseract_path", str(func(s *domain.Settings) *string { return &s.OCR.TesseractPath })},
	{"ocr.pdfimages_path", str(func(s *domain.Settings) *string { return &s.OCR.PDFImagesPath })},
	{"ocr.language", str(func(s *domain.Settings) *string { return &s.OCR.Language })},

	{"render.pdftoppm_path", str(func(s *domain.Settings) *string { return &s.Render.PDFToPPMPath })},
	{"render.dpi", integer(func(s *domain.Settings) *int { return &s.Render.DPI })},

	{"server.addr", str(func(s *domain.Settings) *string { return &s.Server.Addr })},
	{"server.requests_per_second", float(func(s *domain.Settings) *float64 { return &s.Server.RequestsPerSecond })},
	{"server.burst", integer(func(s *domain.Settings) *int { return &s.Server.Burst })},
}

// Keys returns every recognised configuration key.
func Keys() []string {
	keys := make([]string, len(bindings))
	for i, b := range bindings {
		keys[i] = b.key
	}
	return keys
}

// EnvName returns the environment variable overriding key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load reads settings from path (or the first of DefaultFiles found when
// path is empty), overlays the environment, and validates the result.
func Load(path string) (domain.Settings, error) {
	settings, err := LoadUnvalidated(path)
	if err != nil {
		return settings, err
	}
	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

// LoadUnvalidated is Load without the final validation, for commands that
// report on a partial configuration.
func LoadUnvalidated(path string) (domain.Settings, error) {
	settings := domain.DefaultSettings()

	path, err := resolvePath(path)
	if err != nil {
		return settings, err
	}
	loadDotEnv(path)

	values := NewValues(nil)
	if path != "" {
		values, err = ReadValues(path)
		if err != nil {
			return settings, fmt.Errorf("%w: %v", domain.ErrConfig, err)
		}
		logger.Debug("Loaded configuration from %s", path)
	}
	overlayEnv(values)

	if err := Apply(values, &settings); err != nil {
		return settings, err
	}
	applyProviderDefaults(values, &settings)
	settings.Normalise()
	return settings, nil
}

// applyProviderDefaults fills model names and API keys that depend on the
// chosen provider when the file leaves them out.
func applyProviderDefaults(values *Values, s *domain.Settings) {
	if _, ok := values.Get("embedding.model"); !ok {
		s.Embedding.Model = domain.DefaultEmbeddingModels()[s.Embedding.Provider]
	}
	if _, ok := values.Get("llm.model"); !ok {
		s.LLM.Model = domain.DefaultLLMModels()[s.LLM.Provider]
	}
	apiKey := os.Getenv("OPENAI_API_KEY")
	if s.Embedding.Provider == domain.AIProviderOpenAI && s.Embedding.APIKey == "" {
		s.Embedding.APIKey = apiKey
	}
	if s.LLM.Provider == domain.AIProviderOpenAI && s.LLM.APIKey == "" {
		s.LLM.APIKey = apiKey
	}
}

// Apply copies every recognised key from values onto settings.
func Apply(values *Values, settings *domain.Settings) error {
	var errs []error
	for _, b := range bindings {
		if err := b.apply(values, b.key, settings); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrConfig, errors.Join(errs...))
	}
	return nil
}

// resolvePath returns an explicit path unchanged (it must exist) or the
// first default file present. No file at all is not an error; the
// environment may carry everything.
func resolvePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrConfig, err)
		}
		return path, nil
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}

// loadDotEnv loads .env from the working directory and from beside the
// config file. Variables already set in the environment win.
func loadDotEnv(configPath string) {
	candidates := []string{".env"}
	if configPath != "" {
		beside := filepath.Join(filepath.Dir(configPath), ".env")
		if beside != ".env" {
			candidates = append(candidates, beside)
		}
	}
	for _, f := range candidates {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			logger.Warn("Ignoring %s: %v", f, err)
		}
	}
}

func overlayEnv(values *Values) {
	for _, b := range bindings {
		if v, ok := os.LookupEnv(EnvName(b.key)); ok {
			values.Set(b.key, v)
		}
	}
}

// ==================== Bindings ====================

func str(field func(*domain.Settings) *string) func(*Values, string, *domain.Settings) error {
	return func(v *Values, key string, s *domain.Settings) error {
		if val, ok := v.String(key); ok {
			*field(s) = val
		}
		return nil
	}
}

func integer(field func(*domain.Settings) *int) func(*Values, string, *domain.Settings) error {
	return func(v *Values, key string, s *domain.Settings) error {
		val, ok, err := v.Int(key)
		if ok && err == nil {
			*field(s) = val
		}
		return err
	}
}

func float(field func(*domain.Settings) *float64) func(*Values, string, *domain.Settings) error {
	return func(v *Values, key string, s *domain.Settings) error {
		val, ok, err := v.Float(key)
		if ok && err == nil {
			*field(s) = val
		}
		return err
	}
}

func boolean(field func(*domain.Settings) *bool) func(*Values, string, *domain.Settings) error {
	return func(v *Values, key string, s *domain.Settings) error {
		val, ok, err := v.Bool(key)
		if ok && err == nil {
			*field(s) = val
		}
		return err
	}
}

func seconds(field func(*domain.Settings) *time.Duration) func(*Values, string, *domain.Settings) error {
	return func(v *Values, key string, s *domain.Settings) error {
		val, ok, err := v.Seconds(key)
		if ok && err == nil {
			*field(s) = val
		}
		return err
	}
}

func provider(field func(*domain.Settings) *domain.AIProvider) func(*Values, string, *domain.Settings) error {
	return func(v *Values, key string, s *domain.Settings) error {
		val, ok := v.String(key)
		if !ok {
			return nil
		}
		p := domain.AIProvider(strings.ToLower(strings.TrimSpace(val)))
		if !p.IsValid() {
			return fmt.Errorf("%s: unknown provider %q", key, val)
		}
		*field(s) = p
		return nil
	}
}
