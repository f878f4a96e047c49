package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API (or any compatible endpoint).
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// StorageSettings configures the object store holding raw documents.
type StorageSettings struct {
	// Endpoint is the S3-compatible endpoint URL, e.g. http://localhost:9000.
	Endpoint string

	AccessKey string
	SecretKey string
	Bucket    string

	// RawPrefix is prepended to every uploaded key. Always ends in "/".
	RawPrefix string

	// Region is optional; MinIO ignores it.
	Region string

	// InsecureSkipVerify disables TLS certificate checks for self-signed endpoints.
	InsecureSkipVerify bool

	// PresignExpiry bounds presigned document URLs.
	PresignExpiry time.Duration
}

// PDFPrefix returns the key prefix under which PDFs are stored.
func (s StorageSettings) PDFPrefix() string {
	return s.RawPrefix + string(MediaPDF) + "/"
}

// LocalSettings configures on-disk state.
type LocalSettings struct {
	// DataDir is the root for snapshots, the dedup table and chunk files.
	DataDir string

	// IncomingDir is the default directory scanned by ingest.
	IncomingDir string

	// KeepSnapshots is how many published snapshots are retained.
	KeepSnapshots int
}

// SnapshotsDir returns the directory holding versioned snapshots.
func (l LocalSettings) SnapshotsDir() string {
	return filepath.Join(l.DataDir, "snapshots")
}

// IngestDBPath returns the path of the dedup table database.
func (l LocalSettings) IngestDBPath() string {
	return filepath.Join(l.DataDir, "ingest.db")
}

// ProcessedDir returns the directory holding the extracted chunk set.
func (l LocalSettings) ProcessedDir() string {
	return filepath.Join(l.DataDir, "processed")
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's known dimensionality.
	Dimensions int

	// MaxChars is the truncation limit applied to chunk text before encoding.
	MaxChars int

	// BatchSize is the number of texts sent per embedding call during builds.
	BatchSize int

	// Timeout bounds each embedding call.
	Timeout time.Duration
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// MaxTokens caps the generated answer length.
	MaxTokens int

	// Temperature is passed through to the model.
	Temperature float64

	// Timeout bounds the single synthesis call.
	Timeout time.Duration

	// KeepAlive is how long a local model stays loaded (Ollama only).
	KeepAlive string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// OCRSettings configures the optional OCR fallback.
type OCRSettings struct {
	Enabled bool

	// TesseractPath is the tesseract binary.
	TesseractPath string

	// PDFImagesPath is the poppler pdfimages binary.
	PDFImagesPath string

	// Language is the tesseract language code, e.g. "eng".
	Language string
}

// RenderSettings configures page previews.
type RenderSettings struct {
	// PDFToPPMPath is the poppler pdftoppm binary.
	PDFToPPMPath string

	// DPI is the preview resolution (72 x zoom).
	DPI int
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr string

	// RequestsPerSecond and Burst configure the token-bucket limiter.
	// A zero RequestsPerSecond disables limiting.
	RequestsPerSecond float64
	Burst             int
}

// Settings is the single runtime configuration, read once at start.
type Settings struct {
	Storage   StorageSettings
	Local     LocalSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	OCR       OCRSettings
	Render    RenderSettings
	Server    ServerSettings
}

// Default values.
const (
	DefaultRawPrefix     = "raw/"
	DefaultDataDir       = "data"
	DefaultIncomingDir   = "data/incoming"
	DefaultKeepSnapshots = 2
	DefaultMaxChars      = 512
	DefaultBatchSize     = 32
	DefaultMaxTokens     = 256
	DefaultPreviewDPI    = 108
	DefaultServerAddr    = ":8001"
)

// DefaultSettings returns settings with sensible defaults.
// Object storage credentials and bucket have no defaults and must be supplied.
func DefaultSettings() Settings {
	return Settings{
		Storage: StorageSettings{
			RawPrefix:     DefaultRawPrefix,
			PresignExpiry: time.Hour,
		},
		Local: LocalSettings{
			DataDir:       DefaultDataDir,
			IncomingDir:   DefaultIncomingDir,
			KeepSnapshots: DefaultKeepSnapshots,
		},
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOllama,
			Model:     DefaultEmbeddingModels()[AIProviderOllama],
			MaxChars:  DefaultMaxChars,
			BatchSize: DefaultBatchSize,
			Timeout:   30 * time.Second,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOllama,
			Model:       DefaultLLMModels()[AIProviderOllama],
			MaxTokens:   DefaultMaxTokens,
			Temperature: 0.2,
			Timeout:     120 * time.Second,
		},
		OCR: OCRSettings{
			TesseractPath: "tesseract",
			PDFImagesPath: "pdfimages",
			Language:      "eng",
		},
		Render: RenderSettings{
			PDFToPPMPath: "pdftoppm",
			DPI:          DefaultPreviewDPI,
		},
		Server: ServerSettings{
			Addr:              DefaultServerAddr,
			RequestsPerSecond: 10,
			Burst:             20,
		},
	}
}

// Normalise tidies values that have a canonical form.
func (s *Settings) Normalise() {
	s.Storage.Endpoint = strings.TrimSpace(s.Storage.Endpoint)
	s.Storage.RawPrefix = strings.TrimLeft(strings.TrimSpace(s.Storage.RawPrefix), "/")
	if s.Storage.RawPrefix != "" && !strings.HasSuffix(s.Storage.RawPrefix, "/") {
		s.Storage.RawPrefix += "/"
	}
}

// Validate checks the settings eagerly. Every missing required field is
// named in one error so a misconfigured start fails once, not repeatedly.
func (s Settings) Validate() error {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"s3.endpoint_url", s.Storage.Endpoint},
		{"s3.aws_access_key_id", s.Storage.AccessKey},
		{"s3.aws_secret_access_key", s.Storage.SecretKey},
		{"s3.bucket", s.Storage.Bucket},
		{"s3.raw_prefix", s.Storage.RawPrefix},
		{"local.data_dir", s.Local.DataDir},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfig, strings.Join(missing, ", "))
	}

	if !s.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not usable", ErrConfig, s.Embedding.Provider)
	}
	if s.Embedding.MaxChars < 1 {
		return fmt.Errorf("%w: embedding.max_chars must be positive", ErrConfig)
	}
	if s.Embedding.BatchSize < 1 {
		return fmt.Errorf("%w: embedding.batch_size must be positive", ErrConfig)
	}
	if s.LLM.Provider != "" && !s.LLM.IsConfigured() {
		return fmt.Errorf("%w: llm provider %q is not usable", ErrConfig, s.LLM.Provider)
	}
	if s.LLM.MaxTokens < 1 {
		return fmt.Errorf("%w: llm.max_tokens must be positive", ErrConfig)
	}
	if s.Local.KeepSnapshots < 1 {
		return fmt.Errorf("%w: local.keep_snapshots must be at least 1", ErrConfig)
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "mistral",
		AIProviderOpenAI: "gpt-4o-mini",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"all-minilm":        384,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
