package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

const tomlConfig = `
[s3]
endpoint_url = "http://localhost:9000"
aws_access_key_id = "minio"
aws_secret_access_key = "minio123"
bucket = "media"
raw_prefix = "raw"
presign_expiry_secs = 600

[local]
data_dir = "/var/lib/mediamind"
keep_snapshots = 3

[embedding]
batch_size = 8
timeout_secs = 2.5

[llm]
temperature = 0.7

[ocr]
enabled = true
`

const yamlConfig = `
s3:
  endpoint_url: http://minio:9000
  aws_access_key_id: AKIA
  aws_secret_access_key: SECRET
  bucket: docs
  raw_prefix: uploads/
local:
  data_dir: data
server:
  addr: ":9090"
  requests_per_second: 2
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_TOML(t *testing.T) {
	settings, err := Load(writeConfig(t, "config.toml", tomlConfig))

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", settings.Storage.Endpoint)
	assert.Equal(t, "media", settings.Storage.Bucket)
	assert.Equal(t, "raw/", settings.Storage.RawPrefix, "prefix gains a trailing slash")
	assert.Equal(t, 10*time.Minute, settings.Storage.PresignExpiry)
	assert.Equal(t, "/var/lib/mediamind", settings.Local.DataDir)
	assert.Equal(t, 3, settings.Local.KeepSnapshots)
	assert.Equal(t, 8, settings.Embedding.BatchSize)
	assert.Equal(t, 2500*time.Millisecond, settings.Embedding.Timeout)
	assert.InDelta(t, 0.7, settings.LLM.Temperature, 1e-9)
	assert.True(t, settings.OCR.Enabled)

	// Untouched keys keep their defaults.
	assert.Equal(t, domain.DefaultMaxChars, settings.Embedding.MaxChars)
	assert.Equal(t, "all-minilm", settings.Embedding.Model)
}

func TestLoad_YAML(t *testing.T) {
	settings, err := Load(writeConfig(t, "config.yaml", yamlConfig))

	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", settings.Storage.Endpoint)
	assert.Equal(t, "AKIA", settings.Storage.AccessKey)
	assert.Equal(t, "uploads/", settings.Storage.RawPrefix)
	assert.Equal(t, ":9090", settings.Server.Addr)
	assert.InDelta(t, 2.0, settings.Server.RequestsPerSecond, 1e-9)
}

func TestLoad_MissingFieldsAllNamed(t *testing.T) {
	path := writeConfig(t, "config.yaml", "s3:\n  bucket: docs\n")

	_, err := Load(path)

	require.ErrorIs(t, err, domain.ErrConfig)
	for _, field := range []string{"s3.endpoint_url", "s3.aws_access_key_id", "s3.aws_secret_access_key"} {
		assert.Contains(t, err.Error(), field)
	}
	assert.NotContains(t, err.Error(), "s3.bucket")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvName("s3.bucket"), "from-env")
	t.Setenv(EnvName("local.keep_snapshots"), "5")
	t.Setenv(EnvName("ocr.enabled"), "true")

	settings, err := Load(writeConfig(t, "config.toml", tomlConfig))

	require.NoError(t, err)
	assert.Equal(t, "from-env", settings.Storage.Bucket)
	assert.Equal(t, 5, settings.Local.KeepSnapshots)
	assert.True(t, settings.OCR.Enabled)
}

func TestLoad_DotEnvBesideConfig(t *testing.T) {
	key := EnvName("s3.region")
	require.Empty(t, os.Getenv(key))
	t.Cleanup(func() { os.Unsetenv(key) })

	path := writeConfig(t, "config.toml", tomlConfig)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".env"), []byte(key+"=eu-west-1\n"), 0600))

	settings, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", settings.Storage.Region)
}

func TestLoad_ProviderDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv(EnvName("embedding.provider"), "openai")

	settings, err := Load(writeConfig(t, "config.toml", tomlConfig))

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, "sk-test", settings.Embedding.APIKey)
}

func TestLoad_BadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"integer", "local.keep_snapshots", "many"},
		{"boolean", "ocr.enabled", "perhaps"},
		{"float", "llm.temperature", "warm"},
		{"provider", "llm.provider", "anthropic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvName(tt.key), tt.val)

			_, err := Load(writeConfig(t, "config.toml", tomlConfig))

			assert.ErrorIs(t, err, domain.ErrConfig)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))

	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "config.ini", "[s3]\n"))

	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestLoadUnvalidated_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())

	settings, err := LoadUnvalidated("")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultDataDir, settings.Local.DataDir)
	assert.Error(t, settings.Validate())
}

func TestLoadUnvalidated_DefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yamlConfig), 0600))
	t.Chdir(dir)

	settings, err := LoadUnvalidated("")

	require.NoError(t, err)
	assert.Equal(t, "docs", settings.Storage.Bucket)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "MEDIAMIND_S3_ENDPOINT_URL", EnvName("s3.endpoint_url"))
}

func TestKeys(t *testing.T) {
	keys := Keys()

	assert.Contains(t, keys, "s3.raw_prefix")
	assert.Contains(t, keys, "local.data_dir")
}
