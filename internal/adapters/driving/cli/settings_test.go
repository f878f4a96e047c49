package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskAPIKey(t *testing.T) {
	for in, want := range map[string]string{
		"":                          "****",
		"abc123":                    "****",
		"12345678":                  "****",
		"minioadmin-secret":         "mini...cret",
		"wJalrXUtnFEMI/K7MDENG/bPx": "wJal.../bPx",
	} {
		assert.Equal(t, want, maskAPIKey(in), in)
	}
}

func TestOrUnset(t *testing.T) {
	assert.Equal(t, "(not set)", orUnset(""))
	assert.Equal(t, "pdfs", orUnset("pdfs"))
}

func TestConfiguredStatus(t *testing.T) {
	assert.Equal(t, "configured", configuredStatus(true))
	assert.Equal(t, "not configured", configuredStatus(false))
}

func TestConfigKeysCmd(t *testing.T) {
	defer resetFlags()

	out, err := executeCommand("config", "keys")

	require.NoError(t, err)
	assert.Contains(t, out, "s3.bucket")
	assert.Contains(t, out, "MEDIAMIND_S3_BUCKET")
}

func TestConfigShowCmd_MasksSecrets(t *testing.T) {
	t.Setenv("MEDIAMIND_S3_BUCKET", "library")
	t.Setenv("MEDIAMIND_S3_AWS_SECRET_ACCESS_KEY", "supersecretvalue123")

	out, err := executeCommand("config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Bucket: library")
	assert.NotContains(t, out, "supersecretvalue123")
	assert.Contains(t, out, "supe...e123")
}
