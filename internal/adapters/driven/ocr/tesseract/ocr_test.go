package tesseract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// mockRunner fakes pdfimages and tesseract.
type mockRunner struct {
	// images maps file names pdfimages should produce to their contents.
	images map[string]string
	// text is returned by tesseract.
	text string
	err  error

	calls [][]string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.err != nil {
		return nil, m.err
	}
	if name == "pdfimages" && len(args) == 4 {
		dir := filepath.Dir(args[3])
		for file, content := range m.images {
			if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0600); err != nil {
				return nil, err
			}
		}
	}
	if name == "tesseract" && len(args) > 0 && args[0] != "--version" {
		return []byte(m.text), nil
	}
	return nil, nil
}

func TestOpenImages_GroupsByPage(t *testing.T) {
	runner := &mockRunner{images: map[string]string{
		"img-001-000.png": "p1a",
		"img-001-001.png": "p1b",
		"img-003-002.png": "p3",
		"doc-notes.txt":   "ignored",
	}}
	svc := NewWithRunner(domain.OCRSettings{}, runner)
	ctx := context.Background()

	images, err := svc.OpenImages(ctx, []byte("%PDF-1.4"))
	require.NoError(t, err)

	page1, err := images.Images(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("p1a"), []byte("p1b")}, page1)

	page2, err := images.Images(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, page2)

	page3, err := images.Images(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, page3, 1)

	dir := images.(*pageImages).dir
	require.NoError(t, images.Close())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "temp directory must be removed")
}

func TestOpenImages_ToolFailure(t *testing.T) {
	svc := NewWithRunner(domain.OCRSettings{}, &mockRunner{err: errors.New("boom")})

	_, err := svc.OpenImages(context.Background(), []byte("%PDF"))

	assert.ErrorIs(t, err, domain.ErrOCRFailure)
}

func TestRecognise(t *testing.T) {
	runner := &mockRunner{text: "  Scanned words \n"}
	svc := NewWithRunner(domain.OCRSettings{Language: "deu"}, runner)

	text, err := svc.Recognise(context.Background(), []byte("png"))

	require.NoError(t, err)
	assert.Equal(t, "Scanned words", text)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "tesseract", runner.calls[0][0])
	assert.Equal(t, []string{"stdout", "-l", "deu"}, runner.calls[0][2:])
}

func TestRecognise_Failure(t *testing.T) {
	svc := NewWithRunner(domain.OCRSettings{}, &mockRunner{err: errors.New("bad image")})

	_, err := svc.Recognise(context.Background(), []byte("png"))

	assert.ErrorIs(t, err, domain.ErrOCRFailure)
}

func TestPing(t *testing.T) {
	runner := &mockRunner{}
	svc := NewWithRunner(domain.OCRSettings{TesseractPath: "/opt/tesseract"}, runner)

	require.NoError(t, svc.Ping(context.Background()))
	assert.Equal(t, "/opt/tesseract", runner.calls[0][0])
}

func TestPageOf(t *testing.T) {
	tests := []struct {
		name string
		page int
		ok   bool
	}{
		{"img-001-000.png", 1, true},
		{"img-120-015.jpg", 120, true},
		{"img-000-000.png", 0, false},
		{"doc.pdf", 0, false},
		{"img-x-000.png", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, ok := pageOf(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.page, page)
		})
	}
}
