package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

// --- Mock implementations ---

// keywordEmbedder implements driven.EmbeddingService with a fixed vocabulary.
// Each dimension counts one vocabulary word; the last dimension is a small
// constant so no text ever embeds to the zero vector.
type keywordEmbedder struct {
	vocab []string

	mu       sync.Mutex
	calls    int
	texts    []string
	embedErr error
}

func newKeywordEmbedder(vocab ...string) *keywordEmbedder {
	return &keywordEmbedder{vocab: vocab}
}

func (m *keywordEmbedder) vector(text string) []float32 {
	v := make([]float32, len(m.vocab)+1)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		for i, term := range m.vocab {
			if w == term {
				v[i]++
			}
		}
	}
	v[len(m.vocab)] = 0.1
	return v
}

func (m *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.texts = append(m.texts, texts...)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *keywordEmbedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *keywordEmbedder) Dimensions() int              { return len(m.vocab) + 1 }
func (m *keywordEmbedder) ModelName() string            { return "mock-embed" }
func (m *keywordEmbedder) Ping(_ context.Context) error { return nil }
func (m *keywordEmbedder) Close() error                 { return nil }

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	mu      sync.Mutex
	answer  string
	err     error
	block   bool
	calls   int
	prompts []string
	opts    []driven.CompletionOptions
	cut     bool
}

func (m *mockLLM) Complete(ctx context.Context, prompt string, opts driven.CompletionOptions) (driven.Completion, error) {
	m.mu.Lock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	block, answer, err, cut := m.block, m.answer, m.err, m.cut
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return driven.Completion{}, ctx.Err()
	}
	if err != nil {
		return driven.Completion{}, err
	}
	return driven.Completion{Text: answer, Truncated: cut}, nil
}

func (m *mockLLM) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// fakePDF is the in-test document format understood by fakeParser:
// pages separated by form feeds, with a leading marker for special cases.
const (
	encryptedMarker = "%ENCRYPTED"
	brokenMarker    = "%BROKEN"
	pageBreak       = "\f"
)

func fakePDF(pages ...string) []byte {
	return []byte(strings.Join(pages, pageBreak))
}

// fakeParser implements driven.PDFParser over fakePDF documents.
type fakeParser struct{}

func (fakeParser) Open(data []byte) (driven.PDFDocument, error) {
	s := string(data)
	switch {
	case strings.HasPrefix(s, encryptedMarker):
		return nil, domain.ErrEncrypted
	case strings.HasPrefix(s, brokenMarker):
		return nil, errors.New("malformed xref table")
	}
	return &fakeDocument{pages: strings.Split(s, pageBreak)}, nil
}

type fakeDocument struct {
	pages  []string
	closed bool
}

func (d *fakeDocument) NumPages() int { return len(d.pages) }

func (d *fakeDocument) PageText(page int) (string, error) {
	if page < 1 || page > len(d.pages) {
		return "", errors.New("page out of range")
	}
	return d.pages[page-1], nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

// mockOCR implements driven.OCRService. Images are keyed by page and their
// bytes are the recognised text; the image "PANIC" panics and "FAIL" errors.
type mockOCR struct {
	pages   map[int][]string
	openErr error
	closed  bool
}

func (m *mockOCR) OpenImages(_ context.Context, _ []byte) (driven.PageImages, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m, nil
}

func (m *mockOCR) Images(_ context.Context, page int) ([][]byte, error) {
	var out [][]byte
	for _, s := range m.pages[page] {
		out = append(out, []byte(s))
	}
	return out, nil
}

func (m *mockOCR) Recognise(_ context.Context, image []byte) (string, error) {
	switch string(image) {
	case "PANIC":
		panic("tesseract crashed")
	case "FAIL":
		return "", errors.New("unreadable image")
	}
	return string(image), nil
}

func (m *mockOCR) Ping(_ context.Context) error { return nil }

func (m *mockOCR) Close() error {
	m.closed = true
	return nil
}

// mockRenderer implements driven.PageRenderer.
type mockRenderer struct {
	page int
	dpi  int
	err  error
}

func (m *mockRenderer) RenderPage(_ context.Context, _ []byte, page, dpi int) ([]byte, error) {
	m.page, m.dpi = page, dpi
	if m.err != nil {
		return nil, m.err
	}
	return []byte("\x89PNG\r\n\x1a\n"), nil
}
