package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// --- Mock implementations ---

type mockAnswer struct {
	result *domain.AskResult
	err    error
	got    domain.Query
	panics bool
}

func (m *mockAnswer) Ask(_ context.Context, q domain.Query) (*domain.AskResult, error) {
	if m.panics {
		panic("boom")
	}
	m.got = q
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockPreview struct {
	png []byte
	url string
	err error
	key string
	pg  int
}

func (m *mockPreview) RenderPage(_ context.Context, key string, page int) ([]byte, error) {
	m.key, m.pg = key, page
	return m.png, m.err
}

func (m *mockPreview) DocumentURL(_ context.Context, key string) (string, error) {
	m.key = key
	return m.url, m.err
}

func setupServer(t *testing.T, answer *mockAnswer, preview *mockPreview) http.Handler {
	t.Helper()
	ports := &Ports{Answer: answer}
	if preview != nil {
		ports.Preview = preview
	}
	srv, err := NewServer(ports, Options{})
	require.NoError(t, err)
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

// ==================== Chat Tests ====================

func TestChat_OK(t *testing.T) {
	answer := &mockAnswer{result: &domain.AskResult{
		Question: "Why do cats sleep?",
		Answer:   "To save energy [0].",
		Status:   domain.AnswerOK,
		Passages: []domain.Passage{{Rank: 0, Score: 0.9, DocPath: "raw/pdf/cats.pdf", Loc: domain.Location{Page: 2}, Text: "Cats sleep."}},
	}}
	h := setupServer(t, answer, nil)

	rec := do(t, h, http.MethodPost, "/chat", `{"question":"Why do cats sleep?","top_k":3}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 3, answer.got.TopK)

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "To save energy [0].", body["answer"])
	assert.Equal(t, "ok", body["answer_status"])
	assert.NotContains(t, body, "answer_error")
	passages := body["passages"].([]any)
	require.Len(t, passages, 1)
	p := passages[0].(map[string]any)
	assert.Equal(t, "raw/pdf/cats.pdf", p["doc_path"])
	assert.Equal(t, float64(2), p["loc"].(map[string]any)["page"])
	assert.Equal(t, float64(0), p["rank"])
}

func TestChat_DefaultTopK(t *testing.T) {
	answer := &mockAnswer{result: &domain.AskResult{Status: domain.AnswerNoPassages}}
	h := setupServer(t, answer, nil)

	rec := do(t, h, http.MethodPost, "/chat", `{"question":"cats"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.DefaultTopK, answer.got.TopK)
	var body ChatResponse
	decode(t, rec, &body)
	assert.NotNil(t, body.Passages)
	assert.Equal(t, "no_passages", body.AnswerStatus)
}

func TestChat_SynthesisFailureKeepsPassages(t *testing.T) {
	answer := &mockAnswer{result: &domain.AskResult{
		Status:      domain.AnswerSynthesisTimeout,
		AnswerError: "upstream timeout",
		Passages:    []domain.Passage{{Text: "a"}, {Rank: 1, Text: "b"}},
	}}
	h := setupServer(t, answer, nil)

	rec := do(t, h, http.MethodPost, "/chat", `{"question":"q","top_k":2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body ChatResponse
	decode(t, rec, &body)
	assert.Equal(t, "synthesis_timeout", body.AnswerStatus)
	assert.Equal(t, "upstream timeout", body.AnswerError)
	assert.Len(t, body.Passages, 2)
}

func TestChat_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `question=cats`},
		{"empty question", `{"question":"  "}`},
		{"zero top_k", `{"question":"cats","top_k":0}`},
		{"negative top_k", `{"question":"cats","top_k":-2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer := &mockAnswer{}
			h := setupServer(t, answer, nil)

			rec := do(t, h, http.MethodPost, "/chat", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body errorResponse
			decode(t, rec, &body)
			assert.NotEmpty(t, body.Error)
			assert.Empty(t, answer.got.Question, "service must not be called")
		})
	}
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNoSnapshot, http.StatusServiceUnavailable},
		{&domain.UpstreamTimeoutError{Service: "embedding", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{&domain.IndexConsistencyError{MissingMetadata: []int64{4}}, http.StatusInternalServerError},
		{fmt.Errorf("%w: embedding: connection refused", domain.ErrUpstream), http.StatusBadGateway},
		{domain.NewValidationError("question", "must not be empty"), http.StatusBadRequest},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := setupServer(t, &mockAnswer{err: tt.err}, nil)

			rec := do(t, h, http.MethodPost, "/chat", `{"question":"cats"}`)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestChat_MethodNotAllowed(t *testing.T) {
	h := setupServer(t, &mockAnswer{}, nil)

	rec := do(t, h, http.MethodGet, "/chat", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ==================== Preview Tests ====================

func TestPreview_OK(t *testing.T) {
	preview := &mockPreview{png: []byte("\x89PNG\r\n\x1a\nrest")}
	h := setupServer(t, &mockAnswer{}, preview)

	rec := do(t, h, http.MethodGet, "/preview?key=raw/pdf/a.pdf&page=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
	assert.Equal(t, "raw/pdf/a.pdf", preview.key)
	assert.Equal(t, 2, preview.pg)
}

func TestPreview_BadPage(t *testing.T) {
	preview := &mockPreview{}
	h := setupServer(t, &mockAnswer{}, preview)

	rec := do(t, h, http.MethodGet, "/preview?key=raw/pdf/a.pdf&page=two", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, preview.key)
}

func TestPreview_OutOfRange(t *testing.T) {
	preview := &mockPreview{err: domain.NewValidationError("page", "9 out of range, document has 3 pages")}
	h := setupServer(t, &mockAnswer{}, preview)

	rec := do(t, h, http.MethodGet, "/preview?key=raw/pdf/a.pdf&page=9", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorResponse
	decode(t, rec, &body)
	assert.Contains(t, body.Error, "out of range")
}

func TestPreview_Unavailable(t *testing.T) {
	h := setupServer(t, &mockAnswer{}, nil)

	rec := do(t, h, http.MethodGet, "/preview?key=a&page=1", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDocumentURL(t *testing.T) {
	preview := &mockPreview{url: "https://s3.local/bucket/raw/pdf/a.pdf?sig=1"}
	h := setupServer(t, &mockAnswer{}, preview)

	rec := do(t, h, http.MethodGet, "/documents/url?key=raw/pdf/a.pdf", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, preview.url, body["url"])

	preview.err = domain.ErrNotFound
	rec = do(t, h, http.MethodGet, "/documents/url?key=raw/pdf/none.pdf", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ==================== Liveness Tests ====================

func TestPing(t *testing.T) {
	h := setupServer(t, &mockAnswer{}, nil)

	rec := do(t, h, http.MethodGet, "/ping", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status string   `json:"status"`
		Routes []string `json:"routes"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "ok", body.Status)
	assert.Contains(t, body.Routes, "/chat")
}

func TestRoot(t *testing.T) {
	h := setupServer(t, &mockAnswer{}, nil)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/nope", "").Code)
}

func TestNewServer_RequiresAnswerService(t *testing.T) {
	_, err := NewServer(&Ports{}, Options{})

	assert.Error(t, err)
}

// ==================== Middleware Tests ====================

func TestRecover(t *testing.T) {
	h := setupServer(t, &mockAnswer{panics: true}, nil)

	rec := do(t, h, http.MethodPost, "/chat", `{"question":"cats"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), RateLimit(0.001, 2))

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = do(t, h, http.MethodGet, "/", "").Code
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_Disabled(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), RateLimit(0, 0))

	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusNoContent, do(t, h, http.MethodGet, "/", "").Code)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mw("a"), mw("b"))

	do(t, h, http.MethodGet, "/", "")

	assert.Equal(t, []string{"a", "b"}, order)
}

// ==================== Serve Tests ====================

func TestServe_GracefulShutdown(t *testing.T) {
	srv, err := NewServer(&Ports{Answer: &mockAnswer{}}, Options{})
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + "/ping")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
