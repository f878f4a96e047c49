package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driving"
	"github.com/custodia-labs/mediamind/internal/logger"
)

const (
	serviceName     = "mediamind"
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Routes lists the served endpoints, reported by /ping.
var Routes = []string{"/", "/ping", "/chat", "/preview", "/documents/url"}

// Ports holds the services the API calls. Preview may be nil.
type Ports struct {
	Answer  driving.AnswerService
	Preview driving.PreviewService
}

// Options tunes the server.
type Options struct {
	Addr string

	// RequestsPerSecond and Burst configure rate limiting; zero disables it.
	RequestsPerSecond float64
	Burst             int

	// WriteTimeout must exceed the synthesis timeout.
	WriteTimeout time.Duration
}

// Server is the HTTP API.
type Server struct {
	ports   *Ports
	opts    Options
	handler http.Handler
}

// NewServer creates the API server.
func NewServer(ports *Ports, opts Options) (*Server, error) {
	if ports == nil || ports.Answer == nil {
		return nil, errors.New("answer service is required")
	}
	if opts.Addr == "" {
		opts.Addr = domain.DefaultServerAddr
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 3 * time.Minute
	}

	s := &Server{ports: ports, opts: opts}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /ping", s.handlePing)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /preview", s.handlePreview)
	mux.HandleFunc("GET /documents/url", s.handleDocumentURL)

	s.handler = Chain(mux,
		Recover(),
		Logger(),
		RateLimit(opts.RequestsPerSecond, opts.Burst),
		OTel(serviceName),
	)
	return s, nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("Shutting down API")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// ==================== Handlers ====================

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Question string `json:"question"`

	// TopK defaults to domain.DefaultTopK when absent.
	TopK *int `json:"top_k,omitempty"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Question     string           `json:"question"`
	Answer       string           `json:"answer"`
	AnswerStatus string           `json:"answer_status"`
	AnswerError  string           `json:"answer_error,omitempty"`
	Passages     []domain.Passage `json:"passages"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	q := domain.Query{Question: req.Question, TopK: domain.DefaultTopK}
	if req.TopK != nil {
		q.TopK = *req.TopK
	}
	if err := q.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.ports.Answer.Ask(r.Context(), q)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Chat failed: %v", err)
		}
		writeError(w, status, err)
		return
	}

	passages := result.Passages
	if passages == nil {
		passages = []domain.Passage{}
	}
	writeJSON(w, http.StatusOK, ChatResponse{
		Question:     result.Question,
		Answer:       result.Answer,
		AnswerStatus: result.Status.String(),
		AnswerError:  result.AnswerError,
		Passages:     passages,
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if s.ports.Preview == nil {
		writeError(w, http.StatusServiceUnavailable, domain.ErrPreviewUnavailable)
		return
	}

	key := r.URL.Query().Get("key")
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, domain.NewValidationError("page", "must be an integer"))
		return
	}

	png, err := s.ports.Preview.RenderPage(r.Context(), key, page)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	_, _ = w.Write(png)
}

func (s *Server) handleDocumentURL(w http.ResponseWriter, r *http.Request) {
	if s.ports.Preview == nil {
		writeError(w, http.StatusServiceUnavailable, domain.ErrPreviewUnavailable)
		return
	}
	key := r.URL.Query().Get("key")
	url, err := s.ports.Preview.DocumentURL(r.Context(), key)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "url": url})
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "routes": Routes})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": serviceName})
}
