package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pagerag/internal/domain"
	"github.com/kailas-cloud/pagerag/internal/domain/page"
	logpkg "github.com/kailas-cloud/pagerag/internal/logger"
	"github.com/kailas-cloud/pagerag/internal/transport/ollama"
	healthuc "github.com/kailas-cloud/pagerag/internal/usecase/health"
)

// MaxTopK bounds top_k on /v1/ask.
const MaxTopK = 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the question answering API.
type Server struct {
	index         Indexer
	answer        Answerer
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler

	// rebuild serializes index rebuilds; the index has a single writer.
	rebuild sync.Mutex
}

// NewServer creates an HTTP API server.
func NewServer(index Indexer, answer Answerer, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		index:  index,
		answer: answer,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuestion, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrDuplicatePage, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrPageNotFound, http.StatusNotFound, ErrorCodePageNotFound),
		sentinelHandler(fs.ErrNotExist, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, ErrorCodeVectorDimMismatch),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingFailed),
		sentinelHandler(ollama.ErrRequestFailed, http.StatusBadGateway, ErrorCodeGenerationFailed),
		sentinelHandler(domain.ErrIndexNotReady, http.StatusServiceUnavailable, ErrorCodeIndexNotReady),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/ask", s.Ask)
		r.Post("/index", s.Index)
		r.Get("/pages/{page}", s.GetPage)
	})
}

// Ask handles POST /v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "question is required")
		return
	}

	topK := 0
	if req.TopK != nil {
		if *req.TopK <= 0 || *req.TopK > MaxTopK {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
				fmt.Sprintf("top_k must be between 1 and %d", MaxTopK))
			return
		}
		topK = *req.TopK
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	hits, err := s.index.Retrieve(ctx, req.Question, topK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ans, err := s.answer.Answer(ctx, req.Question, hits)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]HitResponse, len(hits))
	for i, h := range hits {
		items[i] = HitResponse{Page: h.Page, Score: h.Score, Text: h.Text}
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, AskResponse{
		Outcome: string(ans.Outcome),
		Answer:  ans.Text,
		Hits:    items,
	})
}

// Index handles POST /v1/index: rebuilds the index from a delimited page file on the server.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "path is required")
		return
	}

	pages, err := page.Load(req.Path)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	s.rebuild.Lock()
	defer s.rebuild.Unlock()

	ctx, usage := domain.NewContextWithUsage(r.Context())
	if err := s.index.CreateIndex(ctx); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	n, err := s.index.IndexPages(ctx, pages)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, IndexResponse{Indexed: n})
}

// GetPage handles GET /v1/pages/{page}.
func (s *Server) GetPage(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "page must be a positive integer")
		return
	}

	p, err := s.index.Page(r.Context(), n)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PageResponse{Page: p.Number, Text: p.Text})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client sees only the sentinel's message.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContext(r.Context())
	logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
