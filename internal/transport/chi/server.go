// Package chi exposes the search engine over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pickstack/itemsearch/internal/domain"
	"github.com/pickstack/itemsearch/internal/domain/search/candidate"
	"github.com/pickstack/itemsearch/internal/domain/search/request"
	healthuc "github.com/pickstack/itemsearch/internal/usecase/health"
	searchuc "github.com/pickstack/itemsearch/internal/usecase/search"
)

// Error codes returned in the error envelope.
const (
	codeBadRequest       = "BAD_REQUEST"
	codeValidationFailed = "VALIDATION_FAILED"
	codeStoreUnavailable = "STORE_UNAVAILABLE"
	codeEmbeddingError   = "EMBEDDING_PROVIDER_ERROR"
	codeInternalError    = "INTERNAL_ERROR"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the use cases into HTTP handlers.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	defaultLimit  int
	maxLimit      int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		search:       search,
		health:       health,
		logger:       logger,
		defaultLimit: request.DefaultLimit,
		maxLimit:     request.MaxLimit,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingError),
	}
	return s
}

// WithLimits overrides the default and maximum result list lengths.
func (s *Server) WithLimits(defaultLimit, maxLimit int) *Server {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	return s
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/api/v1/search", s.SearchDocuments)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type productDetails struct {
	PickUpTime      *string  `json:"pick_up_time"`
	DropOffLocation *string  `json:"drop_off_location"`
	DropOffTime     *string  `json:"drop_off_time"`
	PickUpLocation  *string  `json:"pick_up_location"`
	Quantity        *float64 `json:"quantity"`
	Price           *float64 `json:"price"`
}

type resultUserInfo struct {
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name"`
	PickUpLocation string `json:"pick_up_location"`
}

type searchResultItem struct {
	ProductName     string         `json:"product_name"`
	Details         productDetails `json:"details"`
	UserInfo        resultUserInfo `json:"user_info"`
	SimilarityScore float64        `json:"similarity_score"`
	KeywordMatch    bool           `json:"keyword_match"`
	DocumentID      string         `json:"document_id"`
}

type searchResponse struct {
	Query      string             `json:"query"`
	Results    []searchResultItem `json:"results"`
	TotalFound int                `json:"total_found"`
	Returned   int                `json:"returned"`
	Message    string             `json:"message,omitempty"`
}

type healthResponse struct {
	Status                  string            `json:"status"`
	Checks                  map[string]string `json:"checks"`
	TotalDocuments          int               `json:"total_documents"`
	DocumentsWithEmbeddings int               `json:"documents_with_embeddings"`
}

// SearchDocuments handles GET /api/v1/search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// An absent limit falls back to the default; a present one is validated
	// as given, so an explicit limit=0 is rejected rather than defaulted.
	limit := s.defaultLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	if limit < 1 || limit > s.maxLimit {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"limit must be between 1 and "+strconv.Itoa(s.maxLimit))
		return
	}

	minScore := 0.0
	if raw := q.Get("min_score"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "min_score must be a number")
			return
		}
		minScore = f
	}

	req, err := request.New(q.Get("q"), limit, minScore)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.search.Rank(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]searchResultItem, len(resp.Results))
	for i := range resp.Results {
		items[i] = resultToItem(&resp.Results[i])
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:      resp.Query,
		Results:    items,
		TotalFound: resp.TotalFound,
		Returned:   resp.Returned,
		Message:    resp.Message,
	})
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

	writeJSON(w, httpStatus, healthResponse{
		Status:                  string(report.Status),
		Checks:                  checks,
		TotalDocuments:          report.TotalDocuments,
		DocumentsWithEmbeddings: report.DocumentsWithEmbeddings,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func resultToItem(c *candidate.Candidate) searchResultItem {
	d := c.Details()
	ui := c.UserInfo()
	return searchResultItem{
		ProductName: c.ProductName(),
		Details: productDetails{
			PickUpTime:      d.PickUpTime(),
			DropOffLocation: d.DropOffLocation(),
			DropOffTime:     d.DropOffTime(),
			PickUpLocation:  d.PickUpLocation(),
			Quantity:        d.Quantity(),
			Price:           d.Price(),
		},
		UserInfo: resultUserInfo{
			UserID:         ui.UserID,
			UserName:       ui.UserName,
			PickUpLocation: ui.PickUpLocation,
		},
		SimilarityScore: c.Score(),
		KeywordMatch:    c.KeywordMatch(),
		DocumentID:      c.DocumentID(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrStoreUnavailable,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
