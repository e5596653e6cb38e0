package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/belljun3395/okchat/internal/domain"
	healthuc "github.com/belljun3395/okchat/internal/usecase/health"
	"github.com/belljun3395/okchat/internal/usecase/pipeline"
)

const maxQueryLength = 2000

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Chatter runs the retrieval pipeline.
type Chatter interface {
	Run(ctx context.Context, in pipeline.UserInput) (pipeline.CompleteContext, error)
	Answer(ctx context.Context, in pipeline.UserInput) (pipeline.Answer, error)
}

// HealthChecker reports dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the chat API.
type Server struct {
	chat          Chatter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(chat Chatter, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		chat:   chat,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, CodeBadRequest,
			"invalid request"),
		sentinelHandler(domain.ErrNoResultsAvailable, http.StatusServiceUnavailable, CodeSearchUnavailable,
			"document search is temporarily unavailable, please try again later"),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited,
			"too many requests, please try again later"),
		sentinelHandler(domain.ErrCircuitOpen, http.StatusServiceUnavailable, CodeUpstreamUnavailable,
			"an upstream service is temporarily unavailable"),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, CodeLLMProviderError,
			"the language model failed to respond"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError,
			"the embedding provider failed to respond"),
		timeoutHandler,
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", s.Chat)
	})
}

// Chat handles POST /api/v1/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "query is required")
		return
	}
	if len([]rune(query)) > maxQueryLength {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			"query must be at most "+strconv.Itoa(maxQueryLength)+" characters")
		return
	}

	in := pipeline.UserInput{
		Query:     query,
		Email:     req.Email,
		DeepThink: req.DeepThink,
		RequestID: chimw.GetReqID(r.Context()),
	}

	if req.Answer {
		ans, err := s.chat.Answer(r.Context(), in)
		if err != nil {
			s.handleDomainError(r.Context(), w, err)
			return
		}
		resp := chatResponse(ans.CompleteContext)
		resp.Answer = ans.Text
		writeJSON(w, http.StatusOK, resp)
		return
	}

	cc, err := s.chat.Run(r.Context(), in)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse(cc))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func chatResponse(cc pipeline.CompleteContext) ChatResponse {
	sources := make([]SourceItem, len(cc.Sources))
	for i, src := range cc.Sources {
		sources[i] = SourceItem{
			Title: src.Title,
			URL:   src.URL,
			Path:  src.Path,
			Score: src.Score,
			PDF:   src.PDF,
		}
	}
	return ChatResponse{
		RequestID:  cc.RequestID,
		Question:   cc.Question,
		QueryType:  cc.QueryType.String(),
		Confidence: cc.Confidence,
		Prompt:     cc.PromptText,
		Sources:    sources,
		Usage:      cc.Usage,
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
// The client gets msg, never the wrapped chain.
func sentinelHandler(sentinel error, status int, code ErrorCode, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func timeoutHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	writeError(w, http.StatusGatewayTimeout, CodeTimeout, "the request took too long, please try again")
	return true
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := s.logger
	if reqID := chimw.GetReqID(ctx); reqID != "" {
		log = log.With(zap.String("request_id", reqID))
	}
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
