package chi

import "github.com/belljun3395/okchat/internal/domain"

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeSearchUnavailable      ErrorCode = "search_unavailable"
	CodeRateLimited            ErrorCode = "rate_limited"
	CodeUpstreamUnavailable    ErrorCode = "upstream_unavailable"
	CodeLLMProviderError       ErrorCode = "llm_provider_error"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeTimeout                ErrorCode = "timeout"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Query     string `json:"query"`
	Email     string `json:"email,omitempty"`
	DeepThink bool   `json:"deep_think,omitempty"`
	// Answer asks the server to call the chat model with the rendered prompt.
	Answer bool `json:"answer,omitempty"`
}

// SourceItem is a cited document.
type SourceItem struct {
	Title string  `json:"title"`
	URL   string  `json:"url,omitempty"`
	Path  string  `json:"path,omitempty"`
	Score float64 `json:"score"`
	PDF   bool    `json:"pdf,omitempty"`
}

// ChatResponse is the body returned by POST /api/v1/chat.
type ChatResponse struct {
	RequestID  string               `json:"request_id"`
	Question   string               `json:"question"`
	QueryType  string               `json:"query_type"`
	Confidence float64              `json:"confidence"`
	Prompt     string               `json:"prompt"`
	Answer     string               `json:"answer,omitempty"`
	Sources    []SourceItem         `json:"sources"`
	Usage      domain.UsageSnapshot `json:"usage"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
