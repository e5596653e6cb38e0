package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidScore signals a malformed score construction (programming error).
	ErrInvalidScore = errors.New("invalid score")
	// ErrInvalidInput signals a malformed user request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtractionFailed signals an LLM or parse failure while extracting a query facet.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrSearchStrategyFailed signals that one search strategy could not reach the index.
	ErrSearchStrategyFailed = errors.New("search strategy failed")
	// ErrNoResultsAvailable signals that every search strategy failed.
	ErrNoResultsAvailable = errors.New("no results available")

	// ErrPermissionOracle signals a permission oracle failure.
	ErrPermissionOracle = errors.New("permission oracle error")
	// ErrUnknownUser signals that the permission oracle has no record of the user.
	ErrUnknownUser = errors.New("unknown user")

	// ErrLLMProviderError signals a chat model provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCircuitOpen signals that a circuit breaker rejected the call without trying it.
	ErrCircuitOpen = errors.New("circuit open")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)

// StrategyError wraps ErrSearchStrategyFailed with the name of the failed strategy.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrSearchStrategyFailed.Error(), e.Strategy, e.Err)
}

// Is reports ErrSearchStrategyFailed so callers can match the whole class.
func (e *StrategyError) Is(target error) bool { return target == ErrSearchStrategyFailed }

func (e *StrategyError) Unwrap() error { return e.Err }

// NewStrategyError creates a strategy failure error.
func NewStrategyError(strategy string, err error) error {
	return &StrategyError{Strategy: strategy, Err: err}
}
