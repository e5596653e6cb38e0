package domain

import (
	"context"
	"sync"
)

type usageKey struct{}

// RequestUsage collects LLM token usage for a single pipeline run.
// Extraction and search fan out, so writes are guarded.
type RequestUsage struct {
	mu              sync.Mutex
	chatTokens      int
	embeddingTokens int
	chatCalls       int
	embeddingCalls  int
}

// UsageSnapshot is a point-in-time copy of RequestUsage.
type UsageSnapshot struct {
	ChatTokens      int `json:"chat_tokens"`
	EmbeddingTokens int `json:"embedding_tokens"`
	ChatCalls       int `json:"chat_calls"`
	EmbeddingCalls  int `json:"embedding_calls"`
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *RequestUsage) {
	u := &RequestUsage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *RequestUsage {
	u, _ := ctx.Value(usageKey{}).(*RequestUsage)
	return u
}

// AddChat records one chat completion.
func (u *RequestUsage) AddChat(tokens int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.chatTokens += tokens
	u.chatCalls++
	u.mu.Unlock()
}

// AddEmbedding records one embedding call (tokens may be 0 on a cache hit).
func (u *RequestUsage) AddEmbedding(tokens int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.embeddingTokens += tokens
	u.embeddingCalls++
	u.mu.Unlock()
}

// Snapshot returns the current totals.
func (u *RequestUsage) Snapshot() UsageSnapshot {
	if u == nil {
		return UsageSnapshot{}
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return UsageSnapshot{
		ChatTokens:      u.chatTokens,
		EmbeddingTokens: u.embeddingTokens,
		ChatCalls:       u.chatCalls,
		EmbeddingCalls:  u.embeddingCalls,
	}
}
