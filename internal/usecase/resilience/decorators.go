package resilience

import (
	"context"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/domain/document"
	"github.com/belljun3395/okchat/internal/domain/search/strategy"
)

// ChatModel guards a chat model with a rate limiter and a circuit breaker.
type ChatModel struct {
	inner   domain.ChatModel
	breaker *Breaker
	limiter *Limiter
}

// WrapChatModel decorates inner. Either guard may be nil.
func WrapChatModel(inner domain.ChatModel, b *Breaker, l *Limiter) *ChatModel {
	return &ChatModel{inner: inner, breaker: b, limiter: l}
}

// Complete implements domain.ChatModel.
func (c *ChatModel) Complete(ctx context.Context, req domain.ChatRequest) (domain.ChatResult, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return domain.ChatResult{}, err
	}
	return execute(c.breaker, func() (domain.ChatResult, error) {
		return c.inner.Complete(ctx, req)
	})
}

// Embedder guards an embedder with a rate limiter and a circuit breaker.
type Embedder struct {
	inner   domain.Embedder
	breaker *Breaker
	limiter *Limiter
}

// WrapEmbedder decorates inner. Either guard may be nil.
func WrapEmbedder(inner domain.Embedder, b *Breaker, l *Limiter) *Embedder {
	return &Embedder{inner: inner, breaker: b, limiter: l}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := e.limiter.wait(ctx); err != nil {
		return domain.EmbeddingResult{}, err
	}
	return execute(e.breaker, func() (domain.EmbeddingResult, error) {
		return e.inner.Embed(ctx, text)
	})
}

// BatchEmbed implements domain.BatchEmbedder, falling back to per-text calls
// when inner has no batch endpoint. The whole batch counts as one request.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if err := e.limiter.wait(ctx); err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	return execute(e.breaker, func() (domain.BatchEmbeddingResult, error) {
		if be, ok := e.inner.(domain.BatchEmbedder); ok {
			return be.BatchEmbed(ctx, texts)
		}
		return domain.BatchFallback(ctx, e.inner, texts)
	})
}

// Searcher is the index contract guarded by Index.
type Searcher interface {
	Search(ctx context.Context, s strategy.Strategy, q strategy.Query) ([]document.Result, error)
}

// Index guards the search index with a circuit breaker.
type Index struct {
	inner   Searcher
	breaker *Breaker
}

// WrapIndex decorates inner.
func WrapIndex(inner Searcher, b *Breaker) *Index {
	return &Index{inner: inner, breaker: b}
}

// Search runs one strategy query through the breaker.
func (i *Index) Search(ctx context.Context, s strategy.Strategy, q strategy.Query) ([]document.Result, error) {
	return execute(i.breaker, func() ([]document.Result, error) {
		return i.inner.Search(ctx, s, q)
	})
}
