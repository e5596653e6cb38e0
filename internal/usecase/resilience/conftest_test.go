package resilience

import (
	"context"
	"sync"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/domain/document"
	"github.com/belljun3395/okchat/internal/domain/search/strategy"
)

type mockChatModel struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (m *mockChatModel) Complete(_ context.Context, _ domain.ChatRequest) (domain.ChatResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.ChatResult{}, m.err
	}
	return domain.ChatResult{Content: "ok", TotalTokens: 1}, nil
}

func (m *mockChatModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockEmbedder struct {
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
}

type mockSearcher struct {
	err   error
	calls int
}

func (m *mockSearcher) Search(_ context.Context, _ strategy.Strategy, _ strategy.Query) ([]document.Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return []document.Result{document.New(document.Fields{ID: "a"})}, nil
}
