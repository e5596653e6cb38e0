package extraction

import (
	"context"
	"sync"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/prompt"
)

type mockChatModel struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []domain.ChatRequest
}

func (m *mockChatModel) Complete(_ context.Context, req domain.ChatRequest) (domain.ChatResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return domain.ChatResult{}, m.err
	}
	return domain.ChatResult{Content: m.reply}, nil
}

func (m *mockChatModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

type mockPrompts struct {
	err error
}

func (m *mockPrompts) Extraction(facet prompt.Facet, query string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return string(facet) + ": " + query, nil
}
