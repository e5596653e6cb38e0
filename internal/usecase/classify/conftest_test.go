package classify

import (
	"context"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/domain/query"
)

type mockChatModel struct {
	reply string
	err   error
	calls int
}

func (m *mockChatModel) Complete(_ context.Context, _ domain.ChatRequest) (domain.ChatResult, error) {
	m.calls++
	if m.err != nil {
		return domain.ChatResult{}, m.err
	}
	return domain.ChatResult{Content: m.reply}, nil
}

type stubPrompts struct{}

func (stubPrompts) Classification(q string) (string, error) { return "classify: " + q, nil }

type mockClassifier struct {
	analysis query.Analysis
	err      error
	calls    int
}

func (m *mockClassifier) Classify(_ context.Context, _ string) (query.Analysis, error) {
	m.calls++
	return m.analysis, m.err
}
