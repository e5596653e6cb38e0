package search

import (
	"context"
	"sync"

	"github.com/belljun3395/okchat/internal/domain/document"
	"github.com/belljun3395/okchat/internal/domain/search/strategy"
)

type mockIndex struct {
	mu      sync.Mutex
	results map[strategy.Strategy][]document.Result
	errs    map[strategy.Strategy]error
	queries map[strategy.Strategy]strategy.Query
}

func newMockIndex() *mockIndex {
	return &mockIndex{
		results: make(map[strategy.Strategy][]document.Result),
		errs:    make(map[strategy.Strategy]error),
		queries: make(map[strategy.Strategy]strategy.Query),
	}
}

func (m *mockIndex) Search(_ context.Context, s strategy.Strategy, q strategy.Query) ([]document.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[s] = q
	if err := m.errs[s]; err != nil {
		return nil, err
	}
	return m.results[s], nil
}

func (m *mockIndex) called(s strategy.Strategy) (strategy.Query, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queries[s]
	return q, ok
}

func hit(id string) document.Result {
	return document.New(document.Fields{ID: id, Title: "title " + id, Content: "content " + id})
}

func hits(ids ...string) []document.Result {
	out := make([]document.Result, len(ids))
	for i, id := range ids {
		out[i] = hit(id)
	}
	return out
}
