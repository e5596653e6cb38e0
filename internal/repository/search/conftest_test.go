package search

import (
	"context"
	"testing"

	"github.com/belljun3395/okchat/internal/db"
	"github.com/belljun3395/okchat/internal/domain"
)

// mockStore implements the consumer interfaces for tests.
type mockStore struct {
	searchKNNFn  func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchTextFn func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)

	exists    bool
	existsErr error
	createErr error
	dropErr   error
	count     int
	countErr  error
	counted   []string
	created   []*db.IndexDefinition
	dropped   []string
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchTextFn != nil {
		return m.searchTextFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) IndexExists(_ context.Context, _ string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.created = append(m.created, def)
	return m.createErr
}

func (m *mockStore) DropIndex(_ context.Context, name string) error {
	m.dropped = append(m.dropped, name)
	return m.dropErr
}

type mockEmbedder struct {
	vector []float32
	err    error
	texts  []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vector}, nil
}

func testConfig() Config {
	return Config{IndexName: "okchat:chunks:idx", KeyPrefix: "okchat:chunk:"}
}

func newTestRepo(t *testing.T) (*Repo, *mockStore, *mockEmbedder) {
	t.Helper()
	ms := &mockStore{}
	me := &mockEmbedder{vector: []float32{0.1, 0.2, 0.3, 0.4}}
	return New(ms, me, testConfig()), ms, me
}

func (m *mockStore) SearchCount(_ context.Context, index, query string) (int, error) {
	m.counted = append(m.counted, index+" "+query)
	return m.count, m.countErr
}
