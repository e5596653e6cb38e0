package pipeline

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/domain/document"
	"github.com/belljun3395/okchat/internal/domain/query"
	"github.com/belljun3395/okchat/internal/domain/search/strategy"
	"github.com/belljun3395/okchat/internal/prompt"
	"github.com/belljun3395/okchat/internal/usecase/assemble"
	"github.com/belljun3395/okchat/internal/usecase/permission"
	"github.com/belljun3395/okchat/internal/usecase/rerank"
	"github.com/belljun3395/okchat/internal/usecase/search"
)

type mockClassifier struct {
	analysis query.Analysis
	err      error
}

func (m *mockClassifier) Classify(_ context.Context, _ string) (query.Analysis, error) {
	return m.analysis, m.err
}

type staticExtractor []string

func (s staticExtractor) Extract(_ context.Context, _ string) []string { return s }

type mockIndex struct {
	mu      sync.Mutex
	results map[strategy.Strategy][]document.Result
	err     error
}

func (m *mockIndex) Search(_ context.Context, s strategy.Strategy, _ strategy.Query) ([]document.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.results[s], nil
}

// denyOracle allows everything except the listed ids.
type denyOracle struct {
	deny map[string]bool
}

func (o *denyOracle) FilterByUserEmail(_ context.Context, results []document.Result, _ string) ([]document.Result, error) {
	var out []document.Result
	for _, r := range results {
		if !o.deny[r.ID()] {
			out = append(out, r)
		}
	}
	return out, nil
}

type countingEmbedder struct {
	calls atomic.Int32
}

func (e *countingEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.calls.Add(1)
	if strings.Contains(text, "release") {
		return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
	}
	return domain.EmbeddingResult{Embedding: []float32{0, 1}}, nil
}

type mockChat struct {
	prompts []string
	reply   string
	err     error
}

func (m *mockChat) Complete(_ context.Context, req domain.ChatRequest) (domain.ChatResult, error) {
	m.prompts = append(m.prompts, req.Messages[0].Content)
	if m.err != nil {
		return domain.ChatResult{}, m.err
	}
	return domain.ChatResult{Content: m.reply, TotalTokens: 10}, nil
}

func page(id, title, content string) document.Result {
	return document.New(document.Fields{
		ID:       id,
		Title:    title,
		Content:  content + " " + strings.Repeat("본문", 60),
		Path:     "Engineering > Guide",
		SpaceKey: "ENG",
	})
}

type fixture struct {
	index    *mockIndex
	oracle   *denyOracle
	embedder *countingEmbedder
	chat     *mockChat
	pipeline *Pipeline
}

func newFixture(allowAnonymous bool) *fixture {
	f := &fixture{
		index: &mockIndex{results: map[strategy.Strategy][]document.Result{
			strategy.Keyword: {page("a", "Deploy guide", "deploy"), page("secret", "Secret plan", "secret")},
			strategy.Title:   {page("b", "Release notes", "release"), page("a", "Deploy guide", "deploy")},
			strategy.Content: {page("b", "Release notes", "release")},
		}},
		oracle:   &denyOracle{deny: map[string]bool{"secret": true}},
		embedder: &countingEmbedder{},
		chat:     &mockChat{reply: " answer "},
	}

	catalog := prompt.MustDefault()
	steps := DefaultSteps(Dependencies{
		Classifier: &mockClassifier{analysis: query.NewAnalysis(query.HowTo, 0.75, []string{"deploy"})},
		Extractors: Extractors{
			Title:    staticExtractor{"deploy"},
			Content:  staticExtractor{"deploy steps"},
			Location: staticExtractor{},
			Keyword:  staticExtractor{"deploy", "배포"},
		},
		Searcher:   search.NewSearcher(f.index, search.Config{}, nil),
		Fusion:     search.NewFusion(domain.DefaultRAGProperties().RRF),
		Permission: permission.New(f.oracle, permission.Config{AllowAnonymous: allowAnonymous}, nil),
		Reranker:   rerank.New(f.embedder, rerank.Config{}, nil),
		Assembler:  assemble.New(assemble.Config{BaseURL: "https://wiki"}, catalog),
	})
	f.pipeline = New(steps, assemble.New(assemble.Config{}, catalog), f.chat, Config{}, nil)
	return f
}
