// Package rerank re-scores the head of a result list by embedding similarity
// to the query. It is only used for deep-think requests.
package rerank

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/domain/document"
	"github.com/belljun3395/okchat/internal/domain/score"
)

// DefaultTopN is the number of leading candidates re-scored.
const DefaultTopN = 10

// Config tunes the re-ranker.
type Config struct {
	TopN int
}

// Reranker re-orders candidates by cosine similarity of embeddings.
type Reranker struct {
	embed  domain.Embedder
	topN   int
	logger *zap.Logger
}

// New creates a re-ranker. If embed also implements domain.BatchEmbedder the
// candidates are embedded in one call.
func New(embed domain.Embedder, cfg Config, logger *zap.Logger) *Reranker {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reranker{embed: embed, topN: cfg.TopN, logger: logger}
}

// ShouldExecute is true for deep-think requests with more than one result.
func (r *Reranker) ShouldExecute(deepThink bool, results []document.Result) bool {
	return deepThink && len(results) > 1
}

// Rerank re-scores the top N results against query and sorts them by
// similarity; the tail keeps its order after the head. On embedding failure
// the input is returned unchanged.
func (r *Reranker) Rerank(ctx context.Context, query string, results []document.Result) []document.Result {
	if len(results) < 2 {
		return results
	}
	n := min(r.topN, len(results))
	head, tail := results[:n], results[n:]

	rescored, err := r.rescore(ctx, query, head)
	if err != nil {
		r.logger.Warn("Re-rank skipped: embedding failed", zap.Int("candidates", n), zap.Error(err))
		return results
	}

	slices.SortStableFunc(rescored, func(a, b document.Result) int {
		return score.Compare(b.Score(), a.Score())
	})

	out := make([]document.Result, 0, len(results))
	out = append(out, rescored...)
	return append(out, tail...)
}

func (r *Reranker) rescore(ctx context.Context, query string, head []document.Result) ([]document.Result, error) {
	q, err := r.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	texts := make([]string, len(head))
	for i, d := range head {
		texts[i] = d.Content()
	}
	vecs, err := r.embedAll(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed candidates: %w", err)
	}
	if len(vecs) != len(head) {
		return nil, fmt.Errorf("got %d vectors for %d candidates: %w",
			len(vecs), len(head), domain.ErrEmbeddingProviderError)
	}

	out := make([]document.Result, len(head))
	for i, d := range head {
		out[i] = d.WithScore(score.Cosine(q.Embedding, vecs[i]))
	}
	return out, nil
}

func (r *Reranker) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if be, ok := r.embed.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, err
		}
		return res.Embeddings, nil
	}
	res, err := domain.BatchFallback(ctx, r.embed, texts)
	if err != nil {
		return nil, err
	}
	return res.Embeddings, nil
}
