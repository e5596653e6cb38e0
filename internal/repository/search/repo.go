package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/belljun3395/okchat/internal/db"
	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/domain/document"
	"github.com/belljun3395/okchat/internal/domain/score"
	"github.com/belljun3395/okchat/internal/domain/search/strategy"
)

// Chunk hash field names. The ingestion side writes chunks as
// HSET <prefix><id> title ... content ... embedding <float32 blob>.
const (
	FieldTitle     = "title"
	FieldContent   = "content"
	FieldPath      = "path"
	FieldSpaceKey  = "space_key"
	FieldKeywords  = "keywords"
	FieldType      = "type"
	FieldPageID    = "page_id"
	FieldEmbedding = "embedding"
)

var returnFields = []string{
	FieldTitle, FieldContent, FieldPath, FieldSpaceKey, FieldKeywords, FieldType, FieldPageID,
}

// textFields maps each text strategy to the TEXT fields it matches.
var textFields = map[strategy.Strategy][]string{
	strategy.Keyword: {FieldKeywords, FieldTitle, FieldContent},
	strategy.Title:   {FieldTitle},
	strategy.Path:    {FieldPath},
}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Embedder vectorizes the semantic query.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Config locates the chunk index.
type Config struct {
	IndexName string
	KeyPrefix string
	// SpaceKeys restricts every strategy to these spaces when non-empty.
	SpaceKeys []string
}

// Repo implements usecase/search.Index over a Redis FT index of chunks.
type Repo struct {
	store store
	embed Embedder
	cfg   Config
}

// New creates a search repository.
func New(s store, embed Embedder, cfg Config) *Repo {
	return &Repo{store: s, embed: embed, cfg: cfg}
}

// Search runs one strategy and returns hits in rank order.
func (r *Repo) Search(ctx context.Context, s strategy.Strategy, q strategy.Query) ([]document.Result, error) {
	if q.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidInput)
	}

	switch s {
	case strategy.Keyword, strategy.Title, strategy.Path:
		return r.searchText(ctx, s, q)
	case strategy.Content:
		return r.searchSemantic(ctx, q)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidInput, s)
	}
}

func (r *Repo) searchText(ctx context.Context, s strategy.Strategy, q strategy.Query) ([]document.Result, error) {
	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    r.cfg.IndexName,
		Fields:       textFields[s],
		Terms:        q.Terms,
		Tags:         r.tagFilters(),
		TopK:         q.Limit,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s, err)
	}
	return r.toResults(sr, score.CoerceSimilarity), nil
}

func (r *Repo) searchSemantic(ctx context.Context, q strategy.Query) ([]document.Result, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, fmt.Errorf("%w: semantic query text is empty", domain.ErrInvalidInput)
	}

	emb, err := r.embed.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.cfg.IndexName,
		VectorField:  FieldEmbedding,
		Tags:         r.tagFilters(),
		Vector:       emb.Embedding,
		K:            q.Limit,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", strategy.Content, err)
	}
	// Vector scores are cosine distances from an untrusted engine: clamp, then invert.
	return r.toResults(sr, func(d float64) score.Similarity {
		return score.CoerceDistance(d).ToSimilarity()
	}), nil
}

func (r *Repo) tagFilters() []db.TagFilter {
	if len(r.cfg.SpaceKeys) == 0 {
		return nil
	}
	return []db.TagFilter{{Field: FieldSpaceKey, Values: r.cfg.SpaceKeys}}
}

func (r *Repo) toResults(sr *db.SearchResult, toScore func(float64) score.Similarity) []document.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	results := make([]document.Result, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		results = append(results, document.New(document.Fields{
			ID:       strings.TrimPrefix(e.Key, r.cfg.KeyPrefix),
			Title:    e.Fields[FieldTitle],
			Content:  e.Fields[FieldContent],
			Path:     e.Fields[FieldPath],
			SpaceKey: e.Fields[FieldSpaceKey],
			Keywords: splitKeywords(e.Fields[FieldKeywords]),
			Score:    toScore(e.Score),
			Type:     document.ParseType(e.Fields[FieldType]),
			PageID:   e.Fields[FieldPageID],
		}))
	}
	return results
}

func splitKeywords(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
