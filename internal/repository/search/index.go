package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/belljun3395/okchat/internal/db"
)

// indexStore is the consumer interface for index bootstrap (ISP).
type indexStore interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// IndexConfig describes the chunk index schema.
type IndexConfig struct {
	Name        string
	KeyPrefix   string
	VectorDim   int
	HNSWM       int
	EFConstruct int
}

// ChunkIndex builds the FT index definition for wiki chunks.
func ChunkIndex(cfg IndexConfig) (*db.IndexDefinition, error) {
	def, err := db.NewIndex(cfg.Name).
		Prefix(cfg.KeyPrefix).
		TextWithOpts(FieldTitle, 2, true).
		Text(FieldContent).
		TextWithOpts(FieldPath, 0, true).
		TextWithOpts(FieldKeywords, 1.5, true).
		Tag(FieldSpaceKey).
		Tag(FieldType).
		Tag(FieldPageID).
		VectorHNSW(FieldEmbedding, cfg.VectorDim, db.DistanceCosine, cfg.HNSWM, cfg.EFConstruct).
		Build()
	if err != nil {
		return nil, fmt.Errorf("chunk index definition: %w", err)
	}
	return def, nil
}

// EnsureIndex creates the chunk index unless it already exists.
// With recreate set, an existing index is dropped first (documents are kept).
// Returns true when the index was created.
func EnsureIndex(ctx context.Context, s indexStore, cfg IndexConfig, recreate bool) (bool, error) {
	def, err := ChunkIndex(cfg)
	if err != nil {
		return false, err
	}

	exists, err := s.IndexExists(ctx, def.Name)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", def.Name, err)
	}
	if exists && !recreate {
		return false, nil
	}
	if exists {
		if err := s.DropIndex(ctx, def.Name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return false, fmt.Errorf("drop index %s: %w", def.Name, err)
		}
	}

	if err := s.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return true, nil
}

type countStore interface {
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// ChunkCount returns the number of chunks the index currently covers.
func ChunkCount(ctx context.Context, s countStore, name string) (int, error) {
	n, err := s.SearchCount(ctx, name, "*")
	if err != nil {
		return 0, fmt.Errorf("count chunks in %s: %w", name, err)
	}
	return n, nil
}
