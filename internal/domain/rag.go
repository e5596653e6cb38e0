package domain

import (
	"errors"
	"fmt"
)

// RRF defaults.
const (
	DefaultRRFK            = 60
	DefaultKeywordWeight   = 1.3
	DefaultTitleWeight     = 1.5
	DefaultContentWeight   = 0.8
	DefaultPathWeight      = 3.0
	DefaultDateBoostFactor = 3.0
	DefaultPathBoostFactor = 2.0
)

// RRFProperties are the rank-fusion parameters. Read-only at request time.
type RRFProperties struct {
	K               float64
	KeywordWeight   float64
	TitleWeight     float64
	ContentWeight   float64
	PathWeight      float64
	DateBoostFactor float64
	PathBoostFactor float64
}

// ChunkingProperties mirror the ingestion side's chunking; carried for parity only.
type ChunkingProperties struct {
	Size    int
	Overlap int
}

// RAGProperties is the process-wide retrieval configuration.
type RAGProperties struct {
	RRF      RRFProperties
	Chunking ChunkingProperties
}

// DefaultRAGProperties returns the tuned defaults.
func DefaultRAGProperties() RAGProperties {
	return RAGProperties{
		RRF: RRFProperties{
			K:               DefaultRRFK,
			KeywordWeight:   DefaultKeywordWeight,
			TitleWeight:     DefaultTitleWeight,
			ContentWeight:   DefaultContentWeight,
			PathWeight:      DefaultPathWeight,
			DateBoostFactor: DefaultDateBoostFactor,
			PathBoostFactor: DefaultPathBoostFactor,
		},
		Chunking: ChunkingProperties{Size: 1000, Overlap: 200},
	}
}

// Validate checks k > 0 and that weights and boosts are non-negative.
func (p RRFProperties) Validate() error {
	var errs []error
	if p.K <= 0 {
		errs = append(errs, fmt.Errorf("rrf k must be > 0, got %v", p.K))
	}
	for name, v := range map[string]float64{
		"keyword_weight":    p.KeywordWeight,
		"title_weight":      p.TitleWeight,
		"content_weight":    p.ContentWeight,
		"path_weight":       p.PathWeight,
		"date_boost_factor": p.DateBoostFactor,
		"path_boost_factor": p.PathBoostFactor,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("rrf %s must be >= 0, got %v", name, v))
		}
	}
	return errors.Join(errs...)
}
