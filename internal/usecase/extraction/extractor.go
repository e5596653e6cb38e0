// Package extraction pulls single query facets (titles, topics, locations, keywords)
// out of a user question with one LLM call per facet.
package extraction

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/metrics"
	"github.com/belljun3395/okchat/internal/prompt"
	"github.com/belljun3395/okchat/internal/usecase/extraction/date"
)

const defaultTemperature = 0.2

// Spec parameterizes one facet extractor.
type Spec struct {
	Facet       prompt.Facet
	MinLength   int
	MaxCount    int
	Temperature float32
	MaxTokens   int
	Fallback    []string
}

// TitleSpec extracts likely document title fragments.
func TitleSpec() Spec {
	return Spec{Facet: prompt.FacetTitle, MinLength: 2, MaxCount: 5, Temperature: defaultTemperature, MaxTokens: 100}
}

// ContentSpec extracts topics the document body should discuss.
func ContentSpec() Spec {
	return Spec{Facet: prompt.FacetContent, MinLength: 3, MaxCount: 5, Temperature: defaultTemperature, MaxTokens: 100}
}

// LocationSpec extracts path segment hints.
func LocationSpec() Spec {
	return Spec{Facet: prompt.FacetLocation, MinLength: 2, MaxCount: 5, Temperature: defaultTemperature, MaxTokens: 60}
}

// KeywordSpec extracts bilingual search keywords.
func KeywordSpec() Spec {
	return Spec{Facet: prompt.FacetKeyword, MinLength: 2, MaxCount: 10, Temperature: defaultTemperature, MaxTokens: 150}
}

// Extractor pulls one facet out of a query. It never returns an error:
// a failed LLM call or prompt render degrades to the spec's fallback.
type Extractor struct {
	spec    Spec
	llm     ChatModel
	prompts Prompts
	logger  *zap.Logger
}

// New creates an extractor for the given spec.
func New(spec Spec, llm ChatModel, prompts Prompts, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{spec: spec, llm: llm, prompts: prompts, logger: logger}
}

// Facet returns the facet this extractor produces.
func (e *Extractor) Facet() prompt.Facet { return e.spec.Facet }

// Extract returns the parsed terms for the query.
func (e *Extractor) Extract(ctx context.Context, query string) []string {
	if strings.TrimSpace(query) == "" {
		return slices.Clone(e.spec.Fallback)
	}

	terms, err := e.extract(ctx, query)
	if err != nil {
		e.logger.Warn("Facet extraction failed, using fallback",
			zap.String("facet", string(e.spec.Facet)),
			zap.Error(err),
		)
		metrics.ExtractionFallbacksTotal.WithLabelValues(string(e.spec.Facet)).Inc()
		return slices.Clone(e.spec.Fallback)
	}
	return terms
}

func (e *Extractor) extract(ctx context.Context, query string) ([]string, error) {
	text, err := e.prompts.Extraction(e.spec.Facet, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	res, err := e.llm.Complete(ctx, domain.NewPromptRequest(text, e.spec.Temperature, e.spec.MaxTokens))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	return ParseTerms(res.Content, e.spec.MinLength, e.spec.MaxCount), nil
}

// KeywordExtractor extracts keywords with the LLM and merges in every date
// variant found in the query, so date forms reach keyword search even when
// the model omits them.
type KeywordExtractor struct {
	*Extractor
}

// NewKeywordExtractor creates a keyword extractor.
func NewKeywordExtractor(llm ChatModel, prompts Prompts, logger *zap.Logger) *KeywordExtractor {
	return &KeywordExtractor{Extractor: New(KeywordSpec(), llm, prompts, logger)}
}

// Extract returns LLM keywords followed by date keywords.
func (k *KeywordExtractor) Extract(ctx context.Context, query string) []string {
	return MergeTerms(k.Extractor.Extract(ctx, query), date.Extract(query, false))
}
