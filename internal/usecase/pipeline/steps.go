package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/belljun3395/okchat/internal/domain/query"
	"github.com/belljun3395/okchat/internal/logger"
	"github.com/belljun3395/okchat/internal/usecase/assemble"
	"github.com/belljun3395/okchat/internal/usecase/classify"
	"github.com/belljun3395/okchat/internal/usecase/extraction/date"
	"github.com/belljun3395/okchat/internal/usecase/permission"
	"github.com/belljun3395/okchat/internal/usecase/rerank"
	"github.com/belljun3395/okchat/internal/usecase/search"
)

// Step names.
const (
	StepAnalyze    = "analyze"
	StepSearch     = "search"
	StepFuse       = "fuse"
	StepPermission = "permission"
	StepRerank     = "rerank"
	StepAssemble   = "assemble"
)

// FacetExtractor extracts one facet. Failures degrade to an empty or fallback
// list inside the extractor.
type FacetExtractor interface {
	Extract(ctx context.Context, q string) []string
}

// Extractors groups the four facet extractors.
type Extractors struct {
	Title    FacetExtractor
	Content  FacetExtractor
	Location FacetExtractor
	Keyword  FacetExtractor
}

// Dependencies are the collaborators of the default step list.
type Dependencies struct {
	Classifier classify.Classifier
	Extractors Extractors
	Searcher   *search.Searcher
	Fusion     *search.Fusion
	Permission *permission.Filter
	Reranker   *rerank.Reranker
	Assembler  *assemble.Assembler
}

// DefaultSteps returns analyze, search, fuse, permission, rerank and assemble
// in that order.
func DefaultSteps(d Dependencies) []Step {
	return []Step{
		AnalyzeStep(d.Classifier, d.Extractors),
		SearchStep(d.Searcher),
		FuseStep(d.Fusion),
		PermissionStep(d.Permission),
		RerankStep(d.Reranker),
		AssembleStep(d.Assembler),
	}
}

// AnalyzeStep classifies the query and extracts every facet concurrently.
// Date keywords are computed locally from the query.
func AnalyzeStep(c classify.Classifier, ex Extractors) Step {
	return Step{
		Name:          StepAnalyze,
		ShouldExecute: always,
		Execute: func(ctx context.Context, rc RequestContext) (RequestContext, error) {
			q := rc.Input().Query
			var (
				mu       sync.Mutex
				analysis query.Analysis
				facets   query.Facets
			)

			extract := func(e FacetExtractor, dst *[]string) func() error {
				return func() error {
					if e == nil {
						return nil
					}
					terms := e.Extract(ctx, q)
					mu.Lock()
					*dst = terms
					mu.Unlock()
					return nil
				}
			}

			var g errgroup.Group
			g.Go(func() error {
				a, err := c.Classify(ctx, q)
				if err != nil {
					logger.FromContext(ctx).Warn("Classification failed, using GENERAL", zap.Error(err))
					a = query.NewAnalysis(query.General, 0.5, classify.Tokens(q))
				}
				mu.Lock()
				analysis = a
				mu.Unlock()
				return nil
			})
			g.Go(extract(ex.Title, &facets.Titles))
			g.Go(extract(ex.Content, &facets.Contents))
			g.Go(extract(ex.Location, &facets.Locations))
			g.Go(extract(ex.Keyword, &facets.Keywords))
			_ = g.Wait()

			facets.Dates = date.Extract(q, false)
			return rc.WithAnalysis(Analysis{Query: analysis, Facets: facets}), nil
		},
	}
}

// SearchStep runs the multi-strategy search.
func SearchStep(s *search.Searcher) Step {
	return Step{
		Name:          StepSearch,
		ShouldExecute: always,
		Execute: func(ctx context.Context, rc RequestContext) (RequestContext, error) {
			f := rc.Analysis().Facets
			raw, err := s.Search(ctx, search.Input{
				Keywords:  f.Keywords,
				Titles:    f.Titles,
				Locations: f.Locations,
				Contents:  f.Contents,
				Query:     rc.Input().Query,
				Dates:     f.Dates,
			})
			if err != nil {
				return rc, fmt.Errorf("search: %w", err)
			}
			return rc.WithRaw(raw), nil
		},
	}
}

// FuseStep merges the strategy rankings into the current result list.
func FuseStep(f *search.Fusion) Step {
	return Step{
		Name: StepFuse,
		ShouldExecute: func(rc RequestContext) bool {
			return rc.Search().Raw.Total() > 0
		},
		Execute: func(_ context.Context, rc RequestContext) (RequestContext, error) {
			a := rc.Analysis()
			fused := f.Fuse(rc.Search().Raw, search.Boosts{
				DateKeywords: a.Facets.Dates,
				PathHints:    search.PathHints(a.Query.Type(), a.Facets.Locations),
			})
			return rc.WithResults(fused), nil
		},
	}
}

// PermissionStep drops results the user may not read.
func PermissionStep(f *permission.Filter) Step {
	return Step{
		Name: StepPermission,
		ShouldExecute: func(rc RequestContext) bool {
			return f.ShouldExecute(rc.Results(), rc.Input().Email)
		},
		Execute: func(ctx context.Context, rc RequestContext) (RequestContext, error) {
			return rc.WithResults(f.Apply(ctx, rc.Results(), rc.Input().Email)), nil
		},
	}
}

// RerankStep re-scores the head of the list for deep-think requests.
func RerankStep(r *rerank.Reranker) Step {
	return Step{
		Name: StepRerank,
		ShouldExecute: func(rc RequestContext) bool {
			return r.ShouldExecute(rc.Input().DeepThink, rc.Results())
		},
		Execute: func(ctx context.Context, rc RequestContext) (RequestContext, error) {
			return rc.WithResults(r.Rerank(ctx, rc.Input().Query, rc.Results())), nil
		},
	}
}

// AssembleStep renders the context block.
func AssembleStep(a *assemble.Assembler) Step {
	return Step{
		Name:          StepAssemble,
		ShouldExecute: always,
		Execute: func(_ context.Context, rc RequestContext) (RequestContext, error) {
			return rc.WithContext(a.Assemble(rc.Input().Query, rc.Results())), nil
		},
	}
}

