package pipeline

import (
	"slices"

	"github.com/belljun3395/okchat/internal/domain/document"
	"github.com/belljun3395/okchat/internal/domain/query"
	"github.com/belljun3395/okchat/internal/domain/search/strategy"
	"github.com/belljun3395/okchat/internal/usecase/assemble"
)

// UserInput is one chat request.
type UserInput struct {
	Query     string
	Email     string
	DeepThink bool
	// RequestID is generated when empty.
	RequestID string
}

// Analysis is the output of classification and facet extraction.
type Analysis struct {
	Query  query.Analysis
	Facets query.Facets
}

// SearchState tracks results through the retrieval stages.
type SearchState struct {
	Raw strategy.MultiResults
	// Results is the current list: fused, then filtered, then re-ranked.
	Results []document.Result
	Context assemble.Context
}

// RequestContext is the per-request state passed between steps. Steps never
// mutate it; every With* method returns a modified copy.
type RequestContext struct {
	input    UserInput
	analysis Analysis
	search   SearchState
}

// NewRequestContext starts a request.
func NewRequestContext(in UserInput) RequestContext {
	return RequestContext{input: in}
}

// Input returns the user input.
func (c RequestContext) Input() UserInput { return c.input }

// Analysis returns the query analysis.
func (c RequestContext) Analysis() Analysis { return c.analysis }

// Search returns the search state.
func (c RequestContext) Search() SearchState { return c.search }

// Results returns the current result list.
func (c RequestContext) Results() []document.Result { return c.search.Results }

// WithAnalysis returns a copy with the analysis replaced.
func (c RequestContext) WithAnalysis(a Analysis) RequestContext {
	c.analysis = Analysis{Query: a.Query, Facets: a.Facets.Clone()}
	return c
}

// WithRaw returns a copy with the per-strategy results replaced.
func (c RequestContext) WithRaw(raw strategy.MultiResults) RequestContext {
	c.search.Raw = raw
	return c
}

// WithResults returns a copy with the current result list replaced.
func (c RequestContext) WithResults(results []document.Result) RequestContext {
	c.search.Results = slices.Clone(results)
	return c
}

// WithContext returns a copy with the assembled context replaced.
func (c RequestContext) WithContext(asm assemble.Context) RequestContext {
	c.search.Context = asm
	return c
}
