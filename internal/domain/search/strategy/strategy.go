package strategy

import (
	"slices"

	"github.com/belljun3395/okchat/internal/domain/document"
)

// Strategy names one of the independent search strategies.
type Strategy string

// Search strategy constants.
const (
	Keyword Strategy = "keyword"
	Title   Strategy = "title"
	Content Strategy = "content"
	Path    Strategy = "path"
)

// All lists strategies in fusion tie-break order.
var All = []Strategy{Keyword, Title, Content, Path}

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	return s == Keyword || s == Title || s == Content || s == Path
}

func (s Strategy) String() string { return string(s) }

// Query is the input of one strategy search. Text strategies use Terms
// (OR-matched); the content strategy embeds Text.
type Query struct {
	Terms []string
	Text  string
	Limit int
}

// ResultSet is the ranked output of one strategy. Order is rank: index 0 is rank 1.
type ResultSet struct {
	strategy Strategy
	results  []document.Result
}

// NewResultSet creates a result set. The slice is copied.
func NewResultSet(s Strategy, results []document.Result) ResultSet {
	return ResultSet{strategy: s, results: slices.Clone(results)}
}

// KeywordResults creates a keyword strategy result set.
func KeywordResults(results []document.Result) ResultSet { return NewResultSet(Keyword, results) }

// TitleResults creates a title strategy result set.
func TitleResults(results []document.Result) ResultSet { return NewResultSet(Title, results) }

// ContentResults creates a content (semantic) strategy result set.
func ContentResults(results []document.Result) ResultSet { return NewResultSet(Content, results) }

// PathResults creates a path strategy result set.
func PathResults(results []document.Result) ResultSet { return NewResultSet(Path, results) }

// Strategy returns the originating strategy.
func (rs ResultSet) Strategy() Strategy { return rs.strategy }

// Results returns the ranked results.
func (rs ResultSet) Results() []document.Result { return rs.results }

// Size returns the number of results.
func (rs ResultSet) Size() int { return len(rs.results) }

// IsEmpty reports whether the set has no results.
func (rs ResultSet) IsEmpty() bool { return len(rs.results) == 0 }

// TopN returns at most n leading results.
func (rs ResultSet) TopN(n int) []document.Result {
	if n <= 0 {
		return nil
	}
	if n >= len(rs.results) {
		return rs.results
	}
	return rs.results[:n]
}

// MultiResults bundles the four strategy outputs of one request.
type MultiResults struct {
	Keyword ResultSet
	Title   ResultSet
	Content ResultSet
	Path    ResultSet
}

// Sets returns the four sets in All order.
func (m MultiResults) Sets() []ResultSet {
	return []ResultSet{m.Keyword, m.Title, m.Content, m.Path}
}

// Total returns the number of hits across all sets (duplicates counted).
func (m MultiResults) Total() int {
	return m.Keyword.Size() + m.Title.Size() + m.Content.Size() + m.Path.Size()
}
