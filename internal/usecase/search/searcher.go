package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/domain/document"
	"github.com/belljun3395/okchat/internal/domain/search/strategy"
	"github.com/belljun3395/okchat/internal/metrics"
)

// Searcher defaults.
const (
	DefaultMaxTerms           = 5
	DefaultResultsPerStrategy = 20
)

// Config tunes the multi-strategy searcher.
type Config struct {
	// MaxTerms caps the OR-terms sent per text strategy.
	MaxTerms int
	// ResultsPerStrategy is the per-strategy result limit.
	ResultsPerStrategy int
}

// Input carries the extracted facets that drive the four strategies.
type Input struct {
	Keywords  []string
	Titles    []string
	Locations []string
	// Contents are content facets; the semantic query falls back to Query when empty.
	Contents []string
	Query    string
	// Dates are date keyword variants. Some keyword terms are reserved for them.
	Dates []string
}

// Searcher issues the keyword, title, content and path strategies concurrently.
type Searcher struct {
	index  Index
	cfg    Config
	logger *zap.Logger
}

// NewSearcher creates a multi-strategy searcher.
func NewSearcher(index Index, cfg Config, logger *zap.Logger) *Searcher {
	if cfg.MaxTerms <= 0 {
		cfg.MaxTerms = DefaultMaxTerms
	}
	if cfg.ResultsPerStrategy <= 0 {
		cfg.ResultsPerStrategy = DefaultResultsPerStrategy
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{index: index, cfg: cfg, logger: logger}
}

// Search runs every strategy that has input. A failed strategy contributes an
// empty set; ErrNoResultsAvailable is returned only when every attempted
// strategy failed.
func (s *Searcher) Search(ctx context.Context, in Input) (strategy.MultiResults, error) {
	queries := map[strategy.Strategy]strategy.Query{
		strategy.Keyword: {
			Terms: keywordTerms(in.Keywords, in.Dates, s.cfg.MaxTerms),
			Limit: s.cfg.ResultsPerStrategy,
		},
		strategy.Title:   s.termQuery(in.Titles),
		strategy.Path:    s.termQuery(in.Locations),
		strategy.Content: {Text: semanticText(in), Limit: s.cfg.ResultsPerStrategy},
	}

	var (
		mu        sync.Mutex
		sets      = make(map[strategy.Strategy][]document.Result, len(queries))
		attempted int
		failed    []error
	)

	var g errgroup.Group
	for _, st := range strategy.All {
		q := queries[st]
		if len(q.Terms) == 0 && strings.TrimSpace(q.Text) == "" {
			s.logger.Debug("Search strategy skipped: no input", zap.String("strategy", st.String()))
			continue
		}
		attempted++

		g.Go(func() error {
			results, err := s.index.Search(ctx, st, q)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				metrics.SearchStrategyFailuresTotal.WithLabelValues(st.String()).Inc()
				s.logger.Warn("Search strategy failed",
					zap.String("strategy", st.String()),
					zap.Error(err),
				)
				failed = append(failed, domain.NewStrategyError(st.String(), err))
				return nil
			}
			metrics.SearchStrategyResults.WithLabelValues(st.String()).Observe(float64(len(results)))
			sets[st] = results
			return nil
		})
	}
	_ = g.Wait()

	if attempted > 0 && len(failed) == attempted {
		return strategy.MultiResults{}, fmt.Errorf("%w: %d strategies failed: %w",
			domain.ErrNoResultsAvailable, len(failed), failed[0])
	}

	return strategy.MultiResults{
		Keyword: strategy.KeywordResults(sets[strategy.Keyword]),
		Title:   strategy.TitleResults(sets[strategy.Title]),
		Content: strategy.ContentResults(sets[strategy.Content]),
		Path:    strategy.PathResults(sets[strategy.Path]),
	}, nil
}

func (s *Searcher) termQuery(terms []string) strategy.Query {
	return strategy.Query{Terms: topTerms(terms, s.cfg.MaxTerms), Limit: s.cfg.ResultsPerStrategy}
}

func semanticText(in Input) string {
	if text := strings.TrimSpace(strings.Join(in.Contents, " ")); text != "" {
		return text
	}
	return strings.TrimSpace(in.Query)
}

// keywordTerms caps keywords at n terms, reserving up to half of them
// (at least one) for date variants so date forms survive a long keyword list.
func keywordTerms(keywords, dates []string, n int) []string {
	dateTerms := topTerms(dates, min(len(dates), max(1, n/2)))
	if n <= 0 || len(dateTerms) == 0 {
		return topTerms(keywords, n)
	}

	reserved := make(map[string]struct{}, len(dateTerms))
	for _, d := range dateTerms {
		reserved[strings.ToLower(d)] = struct{}{}
	}
	rest := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if _, dup := reserved[strings.ToLower(strings.TrimSpace(k))]; !dup {
			rest = append(rest, k)
		}
	}
	return append(topTerms(rest, n-len(dateTerms)), dateTerms...)
}

// topTerms returns at most n non-blank terms in order.
func topTerms(terms []string, n int) []string {
	out := make([]string, 0, min(len(terms), n))
	for _, t := range terms {
		if len(out) == n {
			break
		}
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
