package search

import (
	"slices"
	"strings"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/domain/document"
	"github.com/belljun3395/okchat/internal/domain/score"
	"github.com/belljun3395/okchat/internal/domain/search/strategy"
)

// Boosts are the request-specific inputs of the multiplicative boosts.
type Boosts struct {
	DateKeywords []string
	PathHints    []string
}

// Fusion merges strategy rankings with weighted Reciprocal Rank Fusion.
type Fusion struct {
	props domain.RRFProperties
}

// NewFusion creates a fusion engine. props are copied.
func NewFusion(props domain.RRFProperties) *Fusion {
	return &Fusion{props: props}
}

type fused struct {
	res      document.Result
	rrf      float64
	bestRank int
	order    int
	final    score.Similarity
}

// Fuse computes score(d) = sum of weight_s/(k + rank_s(d)) over the strategies
// that returned d (rank is 1-based), applies the date and path boosts, merges
// chunks of one page and returns one list sorted by score descending. Ties go
// to the document with the better best rank, then to first appearance.
func (f *Fusion) Fuse(results strategy.MultiResults, b Boosts) []document.Result {
	byID := make(map[string]*fused)
	var docs []*fused

	for _, set := range results.Sets() {
		w := f.weight(set.Strategy())
		for i, r := range set.Results() {
			rank := i + 1
			contrib := w / (f.props.K + float64(rank))
			d, ok := byID[r.ID()]
			if !ok {
				d = &fused{res: r, bestRank: rank, order: len(docs)}
				byID[r.ID()] = d
				docs = append(docs, d)
			}
			d.rrf += contrib
			d.bestRank = min(d.bestRank, rank)
		}
	}

	for _, d := range docs {
		d.final = f.boost(d, b)
	}

	slices.SortStableFunc(docs, compareFused)
	return mergeChunks(docs)
}

func (f *Fusion) weight(s strategy.Strategy) float64 {
	switch s {
	case strategy.Keyword:
		return f.props.KeywordWeight
	case strategy.Title:
		return f.props.TitleWeight
	case strategy.Content:
		return f.props.ContentWeight
	case strategy.Path:
		return f.props.PathWeight
	default:
		return 0
	}
}

func (f *Fusion) boost(d *fused, b Boosts) score.Similarity {
	builder := score.NewBuilder(score.CoerceSimilarity(d.rrf))
	if containsAny(d.res.Title(), b.DateKeywords) {
		builder.WithDateFactor(f.props.DateBoostFactor)
	}
	if containsAny(d.res.Path(), b.PathHints) {
		builder.WithPathFactor(f.props.PathBoostFactor)
	}
	s, err := builder.Build()
	if err != nil {
		// factors are validated with the properties
		return score.CoerceSimilarity(d.rrf)
	}
	return s
}

func compareFused(a, b *fused) int {
	if c := score.Compare(b.final, a.final); c != 0 {
		return c
	}
	if a.bestRank != b.bestRank {
		return a.bestRank - b.bestRank
	}
	return a.order - b.order
}

// mergeChunks folds chunks sharing an ActualPageID into the first (best)
// chunk of that page. Content is joined in fused order; the best score is kept.
func mergeChunks(sorted []*fused) []document.Result {
	type page struct {
		head     document.Result
		contents []string
	}
	pages := make(map[string]*page)
	var order []string

	for _, d := range sorted {
		key := d.res.ActualPageID()
		p, ok := pages[key]
		if !ok {
			pages[key] = &page{head: d.res.WithScore(d.final), contents: []string{d.res.Content()}}
			order = append(order, key)
			continue
		}
		p.contents = append(p.contents, d.res.Content())
	}

	out := make([]document.Result, 0, len(order))
	for _, key := range order {
		p := pages[key]
		r := p.head
		if len(p.contents) > 1 {
			r = r.WithContent(strings.Join(nonBlank(p.contents), "\n\n")).WithID(key)
		}
		out = append(out, r)
	}
	return out
}

func containsAny(s string, needles []string) bool {
	if s == "" {
		return false
	}
	lower := strings.ToLower(s)
	for _, n := range needles {
		if n = strings.TrimSpace(n); n != "" && strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func nonBlank(ss []string) []string {
	out := ss[:0:0]
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
