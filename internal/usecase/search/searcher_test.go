package search

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/domain/document"
	"github.com/belljun3395/okchat/internal/domain/search/strategy"
)

func TestSearcher_RunsAllStrategies(t *testing.T) {
	idx := newMockIndex()
	idx.results[strategy.Keyword] = hits("k1", "k2")
	idx.results[strategy.Title] = hits("t1")
	idx.results[strategy.Content] = hits("c1", "c2", "c3")
	idx.results[strategy.Path] = hits("p1")

	s := NewSearcher(idx, Config{ResultsPerStrategy: 7}, nil)
	res, err := s.Search(context.Background(), Input{
		Keywords:  []string{"a", "b", "c", "d", "e", "f", "g"},
		Titles:    []string{"회의록"},
		Locations: []string{"Engineering"},
		Contents:  []string{"배포", "절차"},
		Query:     "배포 절차 알려줘",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total() != 7 {
		t.Fatalf("expected 7 hits, got %d", res.Total())
	}
	if got := document.IDs(res.Content.Results()); !slices.Equal(got, []string{"c1", "c2", "c3"}) {
		t.Fatalf("content order = %v", got)
	}

	kq, _ := idx.called(strategy.Keyword)
	if !slices.Equal(kq.Terms, []string{"a", "b", "c", "d", "e"}) {
		t.Fatalf("keyword terms = %v, want top 5", kq.Terms)
	}
	if kq.Limit != 7 {
		t.Fatalf("limit = %d, want 7", kq.Limit)
	}
	cq, _ := idx.called(strategy.Content)
	if cq.Text != "배포 절차" {
		t.Fatalf("semantic text = %q", cq.Text)
	}
}

func TestSearcher_SkipsStrategiesWithoutInput(t *testing.T) {
	idx := newMockIndex()
	idx.results[strategy.Content] = hits("c1")

	s := NewSearcher(idx, Config{}, nil)
	res, err := s.Search(context.Background(), Input{Titles: []string{"  "}, Query: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, st := range []strategy.Strategy{strategy.Keyword, strategy.Title, strategy.Path} {
		if _, ok := idx.called(st); ok {
			t.Fatalf("strategy %s should be skipped", st)
		}
	}
	cq, _ := idx.called(strategy.Content)
	if cq.Text != "hello" {
		t.Fatalf("semantic text should fall back to the query, got %q", cq.Text)
	}
	if !res.Keyword.IsEmpty() || res.Content.Size() != 1 {
		t.Fatalf("unexpected sets: %+v", res)
	}
}

func TestSearcher_FailedStrategyDegrades(t *testing.T) {
	idx := newMockIndex()
	idx.errs[strategy.Keyword] = errors.New("syntax error")
	idx.results[strategy.Title] = hits("t1")

	s := NewSearcher(idx, Config{}, nil)
	res, err := s.Search(context.Background(), Input{
		Keywords: []string{"k"},
		Titles:   []string{"t"},
	})
	if err != nil {
		t.Fatalf("one failure must not fail the search: %v", err)
	}
	if !res.Keyword.IsEmpty() || res.Title.Size() != 1 {
		t.Fatalf("unexpected sets: keyword=%d title=%d", res.Keyword.Size(), res.Title.Size())
	}
}

func TestSearcher_AllFailed(t *testing.T) {
	idx := newMockIndex()
	for _, st := range strategy.All {
		idx.errs[st] = errors.New("down")
	}

	s := NewSearcher(idx, Config{}, nil)
	_, err := s.Search(context.Background(), Input{Keywords: []string{"k"}, Query: "q"})
	if !errors.Is(err, domain.ErrNoResultsAvailable) {
		t.Fatalf("expected ErrNoResultsAvailable, got %v", err)
	}
	if !errors.Is(err, domain.ErrSearchStrategyFailed) {
		t.Fatalf("expected strategy failure in chain, got %v", err)
	}
}

func TestSearcher_NothingToSearch(t *testing.T) {
	s := NewSearcher(newMockIndex(), Config{}, nil)
	res, err := s.Search(context.Background(), Input{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total() != 0 {
		t.Fatalf("expected no hits, got %d", res.Total())
	}
}

func TestTopTerms(t *testing.T) {
	got := topTerms([]string{" a ", "", "b", "c"}, 2)
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("topTerms = %v", got)
	}
}

func TestSearcher_KeywordTermsKeepDateVariants(t *testing.T) {
	idx := newMockIndex()
	s := NewSearcher(idx, Config{MaxTerms: 5}, nil)

	keywords := []string{"회의록", "meeting", "주간", "weekly", "개발팀", "dev team", "2024년 08월", "2024-08", "2408"}
	_, err := s.Search(context.Background(), Input{
		Keywords: keywords,
		Dates:    []string{"2024년 08월", "2024-08", "2408"},
		Query:    "2024년 8월 개발팀 주간 회의록",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	kq, ok := idx.called(strategy.Keyword)
	if !ok {
		t.Fatal("keyword strategy not called")
	}
	want := []string{"회의록", "meeting", "주간", "2024년 08월", "2024-08"}
	if !slices.Equal(kq.Terms, want) {
		t.Fatalf("keyword terms = %v, want %v", kq.Terms, want)
	}
}

func TestKeywordTerms(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		dates    []string
		n        int
		want     []string
	}{
		{"no dates", []string{"a", "b", "c"}, nil, 2, []string{"a", "b"}},
		{"reserves half", []string{"a", "b", "c", "d", "e"}, []string{"2024-08", "2408", "August"}, 5,
			[]string{"a", "b", "c", "2024-08", "2408"}},
		{"dedupes dates in keywords", []string{"2024-08", "a"}, []string{"2024-08"}, 5,
			[]string{"a", "2024-08"}},
		{"one slot", []string{"a", "b"}, []string{"2024-08"}, 1, []string{"2024-08"}},
		{"few keywords", []string{"a"}, []string{"2024-08", "2408"}, 5, []string{"a", "2024-08", "2408"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keywordTerms(tt.keywords, tt.dates, tt.n); !slices.Equal(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
