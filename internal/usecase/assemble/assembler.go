// Package assemble turns the final result list into the context block and
// source list handed to the chat model.
package assemble

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/belljun3395/okchat/internal/domain/document"
	"github.com/belljun3395/okchat/internal/domain/query"
	"github.com/belljun3395/okchat/internal/prompt"
	"github.com/belljun3395/okchat/internal/usecase/extraction/date"
)

// Assembler defaults.
const (
	DefaultMaxDocuments     = 20
	DefaultMinContentLength = 100
	DefaultHighThreshold    = 0.8
	DefaultMediumThreshold  = 0.5
)

// Tier is a relevance band.
type Tier string

// Relevance tiers.
const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierOther  Tier = "other"
)

var tierHeaders = map[Tier]string{
	TierHigh:   "=== Highly relevant documents ===",
	TierMedium: "=== Relevant documents ===",
	TierOther:  "=== Other documents ===",
}

// Prompts renders the answer prompts.
type Prompts interface {
	Answer(t query.Type, data prompt.AnswerData) (string, error)
	NoResults(question string) (string, error)
}

// Config tunes assembly.
type Config struct {
	// BaseURL of the wiki, e.g. "https://wiki.example.com/wiki".
	BaseURL          string
	MaxDocuments     int
	MinContentLength int
	HighThreshold    float64
	MediumThreshold  float64
}

// Source is one cited document.
type Source struct {
	Title string  `json:"title"`
	URL   string  `json:"url,omitempty"`
	Path  string  `json:"path,omitempty"`
	Score float64 `json:"score"`
	PDF   bool    `json:"pdf,omitempty"`
}

// Context is the assembled prompt input.
type Context struct {
	// Text is empty when no document survived.
	Text     string
	Question string
	Sources  []Source
}

// HasDocuments reports whether any document made it into the context.
func (c Context) HasDocuments() bool { return c.Text != "" }

// Assembler builds context text from search results.
type Assembler struct {
	cfg     Config
	prompts Prompts
}

// New creates an assembler. Zero config values select the defaults.
func New(cfg Config, prompts Prompts) *Assembler {
	if cfg.MaxDocuments <= 0 {
		cfg.MaxDocuments = DefaultMaxDocuments
	}
	if cfg.MinContentLength <= 0 {
		cfg.MinContentLength = DefaultMinContentLength
	}
	if cfg.HighThreshold <= 0 {
		cfg.HighThreshold = DefaultHighThreshold
	}
	if cfg.MediumThreshold <= 0 {
		cfg.MediumThreshold = DefaultMediumThreshold
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Assembler{cfg: cfg, prompts: prompts}
}

// Assemble caps the list, drops short documents and renders the rest grouped
// by tier, keeping input order within a tier.
func (a *Assembler) Assemble(question string, results []document.Result) Context {
	out := Context{Question: strings.TrimSpace(question)}

	if len(results) > a.cfg.MaxDocuments {
		results = results[:a.cfg.MaxDocuments]
	}

	tiers := make(map[Tier][]document.Result)
	for _, r := range results {
		if utf8.RuneCountInString(strings.TrimSpace(r.Content())) < a.cfg.MinContentLength {
			continue
		}
		t := a.tier(r.Score().Value())
		tiers[t] = append(tiers[t], r)
	}

	var b strings.Builder
	n := 0
	for _, t := range []Tier{TierHigh, TierMedium, TierOther} {
		docs := tiers[t]
		if len(docs) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(tierHeaders[t])
		b.WriteString("\n\n")
		for _, r := range docs {
			n++
			link := a.Link(r)
			a.writeDocument(&b, n, r, link)
			out.Sources = append(out.Sources, Source{
				Title: r.Title(),
				URL:   link,
				Path:  r.Path(),
				Score: r.Score().Value(),
				PDF:   r.IsPDF(),
			})
		}
	}
	out.Text = strings.TrimRight(b.String(), "\n")
	return out
}

// RenderPrompt renders the answer prompt for the query type, or the
// no-results prompt when the context is empty.
func (a *Assembler) RenderPrompt(t query.Type, c Context) (string, error) {
	if !c.HasDocuments() {
		p, err := a.prompts.NoResults(c.Question)
		if err != nil {
			return "", fmt.Errorf("render no-results prompt: %w", err)
		}
		return p, nil
	}
	p, err := a.prompts.Answer(t, prompt.AnswerData{Context: c.Text, Question: c.Question})
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t, err)
	}
	return p, nil
}

// Link builds the deep link <baseURL>/spaces/<spaceKey>/pages/<pageId>.
// PDF attachments link to their parent page. Empty when a part is missing.
func (a *Assembler) Link(r document.Result) string {
	space, page := r.SpaceKey(), r.LinkPageID()
	if space == "" || page == "" {
		return ""
	}
	return a.cfg.BaseURL + "/spaces/" + url.PathEscape(space) + "/pages/" + url.PathEscape(page)
}

// tier buckets a final score. With default weights a fused RRF score
// tops out near 0.65, reached only by a date and path boosted hit that
// every strategy ranks first. Without re-ranking nearly all documents
// land in TierOther in fused order, and TierHigh needs re-ranked scores.
func (a *Assembler) tier(v float64) Tier {
	switch {
	case v >= a.cfg.HighThreshold:
		return TierHigh
	case v >= a.cfg.MediumThreshold:
		return TierMedium
	default:
		return TierOther
	}
}

func (a *Assembler) writeDocument(b *strings.Builder, n int, r document.Result, link string) {
	title := r.Title()
	if r.IsPDF() {
		title = "[PDF] " + title
	}
	fmt.Fprintf(b, "[%d] %s\n", n, title)
	if link != "" {
		fmt.Fprintf(b, "Link: %s\n", link)
	}
	if r.Path() != "" {
		fmt.Fprintf(b, "Path: %s\n", r.Path())
	}
	fmt.Fprintf(b, "Score: %.3f\n", r.Score().Value())
	if kw := r.Keywords(); len(kw) > 0 {
		fmt.Fprintf(b, "Keywords: %s\n", strings.Join(kw, ", "))
	}
	if d, ok := date.ParseTitleDate(r.Title()); ok {
		fmt.Fprintf(b, "Date: %s\n", d.Format("2006-01-02"))
	}
	b.WriteString("Content:\n")
	b.WriteString(strings.TrimSpace(r.Content()))
	b.WriteString("\n\n")
}
