// Package document holds the search hit value returned by the index.
package document

import (
	"regexp"
	"slices"

	"github.com/belljun3395/okchat/internal/domain/score"
)

// Type distinguishes wiki pages from PDF attachments hanging off a page.
type Type string

// Document type constants.
const (
	TypePage          Type = "page"
	TypePDFAttachment Type = "pdf_attachment"
)

// ParseType maps a stored type tag to a Type. Unknown values are treated as pages.
func ParseType(s string) Type {
	if Type(s) == TypePDFAttachment {
		return TypePDFAttachment
	}
	return TypePage
}

var chunkSuffix = regexp.MustCompile(`_chunk_\d+$`)

// Fields is the construction input for Result.
type Fields struct {
	ID       string
	Title    string
	Content  string
	Path     string
	SpaceKey string
	Keywords []string
	Score    score.Similarity
	Type     Type
	PageID   string
}

// Result is a single search hit (immutable value object).
type Result struct {
	id       string
	title    string
	content  string
	path     string
	spaceKey string
	keywords []string
	score    score.Similarity
	typ      Type
	pageID   string
}

// New creates a Result. Keywords are copied.
func New(f Fields) Result {
	typ := f.Type
	if typ == "" {
		typ = TypePage
	}
	return Result{
		id:       f.ID,
		title:    f.Title,
		content:  f.Content,
		path:     f.Path,
		spaceKey: f.SpaceKey,
		keywords: slices.Clone(f.Keywords),
		score:    f.Score,
		typ:      typ,
		pageID:   f.PageID,
	}
}

// ID returns the chunk-level identifier (dedup key).
func (r Result) ID() string { return r.id }

// Title returns the document title.
func (r Result) Title() string { return r.title }

// Content returns the (possibly merged) content.
func (r Result) Content() string { return r.content }

// Path returns the breadcrumb path, e.g. "Engineering > Meetings > 2024".
func (r Result) Path() string { return r.path }

// SpaceKey returns the wiki space key.
func (r Result) SpaceKey() string { return r.spaceKey }

// Keywords returns the indexed keywords.
func (r Result) Keywords() []string { return r.keywords }

// Score returns the relevance score.
func (r Result) Score() score.Similarity { return r.score }

// Type returns the document type.
func (r Result) Type() Type { return r.typ }

// IsPDF reports whether the hit is a PDF attachment.
func (r Result) IsPDF() bool { return r.typ == TypePDFAttachment }

// PageID returns the page id. For PDF attachments this is the parent page.
func (r Result) PageID() string { return r.pageID }

// ActualPageID strips a trailing "_chunk_N" from the id so chunks of one
// page share a key.
func (r Result) ActualPageID() string {
	return chunkSuffix.ReplaceAllString(r.id, "")
}

// LinkPageID is the page id a deep link should point to.
func (r Result) LinkPageID() string {
	if r.pageID != "" {
		return r.pageID
	}
	return r.ActualPageID()
}

// WithContent returns a copy with replaced content.
func (r Result) WithContent(content string) Result {
	r.content = content
	return r
}

// WithScore returns a copy with replaced score.
func (r Result) WithScore(s score.Similarity) Result {
	r.score = s
	return r
}

// WithID returns a copy with replaced id.
func (r Result) WithID(id string) Result {
	r.id = id
	return r
}

// IDs returns the ids of results in order.
func IDs(results []Result) []string {
	ids := make([]string, len(results))
	for i := range results {
		ids[i] = results[i].id
	}
	return ids
}
