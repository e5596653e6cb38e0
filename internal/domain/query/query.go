// Package query holds the query-understanding values produced once per request.
package query

import (
	"math"
	"slices"
	"strings"
)

// Type is the query category.
type Type string

// Query type constants.
const (
	MeetingRecords Type = "MEETING_RECORDS"
	ProjectStatus  Type = "PROJECT_STATUS"
	HowTo          Type = "HOW_TO"
	Information    Type = "INFORMATION"
	DocumentSearch Type = "DOCUMENT_SEARCH"
	General        Type = "GENERAL"
)

// Types lists every category in classifier priority order.
var Types = []Type{MeetingRecords, ProjectStatus, HowTo, Information, DocumentSearch, General}

// ParseType maps a label (case-insensitive, spaces or dashes allowed) to a Type.
// Unknown labels map to General.
func ParseType(s string) Type {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, t := range Types {
		if Type(norm) == t {
			return t
		}
	}
	return General
}

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool { return slices.Contains(Types, t) }

func (t Type) String() string { return string(t) }

// Analysis is the classification of a single query.
type Analysis struct {
	typ        Type
	confidence float64
	keywords   []string
}

// NewAnalysis creates an Analysis. Confidence is clamped to [0,1]; keywords are copied.
func NewAnalysis(t Type, confidence float64, keywords []string) Analysis {
	if !t.IsValid() {
		t = General
	}
	switch {
	case confidence < 0 || math.IsNaN(confidence):
		confidence = 0
	case confidence > 1:
		confidence = 1
	}
	return Analysis{typ: t, confidence: confidence, keywords: slices.Clone(keywords)}
}

// Type returns the category.
func (a Analysis) Type() Type { return a.typ }

// Confidence returns the confidence in [0,1].
func (a Analysis) Confidence() float64 { return a.confidence }

// Keywords returns the query tokens used for classification.
func (a Analysis) Keywords() []string { return a.keywords }

// Facets are the extracted query attributes fed into search.
type Facets struct {
	Titles    []string
	Contents  []string
	Locations []string
	Keywords  []string
	Dates     []string
}

// Clone returns a deep copy.
func (f Facets) Clone() Facets {
	return Facets{
		Titles:    slices.Clone(f.Titles),
		Contents:  slices.Clone(f.Contents),
		Locations: slices.Clone(f.Locations),
		Keywords:  slices.Clone(f.Keywords),
		Dates:     slices.Clone(f.Dates),
	}
}
