// Package prompt holds the prompt templates used by extraction, classification
// and answer generation. Templates are parsed once from the embedded catalog.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/belljun3395/okchat/internal/domain/query"
)

//go:embed prompts.yaml
var defaultCatalog []byte

// Facet names an extraction prompt.
type Facet string

// Extraction facets.
const (
	FacetTitle    Facet = "title"
	FacetContent  Facet = "content"
	FacetLocation Facet = "location"
	FacetKeyword  Facet = "keyword"
)

// Facets lists every extraction facet.
var Facets = []Facet{FacetTitle, FacetContent, FacetLocation, FacetKeyword}

// QueryData is the input of extraction and classification templates.
type QueryData struct {
	Query string
}

// AnswerData is the input of answer templates.
type AnswerData struct {
	Context  string
	Question string
}

type catalogFile struct {
	Extraction     map[string]string `yaml:"extraction"`
	Classification string            `yaml:"classification"`
	Answers        map[string]string `yaml:"answers"`
	NoResults      string            `yaml:"no_results"`
}

// Catalog is a read-only set of parsed templates keyed by enum.
type Catalog struct {
	extraction     map[Facet]*template.Template
	classification *template.Template
	answers        map[query.Type]*template.Template
	noResults      *template.Template
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// MustDefault parses the embedded catalog or panics.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a Catalog from YAML. Every facet and query type must have a template.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}

	c := &Catalog{
		extraction: make(map[Facet]*template.Template, len(Facets)),
		answers:    make(map[query.Type]*template.Template, len(query.Types)),
	}

	var errs []error
	for _, facet := range Facets {
		t, err := compile("extraction."+string(facet), f.Extraction[string(facet)])
		errs = append(errs, err)
		c.extraction[facet] = t
	}
	for _, qt := range query.Types {
		t, err := compile("answers."+qt.String(), f.Answers[qt.String()])
		errs = append(errs, err)
		c.answers[qt] = t
	}

	var err error
	c.classification, err = compile("classification", f.Classification)
	errs = append(errs, err)
	c.noResults, err = compile("no_results", f.NoResults)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

func compile(name, text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("prompt %s is missing", name)
	}
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("prompt %s: %w", name, err)
	}
	return t, nil
}

// Extraction renders the extraction prompt for a facet.
func (c *Catalog) Extraction(facet Facet, q string) (string, error) {
	t, ok := c.extraction[facet]
	if !ok {
		return "", fmt.Errorf("unknown extraction facet %q", facet)
	}
	return execute(t, QueryData{Query: q})
}

// Classification renders the classification prompt.
func (c *Catalog) Classification(q string) (string, error) {
	return execute(c.classification, QueryData{Query: q})
}

// Answer renders the answer prompt for a query type. Unknown types use GENERAL.
func (c *Catalog) Answer(t query.Type, data AnswerData) (string, error) {
	tpl, ok := c.answers[t]
	if !ok {
		tpl = c.answers[query.General]
	}
	return execute(tpl, data)
}

// NoResults renders the prompt used when no document survives filtering.
func (c *Catalog) NoResults(question string) (string, error) {
	return execute(c.noResults, AnswerData{Question: question})
}

func execute(t *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", t.Name(), err)
	}
	return strings.TrimSpace(sb.String()), nil
}
