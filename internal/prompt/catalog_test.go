package prompt

import (
	"strings"
	"testing"

	"github.com/belljun3395/okchat/internal/domain/query"
)

func TestDefault_AllTemplatesPresent(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	for _, f := range Facets {
		out, err := c.Extraction(f, "2024년 8월 회의록")
		if err != nil {
			t.Fatalf("Extraction(%s): %v", f, err)
		}
		if !strings.Contains(out, "2024년 8월 회의록") {
			t.Errorf("Extraction(%s) does not embed the query", f)
		}
		if !strings.Contains(out, "comma-separated") {
			t.Errorf("Extraction(%s) lacks the output contract", f)
		}
	}

	for _, qt := range query.Types {
		out, err := c.Answer(qt, AnswerData{Context: "CTX", Question: "Q?"})
		if err != nil {
			t.Fatalf("Answer(%s): %v", qt, err)
		}
		if !strings.Contains(out, "CTX") || !strings.Contains(out, "Q?") {
			t.Errorf("Answer(%s) missing placeholders", qt)
		}
	}
}

func TestKeywordPrompt_RequiresBilingualTerms(t *testing.T) {
	out, err := MustDefault().Extraction(FacetKeyword, "x")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "BOTH its Korean and its English form") {
		t.Error("keyword prompt must ask for Korean and English forms")
	}
}

func TestClassification_ListsAllCategories(t *testing.T) {
	out, err := MustDefault().Classification("hello")
	if err != nil {
		t.Fatal(err)
	}
	for _, qt := range query.Types {
		if !strings.Contains(out, qt.String()) {
			t.Errorf("classification prompt missing %s", qt)
		}
	}
	for _, marker := range []string{"TYPE:", "CONFIDENCE:", "REASONING:"} {
		if !strings.Contains(out, marker) {
			t.Errorf("classification prompt missing %s", marker)
		}
	}
}

func TestAnswer_UnknownTypeFallsBackToGeneral(t *testing.T) {
	c := MustDefault()
	got, err := c.Answer(query.Type("NOPE"), AnswerData{Context: "c", Question: "q"})
	if err != nil {
		t.Fatal(err)
	}
	want, _ := c.Answer(query.General, AnswerData{Context: "c", Question: "q"})
	if got != want {
		t.Error("unknown type should render the GENERAL template")
	}
}

func TestParse_MissingTemplate(t *testing.T) {
	_, err := Parse([]byte("classification: \"TYPE: {{.Query}}\"\n"))
	if err == nil {
		t.Fatal("expected error for incomplete catalog")
	}
}

func TestNoResults(t *testing.T) {
	out, err := MustDefault().NoResults("where is it?")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "where is it?") {
		t.Error("no-results prompt must restate the question")
	}
}
