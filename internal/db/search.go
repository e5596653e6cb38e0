package db

// TagFilter restricts a search to documents whose TAG field holds one of Values.
type TagFilter struct {
	Field  string
	Values []string
}

// KNNQuery is the input for vector similarity search.
// Entry scores are the raw distances reported by the engine.
type KNNQuery struct {
	IndexName    string
	VectorField  string
	Tags         []TagFilter
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for an OR text search.
// A document matches when any of Terms occurs in any of Fields;
// an empty Fields list searches every TEXT field.
type TextQuery struct {
	IndexName    string
	Fields       []string
	Terms        []string
	Tags         []TagFilter
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search, in engine rank order.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
