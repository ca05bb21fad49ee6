package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string // defaults to "vector"
	Vector       []float32
	K            int
	ReturnFields []string
}

// Field returns the vector field name the query targets.
func (q *KNNQuery) Field() string {
	if q.VectorField == "" {
		return "vector"
	}
	return q.VectorField
}

// ScoreField returns the alias FT.SEARCH assigns to the KNN distance.
func (q *KNNQuery) ScoreField() string {
	return "__" + q.Field() + "_score"
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64 // cosine similarity, 1 - distance
	Fields map[string]string
}

// IndexInfo is the subset of FT.INFO used to decide whether a bulk load is searchable.
type IndexInfo struct {
	NumDocs        int
	Indexing       bool
	PercentIndexed float64
}
