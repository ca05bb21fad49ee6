package domain

// IndexedPage is one page with its document-role embedding, as written to the index.
type IndexedPage struct {
	Page   int
	Text   string
	Vector []float32
}

// IndexStatus reports whether a bulk load has become searchable.
type IndexStatus struct {
	Docs     int
	Indexing bool
}

// Searchable reports whether at least want documents are indexed and no background indexing remains.
func (s IndexStatus) Searchable(want int) bool {
	return !s.Indexing && s.Docs >= want
}
