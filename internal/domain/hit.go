package domain

// Hit is a single retrieved page ranked by cosine similarity.
// Score is 1 - cosine distance as reported by the store; it is not a probability.
type Hit struct {
	Page  int
	Score float64
	Text  string
}
