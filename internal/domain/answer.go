package domain

// Outcome tells an answered question apart from one that had nothing to ground on.
type Outcome string

const (
	// OutcomeAnswered means the model produced text from retrieved context.
	OutcomeAnswered Outcome = "answered"
	// OutcomeNoContext means retrieval returned nothing and generation was skipped.
	OutcomeNoContext Outcome = "no_context"
)

// Answer is computed per question and never stored.
type Answer struct {
	Question string
	Text     string
	Outcome  Outcome
	Context  string
}
