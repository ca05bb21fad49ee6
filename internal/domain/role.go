package domain

import "fmt"

// Role selects which side of an asymmetric embedding model a text belongs to.
// Mixing roles does not fail, it only degrades retrieval quality.
type Role int

const (
	// RoleDocument marks indexed page text.
	RoleDocument Role = iota + 1
	// RoleQuery marks a user question.
	RoleQuery
)

func (r Role) String() string {
	switch r {
	case RoleDocument:
		return "document"
	case RoleQuery:
		return "query"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}
