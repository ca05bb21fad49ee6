package domain

import "errors"

var (
	// ErrVectorDimMismatch signals an embedding whose length differs from the index schema.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrUnknownRole signals an embedding call without a document or query role.
	ErrUnknownRole = errors.New("unknown embedding role")
	// ErrEmptyQuestion signals a retrieval or answer request without question text.
	ErrEmptyQuestion = errors.New("question is required")
	// ErrPageNotFound signals a page number absent from the index.
	ErrPageNotFound = errors.New("page not found")
	// ErrDuplicatePage signals a page number that appears more than once in one load.
	ErrDuplicatePage = errors.New("duplicate page number")
	// ErrIndexNotReady signals an index that did not finish a bulk load within the refresh budget.
	ErrIndexNotReady = errors.New("index not ready")
)
