package chi

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeNotFound          ErrorCode = "not_found"
	ErrorCodePageNotFound      ErrorCode = "page_not_found"
	ErrorCodeVectorDimMismatch ErrorCode = "vector_dim_mismatch"
	ErrorCodeEmbeddingFailed   ErrorCode = "embedding_provider_error"
	ErrorCodeGenerationFailed  ErrorCode = "generation_failed"
	ErrorCodeIndexNotReady     ErrorCode = "index_not_ready"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	Question string `json:"question"`
	TopK     *int   `json:"top_k,omitempty"`
}

// HitResponse is one retrieved page.
type HitResponse struct {
	Page  int     `json:"page"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// AskResponse is the body returned by POST /v1/ask.
type AskResponse struct {
	Outcome string        `json:"outcome"`
	Answer  string        `json:"answer"`
	Hits    []HitResponse `json:"hits"`
}

// IndexRequest is the body of POST /v1/index.
type IndexRequest struct {
	Path string `json:"path"`
}

// IndexResponse is the body returned by POST /v1/index.
type IndexResponse struct {
	Indexed int `json:"indexed"`
}

// PageResponse is the body returned by GET /v1/pages/{page}.
type PageResponse struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
