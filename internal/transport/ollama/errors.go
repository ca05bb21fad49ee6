package ollama

import (
	"errors"
	"fmt"
)

// ErrRequestFailed is the sentinel for any generation request that could not produce text.
var ErrRequestFailed = errors.New("generation request failed")

// RequestError is a non-2xx response from the model server.
type RequestError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ollama %s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("ollama %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

func (e *RequestError) Unwrap() error { return ErrRequestFailed }
