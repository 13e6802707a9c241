// Package provider wraps the external collaborators the pipeline stages
// call: a Reddit-style trend search, an OpenAI-compatible content model,
// and an Unsplash-style photo search. Every call is time-bounded.
package provider

import (
	"fmt"
)

// StatusError reports a non-2xx response from a provider. The agent layer
// classifies 5xx as transient and 4xx as permanent.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the failure is a 5xx-equivalent worth one retry.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500
}
