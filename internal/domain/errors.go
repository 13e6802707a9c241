package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced directly to API callers.
var (
	// ErrNotFound indicates an unknown campaign identifier.
	ErrNotFound = errors.New("campaign not found")

	// ErrNotReady indicates results were requested before the campaign
	// reached the completed state.
	ErrNotReady = errors.New("campaign results not ready")
)

// ValidationError rejects a malformed brief at submission. No campaign is
// created when submission fails validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid brief: %s %s", e.Field, e.Reason)
}

// AgentError wraps a stage execution failure. Transient failures (timeouts,
// network errors, 5xx-equivalents) are retried once by the stage runner;
// permanent failures fall back immediately.
type AgentError struct {
	Agent     AgentKind
	Transient bool
	Err       error
}

func (e *AgentError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("agent %s: %s failure: %v", e.Agent, kind, e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

// TransientAgentError builds a retryable stage failure.
func TransientAgentError(agent AgentKind, err error) *AgentError {
	return &AgentError{Agent: agent, Transient: true, Err: err}
}

// PermanentAgentError builds a non-retryable stage failure. Malformed
// provider responses are permanent: retrying a parse failure cannot help.
func PermanentAgentError(agent AgentKind, err error) *AgentError {
	return &AgentError{Agent: agent, Transient: false, Err: err}
}

// IsTransient reports whether err is a retryable agent failure.
func IsTransient(err error) bool {
	var ae *AgentError
	if errors.As(err, &ae) {
		return ae.Transient
	}
	return false
}
