package pipeline

import "fmt"

// StageError is the public error type of the pipeline. It carries only a
// short display-safe cause: stage errors surface directly in the UI, so
// provider error text and stack traces never leak through it.
type StageError struct {
	Stage      string // Stage name, e.g. "script-generator"
	Message    string // Short human-readable cause suitable for display
	Validation bool   // True when caller input failed checks before any external call
	err        error  // Wrapped cause, for logs only
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *StageError) Unwrap() error {
	return e.err
}

// newStageError wraps an upstream failure for a propagating stage.
func newStageError(stage, message string, err error) *StageError {
	return &StageError{Stage: stage, Message: message, err: err}
}

// newValidationError reports caller input that failed schema checks. It is
// surfaced immediately, before any external call is attempted.
func newValidationError(stage, message string) *StageError {
	return &StageError{Stage: stage, Message: message, Validation: true}
}
