package entities

import (
	"errors"
	"fmt"
)

// ErrorKind is the typed failure taxonomy surfaced by the compiler. Every
// component fails with one of these kinds; the HTTP layer maps them to
// status codes and the pipeline derives retryability from them.
type ErrorKind string

const (
	// Input errors: the caller's fault, user-correctable, never retried.
	KindEmptyInput    ErrorKind = "empty_input"
	KindInputTooLarge ErrorKind = "input_too_large"

	// Provider errors: environment or credential fault.
	KindAuthFailure     ErrorKind = "auth_failure"
	KindRateLimited     ErrorKind = "rate_limited"
	KindTimeout         ErrorKind = "timeout"
	KindUpstreamError   ErrorKind = "upstream_error"
	KindUnknownProvider ErrorKind = "unknown_provider"

	// Content error: the model produced unusable output even after repair.
	KindUnparsableResponse ErrorKind = "unparsable_response"

	// Template error: the uploaded template is not a usable container.
	KindInvalidTemplate ErrorKind = "invalid_template"

	// Render error: internal invariant violation, logged as a defect.
	KindRenderFailure ErrorKind = "render_failure"
)

// Retryable reports whether the pipeline may retry a failure of this kind
// against the same provider.
func (k ErrorKind) Retryable() bool {
	return k == KindRateLimited || k == KindTimeout
}

// CompileError is the single typed error surfaced by every compiler
// component. Diagnostic carries optional context safe to show the caller
// (e.g. a truncated raw-response snippet); internal state never leaks here.
type CompileError struct {
	Kind       ErrorKind
	Message    string
	Diagnostic string
	cause      error
}

// NewCompileError creates a typed compile error wrapping an optional cause.
func NewCompileError(kind ErrorKind, message string, cause error) *CompileError {
	return &CompileError{Kind: kind, Message: message, cause: cause}
}

// WithDiagnostic attaches a caller-safe diagnostic snippet and returns the
// error for chaining.
func (e *CompileError) WithDiagnostic(diag string) *CompileError {
	e.Diagnostic = diag
	return e
}

func (e *CompileError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.cause
}

// KindOf extracts the ErrorKind from err, or KindRenderFailure when err is
// not a CompileError (an untyped error escaping a component is a defect).
func KindOf(err error) ErrorKind {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindRenderFailure
}

// IsKind reports whether err is a CompileError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CompileError
	return errors.As(err, &ce) && ce.Kind == kind
}
