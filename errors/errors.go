package errors

import (
	stderrors "errors"
	"fmt"
)

// PipelineError is the unified error type raised by pipeline components.
type PipelineError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Class attributes the error to a pipeline stage.
	Class Classification `json:"classification"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *PipelineError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *PipelineError) WithCause(cause error) *PipelineError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *PipelineError) WithDetail(key string, value any) *PipelineError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a PipelineError with retryable detection from the code.
func New(code ErrorCode, class Classification, message string) *PipelineError {
	return &PipelineError{
		Code:      code,
		Class:     class,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Constructors for the pipeline taxonomy ---

// MalformedTranscript creates the non-retryable error for recognizer output
// that cannot be segmented.
func MalformedTranscript(reason string) *PipelineError {
	return New(ErrCodeMalformedTranscript, ClassSegmentation, reason)
}

// InvalidIdentityInput creates the non-retryable error for invalid chunk
// identity inputs.
func InvalidIdentityInput(reason string) *PipelineError {
	return New(ErrCodeInvalidIdentityInput, ClassSegmentation, reason)
}

// ServiceUnavailable creates a retryable error for an unavailable external service.
func ServiceUnavailable(class Classification, service string) *PipelineError {
	return New(ErrCodeServiceUnavailable, class,
		fmt.Sprintf("%s is temporarily unavailable", service)).
		WithDetail("service", service)
}

// Throttled creates a retryable error for a throttled request.
func Throttled(class Classification, service string) *PipelineError {
	return New(ErrCodeThrottled, class,
		fmt.Sprintf("%s throttled the request", service)).
		WithDetail("service", service)
}

// Timeout creates a retryable error for a timed-out operation.
func Timeout(class Classification, operation string) *PipelineError {
	return New(ErrCodeTimeout, class,
		fmt.Sprintf("%s timed out", operation)).
		WithDetail("operation", operation)
}

// PublishFailed creates a retryable error for a failed queue publish.
func PublishFailed(chunkID string, ordinal int, cause error) *PipelineError {
	return New(ErrCodePublishFailed, ClassDispatch, "queue publish failed").
		WithDetail("chunk_id", chunkID).
		WithDetail("ordinal", ordinal).
		WithCause(cause)
}

// TranscriptionFailed creates the terminal error for a permanently failed
// recognition job.
func TranscriptionFailed(reason string) *PipelineError {
	return New(ErrCodeTranscriptionFailed, ClassTranscription, reason)
}

// RetryExhausted wraps the last error after a stage's retry budget is spent.
func RetryExhausted(class Classification, attempts int, last error) *PipelineError {
	return New(ErrCodeRetryExhausted, class,
		fmt.Sprintf("retry budget exhausted after %d attempts", attempts)).
		WithDetail("attempts", attempts).
		WithCause(last)
}

// Internal creates a non-retryable internal error.
func Internal(class Classification, message string) *PipelineError {
	return New(ErrCodeInternal, class, message)
}

// --- Inspection helpers ---

// AsPipelineError extracts a *PipelineError from an error chain.
func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsRetryable reports whether an error is eligible for retry. Unknown
// error types are treated as transient so external-service faults that
// slip through untyped still get retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if pe, ok := AsPipelineError(err); ok {
		return pe.Retryable
	}
	return true
}

// Classify returns the stage classification of an error, defaulting to
// the provided fallback for untyped errors.
func Classify(err error, fallback Classification) Classification {
	if pe, ok := AsPipelineError(err); ok && pe.Class != "" {
		return pe.Class
	}
	return fallback
}

// Is reports whether err carries the given error code.
func Is(err error, code ErrorCode) bool {
	pe, ok := AsPipelineError(err)
	return ok && pe.Code == code
}
