package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transient errors (retryable).
const (
	// ErrCodeServiceUnavailable indicates an external service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates an external call or stage timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeThrottled indicates the external service throttled the request.
	ErrCodeThrottled ErrorCode = "THROTTLED"
	// ErrCodePublishFailed indicates a queue publish failed.
	ErrCodePublishFailed ErrorCode = "PUBLISH_FAILED"
)

// Malformed-input errors (never retryable).
const (
	// ErrCodeMalformedTranscript indicates recognizer output that cannot be segmented.
	ErrCodeMalformedTranscript ErrorCode = "MALFORMED_TRANSCRIPT"
	// ErrCodeInvalidIdentityInput indicates invalid inputs to chunk identity derivation.
	ErrCodeInvalidIdentityInput ErrorCode = "INVALID_IDENTITY_INPUT"
	// ErrCodeInvalidInput indicates otherwise invalid input data.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Terminal pipeline errors.
const (
	// ErrCodeRetryExhausted indicates the retry budget for a stage was spent.
	ErrCodeRetryExhausted ErrorCode = "RETRY_EXHAUSTED"
	// ErrCodeTranscriptionFailed indicates the recognizer reported a permanent job failure.
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeThrottled:          true,
	ErrCodePublishFailed:      true,
}

// IsRetryableCode reports whether the code denotes a transient condition.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// Classification names the pipeline stage an error is attributed to.
type Classification string

const (
	ClassTranscription Classification = "Transcription"
	ClassSegmentation  Classification = "Segmentation"
	ClassDispatch      Classification = "Dispatch"
)
