// Package errors implements the pipeline's error taxonomy: structured
// errors with machine-readable codes, a stage classification, and
// retryable detection.
//
// Retryable errors (service faults, timeouts, throttling) are eligible
// for orchestrator retry with backoff. Malformed-input errors (missing
// timestamps, invalid identity inputs) are terminal for the file —
// retrying cannot change the input, so the orchestrator must never
// retry them.
package errors
