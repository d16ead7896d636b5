// Package resilience provides retry with exponential backoff for the
// pipeline's external calls. The default retry predicate consults the
// pipeline error taxonomy: transient errors are retried, malformed-input
// errors are surfaced immediately.
package resilience
