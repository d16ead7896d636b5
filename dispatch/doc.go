// Package dispatch fans chunks out to the downstream queue, one message
// per chunk, in segment order. Publishing is sequential and aborts on
// the first failure; the caller learns how many chunks were confirmed
// and can resume from the first unconfirmed one, relying on stable
// chunk ids for downstream idempotency.
package dispatch
