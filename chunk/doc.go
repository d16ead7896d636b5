// Package chunk derives stable, content-position identities for
// segments and assembles the dispatchable chunk records.
//
// A chunk id is a pure function of (original file, segment ordinal), so
// re-running the pipeline on the same file after a partial failure
// reproduces identical ids and downstream consumers can deduplicate by
// id alone — no sequence counter or coordination service involved.
package chunk
