// Package segment reconstructs sentence-level segments from the
// word/punctuation recognition token stream. Boundaries close on
// configured terminal punctuation or on a pause gap between tokens, so
// speech without terminal punctuation still segments. Extraction is a
// pure function over its input and safe for concurrent use.
package segment
