// Package transcript defines the recognition token model and the standard
// transcription result document exchanged between pipeline stages, plus
// parsing of the recognizer's native output format.
//
// Token times are kept as decimal strings exactly as the recognizer
// emitted them; numeric conversion happens only where arithmetic is
// needed (pause-gap detection), so round-tripping a result document
// never loses precision.
package transcript
