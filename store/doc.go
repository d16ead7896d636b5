// Package store provides JSON-document object storage for the pipeline:
// raw recognizer output and the standard transcription result documents.
// The S3 backend also works against S3-compatible services via a custom
// endpoint; the in-memory backend backs tests.
package store
