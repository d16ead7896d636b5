// Package transcriber defines the recognizer provider interface and
// shared helpers for speech-to-text backends.
//
// # Backends
//
//   - transcriber/awstranscribe: AWS Transcribe batch jobs
package transcriber
