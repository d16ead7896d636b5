// Package logger provides structured, leveled logging for the pipeline
// built on zerolog. Loggers are scoped per component and carry the
// standard field keys used across the service (source file, stage,
// attempt, chunk id) so log lines from every stage of a run correlate.
package logger
