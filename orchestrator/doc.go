// Package orchestrator drives a source file through the pipeline
// stages: Transcribing, Segmenting, Dispatching, ending in Succeeded
// or Failed. Stage transitions follow an explicit table; transient
// errors are retried with exponential backoff within a per-stage
// attempt budget, malformed input fails the run immediately, and every
// failure is classified by the stage that caused it.
package orchestrator
