// Package observability wires OpenTelemetry metrics and traces for the
// pipeline. Init sets the global meter and tracer providers against an
// OTLP HTTP collector; when disabled, the otel globals stay no-op and
// instrumented code runs unchanged.
package observability
