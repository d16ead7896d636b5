// Package server exposes the pipeline over HTTP: starting runs,
// inspecting execution state, and health checking. It is a thin Gin
// layer over the orchestrator; execution snapshots are the only state
// it ever returns, so internal error detail stays inside the process.
package server
