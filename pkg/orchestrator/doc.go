// Package orchestrator wires the page → form → state → validation → renderer
// pipeline, providing dependency injection friendly helpers for the HTTP
// server and the CLI.
package orchestrator
