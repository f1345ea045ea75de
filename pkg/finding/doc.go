// Package finding defines the result model shared by every probing module:
// individual findings, the per-module result and the aggregate scan result
// handed to reporting.
//
// Findings are plain values. Once a module appends one to a ModuleResult it
// is never mutated again; the orchestrator only copies them into the
// aggregate ScanResult.
package finding
