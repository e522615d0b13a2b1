// Package pipeline drives a sosreport archive through the analysis phases.
//
// An Orchestrator owns the fixed sequence of one run:
//
//	resolve workdir -> detect existing extraction -> extract -> locate data root
//	-> scan -> analyze + dump -> report
//
// Extraction is skipped when the working directory already holds an
// extracted bundle, so re-running against the same workdir is cheap.
// Analyze and report are gated by the run configuration; report is only
// reachable through analyze.
//
// The orchestrator knows nothing about what the phases do. They are
// supplied as phase interfaces and their errors are returned unchanged.
package pipeline
