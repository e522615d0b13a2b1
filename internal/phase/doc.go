// Package phase defines the contracts between the pipeline orchestrator
// and the scan, analyze, result dump and report collaborators.
//
// Each contract is a single-method interface. The orchestrator treats
// implementations as opaque: it calls them in a fixed order and returns
// their errors unchanged. Phases communicate with each other only through
// files in the working directory.
//
// Chains (ScannerChain, AnalyzerChain, ReportChain) run several
// implementations of one contract in order and stop at the first error,
// mirroring how the bundled scanners and analyzers are composed.
package phase
