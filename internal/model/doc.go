// Package model defines the data structures shared by the scan, analyze,
// result dump and report phases of sosanalyzer.
//
// This package contains the following main types:
//   - Severity: The risk level of a finding
//   - Finding: A single observation produced by an analyzer
//   - Fact: A host property collected by a scanner (hostname, kernel, ...)
//   - FileEntry: One file of the extracted support bundle
//   - Results: The merged output of one analysis run
//
// Models live in their own package because every phase reads or writes
// them through files in the working directory, and keeping them here
// prevents import cycles between the phase packages.
//
// All types serialize to JSON; that is the on-disk format between phases.
package model
