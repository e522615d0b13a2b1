// Package main provides the entry point for the sosanalyzer CLI.
//
// sosanalyzer unpacks a sosreport support bundle into a working directory,
// then scans, analyzes and optionally reports on it.
//
// Usage:
//
//	sosanalyzer [flags] ARCHIVE
//	sosanalyzer --report -w ./work sosreport-host-2024.tar.xz
//
// See --help for all available options.
package main

import "os"

// main is the entry point for sosanalyzer.
func main() {
	os.Exit(Execute())
}
