// Package config provides configuration structures and utilities for sosanalyzer.
// It defines the run configuration built from CLI flags and the opaque
// configuration object (Values) that is loaded from YAML or JSON files and
// handed to every analysis phase.
package config
