// Package database provides the SQLite result store of a working directory.
//
// Every result dump is saved as a run with its facts and findings, so the
// results of repeated analyses of the same bundle can be listed and
// compared with plain SQL.
//
// The store uses modernc.org/sqlite, a CGO-free driver, and a single
// writer connection in WAL mode.
package database
