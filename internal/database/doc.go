// Package database provides SQLite-based storage for museumstyle.
//
// This package implements the AssetDB, which stores:
//   - Metadata and credits of every downloaded image
//   - A history of pipeline runs
//
// The database is a single file (modernc.org/sqlite, no CGO) kept in the XDG
// data directory next to the build results. It is optional: the pipeline runs
// without it when indexing is disabled.
package database
