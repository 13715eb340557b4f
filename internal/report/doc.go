// Package report tracks per-path extraction outcomes in SQLite, so
// repeated runs over the same corpus skip documents that were already
// indexed with unchanged content.
//
// Two driver builds exist: the default pure Go driver (modernc.org/sqlite)
// and, under the cgosqlite build tag, the C driver (mattn/go-sqlite3).
package report
