//go:build cgosqlite

package report

// Compiled with the cgosqlite tag: the C SQLite implementation, faster
// under heavy report churn.
//
// Build command:
//   CGO_ENABLED=1 go build -tags cgosqlite ./...
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use.
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration.
	BuildMode = "cgo"
)
