//go:build !sqlite_cgo

package sqlstore

// Pure Go SQLite, no C toolchain needed.
//
//	CGO_ENABLED=0 go build ./...

import (
	_ "modernc.org/sqlite"
)

const (
	// SQLiteDriverName is the database/sql name of the SQLite driver.
	SQLiteDriverName = "sqlite"

	sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)"
)
