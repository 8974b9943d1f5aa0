//go:build sqlite_cgo

package sqlstore

// CGO SQLite.
//
//	CGO_ENABLED=1 go build -tags sqlite_cgo ./...

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// SQLiteDriverName is the database/sql name of the SQLite driver.
	SQLiteDriverName = "sqlite3"

	sqlitePragmas = "_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"
)
