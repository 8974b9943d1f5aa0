// Package sqlstore opens the relational store shared by a service's
// repositories, the outbox and the saga log, and carries the current
// transaction through context.Context.
//
// Queries are written with '?' placeholders and rebound for postgres. Column
// types are limited to TEXT and INTEGER so the same DDL runs on SQLite and
// postgres.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	// Register the postgres driver under the name "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Querier is implemented by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type DB struct {
	db       *sql.DB
	postgres bool
}

// Open connects to the database. driver is DriverSQLite or DriverPostgres;
// for SQLite dsn is a file path or ":memory:".
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite, "":
		db, err = sql.Open(SQLiteDriverName, sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("sqlstore: open sqlite %q: %w", dsn, err)
		}
		// Single connection: one writer, and ":memory:" stays one database.
		db.SetMaxOpenConns(1)
	case DriverPostgres:
		db, err = sql.Open(DriverPostgres, dsn)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: open postgres: %w", err)
		}
	default:
		return nil, fmt.Errorf("sqlstore: unknown driver %q", driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: ping %s: %w", driver, err)
	}
	return &DB{db: db, postgres: driver == DriverPostgres}, nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?%s", path, sqlitePragmas)
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate executes each DDL statement in order. Statements must be idempotent.
func (d *DB) Migrate(ctx context.Context, statements ...string) error {
	for _, stmt := range statements {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore: migrate: %w", err)
		}
	}
	return nil
}

type txKey struct{}

// WithinTx runs fn in a transaction stored in the context passed to fn. A
// nested call joins the outer transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (d *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("sqlstore: rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: commit: %w", err)
	}
	return nil
}

// Conn returns the transaction carried by ctx, or the database itself.
func (d *DB) Conn(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return d.db
}

// Rebind rewrites '?' placeholders to '$n' for postgres.
func (d *DB) Rebind(query string) string {
	if !d.postgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Exec runs a rebound statement on the current connection.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.Conn(ctx).ExecContext(ctx, d.Rebind(query), args...)
}

func (d *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.Conn(ctx).QueryContext(ctx, d.Rebind(query), args...)
}

func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.Conn(ctx).QueryRowContext(ctx, d.Rebind(query), args...)
}
