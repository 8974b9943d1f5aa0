// Package persistence stores payments and the credit ledger.
package persistence

var Schema = []string{
	`CREATE TABLE IF NOT EXISTS payments (
		id          TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		order_id    TEXT NOT NULL UNIQUE,
		price       TEXT NOT NULL,
		status      TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		version     INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS credit_entry (
		id                  TEXT PRIMARY KEY,
		customer_id         TEXT NOT NULL UNIQUE,
		total_credit_amount TEXT NOT NULL,
		version             INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS credit_history (
		id          TEXT PRIMARY KEY,
		seq         INTEGER NOT NULL,
		customer_id TEXT NOT NULL,
		amount      TEXT NOT NULL,
		type        TEXT NOT NULL,
		UNIQUE (customer_id, seq)
	)`,
}
