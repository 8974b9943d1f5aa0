// Package persistence stores orders and the customer and restaurant views
// the order service reads while creating them.
package persistence

// Schema creates the order service tables. restaurant_products is the
// order service's local copy of restaurant data, one row per product.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id         TEXT PRIMARY KEY,
		username   TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS restaurant_products (
		restaurant_id     TEXT NOT NULL,
		restaurant_name   TEXT NOT NULL,
		restaurant_active INTEGER NOT NULL,
		product_id        TEXT NOT NULL,
		product_name      TEXT NOT NULL,
		product_price     TEXT NOT NULL,
		PRIMARY KEY (restaurant_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id               TEXT PRIMARY KEY,
		customer_id      TEXT NOT NULL,
		restaurant_id    TEXT NOT NULL,
		tracking_id      TEXT NOT NULL UNIQUE,
		price            TEXT NOT NULL,
		order_status     TEXT NOT NULL,
		failure_messages TEXT,
		version          INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id         INTEGER NOT NULL,
		order_id   TEXT NOT NULL REFERENCES orders(id),
		product_id TEXT NOT NULL,
		price      TEXT NOT NULL,
		quantity   INTEGER NOT NULL,
		sub_total  TEXT NOT NULL,
		PRIMARY KEY (id, order_id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_address (
		id          TEXT PRIMARY KEY,
		order_id    TEXT NOT NULL UNIQUE REFERENCES orders(id),
		street      TEXT NOT NULL,
		postal_code TEXT NOT NULL,
		city        TEXT NOT NULL
	)`,
}
