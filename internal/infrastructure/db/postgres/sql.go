package postgres

const createOrdersSQL = `
CREATE TABLE IF NOT EXISTS orders (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	items          JSONB NOT NULL,
	customer_email TEXT NOT NULL,
	customer_name  TEXT NOT NULL,
	customer_phone TEXT NOT NULL DEFAULT '',
	total_amount   DOUBLE PRECISION NOT NULL,
	status         TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
)`

const insertOrderSQL = `
INSERT INTO orders (
	id, user_id, items, customer_email, customer_name, customer_phone,
	total_amount, status, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const getOrderSQL = `
SELECT id, user_id, items, customer_email, customer_name, customer_phone,
	total_amount, status, created_at
FROM orders
WHERE id = $1`
