// internal/adapters/out/postgres/schema.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
)

// DDL for the cart tables. The partial unique index is what makes
// GetOrCreateActiveCart's lookup-then-create race-free.
const cartDDL = `
CREATE TABLE IF NOT EXISTS carts (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'active',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS carts_one_active_per_user
	ON carts (user_id) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS cart_items (
	id         TEXT PRIMARY KEY,
	cart_id    TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
	product_id TEXT NOT NULL,
	variant_id TEXT NOT NULL,
	quantity   INTEGER NOT NULL CHECK (quantity >= 1),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (cart_id, variant_id)
);
`

// EnsureSchema creates the cart tables if they do not exist yet.
// Intended for local development and tests; production schema changes
// go through migrations.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("postgres: db is nil")
	}
	_, err := db.ExecContext(ctx, cartDDL)
	return err
}
