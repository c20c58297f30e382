package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// The credits CHECK is a second line of defence; every decrement already goes
// through a conditional UPDATE that refuses to take the balance below zero.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id           TEXT PRIMARY KEY,
    email        TEXT NOT NULL UNIQUE,
    firebase_uid TEXT NOT NULL UNIQUE,
    name         TEXT,
    credits      INTEGER NOT NULL DEFAULT 1 CHECK (credits >= 0),
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS processed_transactions (
    id           TEXT PRIMARY KEY,
    processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate applies the schema. Statements are idempotent, so running it on
// every startup is safe.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
