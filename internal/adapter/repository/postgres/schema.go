package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS executions (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	lines       TEXT[] NOT NULL,
	hosts       TEXT[] NOT NULL,
	node_count  INTEGER NOT NULL,
	uploaded_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS api_keys (
	key        TEXT PRIMARY KEY,
	is_active  BOOLEAN NOT NULL DEFAULT true,
	expires_at TIMESTAMPTZ
);
`

// Migrate creates the tables the repositories need if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
