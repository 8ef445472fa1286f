package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order on startup. Statements must stay
// idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id      UUID PRIMARY KEY,
		name    VARCHAR(100) NOT NULL,
		balance NUMERIC(10, 2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS accounts_name_idx ON accounts (name)`,
	`CREATE INDEX IF NOT EXISTS accounts_balance_idx ON accounts (balance)`,
}

// Apply runs all schema migrations against db.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
