package database

import (
	"context"
	"database/sql"
	"fmt"
)

const ddl = `
CREATE TABLE IF NOT EXISTS transactions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    date DATE NOT NULL,
    description TEXT NOT NULL,
    merchant TEXT,
    amount BIGINT NOT NULL,
    currency VARCHAR(3) NOT NULL DEFAULT 'NOK',
    status VARCHAR(16) NOT NULL,
    source_type VARCHAR(16) NOT NULL,
    flow_type VARCHAR(16) NOT NULL,
    is_transfer BOOLEAN NOT NULL DEFAULT false,
    is_excluded BOOLEAN NOT NULL DEFAULT false,
    dedup_hash CHAR(64) NOT NULL,
    document_hash TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ,

    UNIQUE(dedup_hash),
    CHECK (flow_type <> 'expense' OR amount <= 0),
    CHECK (flow_type <> 'income' OR amount >= 0)
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);

CREATE TABLE IF NOT EXISTS transaction_metadata (
    transaction_id UUID PRIMARY KEY REFERENCES transactions(id) ON DELETE CASCADE,
    category TEXT,
    tags TEXT[] NOT NULL DEFAULT '{}',
    merchant_override TEXT,
    notes TEXT,
    is_recurring BOOLEAN NOT NULL DEFAULT false,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS rules (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name TEXT NOT NULL,
    priority INTEGER NOT NULL DEFAULT 100,
    enabled BOOLEAN NOT NULL DEFAULT true,
    match_field VARCHAR(32) NOT NULL,
    match_type VARCHAR(32) NOT NULL,
    match_value TEXT NOT NULL,
    match_value_secondary TEXT,
    action_type VARCHAR(32) NOT NULL,
    action_value TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_rules_priority ON rules(priority) WHERE enabled;

CREATE TABLE IF NOT EXISTS merchant_aliases (
    raw_pattern TEXT NOT NULL,
    preferred_merchant TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema creates the tables the stores rely on if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}
