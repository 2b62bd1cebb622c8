package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindAlias(ctx context.Context, raw string) (string, error) {
	query := `
		SELECT preferred_merchant
		FROM merchant_aliases
		WHERE $1 ILIKE '%' || raw_pattern || '%'
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var preferred string

	err := s.db.QueryRowContext(ctx, query, raw).Scan(&preferred)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding alias: %w", err)
	}

	return preferred, nil
}

func (s *Store) CreateAlias(ctx context.Context, rawPattern, preferred string) error {
	query := `
		INSERT INTO merchant_aliases (raw_pattern, preferred_merchant, created_at)
		VALUES ($1, $2, NOW())
	`

	if _, err := s.db.ExecContext(ctx, query, rawPattern, preferred); err != nil {
		return fmt.Errorf("creating alias: %w", err)
	}

	return nil
}
