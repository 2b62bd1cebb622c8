package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kontoflyt/internal/rule"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectRuleColumns = `
	id, name, priority, enabled, match_field, match_type, match_value,
	match_value_secondary, action_type, action_value, created_at, updated_at
`

func scanRule(s scanner) (rule.Rule, error) {
	var r rule.Rule

	var field, matchType, action string

	var secondary sql.NullString

	if err := s.Scan(
		&r.ID, &r.Name, &r.Priority, &r.Enabled, &field, &matchType, &r.MatchValue,
		&secondary, &action, &r.ActionValue, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return rule.Rule{}, err
	}

	r.MatchField = rule.MatchField(field)
	r.MatchType = rule.MatchType(matchType)
	r.ActionType = rule.ActionType(action)
	r.MatchValueSecondary = secondary.String

	return r, nil
}

func (s *Store) ListRules(ctx context.Context, enabledOnly bool) ([]rule.Rule, error) {
	query := `SELECT ` + selectRuleColumns + ` FROM rules`
	if enabledOnly {
		query += ` WHERE enabled`
	}

	query += ` ORDER BY priority ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var rules []rule.Rule

	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}

	return rules, nil
}

func (s *Store) GetRule(ctx context.Context, id uuid.UUID) (*rule.Rule, error) {
	query := `SELECT ` + selectRuleColumns + ` FROM rules WHERE id = $1`

	r, err := scanRule(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rule.ErrNotFound
		}

		return nil, fmt.Errorf("getting rule: %w", err)
	}

	return &r, nil
}

func (s *Store) CreateRule(ctx context.Context, r *rule.Rule) error {
	query := `
		INSERT INTO rules (
			name, priority, enabled, match_field, match_type, match_value,
			match_value_secondary, action_type, action_value, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		r.Name, r.Priority, r.Enabled, r.MatchField, r.MatchType, r.MatchValue,
		r.MatchValueSecondary, r.ActionType, r.ActionValue,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}

	return nil
}

func (s *Store) UpdateRule(ctx context.Context, r *rule.Rule) error {
	query := `
		UPDATE rules SET
			name = $2, priority = $3, enabled = $4, match_field = $5, match_type = $6,
			match_value = $7, match_value_secondary = NULLIF($8, ''), action_type = $9,
			action_value = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		r.ID, r.Name, r.Priority, r.Enabled, r.MatchField, r.MatchType,
		r.MatchValue, r.MatchValueSecondary, r.ActionType, r.ActionValue,
	).Scan(&r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rule.ErrNotFound
		}

		return fmt.Errorf("updating rule: %w", err)
	}

	return nil
}

func (s *Store) DeleteRule(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}

	if n == 0 {
		return rule.ErrNotFound
	}

	return nil
}
