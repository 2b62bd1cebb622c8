package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

var typeMap = pgtype.NewMap()

// scanTransaction reads a transaction row joined with its metadata.
// Expected column order matches selectTransactionColumns.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var statusStr, sourceStr, flowStr string

	var merchant, category, merchantOverride, notes, documentHash sql.NullString

	var recurring sql.NullBool

	var tags []string

	if err := s.Scan(
		&tx.ID, &tx.Date, &tx.Description, &merchant, &tx.Amount, &tx.Currency,
		&statusStr, &sourceStr, &flowStr, &tx.IsTransfer, &tx.IsExcluded,
		&tx.DedupHash, &documentHash,
		&category, typeMap.SQLScanner(&tags), &merchantOverride, &notes, &recurring,
		&tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Status = transaction.Status(statusStr)
	tx.Source = transaction.SourceType(sourceStr)
	tx.FlowType = transaction.FlowType(flowStr)
	tx.Merchant = merchant.String
	tx.DocumentHash = documentHash.String
	tx.Metadata = transaction.Metadata{
		Category:         category.String,
		Tags:             tags,
		MerchantOverride: merchantOverride.String,
		Notes:            notes.String,
		IsRecurring:      recurring.Bool,
	}

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.date, t.description, t.merchant, t.amount, t.currency,
	t.status, t.source_type, t.flow_type, t.is_transfer, t.is_excluded,
	t.dedup_hash, t.document_hash,
	m.category, m.tags, m.merchant_override, m.notes, m.is_recurring,
	t.created_at, t.updated_at
`

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		LEFT JOIN transaction_metadata m ON m.transaction_id = t.id
		WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		LEFT JOIN transaction_metadata m ON m.transaction_id = t.id
		WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Source != nil {
		query += fmt.Sprintf(" AND t.source_type = $%d", argIdx)

		args = append(args, *filter.Source)
		argIdx++
	}

	if filter.FlowType != nil {
		query += fmt.Sprintf(" AND t.flow_type = $%d", argIdx)

		args = append(args, *filter.FlowType)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY t.date ASC, t.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

// UpdateMetadata upserts the rule-managed metadata row of a transaction.
func (s *Store) UpdateMetadata(ctx context.Context, id uuid.UUID, meta transaction.Metadata) error {
	query := `
		INSERT INTO transaction_metadata (transaction_id, category, tags, merchant_override, notes, is_recurring, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6, NOW())
		ON CONFLICT (transaction_id) DO UPDATE SET
			category = EXCLUDED.category,
			tags = EXCLUDED.tags,
			merchant_override = EXCLUDED.merchant_override,
			notes = EXCLUDED.notes,
			is_recurring = EXCLUDED.is_recurring,
			updated_at = NOW()
	`

	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := s.db.ExecContext(ctx, query,
		id, meta.Category, tags, meta.MerchantOverride, meta.Notes, meta.IsRecurring,
	)
	if err != nil {
		return fmt.Errorf("updating metadata: %w", err)
	}

	return nil
}

func importLockKey(minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type importTx struct {
	tx *sql.Tx
}

// BeginImport opens a transaction holding an advisory lock over the date range so
// concurrent uploads of overlapping documents serialize their dedup checks.
func (s *Store) BeginImport(ctx context.Context, minDate, maxDate time.Time) (transaction.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	lockKey := importLockKey(minDate, maxDate)
	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) ExistingHashes(ctx context.Context, hashes []string) (map[string]bool, error) {
	found := make(map[string]bool)
	if len(hashes) == 0 {
		return found, nil
	}

	rows, err := itx.tx.QueryContext(ctx,
		`SELECT dedup_hash FROM transactions WHERE dedup_hash = ANY($1)`, hashes)
	if err != nil {
		return nil, fmt.Errorf("finding existing hashes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scanning hash: %w", err)
		}

		found[h] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hash rows: %w", err)
	}

	return found, nil
}

func (itx *importTx) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	query := `
		INSERT INTO transactions (
			date, description, merchant, amount, currency, status, source_type,
			flow_type, is_transfer, is_excluded, dedup_hash, document_hash, created_at
		)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), NOW())
		ON CONFLICT (dedup_hash) DO NOTHING
		RETURNING id, created_at
	`

	for _, tx := range txs {
		err := itx.tx.QueryRowContext(ctx, query,
			tx.Date,
			tx.Description,
			tx.Merchant,
			tx.Amount,
			tx.Currency,
			tx.Status,
			tx.Source,
			tx.FlowType,
			tx.IsTransfer,
			tx.IsExcluded,
			tx.DedupHash,
			tx.DocumentHash,
		).Scan(&tx.ID, &tx.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			// Inserted by a concurrent import between the hash check and now.
			continue
		}

		if err != nil {
			return fmt.Errorf("creating transaction: %w", err)
		}
	}

	return nil
}
