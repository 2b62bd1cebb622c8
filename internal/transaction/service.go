package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	UpdateMetadata(ctx context.Context, id uuid.UUID, meta Metadata) error

	BeginImport(ctx context.Context, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	ExistingHashes(ctx context.Context, hashes []string) (map[string]bool, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Classified
	DocumentHash string
}

// DedupHash returns the content hash the store enforces uniqueness on.
func (p CreateParams) DedupHash() string {
	return DedupHash(p.Date, p.Description, p.Amount, p.Source)
}

type ListFilter struct {
	Source    *SourceType
	FlowType  *FlowType
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) UpdateMetadata(ctx context.Context, id uuid.UUID, meta Metadata) error {
	return s.repo.UpdateMetadata(ctx, id, meta)
}

type ImportResult struct {
	Imported   []*Transaction
	Duplicates []CreateParams
}

// ImportBatch inserts params whose dedup hash is not yet stored. Duplicates,
// including repeats inside the batch, are returned instead of inserted.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	hashes := make([]string, len(params))
	for i, p := range params {
		hashes[i] = p.DedupHash()
	}

	existing, err := itx.ExistingHashes(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("find existing hashes: %w", err)
	}

	seen := make(map[string]bool, len(params))
	result := &ImportResult{}

	var fresh []*Transaction

	for i, p := range params {
		h := hashes[i]
		if existing[h] || seen[h] {
			result.Duplicates = append(result.Duplicates, p)
			continue
		}

		seen[h] = true

		fresh = append(fresh, paramsToTransaction(p, h))
	}

	if len(fresh) == 0 {
		return result, nil
	}

	if err := itx.CreateTransactions(ctx, fresh); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	result.Imported = fresh

	return result, nil
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func paramsToTransaction(p CreateParams, hash string) *Transaction {
	return &Transaction{
		Date:         p.Date,
		Description:  p.Description,
		Merchant:     p.Merchant,
		Amount:       p.Amount,
		Currency:     p.Currency,
		Status:       p.Status,
		Source:       p.Source,
		FlowType:     p.FlowType,
		IsTransfer:   p.IsTransfer,
		IsExcluded:   p.IsExcluded,
		DedupHash:    hash,
		DocumentHash: p.DocumentHash,
	}
}
