package rule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=rule

type Repository interface {
	ListRules(ctx context.Context, enabledOnly bool) ([]Rule, error)
	GetRule(ctx context.Context, id uuid.UUID) (*Rule, error)
	CreateRule(ctx context.Context, r *Rule) error
	UpdateRule(ctx context.Context, r *Rule) error
	DeleteRule(ctx context.Context, id uuid.UUID) error
}

type TransactionStore interface {
	ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
	UpdateMetadata(ctx context.Context, id uuid.UUID, meta transaction.Metadata) error
}

type Service struct {
	repo   Repository
	txs    TransactionStore
	policy Policy
}

func NewService(repo Repository, txs TransactionStore, instantPaymentCategory string) *Service {
	return &Service{
		repo:   repo,
		txs:    txs,
		policy: Policy{InstantPaymentCategory: instantPaymentCategory},
	}
}

func (s *Service) List(ctx context.Context) ([]Rule, error) {
	return s.repo.ListRules(ctx, false)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Rule, error) {
	return s.repo.GetRule(ctx, id)
}

func (s *Service) Create(ctx context.Context, r *Rule) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	return s.repo.CreateRule(ctx, r)
}

func (s *Service) Update(ctx context.Context, r *Rule) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	return s.repo.UpdateRule(ctx, r)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteRule(ctx, id)
}

// BatchResult summarizes one rule application run.
type BatchResult struct {
	Processed          int `json:"processed"`
	Matched            int `json:"matched"`
	Updated            int `json:"updated"`
	CategoryCandidates int `json:"category_candidates"`
	Errors             int `json:"errors"`
}

type ApplyOptions struct {
	Filter transaction.ListFilter
	DryRun bool
}

// ApplyAll runs the enabled rules over every transaction selected by the
// filter. A failure on one transaction is logged and counted, and the batch
// carries on.
func (s *Service) ApplyAll(ctx context.Context, opts ApplyOptions) (*BatchResult, error) {
	rules, err := s.repo.ListRules(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}

	txs, err := s.txs.ListTransactions(ctx, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return s.applyTo(ctx, Compile(rules), txs, opts.DryRun), nil
}

// ApplyRules runs an explicit rule set instead of the stored one.
func (s *Service) ApplyRules(ctx context.Context, rules []Rule, opts ApplyOptions) (*BatchResult, error) {
	txs, err := s.txs.ListTransactions(ctx, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return s.applyTo(ctx, Compile(rules), txs, opts.DryRun), nil
}

func (s *Service) applyTo(ctx context.Context, m *Matcher, txs []*transaction.Transaction, dryRun bool) *BatchResult {
	res := &BatchResult{}

	for _, tx := range txs {
		res.Processed++

		out, err := s.applyOne(ctx, m, tx, dryRun)
		if err != nil {
			res.Errors++

			slog.Warn("failed to apply rules", "transaction_id", tx.ID, "error", err)

			continue
		}

		if out.Matched {
			res.Matched++
		}

		if out.Updated {
			res.Updated++
		}

		if out.CategoryCandidate {
			res.CategoryCandidates++
		}
	}

	return res
}

func (s *Service) applyOne(ctx context.Context, m *Matcher, tx *transaction.Transaction, dryRun bool) (Outcome, error) {
	out := s.policy.Apply(tx.Metadata, m.Match(tx), tx)

	if !out.Updated || dryRun {
		return out, nil
	}

	if err := s.txs.UpdateMetadata(ctx, tx.ID, out.Metadata); err != nil {
		return Outcome{}, fmt.Errorf("updating metadata: %w", err)
	}

	tx.Metadata = out.Metadata

	return out, nil
}

// Preview evaluates rules against a single transaction without persisting.
func (s *Service) Preview(tx *transaction.Transaction, rules []Rule) ([]Action, Outcome) {
	actions := GetMatchingRules(tx, rules)

	return actions, s.policy.Apply(tx.Metadata, actions, tx)
}
