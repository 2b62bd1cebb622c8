package merchant

import (
	"context"
	"fmt"
	"strings"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=merchant

type Repository interface {
	FindAlias(ctx context.Context, raw string) (string, error)
	CreateAlias(ctx context.Context, rawPattern, preferred string) error
}

// Service layers learned aliases on top of Normalize.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve normalizes raw and then applies the longest learned alias whose
// pattern occurs in the raw text. An alias always yields a name.
func (s *Service) Resolve(ctx context.Context, raw string, fallback ...string) (Result, error) {
	res := Normalize(raw, fallback...)

	preferred, err := s.repo.FindAlias(ctx, res.Raw)
	if err != nil {
		return Result{}, fmt.Errorf("finding alias: %w", err)
	}

	if preferred == "" {
		return res, nil
	}

	return Result{Merchant: preferred, Raw: res.Raw, Kind: KindName}, nil
}

// Learn remembers that text containing rawPattern belongs to preferred.
func (s *Service) Learn(ctx context.Context, rawPattern, preferred string) error {
	rawPattern = strings.TrimSpace(rawPattern)
	preferred = strings.TrimSpace(preferred)

	if rawPattern == "" || preferred == "" {
		return fmt.Errorf("raw pattern and preferred merchant are required")
	}

	return s.repo.CreateAlias(ctx, rawPattern, preferred)
}
