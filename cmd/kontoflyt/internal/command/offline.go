package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kontoflyt/internal/importer"
	"github.com/MrJamesThe3rd/kontoflyt/internal/merchant"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

// memoryImporter stands in for the database when a document is only
// previewed. It drops repeats within the batch the same way the store does.
type memoryImporter struct {
	seen map[string]bool
}

func newMemoryImporter() *memoryImporter {
	return &memoryImporter{seen: make(map[string]bool)}
}

func (m *memoryImporter) ImportBatch(_ context.Context, params []transaction.CreateParams) (*transaction.ImportResult, error) {
	res := &transaction.ImportResult{}
	now := time.Now()

	for _, p := range params {
		hash := p.DedupHash()
		if m.seen[hash] {
			res.Duplicates = append(res.Duplicates, p)
			continue
		}

		m.seen[hash] = true

		res.Imported = append(res.Imported, &transaction.Transaction{
			ID:           uuid.New(),
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
			CreatedAt:    now,
		})
	}

	return res, nil
}

// noAliases resolves merchants from the normalizer alone.
type noAliases struct{}

func (noAliases) FindAlias(context.Context, string) (string, error) {
	return "", nil
}

func (noAliases) CreateAlias(context.Context, string, string) error {
	return errors.New("aliases need a database")
}

func readDocument(path string, source transaction.SourceType, currency string) (importer.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return importer.Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	return importer.Document{
		Filename: filepath.Base(path),
		Source:   source,
		Currency: currency,
		Content:  content,
	}, nil
}

// previewDocument runs the full ingest pipeline without touching a database.
func previewDocument(ctx context.Context, doc importer.Document, defaultCurrency string) (*importer.Result, error) {
	svc := importer.NewService(newMemoryImporter(), merchant.NewService(noAliases{}), defaultCurrency)

	return svc.Ingest(ctx, doc)
}
