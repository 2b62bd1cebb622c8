package importer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MrJamesThe3rd/kontoflyt/internal/encoding"
	"github.com/MrJamesThe3rd/kontoflyt/internal/flow"
	"github.com/MrJamesThe3rd/kontoflyt/internal/importer/sheet"
	"github.com/MrJamesThe3rd/kontoflyt/internal/importer/statement"
	"github.com/MrJamesThe3rd/kontoflyt/internal/merchant"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=importer

type TransactionImporter interface {
	ImportBatch(ctx context.Context, params []transaction.CreateParams) (*transaction.ImportResult, error)
}

type MerchantResolver interface {
	Resolve(ctx context.Context, raw string, fallback ...string) (merchant.Result, error)
}

type Service struct {
	statements      StatementParser
	sheets          SheetParser
	transactions    TransactionImporter
	merchants       MerchantResolver
	defaultCurrency string
}

func NewService(txs TransactionImporter, merchants MerchantResolver, defaultCurrency string) *Service {
	return &Service{
		statements:      statement.NewParser(),
		sheets:          sheet.NewParser(),
		transactions:    txs,
		merchants:       merchants,
		defaultCurrency: defaultCurrency,
	}
}

// item is a parsed line waiting for classification.
type item struct {
	candidate transaction.Candidate
	merchant  string
	currency  string
	context   string
}

// Ingest parses, classifies and stores one document. Only a document that
// cannot be recognized at all fails; bad lines and rows are counted.
func (s *Service) Ingest(ctx context.Context, doc Document) (*Result, error) {
	if !doc.Source.Valid() {
		return nil, fmt.Errorf("unknown source type: %q", doc.Source)
	}

	res := &Result{
		DocumentHash: doc.Hash,
		Skipped:      make(map[statement.SkipReason]int),
	}

	if res.DocumentHash == "" {
		sum := sha256.Sum256(doc.Content)
		res.DocumentHash = hex.EncodeToString(sum[:])
	}

	var (
		items []item
		err   error
	)

	switch doc.Source {
	case transaction.SourcePDF:
		items, err = s.parseStatement(doc, res)
	case transaction.SourceXLSX:
		items, err = s.parseSheet(doc, res)
	}

	if err != nil {
		return nil, err
	}

	params := make([]transaction.CreateParams, 0, len(items))

	for _, it := range items {
		p, err := s.classify(ctx, doc, it)
		if err != nil {
			return nil, err
		}

		p.DocumentHash = res.DocumentHash
		params = append(params, p)
	}

	imported, err := s.transactions.ImportBatch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("import transactions: %w", err)
	}

	res.Inserted = len(imported.Imported)
	res.Duplicates = len(imported.Duplicates)
	res.Transactions = imported.Imported

	slog.Info("document ingested",
		"filename", doc.Filename,
		"source", doc.Source,
		"inserted", res.Inserted,
		"duplicates", res.Duplicates,
		"invalid", res.Invalid,
		"skipped", len(res.SkippedLines),
	)

	return res, nil
}

func (s *Service) parseStatement(doc Document, res *Result) ([]item, error) {
	text, charset, err := encoding.DecodeString(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("decode statement: %w", err)
	}

	res.Charset = charset

	parsed, err := s.statements.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse statement: %w", err)
	}

	res.SkippedLines = parsed.Skipped
	for _, sk := range parsed.Skipped {
		res.Skipped[sk.Reason]++
	}

	items := make([]item, 0, len(parsed.Transactions))
	for _, c := range parsed.Transactions {
		items = append(items, item{candidate: c})
	}

	return items, nil
}

func (s *Service) parseSheet(doc Document, res *Result) ([]item, error) {
	rows := doc.Rows

	if rows == nil {
		parsed, err := s.sheets.Parse(bytes.NewReader(doc.Content))
		if err != nil {
			return nil, fmt.Errorf("parse sheet: %w", err)
		}

		rows = parsed.Rows
		res.Charset = parsed.Charset
		res.InvalidRows = parsed.Invalid
		res.Invalid = len(parsed.Invalid)
	}

	items := make([]item, 0, len(rows))

	for _, r := range rows {
		desc := r.Description
		if desc == "" {
			desc = r.Merchant
		}

		items = append(items, item{
			candidate: transaction.Candidate{
				Date:        r.Date,
				Description: desc,
				Amount:      r.Amount,
				Status:      transaction.StatusBooked,
				RawLine:     strings.TrimSpace(r.Merchant + " " + r.Description),
			},
			merchant: r.Merchant,
			currency: r.Currency,
			context:  r.Context,
		})
	}

	return items, nil
}

func (s *Service) classify(ctx context.Context, doc Document, it item) (transaction.CreateParams, error) {
	c := flow.ClassifyCandidate(doc.Source, it.candidate, it.context)

	var (
		m   merchant.Result
		err error
	)

	if it.merchant != "" {
		m, err = s.merchants.Resolve(ctx, it.merchant, it.candidate.Description)
	} else {
		m, err = s.merchants.Resolve(ctx, it.candidate.Description)
	}

	if err != nil {
		return transaction.CreateParams{}, fmt.Errorf("resolve merchant: %w", err)
	}

	c.Merchant = m.Merchant
	c.Currency = firstNonEmpty(it.currency, doc.Currency, s.defaultCurrency)

	return transaction.CreateParams{Classified: c}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
