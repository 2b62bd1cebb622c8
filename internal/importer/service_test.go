package importer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/kontoflyt/internal/importer"
	"github.com/MrJamesThe3rd/kontoflyt/internal/importer/sheet"
	"github.com/MrJamesThe3rd/kontoflyt/internal/importer/statement"
	"github.com/MrJamesThe3rd/kontoflyt/internal/merchant"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

func newService(t *testing.T) (*importer.Service, *importer.MockTransactionImporter) {
	t.Helper()

	ctrl := gomock.NewController(t)

	aliases := merchant.NewMockRepository(ctrl)
	aliases.EXPECT().FindAlias(gomock.Any(), gomock.Any()).Return("", nil).AnyTimes()

	txs := importer.NewMockTransactionImporter(ctrl)

	return importer.NewService(txs, merchant.NewService(aliases), "NOK"), txs
}

// importAll echoes every param back as an imported transaction.
func importAll(_ context.Context, params []transaction.CreateParams) (*transaction.ImportResult, error) {
	res := &transaction.ImportResult{}
	for _, p := range params {
		res.Imported = append(res.Imported, &transaction.Transaction{
			Description: p.Description,
			Amount:      p.Amount,
			FlowType:    p.FlowType,
		})
	}

	return res, nil
}

func TestService_Ingest_Statement(t *testing.T) {
	svc, txs := newService(t)

	text := "Bokførte transaksjoner\n" +
		"12.03.2025 VISA 100021 ELKJOP.NO 999,00\n" +
		"13.03.2025 Straksbetaling fra Ola 500,00\n" +
		"14.03.2025 Overføring mellom egne kontoer -2 000,00\n" +
		"Inngående saldo 1 000,00\n"

	var got []transaction.CreateParams

	txs.EXPECT().ImportBatch(gomock.Any(), gomock.Len(3)).
		DoAndReturn(func(ctx context.Context, params []transaction.CreateParams) (*transaction.ImportResult, error) {
			got = params
			return importAll(ctx, params)
		})

	res, err := svc.Ingest(context.Background(), importer.Document{
		Filename: "mars.pdf",
		Source:   transaction.SourcePDF,
		Content:  []byte(text),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, 0, res.Duplicates)
	assert.Equal(t, 1, res.Skipped[statement.SkipSectionMarker])
	assert.Equal(t, 1, res.Skipped[statement.SkipExcludedPattern])
	assert.Len(t, res.SkippedLines, 2)
	assert.NotEmpty(t, res.DocumentHash)

	require.Len(t, got, 3)

	assert.Equal(t, "ELKJOP", got[0].Merchant)
	assert.Equal(t, int64(-99900), got[0].Amount)
	assert.Equal(t, transaction.FlowExpense, got[0].FlowType)
	assert.Equal(t, transaction.SourcePDF, got[0].Source)
	assert.Equal(t, "NOK", got[0].Currency)
	assert.Equal(t, res.DocumentHash, got[0].DocumentHash)

	assert.Equal(t, transaction.FlowIncome, got[1].FlowType)
	assert.Equal(t, int64(50000), got[1].Amount)

	assert.Equal(t, transaction.FlowTransfer, got[2].FlowType)
	assert.True(t, got[2].IsExcluded)
	assert.Equal(t, int64(-200000), got[2].Amount)
}

func TestService_Ingest_Sheet(t *testing.T) {
	svc, txs := newService(t)

	csv := `Dato;Beskrivelse;Brukersted;Beløp;Valuta;Seksjon
12.03.2025;Varekjøp;KIWI 505 MAJORSTUEN;129,50;NOK;Kjøp/uttak
14.03.2025;Innbetaling kredittkort;;5 000,00;NOK;Innbetalinger
31.02.2025;Ugyldig;;1,00;NOK;Kjøp/uttak
`

	var got []transaction.CreateParams

	txs.EXPECT().ImportBatch(gomock.Any(), gomock.Len(2)).
		DoAndReturn(func(_ context.Context, params []transaction.CreateParams) (*transaction.ImportResult, error) {
			got = params

			return &transaction.ImportResult{
				Imported:   []*transaction.Transaction{{Description: params[0].Description}},
				Duplicates: params[1:],
			}, nil
		})

	res, err := svc.Ingest(context.Background(), importer.Document{
		Filename: "kort.csv",
		Hash:     "abc123",
		Source:   transaction.SourceXLSX,
		Content:  []byte(csv),
	})
	require.NoError(t, err)

	assert.Equal(t, "abc123", res.DocumentHash)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 1, res.Invalid)
	assert.Empty(t, res.SkippedLines)

	require.Len(t, got, 2)

	assert.Equal(t, "KIWI", got[0].Merchant)
	assert.Equal(t, int64(-12950), got[0].Amount)
	assert.Equal(t, transaction.FlowExpense, got[0].FlowType)

	assert.Equal(t, transaction.FlowTransfer, got[1].FlowType)
	assert.True(t, got[1].IsTransfer)
	assert.True(t, got[1].IsExcluded)
}

func TestService_Ingest_PreStructuredRows(t *testing.T) {
	svc, txs := newService(t)

	var got []transaction.CreateParams

	txs.EXPECT().ImportBatch(gomock.Any(), gomock.Len(1)).
		DoAndReturn(func(ctx context.Context, params []transaction.CreateParams) (*transaction.ImportResult, error) {
			got = params
			return importAll(ctx, params)
		})

	_, err := svc.Ingest(context.Background(), importer.Document{
		Source:   transaction.SourceXLSX,
		Currency: "EUR",
		Rows: []sheet.Row{
			{Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Merchant: "100022 NOK", Description: "Spotify P3A1B2", Amount: -11900},
		},
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "Spotify", got[0].Merchant)
	assert.Equal(t, "EUR", got[0].Currency)
}

func TestService_Ingest_Errors(t *testing.T) {
	t.Run("Unrecognized statement", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.Ingest(context.Background(), importer.Document{
			Source:  transaction.SourcePDF,
			Content: []byte("12.03.2025 Kiwi -10,00\n13.03.2025 Rema -20,00\n14.03.2025 Spar -5,00\n"),
		})
		assert.ErrorIs(t, err, statement.ErrUnrecognizedFormat)
	})

	t.Run("Unknown source", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.Ingest(context.Background(), importer.Document{Source: "ofx"})
		assert.Error(t, err)
	})

	t.Run("Import failure", func(t *testing.T) {
		svc, txs := newService(t)
		txs.EXPECT().ImportBatch(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		_, err := svc.Ingest(context.Background(), importer.Document{
			Source:  transaction.SourcePDF,
			Content: []byte("Bokførte transaksjoner\n12.03.2025 Kiwi -10,00\nSide 1\n"),
		})
		assert.Error(t, err)
	})
}
