package importdoc_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kontoflyt/internal/http/importdoc"
	"github.com/MrJamesThe3rd/kontoflyt/internal/importer"
	"github.com/MrJamesThe3rd/kontoflyt/internal/importer/statement"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

type ingestFunc func(ctx context.Context, doc importer.Document) (*importer.Result, error)

func (f ingestFunc) Ingest(ctx context.Context, doc importer.Document) (*importer.Result, error) {
	return f(ctx, doc)
}

func upload(t *testing.T, filename, source string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	if source != "" {
		require.NoError(t, mw.WriteField("source", source))
	}

	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)

	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func serve(h *importdoc.Handler, req *http.Request) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	h.Routes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestImportDocument(t *testing.T) {
	var got importer.Document

	svc := ingestFunc(func(_ context.Context, doc importer.Document) (*importer.Result, error) {
		got = doc

		return &importer.Result{
			DocumentHash: "abc",
			Inserted:     1,
			Skipped:      map[statement.SkipReason]int{statement.SkipHeader: 1},
			SkippedLines: []statement.SkipRecord{{Line: "Dato Tekst Beløp", Reason: statement.SkipHeader, LineNumber: 2}},
			Transactions: []*transaction.Transaction{{
				ID:          uuid.New(),
				Date:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
				Description: "REMA 1000 TORGET",
				Merchant:    "REMA 1000",
				Amount:      -12550,
				Currency:    "NOK",
				Status:      transaction.StatusBooked,
				Source:      transaction.SourcePDF,
				FlowType:    transaction.FlowExpense,
			}},
		}, nil
	})

	rec := serve(importdoc.NewHandler(svc, 1<<20), upload(t, "mars.txt", "", []byte("Transaksjoner\n02.03.2026 REMA 1000 TORGET -125,50")))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, transaction.SourcePDF, got.Source)
	assert.Equal(t, "mars.txt", got.Filename)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["inserted"])
	assert.Equal(t, map[string]any{"header": float64(1)}, body["skipped"])

	txs := body["transactions"].([]any)
	require.Len(t, txs, 1)
	assert.Equal(t, "2026-03-02", txs[0].(map[string]any)["date"])
	assert.Equal(t, "expense", txs[0].(map[string]any)["flow_type"])
}

func TestImportDocument_Errors(t *testing.T) {
	type testCase struct {
		name     string
		filename string
		source   string
		err      error
		wantCode int
	}

	tests := []testCase{
		{name: "Unknown extension without source", filename: "data.bin", wantCode: http.StatusBadRequest},
		{name: "Invalid source", filename: "a.csv", source: "ofx", wantCode: http.StatusBadRequest},
		{
			name:     "Unrecognized statement",
			filename: "a.txt",
			err:      fmt.Errorf("parse statement: %w", statement.ErrUnrecognizedFormat),
			wantCode: http.StatusUnprocessableEntity,
		},
		{name: "Storage failure", filename: "a.csv", err: fmt.Errorf("import transactions: boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := ingestFunc(func(context.Context, importer.Document) (*importer.Result, error) {
				return nil, tt.err
			})

			rec := serve(importdoc.NewHandler(svc, 1<<20), upload(t, tt.filename, tt.source, []byte("x")))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
