package importdoc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kontoflyt/internal/importer"
	"github.com/MrJamesThe3rd/kontoflyt/internal/importer/sheet"
	"github.com/MrJamesThe3rd/kontoflyt/internal/importer/statement"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

type Ingester interface {
	Ingest(ctx context.Context, doc importer.Document) (*importer.Result, error)
}

type Handler struct {
	svc      Ingester
	maxBytes int64
}

func NewHandler(svc Ingester, maxBytes int64) *Handler {
	return &Handler{svc: svc, maxBytes: maxBytes}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importDocument)
}

type transactionResponse struct {
	ID          uuid.UUID              `json:"id"`
	Date        string                 `json:"date"`
	Description string                 `json:"description"`
	Merchant    string                 `json:"merchant,omitempty"`
	Amount      int64                  `json:"amount"`
	Currency    string                 `json:"currency"`
	Status      transaction.Status     `json:"status"`
	FlowType    transaction.FlowType   `json:"flow_type"`
	Source      transaction.SourceType `json:"source_type"`
	IsTransfer  bool                   `json:"is_transfer"`
	IsExcluded  bool                   `json:"is_excluded"`
}

type skippedLineResponse struct {
	LineNumber int                  `json:"line_number"`
	Reason     statement.SkipReason `json:"reason"`
	Line       string               `json:"line"`
}

type invalidRowResponse struct {
	LineNumber int    `json:"line_number"`
	Error      string `json:"error"`
}

type importResponse struct {
	DocumentHash string                       `json:"document_hash"`
	Charset      string                       `json:"charset,omitempty"`
	Inserted     int                          `json:"inserted"`
	Duplicates   int                          `json:"duplicates"`
	Invalid      int                          `json:"invalid"`
	Skipped      map[statement.SkipReason]int `json:"skipped"`
	SkippedLines []skippedLineResponse        `json:"skipped_lines,omitempty"`
	InvalidRows  []invalidRowResponse         `json:"invalid_rows,omitempty"`
	Transactions []transactionResponse        `json:"transactions"`
}

// importDocument accepts a multipart upload with a "file" part and an optional
// "source" field (pdf for extracted statement text, xlsx for spreadsheet CSV).
// Without a source the file extension decides.
func (h *Handler) importDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	source := transaction.SourceType(r.FormValue("source"))
	if source == "" {
		source = sourceFromFilename(header.Filename)
	}

	if !source.Valid() {
		http.Error(w, "source must be pdf or xlsx", http.StatusBadRequest)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.svc.Ingest(r.Context(), importer.Document{
		Filename: header.Filename,
		Source:   source,
		Currency: strings.ToUpper(strings.TrimSpace(r.FormValue("currency"))),
		Content:  content,
	})
	if err != nil {
		if errors.Is(err, statement.ErrUnrecognizedFormat) || errors.Is(err, sheet.ErrNoProfile) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		slog.Error("failed to ingest document", "filename", header.Filename, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toImportResponse(res)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func sourceFromFilename(name string) transaction.SourceType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv":
		return transaction.SourceXLSX
	case ".txt", ".pdf":
		return transaction.SourcePDF
	}

	return ""
}

func toImportResponse(res *importer.Result) importResponse {
	resp := importResponse{
		DocumentHash: res.DocumentHash,
		Charset:      res.Charset,
		Inserted:     res.Inserted,
		Duplicates:   res.Duplicates,
		Invalid:      res.Invalid,
		Skipped:      res.Skipped,
		Transactions: make([]transactionResponse, 0, len(res.Transactions)),
	}

	for _, sk := range res.SkippedLines {
		resp.SkippedLines = append(resp.SkippedLines, skippedLineResponse{
			LineNumber: sk.LineNumber,
			Reason:     sk.Reason,
			Line:       sk.Line,
		})
	}

	for _, inv := range res.InvalidRows {
		resp.InvalidRows = append(resp.InvalidRows, invalidRowResponse{
			LineNumber: inv.LineNumber,
			Error:      inv.Err,
		})
	}

	for _, tx := range res.Transactions {
		resp.Transactions = append(resp.Transactions, transactionResponse{
			ID:          tx.ID,
			Date:        tx.Date.Format(time.DateOnly),
			Description: tx.Description,
			Merchant:    tx.Merchant,
			Amount:      tx.Amount,
			Currency:    tx.Currency,
			Status:      tx.Status,
			FlowType:    tx.FlowType,
			Source:      tx.Source,
			IsTransfer:  tx.IsTransfer,
			IsExcluded:  tx.IsExcluded,
		})
	}

	return resp
}
