// Package importer turns one uploaded document into classified, deduplicated
// transactions.
package importer

import (
	"io"

	"github.com/MrJamesThe3rd/kontoflyt/internal/importer/sheet"
	"github.com/MrJamesThe3rd/kontoflyt/internal/importer/statement"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

// Document is one upload. Statement documents carry extracted text in
// Content; spreadsheet documents carry CSV in Content or pre-structured Rows.
type Document struct {
	Filename string
	Hash     string // content hash; computed from Content when empty
	Source   transaction.SourceType
	Currency string // default for rows without one
	Content  []byte
	Rows     []sheet.Row
}

// Result summarizes one ingested document.
type Result struct {
	DocumentHash string
	Charset      string
	Inserted     int
	Duplicates   int
	Invalid      int
	Skipped      map[statement.SkipReason]int
	SkippedLines []statement.SkipRecord
	InvalidRows  []sheet.InvalidRow
	Transactions []*transaction.Transaction
}

type StatementParser interface {
	Parse(text string) (*statement.Result, error)
}

type SheetParser interface {
	Parse(r io.Reader) (*sheet.Result, error)
}
