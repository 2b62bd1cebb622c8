// Package statement extracts transaction candidates from the plain text of a
// bank or card statement. Every line that does not yield a transaction is
// recorded with a reason instead of failing the document.
package statement

import (
	"errors"
	"time"

	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

// ErrUnrecognizedFormat is returned when the text holds no section marker at all.
var ErrUnrecognizedFormat = errors.New("unrecognized statement format")

// SkipReason explains why a line produced no transaction.
type SkipReason string

const (
	SkipHeader          SkipReason = "header"
	SkipSectionMarker   SkipReason = "section_marker"
	SkipPageNumber      SkipReason = "page_number"
	SkipEmpty           SkipReason = "empty"
	SkipNoDate          SkipReason = "no_date"
	SkipNoAmount        SkipReason = "no_amount"
	SkipParseFailed     SkipReason = "parse_failed"
	SkipExcludedPattern SkipReason = "excluded_pattern"
)

// SkipRecord is a diagnostic for one non-transaction line.
type SkipRecord struct {
	Line       string
	Reason     SkipReason
	LineNumber int
}

// Stats summarizes a parse.
type Stats struct {
	Lines     int
	Parsed    int
	Skipped   int
	ByReason  map[SkipReason]int
	ByPattern map[string]int
}

// Result is everything recovered from one document.
type Result struct {
	Transactions []transaction.Candidate
	Skipped      []SkipRecord
	Stats        Stats
}

// Parser turns statement text into candidates. Now anchors the accepted year
// range and defaults to time.Now.
type Parser struct {
	Now func() time.Time
}

func NewParser() *Parser {
	return &Parser{Now: time.Now}
}

// Parse reads the whole document text. It only fails when no section marker
// exists anywhere in the text.
func (p *Parser) Parse(text string) (*Result, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	maxYear := now().Year() + 1

	res := &Result{
		Stats: Stats{
			ByReason:  make(map[SkipReason]int),
			ByPattern: make(map[string]int),
		},
	}

	status := transaction.StatusBooked
	markers := 0

	skip := func(l logicalLine, reason SkipReason) {
		res.Skipped = append(res.Skipped, SkipRecord{Line: l.text, Reason: reason, LineNumber: l.number})
		res.Stats.ByReason[reason]++
	}

	for _, l := range mergeWrapped(splitLines(text)) {
		res.Stats.Lines++

		line := normalizeSpace(l.text)

		if line == "" {
			skip(l, SkipEmpty)
			continue
		}

		if s, ok := sectionStatus(line); ok {
			status = s
			markers++

			skip(l, SkipSectionMarker)

			continue
		}

		switch {
		case isBalance(line):
			skip(l, SkipExcludedPattern)
			continue
		case isPageNumber(line):
			skip(l, SkipPageNumber)
			continue
		case isHeader(line):
			skip(l, SkipHeader)
			continue
		}

		m, reason := matchLine(line, maxYear)
		if reason != "" {
			skip(l, reason)
			continue
		}

		res.Transactions = append(res.Transactions, transaction.Candidate{
			Date:        m.date,
			Description: m.description,
			Amount:      m.amount,
			Status:      status,
			RawLine:     l.text,
		})
		res.Stats.ByPattern[m.pattern]++
	}

	if markers == 0 {
		return nil, ErrUnrecognizedFormat
	}

	res.Stats.Parsed = len(res.Transactions)
	res.Stats.Skipped = len(res.Skipped)

	return res, nil
}
