// Package sheet reads spreadsheet exports saved as CSV. The layout is
// auto-detected by matching column headers against known profiles.
package sheet

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/kontoflyt/internal/encoding"
)

var ErrNoProfile = errors.New("no matching spreadsheet layout found")

// Row is one spreadsheet line with its amount signed as exported.
type Row struct {
	Date        time.Time
	Description string
	Merchant    string
	Amount      int64
	Currency    string
	Context     string
	LineNumber  int
}

// InvalidRow is a data row whose date or amount could not be read.
type InvalidRow struct {
	LineNumber int
	Line       string
	Err        string
}

type Result struct {
	Rows    []Row
	Invalid []InvalidRow
	Profile string
	Charset string
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) (*Result, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = detectDelimiter(raw)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, lines, err := readRecords(reader)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, colMap, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, ErrNoProfile
	}

	res := parseRows(profile, colMap, rows[headerIdx+1:], lines[headerIdx+1:])
	res.Profile = profile.Name
	res.Charset = utf8r.Charset

	return res, nil
}

// readRecords reads every record along with the file line it starts on.
// Blank lines are dropped by the csv reader, so indexes alone are not enough.
func readRecords(reader *csv.Reader) ([][]string, []int, error) {
	var (
		rows  [][]string
		lines []int
	)

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			return rows, lines, nil
		}

		if err != nil {
			return nil, nil, err
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, rec)
		lines = append(lines, line)
	}
}

// detectDelimiter prefers semicolon and tab, since comma is the decimal mark
// in Norwegian exports.
func detectDelimiter(raw []byte) rune {
	switch {
	case bytes.ContainsRune(raw, ';'):
		return ';'
	case bytes.ContainsRune(raw, '\t'):
		return '\t'
	}

	return ','
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func (c colIndex) lookup(name string) (int, bool) {
	if name == "" {
		return -1, false
	}

	i, ok := c[strings.ToLower(name)]

	return i, ok
}

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if _, dup := cols[name]; name != "" && !dup {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// matchesProfile checks if all required columns of a profile are present.
func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols.lookup(name); !ok {
			return false
		}
	}

	return true
}

// parseRows extracts rows using the matched profile. Blank and footer rows
// without anything date-shaped are ignored; rows with an unreadable date or
// amount are reported as invalid.
func parseRows(p *Profile, cols colIndex, rows [][]string, lines []int) *Result {
	dateIdx, _ := cols.lookup(p.DateCol)
	descIdx, _ := cols.lookup(p.DescCol)
	merchantIdx, _ := cols.lookup(p.MerchantCol)
	currencyIdx, _ := cols.lookup(p.CurrencyCol)

	res := &Result{}

	for i, row := range rows {
		lineNum := lines[i]

		dateStr := cellValue(row, dateIdx)
		if !dateShapeRe.MatchString(dateStr) {
			continue
		}

		invalid := func(reason string) {
			res.Invalid = append(res.Invalid, InvalidRow{
				LineNumber: lineNum,
				Line:       strings.Join(row, ";"),
				Err:        reason,
			})
		}

		date, ok := parseDate(dateStr)
		if !ok {
			invalid(fmt.Sprintf("invalid date %q", dateStr))
			continue
		}

		amount, ok := parseAmount(p, cols, row)
		if !ok {
			invalid("missing or invalid amount")
			continue
		}

		desc := cellValue(row, descIdx)
		merchant := cellValue(row, merchantIdx)

		if desc == "" && merchant == "" {
			invalid("missing description")
			continue
		}

		res.Rows = append(res.Rows, Row{
			Date:        date,
			Description: desc,
			Merchant:    merchant,
			Amount:      amount,
			Currency:    strings.ToUpper(cellValue(row, currencyIdx)),
			Context:     buildContext(p, cols, row),
			LineNumber:  lineNum,
		})
	}

	return res
}

var dateShapeRe = regexp.MustCompile(`^\d{1,4}[./-]\d{1,2}[./-]\d{1,4}$`)

var dateLayouts = []string{"02.01.2006", "2006-01-02", "02-01-2006", "02/01/2006", "2.1.2006"}

const minYear = 1990

// parseDate tries the known layouts. Impossible calendar dates fail to parse.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil && t.Year() >= minYear {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseAmount extracts the signed amount from a row based on the profile's amount mode.
func parseAmount(p *Profile, cols colIndex, row []string) (int64, bool) {
	switch p.AmountMode {
	case amountSingle:
		idx, _ := cols.lookup(p.AmountCol)
		return parseSingleAmount(row, idx)
	case amountSplit:
		debitIdx, _ := cols.lookup(p.DebitCol)
		creditIdx, _ := cols.lookup(p.CreditCol)

		return parseSplitAmount(row, debitIdx, creditIdx)
	}

	return 0, false
}

// parseSingleAmount handles a single signed amount column.
func parseSingleAmount(row []string, idx int) (int64, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return 0, false
	}

	cents, err := parseNorwegianAmount(s)
	if err != nil {
		return 0, false
	}

	return cents, true
}

// parseSplitAmount handles separate out/in columns. Out is always negative.
func parseSplitAmount(row []string, debitIdx, creditIdx int) (int64, bool) {
	if s := cellValue(row, debitIdx); s != "" {
		cents, err := parseNorwegianAmount(s)
		if err == nil && cents != 0 {
			return -abs(cents), true
		}
	}

	if s := cellValue(row, creditIdx); s != "" {
		cents, err := parseNorwegianAmount(s)
		if err == nil && cents != 0 {
			return abs(cents), true
		}
	}

	return 0, false
}

// buildContext renders the profile's context columns as a JSON object, or
// an empty string when the row has none.
func buildContext(p *Profile, cols colIndex, row []string) string {
	ctx := make(map[string]string)

	for col, key := range p.ContextCols {
		idx, ok := cols.lookup(col)
		if !ok {
			continue
		}

		if v := cellValue(row, idx); v != "" {
			ctx[key] = v
		}
	}

	if len(ctx) == 0 {
		return ""
	}

	b, err := json.Marshal(ctx)
	if err != nil {
		return ""
	}

	return string(b)
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
