package command

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/MrJamesThe3rd/kontoflyt/internal/importer"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func asJSON() bool {
	return viper.GetBool("json")
}

func formatAmount(ore int64) string {
	return decimal.New(ore, -2).StringFixed(2)
}

type transactionOut struct {
	Date       string   `json:"date"`
	Desc       string   `json:"description"`
	Merchant   string   `json:"merchant"`
	Amount     string   `json:"amount"`
	Currency   string   `json:"currency"`
	Status     string   `json:"status"`
	FlowType   string   `json:"flow_type"`
	IsTransfer bool     `json:"is_transfer"`
	IsExcluded bool     `json:"is_excluded"`
	Category   string   `json:"category,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

func toOut(tx *transaction.Transaction) transactionOut {
	return transactionOut{
		Date:       tx.Date.Format(time.DateOnly),
		Desc:       tx.Description,
		Merchant:   tx.Merchant,
		Amount:     formatAmount(tx.Amount),
		Currency:   tx.Currency,
		Status:     string(tx.Status),
		FlowType:   string(tx.FlowType),
		IsTransfer: tx.IsTransfer,
		IsExcluded: tx.IsExcluded,
		Category:   tx.Metadata.Category,
		Tags:       tx.Metadata.Tags,
	}
}

type ingestOut struct {
	DocumentHash string           `json:"document_hash"`
	Charset      string           `json:"charset,omitempty"`
	Inserted     int              `json:"inserted"`
	Duplicates   int              `json:"duplicates"`
	Invalid      int              `json:"invalid"`
	Skipped      map[string]int   `json:"skipped"`
	Transactions []transactionOut `json:"transactions"`
}

func printIngest(w io.Writer, res *importer.Result) error {
	if asJSON() {
		out := ingestOut{
			DocumentHash: res.DocumentHash,
			Charset:      res.Charset,
			Inserted:     res.Inserted,
			Duplicates:   res.Duplicates,
			Invalid:      res.Invalid,
			Skipped:      make(map[string]int, len(res.Skipped)),
			Transactions: make([]transactionOut, 0, len(res.Transactions)),
		}

		for reason, n := range res.Skipped {
			out.Skipped[string(reason)] = n
		}

		for _, tx := range res.Transactions {
			out.Transactions = append(out.Transactions, toOut(tx))
		}

		return writeJSON(w, out)
	}

	t := newTable("Date", "Flow", "Amount", "Cur", "Merchant", "Description")
	for _, tx := range res.Transactions {
		t.Row(tx.Date.Format(time.DateOnly), string(tx.FlowType), formatAmount(tx.Amount), tx.Currency, tx.Merchant, tx.Description)
	}

	fmt.Fprintln(w, t)
	fmt.Fprintf(w, "%d new, %d duplicates, %d invalid rows\n", res.Inserted, res.Duplicates, res.Invalid)

	if len(res.Skipped) > 0 {
		fmt.Fprintf(w, "skipped: %s\n", skippedSummary(res))
	}

	return nil
}

func skippedSummary(res *importer.Result) string {
	parts := make([]string, 0, len(res.Skipped))
	for reason, n := range res.Skipped {
		parts = append(parts, fmt.Sprintf("%s=%d", reason, n))
	}

	sort.Strings(parts)

	return strings.Join(parts, " ")
}
