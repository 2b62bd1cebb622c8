package command

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

const statementCSV = `Dato;Tekst;Beløp
12.03.2026;REMA 1000 TORGET;-129,50
11.03.2026;Lønn ACME AS;42000,00
12.03.2026;REMA 1000 TORGET;-129,50
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()

	root := newRootCmd()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	require.NoError(t, root.Execute())

	return out.String()
}

func TestParseCommand_JSON(t *testing.T) {
	path := writeFile(t, "mars.csv", statementCSV)

	var got ingestOut
	require.NoError(t, json.Unmarshal([]byte(execute(t, "parse", path, "--json")), &got))

	assert.Equal(t, 2, got.Inserted)
	assert.Equal(t, 1, got.Duplicates)
	require.Len(t, got.Transactions, 2)

	rema := got.Transactions[0]
	assert.Equal(t, "2026-03-12", rema.Date)
	assert.Equal(t, "REMA 1000", rema.Merchant)
	assert.Equal(t, "-129.50", rema.Amount)
	assert.Equal(t, "NOK", rema.Currency)
	assert.Equal(t, string(transaction.FlowExpense), rema.FlowType)

	salary := got.Transactions[1]
	assert.Equal(t, string(transaction.FlowIncome), salary.FlowType)
	assert.Equal(t, "42000.00", salary.Amount)
}

func TestParseCommand_UnknownSource(t *testing.T) {
	path := writeFile(t, "mars.csv", statementCSV)

	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"parse", path, "--source", "docx"})

	assert.ErrorContains(t, root.Execute(), "unknown source")
}

func TestMerchantCommand(t *testing.T) {
	assert.Equal(t, "ELKJOP\t(name)\n", execute(t, "merchant", "VISA 100021 ELKJOP.NO"))
	assert.Equal(t, "KIWI\t(name)\n", execute(t, "merchant", "123456", "--fallback", "kiwi"))
}

func TestRulesTestCommand(t *testing.T) {
	statement := writeFile(t, "mars.csv", statementCSV)
	rules := writeFile(t, "rules.yaml", `rules:
  - name: Dagligvarer
    priority: 10
    field: merchant
    match: contains
    value: rema
    action: set_category
    set: Dagligvarer
  - name: Mat-tag
    priority: 20
    field: merchant
    match: contains
    value: rema
    action: add_tag
    set: mat
`)

	var got struct {
		Summary struct {
			Processed          int `json:"processed"`
			Matched            int `json:"matched"`
			Updated            int `json:"updated"`
			CategoryCandidates int `json:"category_candidates"`
		} `json:"summary"`
		Transactions []ruleTestOut `json:"transactions"`
	}

	out := execute(t, "rules", "test", statement, "--rules", rules, "--json")
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, 2, got.Summary.Processed)
	assert.Equal(t, 1, got.Summary.Matched)
	assert.Equal(t, 1, got.Summary.Updated)
	assert.Equal(t, 1, got.Summary.CategoryCandidates)

	require.Len(t, got.Transactions, 2)
	assert.Equal(t, "Dagligvarer", got.Transactions[0].Category)
	assert.Equal(t, []string{"mat"}, got.Transactions[0].Tags)
	assert.Equal(t, []string{"Dagligvarer", "Mat-tag"}, got.Transactions[0].Rules)
	assert.Empty(t, got.Transactions[1].Rules)
}

func TestRulesTestCommand_RequiresRulesFile(t *testing.T) {
	path := writeFile(t, "mars.csv", statementCSV)

	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"rules", "test", path})

	assert.ErrorContains(t, root.Execute(), "--rules")
}

func TestSourceFor(t *testing.T) {
	tests := []struct {
		flag, path string
		want       transaction.SourceType
		wantErr    bool
	}{
		{"", "jan.csv", transaction.SourceXLSX, false},
		{"", "jan.TSV", transaction.SourceXLSX, false},
		{"", "jan.txt", transaction.SourcePDF, false},
		{"XLSX", "jan.txt", transaction.SourceXLSX, false},
		{"ofx", "jan.ofx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.flag+tt.path, func(t *testing.T) {
			got, err := sourceFor(tt.flag, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyFilter(t *testing.T) {
	f, err := applyFilter("expense", "2026-01-01", "2026-01-31")
	require.NoError(t, err)
	require.NotNil(t, f.FlowType)
	assert.Equal(t, transaction.FlowExpense, *f.FlowType)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *f.StartDate)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), *f.EndDate)
	assert.Nil(t, f.Source)

	_, err = applyFilter("spending", "", "")
	assert.Error(t, err)

	_, err = applyFilter("", "31.01.2026", "")
	assert.Error(t, err)
}
