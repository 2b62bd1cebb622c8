package sheet

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "Beløp" with value "-129,50").
	amountSingle amountMode = iota
	// amountSplit means separate out and in columns (e.g. "Ut av konto"/"Inn på konto").
	amountSplit
)

// Profile describes the column layout of a spreadsheet export. Column names
// match case-insensitively.
type Profile struct {
	Name        string
	DateCol     string
	DescCol     string
	MerchantCol string // optional
	CurrencyCol string // optional
	AmountMode  amountMode
	AmountCol   string // used when AmountMode == amountSingle
	DebitCol    string // used when AmountMode == amountSplit
	CreditCol   string // used when AmountMode == amountSplit

	// ContextCols maps optional column names to keys of the row context blob.
	ContextCols map[string]string
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles is the ordered list of export layouts tried during auto-detection.
// More specific profiles come first.
var profiles = []Profile{
	{
		Name:        "kredittkort",
		DateCol:     "Dato",
		DescCol:     "Beskrivelse",
		MerchantCol: "Brukersted",
		CurrencyCol: "Valuta",
		AmountMode:  amountSingle,
		AmountCol:   "Beløp",
		ContextCols: map[string]string{"Seksjon": "section", "Kategori": "category"},
	},
	{
		Name:        "bokforing",
		DateCol:     "Bokføringsdato",
		DescCol:     "Tekst",
		CurrencyCol: "Valuta",
		AmountMode:  amountSplit,
		DebitCol:    "Ut av konto",
		CreditCol:   "Inn på konto",
		ContextCols: map[string]string{"Type": "type"},
	},
	{
		Name:       "forklaring",
		DateCol:    "Dato",
		DescCol:    "Forklaring",
		AmountMode: amountSplit,
		DebitCol:   "Ut fra konto",
		CreditCol:  "Inn på konto",
	},
	{
		Name:        "konto",
		DateCol:     "Dato",
		DescCol:     "Tekst",
		CurrencyCol: "Valuta",
		AmountMode:  amountSingle,
		AmountCol:   "Beløp",
		ContextCols: map[string]string{"Type": "type"},
	},
}
