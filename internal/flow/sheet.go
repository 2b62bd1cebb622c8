package flow

import (
	"regexp"

	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

var paymentRailRe = regexp.MustCompile(`(?i)(\binnbetaling\w*|\bgiro\b|avtalegiro|efaktura|\bbill\s?pay\w*|\btop[\s-]?up\b|p(?:å|a)fylling)`)

// SheetOutcome is the spreadsheet section decision for one row.
type SheetOutcome struct {
	Signed
	Applied bool
	Vetoed  bool
	Reason  string
}

// NormalizeSheetRow applies spreadsheet section context to a row. Rows in a
// purchase section are made negative, payment-rail rows become excluded
// transfers. Refund wording vetoes any sign flip.
func NormalizeSheetRow(description string, amount int64, context string) SheetOutcome {
	section, _ := ExtractSection(context)
	refund := refundRe.MatchString(description)

	if section == SectionPayment || paymentRailRe.MatchString(description) {
		if !refund {
			return SheetOutcome{
				Signed:  Signed{Amount: amount, IsTransfer: true, IsExcluded: true},
				Applied: true,
				Reason:  ReasonSheetPayment,
			}
		}
	}

	if section != SectionPurchase {
		return SheetOutcome{Signed: Signed{Amount: amount}}
	}

	if refund {
		return SheetOutcome{Signed: Signed{Amount: amount}, Vetoed: true, Reason: ReasonRefundVeto}
	}

	return SheetOutcome{
		Signed:  Signed{Amount: -abs(amount)},
		Applied: true,
		Reason:  ReasonSheetPurchase,
	}
}

// ClassifyCandidate classifies a parsed line and normalizes its sign. For
// spreadsheet rows the section normalizer is consulted first and wins over
// keyword heuristics, except for the instant-payment and shared-account policies.
func ClassifyCandidate(source transaction.SourceType, c transaction.Candidate, context string) transaction.Classified {
	res := Classify(source, c.Description, c.Amount, context)

	out := transaction.Classified{
		Candidate:    c,
		Source:       source,
		FlowType:     res.Flow,
		Reason:       res.Reason,
		SectionLabel: res.SectionLabel,
	}

	if source == transaction.SourceXLSX && !isPolicyOverride(res.Reason) {
		sheet := NormalizeSheetRow(c.Description, c.Amount, context)

		switch {
		case sheet.Applied && sheet.IsTransfer:
			out.FlowType = transaction.FlowTransfer
			out.Reason = sheet.Reason
		case sheet.Applied:
			out.FlowType = transaction.FlowExpense
			out.Reason = sheet.Reason
		case sheet.Vetoed && c.Amount > 0:
			out.FlowType = transaction.FlowIncome
			out.Reason = sheet.Reason
		}
	}

	signed := NormalizeSign(out.FlowType, c.Amount)
	out.Amount = signed.Amount
	out.IsTransfer = signed.IsTransfer
	out.IsExcluded = signed.IsExcluded

	return out
}

func isPolicyOverride(reason string) bool {
	return reason == ReasonInstantPayment || reason == ReasonSharedAccount
}
