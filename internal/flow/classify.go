// Package flow decides whether a statement line is an expense, income or an
// internal transfer, and keeps the amount sign consistent with that decision.
package flow

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

// Reason codes explain which precedence step decided the flow.
const (
	ReasonInstantPayment = "override_straksbetaling"
	ReasonSharedAccount  = "override_felleskonto"
	ReasonTransfer       = "transfer_keyword"
	ReasonSection        = "section_purchase"
	ReasonRefund         = "refund_positive"
	ReasonIncome         = "income_keyword"
	ReasonPurchaseToken  = "purchase_token"
	ReasonMerchantLabel  = "merchant_label_positive"
	ReasonNegative       = "negative_amount"
	ReasonNoSignal       = "no_signal"
	ReasonSheetPayment   = "sheet_payment_rail"
	ReasonSheetPurchase  = "sheet_purchase_section"
	ReasonRefundVeto     = "sheet_refund_veto"
)

var (
	// "kredittkort" is a card name, not a credit note, so kredit* is limited to its booking forms.
	refundRe = regexp.MustCompile(`(?i)(refusjon|tilbake\w*|\bretur\w*|\bkredit(?:ert|ering|nota)\w*|refund\w*)`)

	incomeRe = regexp.MustCompile(`(?i)(` +
		`l(?:ø|o)nn\b|\bsalary\b|\bpayroll\b|` +
		`\butbytte\b|\bdividend\w*|` +
		`renteinntekt\w*|kreditrente\w*|\binterest\b|` +
		`\bnav\b|trygd|pensjon|dagpenger|sykepenger|foreldrepenger|stipend|\bbenefits?\b|` +
		`refusjon|\brefund\w*|tilbakebetaling)`)

	purchaseTokenRe = regexp.MustCompile(`(?i)(` +
		`varekj(?:ø|o)p|kortkj(?:ø|o)p|\bkj(?:ø|o)p\b|\bvisa\b|\bmastercard\b|bankaxept|` +
		`\bvipps\b|\bapple\s?pay\b|\bgoogle\s?pay\b|\bpaypal\b|` +
		`^[a-z0-9][a-z0-9.\-]*\s?\*\s?\S)`)

	// incomePrefixRe excludes positive lines that announce their origin rather than a merchant.
	incomePrefixRe = regexp.MustCompile(`(?i)^(fra|from|innskudd|deposit|l(?:ø|o)nn|salary)\b`)
)

// knownMerchants is the curated list of chains that only ever appear as purchases.
var knownMerchants = []string{
	"rema 1000", "kiwi", "coop", "meny", "spar", "joker", "bunnpris", "extra",
	"elkjøp", "elkjop", "power", "komplett", "xxl", "clas ohlson", "jernia",
	"narvesen", "7-eleven", "circle k", "esso", "shell", "uno-x", "yx",
	"vinmonopolet", "apotek 1", "vitusapotek", "boots apotek",
	"ikea", "jysk", "europris", "normal", "h&m", "cubus",
	"spotify", "netflix", "hbo max", "viaplay", "disney+",
	"uber", "wolt", "foodora", "ruter", "vy", "flytoget", "sas", "norwegian",
}

// Result is the outcome of a flow decision.
type Result struct {
	Flow         transaction.FlowType
	Reason       string
	SectionLabel string
}

// Classify decides the flow type of a line. The first matching rule wins:
// policy overrides, transfer phrases, purchase section, refunds, income
// keywords, purchase tokens, merchant-looking positives, negatives. Anything
// else is unknown.
func Classify(source transaction.SourceType, description string, amount int64, context string) Result {
	section, label := ExtractSection(context)

	result := func(flow transaction.FlowType, reason string) Result {
		return Result{Flow: flow, Reason: reason, SectionLabel: label}
	}

	switch {
	case IsInstantPayment(description):
		if amount > 0 {
			return result(transaction.FlowIncome, ReasonInstantPayment)
		}

		return result(transaction.FlowExpense, ReasonInstantPayment)
	case IsSharedAccount(description):
		return result(transaction.FlowExpense, ReasonSharedAccount)
	case IsTransfer(description):
		return result(transaction.FlowTransfer, ReasonTransfer)
	case section == SectionPurchase:
		return result(transaction.FlowExpense, ReasonSection)
	case amount > 0 && refundRe.MatchString(description):
		return result(transaction.FlowIncome, ReasonRefund)
	}

	incomeMatched := incomeRe.MatchString(description)

	switch {
	case incomeMatched:
		return result(transaction.FlowIncome, ReasonIncome)
	case isPurchaseToken(description):
		return result(transaction.FlowExpense, ReasonPurchaseToken)
	case amount > 0 && looksLikeMerchant(description):
		return result(transaction.FlowExpense, ReasonMerchantLabel)
	case amount < 0:
		return result(transaction.FlowExpense, ReasonNegative)
	}

	return result(transaction.FlowUnknown, ReasonNoSignal)
}

func isPurchaseToken(description string) bool {
	if purchaseTokenRe.MatchString(strings.TrimSpace(description)) {
		return true
	}

	lower := strings.ToLower(description)
	for _, m := range knownMerchants {
		if containsWord(lower, m) {
			return true
		}
	}

	return false
}

// looksLikeMerchant is the safety net for card statements that print purchases
// as positive numbers: any lettered label without an origin prefix.
func looksLikeMerchant(description string) bool {
	d := strings.TrimSpace(description)
	if incomePrefixRe.MatchString(d) {
		return false
	}

	return strings.IndexFunc(d, unicode.IsLetter) >= 0
}

// containsWord reports whether needle occurs in s bounded by non-letters.
func containsWord(s, needle string) bool {
	for start := 0; ; {
		i := strings.Index(s[start:], needle)
		if i < 0 {
			return false
		}

		i += start
		end := i + len(needle)

		if !letterBefore(s, i) && !letterAt(s, end) {
			return true
		}

		start = i + 1
	}
}

func letterBefore(s string, i int) bool {
	if i == 0 {
		return false
	}

	r := []rune(s[:i])

	return unicode.IsLetter(r[len(r)-1])
}

func letterAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}

	return unicode.IsLetter([]rune(s[i:])[0])
}
