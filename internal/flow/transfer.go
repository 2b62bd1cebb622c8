package flow

import "regexp"

var (
	// instantPaymentRe marks P2P instant payments. They are never transfers.
	instantPaymentRe = regexp.MustCompile(`(?i)straksbetaling`)

	// sharedAccountRe marks payments into the shared household account. They are always expenses.
	sharedAccountRe = regexp.MustCompile(`(?i)felleskonto`)

	transferRe = regexp.MustCompile(`(?i)(` +
		`overf(?:ø|o|oe)r(?:ing|t)|` +
		`\b(?:til|fra)\s+(?:egen\s+)?konto\b|` +
		`\b(?:to|from)\s+(?:own\s+)?account\b|` +
		`\btransfer\s+(?:to|from)\b|` +
		`mellom\s+egne\s+kontoer|` +
		`between\s+own\s+accounts|` +
		`\binnbetaling\b|` +
		`\bgiro\b)`)
)

// IsInstantPayment reports whether the description is a "Straksbetaling".
func IsInstantPayment(description string) bool {
	return instantPaymentRe.MatchString(description)
}

// IsSharedAccount reports whether the description mentions the "Felleskonto".
func IsSharedAccount(description string) bool {
	return sharedAccountRe.MatchString(description)
}

// IsTransfer reports whether the description reads like a movement between
// the owner's own accounts. The instant-payment and shared-account policies
// veto the keyword heuristic.
func IsTransfer(description string) bool {
	if IsInstantPayment(description) || IsSharedAccount(description) {
		return false
	}

	return transferRe.MatchString(description)
}
