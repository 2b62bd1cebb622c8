package statement

import (
	"regexp"
	"strings"

	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

var (
	pendingMarkerRe = regexp.MustCompile(`(?i)^(?:ikke bokførte?(?: transaksjoner)?|reserverte(?: transaksjoner| beløp)?|reservasjoner|disponible reservasjoner|pending(?: transactions)?|reserved(?: transactions)?)(?: \(\d+\))? ?:?$`)
	bookedMarkerRe  = regexp.MustCompile(`(?i)^(?:bokførte(?: transaksjoner)?|transaksjoner|transaksjonsoversikt|kontobevegelser|posteringer|kontoutskrift|booked(?: transactions)?|transactions)(?: \(\d+\))? ?:?$`)

	leadingDatesRe = regexp.MustCompile(`^(?:` + anyDate + ` )+`)
	balanceRe      = regexp.MustCompile(`(?i)^(?:(?:inngående|utgående|disponibel|ny|forrige|bokført) saldo|(?:opening|closing|available) balance|overført fra forrige side|sum (?:denne side|side|transaksjoner|periode|inn|ut|belastet|innbetalt)|totalt? (?:inn|ut|beløp|belastet|for perioden))\b`)

	// bareBalanceRe matches a lone balance word followed only by an amount,
	// so "Total Energies" or "Sum Sushi" stay purchases.
	bareBalanceRe = regexp.MustCompile(`(?i)^(?:saldo|sum|totalt?|balance)\s*:?(?:\s*[-+−]?[\d .,\x{a0}]*\d(?:\s*(?:kr|nok)\.?)?)?$`)

	pageNumberRe = regexp.MustCompile(`(?i)^(?:(?:side|page|s\.) ?\d+(?: ?(?:av|of|/) ?\d+)?|\d+ ?(?:av|of|/) ?\d+|\d{1,3})$`)
	headerWordRe = regexp.MustCompile(`(?i)(?:^|[^\pL])(dato|bokføringsdato|bokført|rentedato|valutadato|forklaring|beskrivelse|tekst|beløp|ut av konto|inn på konto|valuta|arkivref\w*|date|description|amount|posted|details)(?:$|[^\pL])`)
)

// minHeaderWords is how many distinct column titles make a line a header.
const minHeaderWords = 2

func sectionStatus(line string) (transaction.Status, bool) {
	switch {
	case pendingMarkerRe.MatchString(line):
		return transaction.StatusPending, true
	case bookedMarkerRe.MatchString(line):
		return transaction.StatusBooked, true
	}

	return "", false
}

// isBalance matches opening, closing and sum lines, which carry amounts that
// are not transactions.
func isBalance(line string) bool {
	rest := leadingDatesRe.ReplaceAllString(line, "")

	return balanceRe.MatchString(rest) || bareBalanceRe.MatchString(rest)
}

func isPageNumber(line string) bool {
	return pageNumberRe.MatchString(line)
}

func isHeader(line string) bool {
	if len(dateSpans(line)) > 0 {
		return false
	}

	seen := map[string]bool{}

	for offset := 0; offset < len(line); {
		m := headerWordRe.FindStringSubmatchIndex(line[offset:])
		if m == nil {
			break
		}

		seen[strings.ToLower(line[offset+m[2]:offset+m[3]])] = true
		offset += m[3]
	}

	return len(seen) >= minHeaderWords
}
