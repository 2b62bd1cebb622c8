package sheet

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	currencyRe   = regexp.MustCompile(`(?i)\s*(?:kr|nok)\.?\s*`)
	dotDecimalRe = regexp.MustCompile(`^[-+−]?\d+\.\d{1,2}$`)
)

// parseNorwegianAmount parses a Norwegian-formatted amount string into øre.
// Format examples: "1 234,56" -> 123456, "-588,74" -> -58874, "1.234,56 kr" -> 123456.
// A lone dot followed by one or two digits is read as a decimal mark.
func parseNorwegianAmount(s string) (int64, error) {
	clean := strings.TrimSpace(currencyRe.ReplaceAllString(s, ""))

	dotIsDecimal := dotDecimalRe.MatchString(clean)

	clean = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		case '.':
			if dotIsDecimal {
				return r
			}

			return -1
		case '−':
			return '-'
		case ',':
			return '.'
		}

		return r
	}, clean)

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
