package statement

import (
	"regexp"
	"strings"
	"time"
)

type linePattern struct {
	name     string
	re       *regexp.Regexp
	twoDates bool
}

// patterns are tried in order, most specific first. Each captures the
// date(s), the description and the amount.
var patterns = []linePattern{
	{
		name:     "two_dates",
		re:       regexp.MustCompile(`^(` + anyDate + `) (` + anyDate + `) (.+?) (` + decimalAmount + `|` + krAmount + `)$`),
		twoDates: true,
	},
	{
		name: "dotted",
		re:   regexp.MustCompile(`^(` + dottedDate + `) (.+?) (` + decimalAmount + `)$`),
	},
	{
		name: "dashed_slash",
		re:   regexp.MustCompile(`^(` + slashDate + `) (.+?) (` + decimalAmount + `)$`),
	},
	{
		name: "iso",
		re:   regexp.MustCompile(`^(` + isoDate + `) (.+?) (` + decimalAmount + `)$`),
	},
	{
		name: "kr_suffix",
		re:   regexp.MustCompile(`^(` + anyDate + `) (.+?) (` + krAmount + `)$`),
	},
	{
		name: "integer",
		re:   regexp.MustCompile(`^(` + anyDate + `) (.+?) (` + integer + `)$`),
	},
}

const patternFreeform = "freeform"

type lineMatch struct {
	date        time.Time
	description string
	amount      int64
	pattern     string
}

// matchLine runs the pattern list and then the free-form scan. A non-empty
// reason means the line yielded nothing.
func matchLine(line string, maxYear int) (lineMatch, SkipReason) {
	dates := dateSpans(line)
	tokens := amountTokens(line, dates)
	years := dateYears(line, dates)

	// A whole number is only the amount when nothing better is on the line.
	integerOK := !isAmbiguous(tokens) && !hasDecimal(tokens)

	for _, p := range patterns {
		if p.name == "integer" && !integerOK {
			continue
		}

		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		desc, amountText := regroup(m[len(m)-2], m[len(m)-1])
		if p.name == "integer" && years[amountText] {
			continue
		}

		date, ok := parseDate(m[1], maxYear)
		if p.twoDates && !ok {
			date, ok = parseDate(m[2], maxYear)
		}

		if !ok {
			continue
		}

		cents, err := parseAmount(amountText)
		if err != nil {
			continue
		}

		desc = strings.TrimSpace(desc)
		if desc == "" {
			continue
		}

		return lineMatch{date: date, description: desc, amount: cents, pattern: p.name}, ""
	}

	return freeform(line, dates, tokens, years, maxYear)
}

// freeform takes the first valid date, the last trustworthy amount after it
// and the text between them as description.
func freeform(line string, dates []span, tokens []amountToken, years map[string]bool, maxYear int) (lineMatch, SkipReason) {
	var (
		date    time.Time
		dateEnd = -1
	)

	for _, d := range dates {
		if t, ok := parseDate(line[d.start:d.end], maxYear); ok {
			date, dateEnd = t, d.end
			break
		}
	}

	if dateEnd < 0 {
		return lineMatch{}, SkipNoDate
	}

	var after []amountToken

	for _, t := range tokens {
		if t.start >= dateEnd {
			after = append(after, t)
		}
	}

	amount, reason := pickAmount(after, years)
	if reason != "" {
		return lineMatch{}, reason
	}

	desc := strings.TrimSpace(line[dateEnd:amount.start])
	desc = strings.TrimSpace(leadingDatesRe.ReplaceAllString(desc+" ", ""))

	if desc == "" {
		return lineMatch{}, SkipParseFailed
	}

	return lineMatch{date: date, description: desc, amount: amount.cents, pattern: patternFreeform}, ""
}

// pickAmount prefers the last decimal or currency token, so an incidental
// trailing year never wins over a real amount. Without one, two or more bare
// integers make the line ambiguous and it is dropped. A lone whole number is
// the amount unless it repeats the year of the line's date.
func pickAmount(tokens []amountToken, years map[string]bool) (amountToken, SkipReason) {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].kind == amountDecimal {
			return tokens[i], ""
		}
	}

	if isAmbiguous(tokens) {
		return amountToken{}, SkipParseFailed
	}

	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].kind == amountSigned {
			return tokens[i], ""
		}
	}

	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].kind == amountBare && !years[tokens[i].text] {
			return tokens[i], ""
		}
	}

	return amountToken{}, SkipNoAmount
}

func isAmbiguous(tokens []amountToken) bool {
	bare := 0

	for _, t := range tokens {
		switch t.kind {
		case amountDecimal:
			return false
		case amountBare:
			bare++
		}
	}

	return bare >= 2
}

func hasDecimal(tokens []amountToken) bool {
	for _, t := range tokens {
		if t.kind == amountDecimal {
			return true
		}
	}

	return false
}
