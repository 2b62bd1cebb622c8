package statement

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dottedDate = `\d{1,2}\.\d{1,2}\.\d{4}`
	slashDate  = `\d{1,2}[-/]\d{1,2}[-/]\d{4}`
	isoDate    = `\d{4}-\d{1,2}-\d{1,2}`
	anyDate    = `(?:` + isoDate + `|` + dottedDate + `|` + slashDate + `)`

	sign          = `[-+−]?`
	group         = `[. \x{a0}]`
	commaDecimal  = sign + `(?:\d{1,3}(?:` + group + `\d{3})+|\d+),\d{2}`
	dotDecimal    = sign + `(?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2}`
	decimalAmount = `(?:` + commaDecimal + `|` + dotDecimal + `)`
	krAmount      = sign + `(?:\d{1,3}(?:` + group + `\d{3})+|\d+)(?:[,.]\d{1,2})? ?(?i:kr|nok)\.?`
	signedInteger = `[-+−]\d+`
	integer       = sign + `\d+`
)

var (
	dateTokenRe = regexp.MustCompile(`(?:^|[^\d.\-/])(` + anyDate + `)(?:$|[^\d.\-/])`)
	dateOnlyRe  = regexp.MustCompile(`^(?:(\d{4})-(\d{1,2})-(\d{1,2})|(\d{1,2})[./-](\d{1,2})[./-](\d{4}))$`)

	decimalTokenRe = regexp.MustCompile(`^` + decimalAmount + `$`)
	krTokenRe      = regexp.MustCompile(`^` + krAmount + `$`)
	signedTokenRe  = regexp.MustCompile(`^` + signedInteger + `$`)
	bareTokenRe    = regexp.MustCompile(`^\d+$`)
)

const minYear = 1990

// parseDate validates a single date token. Impossible calendar values and
// years outside [1990, maxYear] are rejected, never clamped.
func parseDate(tok string, maxYear int) (time.Time, bool) {
	m := dateOnlyRe.FindStringSubmatch(tok)
	if m == nil {
		return time.Time{}, false
	}

	var ys, ms, ds string
	if m[1] != "" {
		ys, ms, ds = m[1], m[2], m[3]
	} else {
		ds, ms, ys = m[4], m[5], m[6]
	}

	y, _ := strconv.Atoi(ys)
	mo, _ := strconv.Atoi(ms)
	d, _ := strconv.Atoi(ds)

	if y < minYear || y > maxYear || mo < 1 || mo > 12 || d < 1 {
		return time.Time{}, false
	}

	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || t.Month() != time.Month(mo) {
		return time.Time{}, false
	}

	return t, true
}

type span struct {
	start, end int
}

// dateSpans returns the byte ranges of every date-shaped token in s. Adjacent
// dates share one separator, so matching restarts at the end of each date.
func dateSpans(s string) []span {
	var spans []span

	for offset := 0; offset < len(s); {
		m := dateTokenRe.FindStringSubmatchIndex(s[offset:])
		if m == nil {
			break
		}

		spans = append(spans, span{offset + m[2], offset + m[3]})
		offset += m[3]
	}

	return spans
}

type amountKind int

const (
	amountDecimal amountKind = iota
	amountSigned
	amountBare
)

type amountToken struct {
	span
	text  string
	kind  amountKind
	cents int64
}

// amountTokens finds numeric tokens in s, joining space-grouped thousands
// and a detached currency suffix into one token. Date spans are ignored.
func amountTokens(s string, dates []span) []amountToken {
	words := fields(s)

	var out []amountToken

	for i := 0; i < len(words); {
		if insideAny(words[i].span, dates) {
			i++
			continue
		}

		tok, n := longestAmountAt(s, words[i:])
		if n == 0 {
			i++
			continue
		}

		out = append(out, tok)
		i += n
	}

	return out
}

const maxAmountWords = 5

func longestAmountAt(s string, words []word) (amountToken, int) {
	limit := min(len(words), maxAmountWords)

	for n := limit; n >= 1; n-- {
		sp := span{words[0].start, words[n-1].end}
		text := s[sp.start:sp.end]

		kind, ok := classifyAmount(text)
		if !ok || !groupingTrusted(text) {
			continue
		}

		cents, err := parseAmount(text)
		if err != nil {
			continue
		}

		return amountToken{span: sp, text: text, kind: kind, cents: cents}, n
	}

	return amountToken{}, 0
}

func classifyAmount(text string) (amountKind, bool) {
	switch {
	case decimalTokenRe.MatchString(text), krTokenRe.MatchString(text):
		return amountDecimal, true
	case signedTokenRe.MatchString(text):
		return amountSigned, true
	case bareTokenRe.MatchString(text):
		return amountBare, true
	}

	return 0, false
}

var currencySuffixRe = regexp.MustCompile(`(?i)\s*(?:kr|nok)\.?$`)

// groupingTrusted reports whether an ordinary space inside a printed amount
// can be read as a thousands separator. "1 199,00" after a description is
// more often "Apotek 1" followed by 199,00, so a single space only groups when
// the amount is signed, has two or more grouping spaces, or the trailing part
// would otherwise start with a zero as in "42 000,00". Dots and NBSP always group.
func groupingTrusted(text string) bool {
	digits := strings.TrimSpace(currencySuffixRe.ReplaceAllString(text, ""))
	groups := strings.Split(digits, " ")

	switch {
	case len(groups) != 2:
		return true
	case strings.IndexAny(groups[0], "-+−") == 0:
		return true
	}

	return strings.HasPrefix(groups[1], "0")
}

// regroup hands the leading digit group of an untrusted amount back to the
// description it was split from.
func regroup(desc, amount string) (string, string) {
	if groupingTrusted(amount) {
		return desc, amount
	}

	i := strings.IndexByte(amount, ' ')

	return strings.TrimSpace(desc + " " + amount[:i]), amount[i+1:]
}

// dateYears returns the years printed in the line's dates. A bare number equal
// to one of them is the year echoed again, not an amount.
func dateYears(line string, dates []span) map[string]bool {
	years := make(map[string]bool, len(dates))

	for _, d := range dates {
		m := dateOnlyRe.FindStringSubmatch(line[d.start:d.end])
		if m == nil {
			continue
		}

		if m[1] != "" {
			years[m[1]] = true
		} else {
			years[m[6]] = true
		}
	}

	return years
}

// parseAmount converts a printed amount to øre. The last separator followed
// by one or two digits is the decimal mark, every other separator groups thousands.
func parseAmount(text string) (int64, error) {
	s := currencySuffixRe.ReplaceAllString(text, "")
	s = strings.ReplaceAll(s, "−", "-")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	decimalAt := max(lastComma, lastDot)

	if decimalAt >= 0 && len(s)-decimalAt-1 > 2 {
		decimalAt = -1
	}

	var b strings.Builder

	for i, r := range s {
		switch {
		case i == decimalAt:
			b.WriteByte('.')
		case r == ',' || r == '.':
		default:
			b.WriteRune(r)
		}
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return 0, err
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

type word struct {
	span
}

// fields is strings.Fields that keeps byte offsets.
func fields(s string) []word {
	var (
		out   []word
		start = -1
	)

	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				out = append(out, word{span{start, i}})
				start = -1
			}

			continue
		}

		if start < 0 {
			start = i
		}
	}

	if start >= 0 {
		out = append(out, word{span{start, len(s)}})
	}

	return out
}

func insideAny(sp span, spans []span) bool {
	for _, o := range spans {
		if sp.start < o.end && o.start < sp.end {
			return true
		}
	}

	return false
}
