// Package merchant turns raw statement text into a canonical merchant name.
package merchant

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unknown is the display name used when no merchant can be recovered.
const Unknown = "UNKNOWN"

// Kind tells whether a normalized value is a usable name.
type Kind string

const (
	KindName    Kind = "name"
	KindCode    Kind = "code"
	KindUnknown Kind = "unknown"
)

// Result is a normalized merchant.
type Result struct {
	Merchant string
	Raw      string
	Kind     Kind
}

// currencies holds ISO codes and the symbols card terminals print.
const currencies = `NOK|KR|EUR|USD|SEK|DKK|GBP|[$€£¥]`

var (
	numericRe         = regexp.MustCompile(`^[\d\s.,:/*#+-]+$`)
	numericCurrencyRe = regexp.MustCompile(`(?i)^[+-]?\s*(?:(?:` + currencies + `)\.?\s*[\d\s.,+-]+|[\d\s.,+-]+\s*(?:` + currencies + `)\.?)$`)
	currencyOnlyRe    = regexp.MustCompile(`(?i)^(?:` + currencies + `)\.?$`)

	railPrefixRe = regexp.MustCompile(`(?i)^(?:varekj(?:ø|o)p|kortkj(?:ø|o)p|kj(?:ø|o)p|visa|mastercard|bankaxept|` +
		`nettgiro|avtalegiro|efaktura|straksbetaling|betaling|apple\s?pay|google\s?pay|vipps)(?:\s*\*|\s*:|\s+|$)`)
	refCodeRe       = regexp.MustCompile(`^(?:\*+\d+|\d{4,}|\d{2}\.\d{2}(?:\.\d{2,4})?)(?:\s+|\s*\*\s*)`)
	trailCurrencyRe = regexp.MustCompile(`(?i)\s+(?:[\d.,]+\s*)?(?:` + currencies + `)\.?$`)
	domainRe        = regexp.MustCompile(`(?i)^(?:www\.)?([\p{L}\d-]+)\.(?:no|com|se|dk|net|org|io|eu|co\.uk)\b.*$`)
)

type canonical struct {
	re    *regexp.Regexp
	brand string
}

// brands collapses chain and domain variants to one display string. Order
// matters: more specific variants come first.
var brands = []canonical{
	{regexp.MustCompile(`(?i)elkj(?:ø|o|oe)p`), "ELKJOP"},
	{regexp.MustCompile(`(?i)\brema\s*1000`), "REMA 1000"},
	{regexp.MustCompile(`(?i)^kiwi\b`), "KIWI"},
	{regexp.MustCompile(`(?i)\bcoop\s*extra`), "COOP EXTRA"},
	{regexp.MustCompile(`(?i)\bcoop\s*mega`), "COOP MEGA"},
	{regexp.MustCompile(`(?i)\bcoop\s*prix`), "COOP PRIX"},
	{regexp.MustCompile(`(?i)\bcoop\s*obs`), "COOP OBS"},
	{regexp.MustCompile(`(?i)^meny\b`), "MENY"},
	{regexp.MustCompile(`(?i)^spar\b`), "SPAR"},
	{regexp.MustCompile(`(?i)^joker\b`), "JOKER"},
	{regexp.MustCompile(`(?i)bunnpris`), "BUNNPRIS"},
	{regexp.MustCompile(`(?i)komplett`), "KOMPLETT"},
	{regexp.MustCompile(`(?i)\bxxl\b`), "XXL"},
	{regexp.MustCompile(`(?i)\bikea\b`), "IKEA"},
	{regexp.MustCompile(`(?i)\b(?:amzn|amazon)\b`), "Amazon"},
	{regexp.MustCompile(`(?i)spotify`), "Spotify"},
	{regexp.MustCompile(`(?i)netflix`), "Netflix"},
	{regexp.MustCompile(`(?i)\b(?:apple\.com|itunes)`), "Apple"},
	{regexp.MustCompile(`(?i)^google\s*(?:\*|\.com)`), "Google"},
	{regexp.MustCompile(`(?i)\buber\s*\*?\s*eats`), "Uber Eats"},
	{regexp.MustCompile(`(?i)^uber\b`), "Uber"},
	{regexp.MustCompile(`(?i)^wolt\b`), "Wolt"},
	{regexp.MustCompile(`(?i)^foodora\b`), "Foodora"},
	{regexp.MustCompile(`(?i)circle\s*k\b`), "Circle K"},
	{regexp.MustCompile(`(?i)\b7-?eleven`), "7-Eleven"},
	{regexp.MustCompile(`(?i)vinmonopolet`), "Vinmonopolet"},
	{regexp.MustCompile(`(?i)narvesen`), "Narvesen"},
	{regexp.MustCompile(`(?i)clas\s*ohlson`), "Clas Ohlson"},
	{regexp.MustCompile(`(?i)^ruter\b`), "Ruter"},
	{regexp.MustCompile(`(?i)^vy(?:\.no)?\b`), "Vy"},
}

var titleCaser = cases.Title(language.Norwegian)

// Normalize cleans raw merchant or description text into a display name.
// When raw yields no name, each fallback is normalized one level deep and
// promoted only if it resolves to a name.
func Normalize(raw string, fallback ...string) Result {
	res := normalize(raw)
	if res.Kind == KindName {
		return res
	}

	for _, fb := range fallback {
		if fr := normalize(fb); fr.Kind == KindName {
			return Result{Merchant: fr.Merchant, Raw: res.Raw, Kind: KindName}
		}
	}

	return res
}

func normalize(raw string) Result {
	collapsed := strings.Join(strings.Fields(raw), " ")
	if collapsed == "" {
		return Result{Merchant: Unknown, Raw: raw, Kind: KindUnknown}
	}

	if IsCodeLike(collapsed) {
		return Result{Merchant: Unknown, Raw: collapsed, Kind: KindCode}
	}

	cleaned := strip(collapsed)

	switch {
	case cleaned == "":
		return Result{Merchant: Unknown, Raw: collapsed, Kind: KindUnknown}
	case IsCodeLike(cleaned):
		return Result{Merchant: Unknown, Raw: collapsed, Kind: KindCode}
	}

	for _, b := range brands {
		if b.re.MatchString(cleaned) {
			return Result{Merchant: b.brand, Raw: collapsed, Kind: KindName}
		}
	}

	if m := domainRe.FindStringSubmatch(cleaned); m != nil {
		cleaned = m[1]
	}

	return Result{Merchant: displayCase(cleaned), Raw: collapsed, Kind: KindName}
}

// IsCodeLike reports whether s is numeric or currency noise.
func IsCodeLike(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	return numericRe.MatchString(s) || numericCurrencyRe.MatchString(s) || currencyOnlyRe.MatchString(s)
}

func strip(s string) string {
	for {
		before := s
		s = railPrefixRe.ReplaceAllString(s, "")
		s = refCodeRe.ReplaceAllString(s, "")
		s = trailCurrencyRe.ReplaceAllString(s, "")
		s = strings.Trim(s, " *:-")

		if s == before {
			return s
		}
	}
}

// displayCase title-cases s unless it is already all caps, which keeps brand
// acronyms intact.
func displayCase(s string) string {
	hasLetter := strings.IndexFunc(s, unicode.IsLetter) >= 0
	if hasLetter && s == strings.ToUpper(s) {
		return s
	}

	return titleCaser.String(strings.ToLower(s))
}
