package rule

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kontoflyt/internal/merchant"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

const (
	maxPatternLen      = 200
	maxQuantifierBound = 1000
)

var (
	lookaroundRe = regexp.MustCompile(`\(\?<?[=!]`)
	boundRe      = regexp.MustCompile(`\{(\d*)(?:,(\d*))?\}`)
)

// compileSafe compiles a user pattern case-insensitively. Patterns that are
// too long, use lookaround, carry a large repetition bound or do not compile
// return nil and never match.
func compileSafe(pattern string) *regexp.Regexp {
	if pattern == "" || utf8.RuneCountInString(pattern) > maxPatternLen {
		return nil
	}

	if lookaroundRe.MatchString(pattern) {
		return nil
	}

	for _, m := range boundRe.FindAllStringSubmatch(pattern, -1) {
		for _, b := range m[1:] {
			if b == "" {
				continue
			}

			n, err := strconv.Atoi(b)
			if err != nil || n >= maxQuantifierBound {
				return nil
			}
		}
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil
	}

	return re
}

// Matcher is a rule set prepared for repeated matching: enabled rules only,
// ordered by ascending priority, regexes compiled once.
type Matcher struct {
	rules   []Rule
	regexes []*regexp.Regexp
}

// Compile prepares rules for matching. The input slice is not modified.
func Compile(rules []Rule) *Matcher {
	enabled := make([]Rule, 0, len(rules))

	for _, r := range rules {
		if r.Enabled {
			enabled = append(enabled, r)
		}
	}

	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority < enabled[j].Priority
	})

	m := &Matcher{rules: enabled, regexes: make([]*regexp.Regexp, len(enabled))}

	for i, r := range enabled {
		if r.MatchType == MatchRegex {
			m.regexes[i] = compileSafe(r.MatchValue)
		}
	}

	return m
}

// Match returns the actions of every rule that matches tx, in priority order.
func (m *Matcher) Match(tx *transaction.Transaction) []Action {
	var actions []Action

	for i, r := range m.rules {
		if !m.matches(i, r, tx) {
			continue
		}

		actions = append(actions, Action{
			Type:     r.ActionType,
			Value:    r.ActionValue,
			RuleID:   r.ID,
			RuleName: r.Name,
		})
	}

	return actions
}

// GetMatchingRules matches one transaction against a rule set.
func GetMatchingRules(tx *transaction.Transaction, rules []Rule) []Action {
	return Compile(rules).Match(tx)
}

func (m *Matcher) matches(i int, r Rule, tx *transaction.Transaction) bool {
	if r.MatchType.Numeric() {
		return r.MatchField == FieldAmount && matchAmount(r, tx.Amount)
	}

	candidates := fieldCandidates(r.MatchField, tx)

	if r.MatchType == MatchRegex {
		re := m.regexes[i]
		if re == nil {
			return false
		}

		for _, c := range candidates {
			if re.MatchString(c) {
				return true
			}
		}

		return false
	}

	value := strings.ToLower(strings.TrimSpace(r.MatchValue))
	if value == "" {
		return false
	}

	for _, c := range candidates {
		if matchText(r.MatchType, strings.ToLower(c), value) {
			return true
		}
	}

	return false
}

func matchText(t MatchType, candidate, value string) bool {
	switch t {
	case MatchContains:
		return strings.Contains(candidate, value)
	case MatchStartsWith:
		return strings.HasPrefix(candidate, value)
	case MatchEndsWith:
		return strings.HasSuffix(candidate, value)
	case MatchExact:
		return candidate == value
	case MatchRegex, MatchGreaterThan, MatchLessThan, MatchBetween:
		return false
	}

	return false
}

// fieldCandidates lists the texts a string rule is tested against. Merchant
// and description rules also see the combined "merchant description" text,
// since the two export formats fill those fields differently.
func fieldCandidates(field MatchField, tx *transaction.Transaction) []string {
	switch field {
	case FieldDescription:
		return []string{strings.TrimSpace(tx.Description), combined(tx)}
	case FieldMerchant:
		return []string{merchantName(tx), combined(tx)}
	case FieldAmount:
		return []string{decimal.New(tx.Amount, -2).StringFixed(2)}
	case FieldSourceType:
		return []string{string(tx.Source)}
	case FieldStatus:
		return []string{string(tx.Status)}
	}

	return nil
}

// merchantName is the stored merchant, or the normalized description when
// ingestion could not name one.
func merchantName(tx *transaction.Transaction) string {
	if tx.Merchant != "" && tx.Merchant != merchant.Unknown {
		return tx.Merchant
	}

	if res := merchant.Normalize(tx.Description); res.Kind == merchant.KindName {
		return res.Merchant
	}

	return ""
}

func combined(tx *transaction.Transaction) string {
	return strings.TrimSpace(merchantName(tx) + " " + strings.TrimSpace(tx.Description))
}

// matchAmount compares the amount's magnitude in kroner, so "greater_than
// 1000" catches both large expenses and large income.
func matchAmount(r Rule, amount int64) bool {
	if amount < 0 {
		amount = -amount
	}

	a := decimal.New(amount, -2)

	lo, ok := parseBound(r.MatchValue)
	if !ok || lo.IsNegative() {
		return false
	}

	switch r.MatchType {
	case MatchGreaterThan:
		return a.GreaterThan(lo)
	case MatchLessThan:
		return a.LessThan(lo)
	case MatchBetween:
		hi, ok := parseBound(r.MatchValueSecondary)
		switch {
		case !ok:
			hi = lo
		case hi.IsNegative():
			return false
		}

		if hi.LessThan(lo) {
			lo, hi = hi, lo
		}

		return a.GreaterThanOrEqual(lo) && a.LessThanOrEqual(hi)
	case MatchContains, MatchStartsWith, MatchEndsWith, MatchExact, MatchRegex:
		return false
	}

	return false
}

// parseBound reads a rule amount such as "1000", "1 000,50" or "99.90".
// Bounds are magnitudes; a signed bound is kept signed so Validate can
// reject it and matching never sees it.
func parseBound(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return decimal.Decimal{}, false
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}

	return d, true
}
