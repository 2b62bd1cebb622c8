package flow

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Section is the semantic section a spreadsheet row was exported under.
type Section string

const (
	SectionNone     Section = ""
	SectionPurchase Section = "purchase"
	SectionPayment  Section = "payment"
)

var (
	purchaseSectionRe = regexp.MustCompile(`(?i)\b(varekj(?:ø|o)p|kj(?:ø|o)p(?:/uttak)?|uttak|purchases?|withdrawals?|card\s+transactions)\b`)
	paymentSectionRe  = regexp.MustCompile(`(?i)\b(innbetalinger?|betalinger|payments?|innskudd|deposits?)\b`)
)

// sectionKeys are the context blob keys that carry a section name.
var sectionKeys = []string{"section", "seksjon", "type", "kategori", "category"}

// ExtractSection pulls a section label out of a row's context blob. The blob is
// either a JSON object or free text. The returned label is the text that matched.
func ExtractSection(context string) (Section, string) {
	text := sectionText(context)
	if text == "" {
		return SectionNone, ""
	}

	if m := purchaseSectionRe.FindString(text); m != "" {
		return SectionPurchase, m
	}

	if m := paymentSectionRe.FindString(text); m != "" {
		return SectionPayment, m
	}

	return SectionNone, ""
}

func sectionText(context string) string {
	context = strings.TrimSpace(context)
	if context == "" {
		return ""
	}

	if !strings.HasPrefix(context, "{") {
		return context
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(context), &fields); err != nil {
		return context
	}

	var parts []string

	for _, key := range sectionKeys {
		for k, v := range fields {
			if !strings.EqualFold(k, key) {
				continue
			}

			if s, ok := v.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
	}

	return strings.Join(parts, " ")
}
