package rule

import (
	"slices"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/kontoflyt/internal/flow"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

// DefaultInstantPaymentCategory is forced on instant-payment transactions
// touched by any rule.
const DefaultInstantPaymentCategory = "Straksbetaling"

// Outcome is the effect of a rule set on one transaction.
type Outcome struct {
	Metadata          transaction.Metadata
	Matched           bool
	Updated           bool
	CategoryCandidate bool
}

// Policy holds the fixed overrides applied on top of user rules.
type Policy struct {
	InstantPaymentCategory string
}

// Apply merges actions into current with the default policy.
func Apply(current transaction.Metadata, actions []Action, tx *transaction.Transaction) Outcome {
	return Policy{InstantPaymentCategory: DefaultInstantPaymentCategory}.Apply(current, actions, tx)
}

// Apply merges actions into current. The first action wins for each
// single-valued field, tags are unioned and never removed. Applying the same
// actions twice leaves the metadata unchanged.
func (p Policy) Apply(current transaction.Metadata, actions []Action, tx *transaction.Transaction) Outcome {
	out := Outcome{Metadata: current, Matched: len(actions) > 0}
	if !out.Matched {
		return out
	}

	meta := current
	meta.Tags = slices.Clone(current.Tags)

	seen := map[ActionType]bool{}

	for _, a := range actions {
		value := strings.TrimSpace(a.Value)

		if a.Type == ActionAddTag {
			meta.Tags = addTag(meta.Tags, value)
			continue
		}

		if seen[a.Type] {
			continue
		}

		seen[a.Type] = true

		switch a.Type {
		case ActionSetCategory:
			meta.Category = value
			out.CategoryCandidate = true
		case ActionSetMerchant:
			meta.MerchantOverride = value
		case ActionSetNotes:
			meta.Notes = value
		case ActionMarkRecurring:
			if recurring, ok := parseRecurring(value); ok {
				meta.IsRecurring = recurring
			}
		case ActionAddTag:
		}
	}

	if p.InstantPaymentCategory != "" && tx != nil && flow.IsInstantPayment(tx.Description) {
		meta.Category = p.InstantPaymentCategory
	}

	out.Metadata = meta
	out.Updated = !metadataEqual(current, meta)

	return out
}

func parseRecurring(v string) (bool, bool) {
	if v == "" {
		return true, true
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}

	return b, true
}

func addTag(tags []string, tag string) []string {
	if tag == "" {
		return tags
	}

	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return tags
		}
	}

	return append(tags, tag)
}

func metadataEqual(a, b transaction.Metadata) bool {
	return a.Category == b.Category &&
		a.MerchantOverride == b.MerchantOverride &&
		a.Notes == b.Notes &&
		a.IsRecurring == b.IsRecurring &&
		slices.Equal(a.Tags, b.Tags)
}
