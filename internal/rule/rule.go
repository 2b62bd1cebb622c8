// Package rule matches transactions against prioritized user rules and
// applies their actions to transaction metadata.
package rule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("rule not found")

// MatchField is the transaction attribute a rule inspects.
type MatchField string

const (
	FieldDescription MatchField = "description"
	FieldMerchant    MatchField = "merchant"
	FieldAmount      MatchField = "amount"
	FieldSourceType  MatchField = "source_type"
	FieldStatus      MatchField = "status"
)

func (f MatchField) Valid() bool {
	switch f {
	case FieldDescription, FieldMerchant, FieldAmount, FieldSourceType, FieldStatus:
		return true
	}

	return false
}

// MatchType is how a rule compares its value to the field.
type MatchType string

const (
	MatchContains    MatchType = "contains"
	MatchStartsWith  MatchType = "starts_with"
	MatchEndsWith    MatchType = "ends_with"
	MatchExact       MatchType = "exact"
	MatchRegex       MatchType = "regex"
	MatchGreaterThan MatchType = "greater_than"
	MatchLessThan    MatchType = "less_than"
	MatchBetween     MatchType = "between"
)

func (t MatchType) Valid() bool {
	switch t {
	case MatchContains, MatchStartsWith, MatchEndsWith, MatchExact, MatchRegex,
		MatchGreaterThan, MatchLessThan, MatchBetween:
		return true
	}

	return false
}

// Numeric reports whether the match type compares amounts.
func (t MatchType) Numeric() bool {
	switch t {
	case MatchGreaterThan, MatchLessThan, MatchBetween:
		return true
	case MatchContains, MatchStartsWith, MatchEndsWith, MatchExact, MatchRegex:
		return false
	}

	return false
}

// ActionType is what a matching rule does to the metadata.
type ActionType string

const (
	ActionSetCategory   ActionType = "set_category"
	ActionAddTag        ActionType = "add_tag"
	ActionSetMerchant   ActionType = "set_merchant"
	ActionSetNotes      ActionType = "set_notes"
	ActionMarkRecurring ActionType = "mark_recurring"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionSetCategory, ActionAddTag, ActionSetMerchant, ActionSetNotes, ActionMarkRecurring:
		return true
	}

	return false
}

// Rule is a user-defined match and action. Lower priority values win.
type Rule struct {
	ID                  uuid.UUID
	Name                string
	Priority            int
	Enabled             bool
	MatchField          MatchField
	MatchType           MatchType
	MatchValue          string
	MatchValueSecondary string
	ActionType          ActionType
	ActionValue         string
	CreatedAt           time.Time
	UpdatedAt           *time.Time
}

// Validate checks the enums and the value combinations a rule needs.
func (r Rule) Validate() error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return errors.New("name is required")
	case !r.MatchField.Valid():
		return fmt.Errorf("invalid match field: %q", r.MatchField)
	case !r.MatchType.Valid():
		return fmt.Errorf("invalid match type: %q", r.MatchType)
	case !r.ActionType.Valid():
		return fmt.Errorf("invalid action type: %q", r.ActionType)
	case r.MatchType.Numeric() && r.MatchField != FieldAmount:
		return fmt.Errorf("match type %s only applies to amount", r.MatchType)
	case strings.TrimSpace(r.MatchValue) == "":
		return errors.New("match value is required")
	}

	if r.MatchType.Numeric() {
		if err := validateBound(r.MatchValue); err != nil {
			return err
		}

		if r.MatchType == MatchBetween && strings.TrimSpace(r.MatchValueSecondary) != "" {
			if err := validateBound(r.MatchValueSecondary); err != nil {
				return err
			}
		}
	}

	if r.ActionType != ActionMarkRecurring && strings.TrimSpace(r.ActionValue) == "" {
		return fmt.Errorf("action %s needs a value", r.ActionType)
	}

	return nil
}

// validateBound accepts a non-negative amount. Amount rules compare the
// magnitude of a transaction, so a sign on the bound would be meaningless.
func validateBound(v string) error {
	d, ok := parseBound(v)

	switch {
	case !ok:
		return fmt.Errorf("invalid numeric match value: %q", v)
	case d.IsNegative():
		return fmt.Errorf("numeric match value must not be negative, amounts compare by size: %q", v)
	}

	return nil
}

// Action is one matched rule's effect on a transaction.
type Action struct {
	Type     ActionType
	Value    string
	RuleID   uuid.UUID
	RuleName string
}
