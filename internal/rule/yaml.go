package rule

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Rules []yamlRule `yaml:"rules"`
}

type yamlRule struct {
	Name      string `yaml:"name"`
	Priority  int    `yaml:"priority"`
	Enabled   *bool  `yaml:"enabled"`
	Field     string `yaml:"field"`
	Match     string `yaml:"match"`
	Value     string `yaml:"value"`
	Secondary string `yaml:"secondary"`
	Action    string `yaml:"action"`
	Set       string `yaml:"set"`
}

// LoadYAML reads an offline rule set:
//
//	rules:
//	  - name: Groceries
//	    priority: 10
//	    field: merchant
//	    match: contains
//	    value: rema 1000
//	    action: set_category
//	    set: Dagligvarer
//
// Rules are enabled unless they say otherwise and get a fresh ID each load.
func LoadYAML(r io.Reader) ([]Rule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}

	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}

	rules := make([]Rule, 0, len(file.Rules))

	for i, yr := range file.Rules {
		rule := Rule{
			ID:                  uuid.New(),
			Name:                yr.Name,
			Priority:            yr.Priority,
			Enabled:             yr.Enabled == nil || *yr.Enabled,
			MatchField:          MatchField(yr.Field),
			MatchType:           MatchType(yr.Match),
			MatchValue:          yr.Value,
			MatchValueSecondary: yr.Secondary,
			ActionType:          ActionType(yr.Action),
			ActionValue:         yr.Set,
		}

		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, yr.Name, err)
		}

		rules = append(rules, rule)
	}

	return rules, nil
}
