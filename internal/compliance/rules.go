package compliance

import (
	"context"
	"fmt"
)

// RuleKind enumerates the closed set of rule types the evaluator understands.
// Rules are data interpreted by a fixed evaluator; no caller-supplied code is
// ever executed.
type RuleKind string

const (
	// KindAmountThreshold rejects amounts above MaxAmount for the matched
	// jurisdiction.
	KindAmountThreshold RuleKind = "amount_threshold"
	// KindRequireDocument rejects amounts at or above MinAmount unless the
	// document requirement is marked satisfied for the jurisdiction.
	KindRequireDocument RuleKind = "require_document"
	// KindJurisdictionAllowList rejects any jurisdiction not present in
	// Jurisdictions.
	KindJurisdictionAllowList RuleKind = "jurisdiction_allow_list"
)

// Rule is one tagged-variant compliance rule. Only the fields relevant to its
// Kind are read. An empty Jurisdiction matches every jurisdiction.
type Rule struct {
	Kind          RuleKind
	Jurisdiction  string
	Role          string
	MaxAmount     int64
	MinAmount     int64
	Document      string
	Jurisdictions []string
}

// RuleSetValidator evaluates a fixed rule set. Documents records which
// document requirements have been satisfied, keyed by jurisdiction.
type RuleSetValidator struct {
	Rules     []Rule
	Documents map[string][]string
}

// Validate interprets each rule against the check and collects violations.
func (v *RuleSetValidator) Validate(_ context.Context, check Check) (Result, error) {
	var violations []string

	for _, rule := range v.Rules {
		if rule.Jurisdiction != "" && rule.Jurisdiction != check.Jurisdiction {
			continue
		}
		if rule.Role != "" && rule.Role != check.Role {
			continue
		}

		switch rule.Kind {
		case KindAmountThreshold:
			if check.Amount > rule.MaxAmount {
				violations = append(violations,
					fmt.Sprintf("amount %d exceeds threshold %d for %s", check.Amount, rule.MaxAmount, check.Jurisdiction))
			}
		case KindRequireDocument:
			if check.Amount >= rule.MinAmount && !v.hasDocument(check.Jurisdiction, rule.Document) {
				violations = append(violations,
					fmt.Sprintf("document %q required for amounts of %d and above in %s", rule.Document, rule.MinAmount, check.Jurisdiction))
			}
		case KindJurisdictionAllowList:
			if !contains(rule.Jurisdictions, check.Jurisdiction) {
				violations = append(violations,
					fmt.Sprintf("jurisdiction %s is not allowed", check.Jurisdiction))
			}
		default:
			return Result{}, fmt.Errorf("unknown rule kind %q", rule.Kind)
		}
	}

	return Result{Compliant: len(violations) == 0, Violations: violations}, nil
}

func (v *RuleSetValidator) hasDocument(jurisdiction, document string) bool {
	return contains(v.Documents[jurisdiction], document)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
