package compliance

import (
	"context"
	"testing"
)

func TestRuleSetValidator_AmountThreshold(t *testing.T) {
	v := &RuleSetValidator{Rules: []Rule{
		{Kind: KindAmountThreshold, Jurisdiction: "CD", MaxAmount: 1_000},
	}}
	ctx := context.Background()

	res, err := v.Validate(ctx, Check{Amount: 500, Jurisdiction: "CD"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !res.Compliant {
		t.Fatalf("expected compliant, got %+v", res)
	}

	res, _ = v.Validate(ctx, Check{Amount: 5_000, Jurisdiction: "CD"})
	if res.Compliant || len(res.Violations) != 1 {
		t.Fatalf("expected one violation, got %+v", res)
	}

	// Rule scoped to CD must not fire for other jurisdictions.
	res, _ = v.Validate(ctx, Check{Amount: 5_000, Jurisdiction: "FR"})
	if !res.Compliant {
		t.Fatalf("rule leaked across jurisdictions: %+v", res)
	}
}

func TestRuleSetValidator_RequireDocument(t *testing.T) {
	v := &RuleSetValidator{
		Rules: []Rule{
			{Kind: KindRequireDocument, MinAmount: 10_000, Document: "kyc"},
		},
		Documents: map[string][]string{"CD": {"kyc"}},
	}
	ctx := context.Background()

	if res, _ := v.Validate(ctx, Check{Amount: 20_000, Jurisdiction: "CD"}); !res.Compliant {
		t.Fatalf("satisfied document requirement rejected: %+v", res)
	}
	if res, _ := v.Validate(ctx, Check{Amount: 20_000, Jurisdiction: "FR"}); res.Compliant {
		t.Fatalf("missing document accepted: %+v", res)
	}
	if res, _ := v.Validate(ctx, Check{Amount: 500, Jurisdiction: "FR"}); !res.Compliant {
		t.Fatalf("below-threshold amount must not require documents: %+v", res)
	}
}

func TestRuleSetValidator_AllowList(t *testing.T) {
	v := &RuleSetValidator{Rules: []Rule{
		{Kind: KindJurisdictionAllowList, Jurisdictions: []string{"CD", "CG"}},
	}}
	ctx := context.Background()

	if res, _ := v.Validate(ctx, Check{Amount: 100, Jurisdiction: "CG"}); !res.Compliant {
		t.Fatalf("allow-listed jurisdiction rejected: %+v", res)
	}
	if res, _ := v.Validate(ctx, Check{Amount: 100, Jurisdiction: "US"}); res.Compliant {
		t.Fatalf("non-listed jurisdiction accepted: %+v", res)
	}
}

func TestRuleSetValidator_UnknownKind(t *testing.T) {
	v := &RuleSetValidator{Rules: []Rule{{Kind: "eval_string"}}}
	if _, err := v.Validate(context.Background(), Check{}); err == nil {
		t.Fatalf("expected error for unknown rule kind")
	}
}
