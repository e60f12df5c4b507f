// internal/service/tax/infrastructure/rule/cel_rule_engine_test.go
package rule

import (
	"testing"

	"jetcart/internal/service/tax/domain"
)

func newEngine(t *testing.T) *CELRuleEngineAdapter {
	t.Helper()
	engine, err := NewCELRuleEngineAdapter()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEvaluateEmptyRuleAlwaysApplies(t *testing.T) {
	engine := newEngine(t)
	ok, err := engine.Evaluate("", domain.ItemFact{SKU: "sku-1"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !ok {
		t.Error("empty rule must apply")
	}
}

func TestEvaluateItemFacts(t *testing.T) {
	engine := newEngine(t)
	fact := domain.ItemFact{SKU: "sku-1", Quantity: 2, UnitPrice: 1500}

	cases := []struct {
		rule string
		want bool
	}{
		{`item.unit_price > 1000.0`, true},
		{`item.unit_price > 2000.0`, false},
		{`item.quantity >= 2`, true},
		{`item.sku == "sku-1" && item.unit_price > 100.0`, true},
	}
	for _, tc := range cases {
		got, err := engine.Evaluate(tc.rule, fact)
		if err != nil {
			t.Errorf("Evaluate(%q): %v", tc.rule, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tc.rule, got, tc.want)
		}
	}
}

func TestEvaluateBadRule(t *testing.T) {
	engine := newEngine(t)
	if _, err := engine.Evaluate(`item.unit_price >`, domain.ItemFact{}); err == nil {
		t.Error("syntactically invalid rule must fail")
	}
	if _, err := engine.Evaluate(`item.sku`, domain.ItemFact{SKU: "x"}); err == nil {
		t.Error("non-boolean rule must fail")
	}
}

func TestEvaluateCachesPrograms(t *testing.T) {
	engine := newEngine(t)
	fact := domain.ItemFact{UnitPrice: 10}

	for i := 0; i < 3; i++ {
		if _, err := engine.Evaluate(`item.unit_price < 100.0`, fact); err != nil {
			t.Fatalf("evaluate: %v", err)
		}
	}
	engine.mu.RLock()
	defer engine.mu.RUnlock()
	if len(engine.programs) != 1 {
		t.Errorf("cached programs = %d, want 1", len(engine.programs))
	}
}
