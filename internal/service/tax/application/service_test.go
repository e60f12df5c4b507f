// internal/service/tax/application/service_test.go
package application

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"jetcart/internal/service/tax/domain"
)

type stubTaxRepo struct {
	taxes map[string]*domain.Tax
}

func newStubTaxRepo() *stubTaxRepo {
	return &stubTaxRepo{taxes: make(map[string]*domain.Tax)}
}

func (r *stubTaxRepo) Save(_ context.Context, tax *domain.Tax) error {
	r.taxes[tax.Type] = tax
	return nil
}

func (r *stubTaxRepo) FindByType(_ context.Context, taxType string) (*domain.Tax, error) {
	tax, ok := r.taxes[taxType]
	if !ok {
		return nil, domain.ErrTaxNotFound
	}
	return tax, nil
}

func (r *stubTaxRepo) FindAll(_ context.Context) ([]*domain.Tax, error) {
	var all []*domain.Tax
	for _, tax := range r.taxes {
		all = append(all, tax)
	}
	return all, nil
}

func (r *stubTaxRepo) DeleteAll(_ context.Context) error {
	r.taxes = make(map[string]*domain.Tax)
	return nil
}

type stubMappingRepo struct {
	mappings map[string]*domain.TaxMapping
}

func newStubMappingRepo() *stubMappingRepo {
	return &stubMappingRepo{mappings: make(map[string]*domain.TaxMapping)}
}

func (r *stubMappingRepo) Save(_ context.Context, mapping *domain.TaxMapping) error {
	r.mappings[mapping.Category] = mapping
	return nil
}

func (r *stubMappingRepo) FindByCategory(_ context.Context, category string) (*domain.TaxMapping, error) {
	mapping, ok := r.mappings[category]
	if !ok {
		return nil, domain.ErrMappingNotFound
	}
	return mapping, nil
}

func (r *stubMappingRepo) FindAll(_ context.Context) ([]*domain.TaxMapping, error) {
	var all []*domain.TaxMapping
	for _, mapping := range r.mappings {
		all = append(all, mapping)
	}
	return all, nil
}

// stubRuleEngine 按固定结果评估规则。
type stubRuleEngine struct {
	result bool
	err    error
}

func (e *stubRuleEngine) Evaluate(string, domain.ItemFact) (bool, error) {
	return e.result, e.err
}

func newTestTaxService(rules domain.RuleEngine) (*TaxService, *stubTaxRepo, *stubMappingRepo) {
	taxes := newStubTaxRepo()
	mappings := newStubMappingRepo()
	return NewTaxService(taxes, mappings, rules, otel.Tracer("test")), taxes, mappings
}

func TestCreateTaxValidatesType(t *testing.T) {
	svc, _, _ := newTestTaxService(&stubRuleEngine{result: true})
	ctx := context.Background()

	if _, err := svc.CreateTax(ctx, "NOT_A_TAX", 10); !errors.Is(err, domain.ErrUnknownTaxType) {
		t.Errorf("err = %v, want ErrUnknownTaxType", err)
	}
	tax, err := svc.CreateTax(ctx, domain.TaxTypeVAT, 18)
	if err != nil {
		t.Fatalf("create tax: %v", err)
	}
	if tax.Value != 18 {
		t.Errorf("value = %v, want 18", tax.Value)
	}
}

func TestTaxesForCategory(t *testing.T) {
	svc, taxes, mappings := newTestTaxService(&stubRuleEngine{result: true})
	ctx := context.Background()

	taxes.taxes[domain.TaxTypeCGST] = &domain.Tax{Type: domain.TaxTypeCGST, Value: 9}
	taxes.taxes[domain.TaxTypeSGST] = &domain.Tax{Type: domain.TaxTypeSGST, Value: 9}
	mappings.mappings["electronics"] = &domain.TaxMapping{
		Category: "electronics",
		TaxTypes: []string{domain.TaxTypeCGST, domain.TaxTypeSGST},
	}

	applicable, err := svc.TaxesForCategory(ctx, "electronics", domain.ItemFact{})
	if err != nil {
		t.Fatalf("taxes for category: %v", err)
	}
	if len(applicable) != 2 {
		t.Errorf("len = %d, want 2", len(applicable))
	}
}

func TestTaxesForCategoryNoMapping(t *testing.T) {
	svc, _, _ := newTestTaxService(&stubRuleEngine{result: true})

	applicable, err := svc.TaxesForCategory(context.Background(), "unmapped", domain.ItemFact{})
	if err != nil {
		t.Fatalf("taxes for category: %v", err)
	}
	if len(applicable) != 0 {
		t.Errorf("len = %d, want 0", len(applicable))
	}
}

func TestTaxesForCategoryRuleNotSatisfied(t *testing.T) {
	svc, taxes, mappings := newTestTaxService(&stubRuleEngine{result: false})
	ctx := context.Background()

	taxes.taxes[domain.TaxTypeVAT] = &domain.Tax{Type: domain.TaxTypeVAT, Value: 18}
	mappings.mappings["luxury"] = &domain.TaxMapping{
		Category: "luxury",
		TaxTypes: []string{domain.TaxTypeVAT},
		Rule:     `item.unit_price > 1000.0`,
	}

	applicable, err := svc.TaxesForCategory(ctx, "luxury", domain.ItemFact{UnitPrice: 10})
	if err != nil {
		t.Fatalf("taxes for category: %v", err)
	}
	if len(applicable) != 0 {
		t.Errorf("len = %d, want 0 when rule not satisfied", len(applicable))
	}
}

func TestTaxesForCategoryBadRuleSkipsMapping(t *testing.T) {
	svc, taxes, mappings := newTestTaxService(&stubRuleEngine{err: errors.New("bad rule")})
	ctx := context.Background()

	taxes.taxes[domain.TaxTypeVAT] = &domain.Tax{Type: domain.TaxTypeVAT, Value: 18}
	mappings.mappings["luxury"] = &domain.TaxMapping{
		Category: "luxury",
		TaxTypes: []string{domain.TaxTypeVAT},
		Rule:     `>>>`,
	}

	applicable, err := svc.TaxesForCategory(ctx, "luxury", domain.ItemFact{})
	if err != nil {
		t.Fatalf("bad rules must not fail pricing: %v", err)
	}
	if len(applicable) != 0 {
		t.Errorf("len = %d, want 0", len(applicable))
	}
}
