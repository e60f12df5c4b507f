// internal/service/catalog/application/service_test.go
package application

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"

	"jetcart/internal/service/catalog/domain"
)

type stubProductRepo struct {
	products []*domain.Product
}

func (r *stubProductRepo) Save(_ context.Context, product *domain.Product) error {
	r.products = append(r.products, product)
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	for _, product := range r.products {
		if product.ID == id {
			return product, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *stubProductRepo) FindAll(_ context.Context, _, _ int) ([]*domain.Product, error) {
	return r.products, nil
}

func (r *stubProductRepo) FindByCategory(_ context.Context, category string, _, _ int) ([]*domain.Product, error) {
	var matched []*domain.Product
	for _, product := range r.products {
		if product.Category == category {
			matched = append(matched, product)
		}
	}
	return matched, nil
}

func (r *stubProductRepo) Search(_ context.Context, _ map[string]interface{}, _ string) ([]*domain.Product, error) {
	return r.products, nil
}

func (r *stubProductRepo) DeleteAll(_ context.Context) error {
	r.products = nil
	return nil
}

type stubWarehouseRepo struct{}

func (stubWarehouseRepo) Save(context.Context, *domain.Warehouse) error { return nil }
func (stubWarehouseRepo) FindByCode(context.Context, string) (*domain.Warehouse, error) {
	return nil, domain.ErrWarehouseNotFound
}

func TestSearchProductsCountsFacets(t *testing.T) {
	repo := &stubProductRepo{products: []*domain.Product{
		{ID: "1", Category: "electronics"},
		{ID: "2", Category: "electronics"},
		{ID: "3", Category: "books"},
	}}
	svc := NewCatalogService(repo, stubWarehouseRepo{}, otel.Tracer("test"))

	result, err := svc.SearchProducts(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Products) != 3 {
		t.Errorf("products = %d, want 3", len(result.Products))
	}
	if result.Facets["electronics"] != 2 || result.Facets["books"] != 1 {
		t.Errorf("facets = %v, want electronics:2 books:1", result.Facets)
	}
}
