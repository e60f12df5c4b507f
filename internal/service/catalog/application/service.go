// internal/service/catalog/application/service.go
package application

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"jetcart/internal/service/catalog/domain"
)

// CatalogService 承载商品与仓库的管理面用例。
// 薄数据层，除了"存进去、读出来"没有额外约束。
type CatalogService struct {
	products   domain.ProductRepository
	warehouses domain.WarehouseRepository
	tracer     trace.Tracer
}

func NewCatalogService(products domain.ProductRepository, warehouses domain.WarehouseRepository, tracer trace.Tracer) *CatalogService {
	return &CatalogService{products: products, warehouses: warehouses, tracer: tracer}
}

func (s *CatalogService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.CreateProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.category", product.Category))

	if err := s.products.Save(ctx, product); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) FetchProduct(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.FetchProduct")
	defer span.End()
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) FetchAllProducts(ctx context.Context, page, size int) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.FetchAllProducts")
	defer span.End()
	return s.products.FindAll(ctx, page, size)
}

func (s *CatalogService) FetchProductsByCategory(ctx context.Context, category string, page, size int) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.FetchProductsByCategory")
	defer span.End()
	return s.products.FindByCategory(ctx, category, page, size)
}

// SearchResult 是搜索结果及其分面统计。
type SearchResult struct {
	Facets   map[string]int    `json:"facets"`
	Products []*domain.Product `json:"products"`
}

// SearchProducts 按过滤条件和标题搜索商品，并统计每个类目的命中数。
func (s *CatalogService) SearchProducts(ctx context.Context, filters map[string]interface{}, title string) (*SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.SearchProducts")
	defer span.End()
	span.SetAttributes(attribute.String("search.title", title))

	products, err := s.products.Search(ctx, filters, title)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	facets := make(map[string]int)
	for _, product := range products {
		facets[product.Category]++
	}
	return &SearchResult{Facets: facets, Products: products}, nil
}

func (s *CatalogService) DeleteAllProducts(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "catalog.DeleteAllProducts")
	defer span.End()
	return s.products.DeleteAll(ctx)
}

func (s *CatalogService) CreateWarehouse(ctx context.Context, warehouse *domain.Warehouse) (*domain.Warehouse, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.CreateWarehouse")
	defer span.End()

	if err := s.warehouses.Save(ctx, warehouse); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return warehouse, nil
}

func (s *CatalogService) FetchWarehouse(ctx context.Context, code string) (*domain.Warehouse, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.FetchWarehouse")
	defer span.End()
	return s.warehouses.FindByCode(ctx, code)
}
