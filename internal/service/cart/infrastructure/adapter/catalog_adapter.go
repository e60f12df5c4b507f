// internal/service/cart/infrastructure/adapter/catalog_adapter.go
package adapter

import (
	"context"

	"github.com/pkg/errors"

	catalogapp "jetcart/internal/service/catalog/application"
	"jetcart/internal/service/cart/domain"
	inventoryapp "jetcart/internal/service/inventory/application"
)

// CatalogAdapter 通过库存记录把 SKU 反查成商品摘要。
type CatalogAdapter struct {
	stocks  *inventoryapp.StockService
	catalog *catalogapp.CatalogService
}

func NewCatalogAdapter(stocks *inventoryapp.StockService, catalog *catalogapp.CatalogService) *CatalogAdapter {
	return &CatalogAdapter{stocks: stocks, catalog: catalog}
}

func (a *CatalogAdapter) ProductForSKU(ctx context.Context, sku string) (*domain.ProductInfo, error) {
	record, err := a.stocks.Fetch(ctx, sku)
	if err != nil {
		return nil, errors.Wrapf(err, "stock record for sku %s", sku)
	}
	product, err := a.catalog.FetchProduct(ctx, record.ProductID)
	if err != nil {
		return nil, errors.Wrapf(err, "product %s", record.ProductID)
	}
	info := &domain.ProductInfo{
		ProductID: product.ID,
		Title:     product.Title,
	}
	if len(product.Images) > 0 {
		info.Image = product.Images[0]
	}
	return info, nil
}
