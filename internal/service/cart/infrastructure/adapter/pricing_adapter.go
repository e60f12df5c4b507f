// internal/service/cart/infrastructure/adapter/pricing_adapter.go
package adapter

import (
	"context"

	"github.com/pkg/errors"

	catalogapp "jetcart/internal/service/catalog/application"
	"jetcart/internal/service/cart/domain"
	inventoryapp "jetcart/internal/service/inventory/application"
	taxapp "jetcart/internal/service/tax/application"
	taxdomain "jetcart/internal/service/tax/domain"
)

// PricingAdapter 解析条目税率：SKU -> 商品 -> 类目 -> 税种映射。
type PricingAdapter struct {
	stocks  *inventoryapp.StockService
	catalog *catalogapp.CatalogService
	taxes   *taxapp.TaxService
}

func NewPricingAdapter(stocks *inventoryapp.StockService, catalog *catalogapp.CatalogService, taxes *taxapp.TaxService) *PricingAdapter {
	return &PricingAdapter{stocks: stocks, catalog: catalog, taxes: taxes}
}

func (a *PricingAdapter) TaxesForItem(ctx context.Context, item domain.CartItem) ([]domain.TaxRate, error) {
	record, err := a.stocks.Fetch(ctx, item.SKU)
	if err != nil {
		return nil, errors.Wrapf(err, "stock record for sku %s", item.SKU)
	}
	product, err := a.catalog.FetchProduct(ctx, record.ProductID)
	if err != nil {
		return nil, errors.Wrapf(err, "product %s", record.ProductID)
	}

	fact := taxdomain.ItemFact{
		SKU:       item.SKU,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
	}
	applicable, err := a.taxes.TaxesForCategory(ctx, product.Category, fact)
	if err != nil {
		return nil, errors.Wrapf(err, "taxes for category %s", product.Category)
	}

	rates := make([]domain.TaxRate, 0, len(applicable))
	for _, tax := range applicable {
		rates = append(rates, domain.TaxRate{Type: tax.Type, Value: tax.Value})
	}
	return rates, nil
}
