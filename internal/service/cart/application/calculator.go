// internal/service/cart/application/calculator.go
package application

import (
	"context"

	"jetcart/internal/service/cart/domain"
)

// cartValueCalculator 按条目单价与适用税率计算整车金额。
type cartValueCalculator struct {
	pricing domain.PricingPort
}

// calculate 重算购物车金额并回填每行的销售税。
// 应付金额 = max(0, 总价 + 税 - 折扣)。
func (c *cartValueCalculator) calculate(ctx context.Context, cart *domain.Cart) error {
	var totalValue, totalSalesTax, totalDiscount float64

	for idx := range cart.Items {
		item := &cart.Items[idx]
		totalValue += item.UnitPrice * float64(item.Quantity)

		rates, err := c.pricing.TaxesForItem(ctx, *item)
		if err != nil {
			return err
		}
		var unitTax float64
		for _, rate := range rates {
			unitTax += item.UnitPrice * rate.Value / 100
			item.SalesTaxType = rate.Type
		}
		item.UnitSalesTax = unitTax
		totalSalesTax += unitTax * float64(item.Quantity)
	}

	payable := totalValue + totalSalesTax - totalDiscount
	if payable < 0 {
		payable = 0
	}
	cart.Value = &domain.CartCalculation{
		TotalValue:         totalValue,
		TotalDiscount:      totalDiscount,
		TotalSalesTax:      totalSalesTax,
		TotalPayableAmount: payable,
	}
	return nil
}
