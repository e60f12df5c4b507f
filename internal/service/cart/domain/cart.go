// internal/service/cart/domain/cart.go
package domain

import (
	"errors"
	"sort"
)

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrEmptyCart         = errors.New("cart must have at least one item")
	ErrInvalidItem       = errors.New("invalid cart item")
	ErrAlreadyCheckedOut = errors.New("cart already checked out")
)

// 购物车生命周期状态，沿用原有接口的数值编码。
const (
	StateCreated    = 0
	StateCheckedOut = 2
)

// CartItem 是购物车中的一行条目。
type CartItem struct {
	SKU          string  `json:"sku"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	SalesTaxType string  `json:"sales_tax_type"`
	UnitSalesTax float64 `json:"unit_sales_tax"`
}

// Validate 校验单行条目。
func (i *CartItem) Validate() error {
	if i.SKU == "" || i.Quantity <= 0 || i.UnitPrice < 0 {
		return ErrInvalidItem
	}
	return nil
}

// merge 尝试合并两行条目：SKU 与单价都相同时数量相加。
func (i CartItem) merge(other CartItem) (CartItem, bool) {
	if other.SKU == i.SKU && other.UnitPrice == i.UnitPrice {
		return CartItem{
			SKU:       i.SKU,
			UnitPrice: i.UnitPrice,
			Quantity:  i.Quantity + other.Quantity,
		}, true
	}
	return CartItem{}, false
}

// CartCalculation 是整车的计价结果。
type CartCalculation struct {
	TotalValue         float64 `json:"total_value"`
	TotalDiscount      float64 `json:"total_discount"`
	TotalSalesTax      float64 `json:"total_sales_tax"`
	TotalPayableAmount float64 `json:"total_payable_amount"`
}

// Cart 是购物车聚合的根实体。
type Cart struct {
	ID    string           `json:"id"`
	Items []CartItem       `json:"items"`
	Value *CartCalculation `json:"value"`
	State int              `json:"state"`
}

// AddItems 合并新增条目。按 SKU 排序后做一次线性归并，
// SKU 与单价都相同的相邻条目合为一行。
func (c *Cart) AddItems(newItems []CartItem) {
	if len(newItems) == 0 {
		return
	}
	allItems := append(append([]CartItem{}, c.Items...), newItems...)
	sort.SliceStable(allItems, func(i, j int) bool {
		return allItems[i].SKU < allItems[j].SKU
	})

	merged := make([]CartItem, 0, len(allItems))
	lastItem := allItems[0]
	for _, item := range allItems[1:] {
		if combined, ok := lastItem.merge(item); ok {
			lastItem = combined
		} else {
			merged = append(merged, lastItem)
			lastItem = item
		}
	}
	merged = append(merged, lastItem)
	c.Items = merged
}

// MarkCheckedOut 将购物车置为已结算。重复结算是错误。
func (c *Cart) MarkCheckedOut() error {
	if c.State == StateCheckedOut {
		return ErrAlreadyCheckedOut
	}
	c.State = StateCheckedOut
	return nil
}
