// internal/service/inventory/domain/stock.go
package domain

// DefaultBuyerLimit 是创建库存记录时未指定限购数的默认值。
const DefaultBuyerLimit = 3

// StockRecord 是一个 SKU 在某个仓库的可售库存。
// Quantity 只允许通过台账的条件扣减/回补操作变更，
// 任何实现都不得出现负库存。
type StockRecord struct {
	SKU         string `json:"sku"`
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int    `json:"quantity"`
	BuyerLimit  int    `json:"buyer_limit"`
}
