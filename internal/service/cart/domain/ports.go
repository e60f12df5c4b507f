// internal/service/cart/domain/ports.go
package domain

import "context"

// CartRepository 持久化购物车聚合。
type CartRepository interface {
	Save(ctx context.Context, cart *Cart) error
	FindByID(ctx context.Context, id string) (*Cart, error)
	Update(ctx context.Context, cart *Cart) error
}

// TaxRate 是适用于某条目的一条税率（百分比）。
type TaxRate struct {
	Type  string
	Value float64
}

// PricingPort 解析条目适用的税率集合。
type PricingPort interface {
	TaxesForItem(ctx context.Context, item CartItem) ([]TaxRate, error)
}

// ProductInfo 是购物车展示需要的商品摘要。
type ProductInfo struct {
	ProductID string
	Title     string
	Image     string
}

// CatalogPort 按 SKU 反查商品信息。
type CatalogPort interface {
	ProductForSKU(ctx context.Context, sku string) (*ProductInfo, error)
}

// StockBlocker 是库存预占的出站端口。
type StockBlocker interface {
	Block(ctx context.Context, sku string, quantity int) (reservationID string, err error)
	Release(ctx context.Context, reservationID string) error
}

// CreatedOrder 是下游订单服务创建结果的摘要。
type CreatedOrder struct {
	ID    string
	State int
}

// OrderCreator 在结算时为购物车创建订单。
type OrderCreator interface {
	CreateForCart(ctx context.Context, cartID string, reservationIDs []string) (*CreatedOrder, error)
}
