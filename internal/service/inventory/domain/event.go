// internal/service/inventory/domain/event.go
package domain

// 预占生命周期事件类型。
const (
	EventStockBlocked   = "STOCK_BLOCKED"
	EventStockCommitted = "STOCK_COMMITTED"
	EventStockReleased  = "STOCK_RELEASED"
)

// StockEvent 是发往消息队列的预占生命周期事件。
type StockEvent struct {
	Type          string `json:"type"`
	ReservationID string `json:"reservation_id"`
	SKU           string `json:"sku"`
	Quantity      int    `json:"quantity"`
	Available     int    `json:"available,omitempty"`
	OccurredAt    int64  `json:"occurred_at"`
}
