// internal/service/order/infrastructure/adapter/inventory_adapter.go
package adapter

import (
	"context"

	inventoryapp "jetcart/internal/service/inventory/application"
)

// InventoryAdapter 以预占管理器实现订单的库存提交端口。
type InventoryAdapter struct {
	manager *inventoryapp.ReservationManager
}

func NewInventoryAdapter(manager *inventoryapp.ReservationManager) *InventoryAdapter {
	return &InventoryAdapter{manager: manager}
}

func (a *InventoryAdapter) Commit(ctx context.Context, reservationID string) error {
	return a.manager.Commit(ctx, reservationID)
}
