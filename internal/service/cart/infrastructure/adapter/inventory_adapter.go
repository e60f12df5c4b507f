// internal/service/cart/infrastructure/adapter/inventory_adapter.go
package adapter

import (
	"context"

	inventoryapp "jetcart/internal/service/inventory/application"
)

// InventoryAdapter 以预占管理器实现购物车的库存出站端口。
type InventoryAdapter struct {
	manager *inventoryapp.ReservationManager
}

func NewInventoryAdapter(manager *inventoryapp.ReservationManager) *InventoryAdapter {
	return &InventoryAdapter{manager: manager}
}

func (a *InventoryAdapter) Block(ctx context.Context, sku string, quantity int) (string, error) {
	reservation, err := a.manager.Block(ctx, sku, quantity)
	if err != nil {
		return "", err
	}
	return reservation.ID, nil
}

func (a *InventoryAdapter) Release(ctx context.Context, reservationID string) error {
	return a.manager.Release(ctx, reservationID)
}
