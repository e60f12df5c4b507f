// internal/service/cart/infrastructure/adapter/order_adapter.go
package adapter

import (
	"context"

	"jetcart/internal/service/cart/domain"
	orderapp "jetcart/internal/service/order/application"
)

// OrderAdapter 在结算时经订单服务创建订单。
type OrderAdapter struct {
	orders *orderapp.OrderService
}

func NewOrderAdapter(orders *orderapp.OrderService) *OrderAdapter {
	return &OrderAdapter{orders: orders}
}

func (a *OrderAdapter) CreateForCart(ctx context.Context, cartID string, reservationIDs []string) (*domain.CreatedOrder, error) {
	order, err := a.orders.CreateOrder(ctx, cartID, reservationIDs)
	if err != nil {
		return nil, err
	}
	return &domain.CreatedOrder{ID: order.ID, State: order.State}, nil
}
