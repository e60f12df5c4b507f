// internal/service/order/domain/ports.go
package domain

import "context"

// OrderRepository 持久化订单聚合。
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, order *Order) error
}

// ReservationCommitter 在确认下单时提交库存预占。
type ReservationCommitter interface {
	Commit(ctx context.Context, reservationID string) error
}
