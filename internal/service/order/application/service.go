// internal/service/order/application/service.go
package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"jetcart/internal/pkg/logger"
	"jetcart/internal/service/order/domain"
)

// PlaceOrderRequest 是确认下单时补充的订单明细。
type PlaceOrderRequest struct {
	Payment         *domain.PaymentDetail  `json:"payment_detail"`
	ShippingAddress *domain.Address        `json:"shipping_address"`
	Customer        *domain.CustomerDetail `json:"customer_detail"`
}

// OrderService 编排订单的创建与确认。
type OrderService struct {
	repo         domain.OrderRepository
	reservations domain.ReservationCommitter
	tracer       trace.Tracer
}

func NewOrderService(repo domain.OrderRepository, reservations domain.ReservationCommitter) *OrderService {
	return &OrderService{
		repo:         repo,
		reservations: reservations,
		tracer:       otel.Tracer("order-service"),
	}
}

// CreateOrder 为已结算的购物车创建待确认订单。
func (s *OrderService) CreateOrder(ctx context.Context, cartID string, reservationIDs []string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if cartID == "" {
		return nil, domain.ErrMissingCart
	}
	order := &domain.Order{
		CartID:         cartID,
		State:          domain.StateCreated,
		OrderDate:      time.Now(),
		ReservationIDs: reservationIDs,
	}
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, errors.Wrap(err, "save order")
	}
	span.SetAttributes(attribute.String("order.id", order.ID))
	logger.Ctx(ctx).Info().Str("order_id", order.ID).Str("cart_id", cartID).Msg("order created")
	return order, nil
}

// FetchOrder 查询订单。
func (s *OrderService) FetchOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.FetchOrder")
	defer span.End()
	return s.repo.FindByID(ctx, id)
}

// PlaceOrder 确认下单：提交订单的全部库存预占，补齐支付、
// 地址与客户信息后把状态推进到 RECEIVED。任一预占提交失败
// （典型为已过期）则订单保持原状，错误原样上抛。
func (s *OrderService) PlaceOrder(ctx context.Context, id string, req *PlaceOrderRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id))

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.State == domain.StateReceived {
		return nil, domain.ErrOrderAlreadyPlaced
	}

	for _, resID := range order.ReservationIDs {
		if err := s.reservations.Commit(ctx, resID); err != nil {
			return nil, errors.Wrapf(err, "commit reservation %s", resID)
		}
	}

	order.State = domain.StateReceived
	if req != nil {
		order.Payment = req.Payment
		order.ShippingAddress = req.ShippingAddress
		order.Customer = req.Customer
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, errors.Wrap(err, "update order")
	}

	logger.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Int("reservations", len(order.ReservationIDs)).
		Msg("order placed")
	return order, nil
}
