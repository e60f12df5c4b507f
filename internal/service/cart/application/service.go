// internal/service/cart/application/service.go
package application

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"jetcart/internal/pkg/logger"
	"jetcart/internal/service/cart/domain"
)

// CartItemView 是带商品摘要的条目视图。
type CartItemView struct {
	domain.CartItem
	Title string `json:"title,omitempty"`
	Image string `json:"image,omitempty"`
}

// CartView 是对外返回的购物车视图。
type CartView struct {
	ID    string                  `json:"id"`
	Items []CartItemView          `json:"items"`
	Value *domain.CartCalculation `json:"value"`
	State int                     `json:"state"`
}

// CheckoutResult 是结算结果。
type CheckoutResult struct {
	OrderID        string   `json:"order_id"`
	OrderState     int      `json:"order_state"`
	ReservationIDs []string `json:"reservation_ids"`
}

// CartService 编排购物车的创建、改价与结算。
type CartService struct {
	repo       domain.CartRepository
	catalog    domain.CatalogPort
	stocks     domain.StockBlocker
	orders     domain.OrderCreator
	calculator *cartValueCalculator
	tracer     trace.Tracer
}

func NewCartService(repo domain.CartRepository, catalog domain.CatalogPort, pricing domain.PricingPort, stocks domain.StockBlocker, orders domain.OrderCreator) *CartService {
	return &CartService{
		repo:       repo,
		catalog:    catalog,
		stocks:     stocks,
		orders:     orders,
		calculator: &cartValueCalculator{pricing: pricing},
		tracer:     otel.Tracer("cart-service"),
	}
}

// CreateCart 新建购物车并完成首次计价。
func (s *CartService) CreateCart(ctx context.Context, items []domain.CartItem) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.CreateCart")
	defer span.End()

	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
	}

	cart := &domain.Cart{State: domain.StateCreated}
	cart.AddItems(items)
	if err := s.calculator.calculate(ctx, cart); err != nil {
		return nil, errors.Wrap(err, "calculate cart value")
	}
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}

	span.SetAttributes(attribute.String("cart.id", cart.ID))
	logger.Ctx(ctx).Info().Str("cart_id", cart.ID).Int("items", len(cart.Items)).Msg("cart created")
	return cart, nil
}

// FetchCart 返回带商品摘要的购物车视图，商品信息并发补全。
func (s *CartService) FetchCart(ctx context.Context, id string) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.FetchCart")
	defer span.End()

	cart, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &CartView{
		ID:    cart.ID,
		Items: make([]CartItemView, len(cart.Items)),
		Value: cart.Value,
		State: cart.State,
	}
	g, gctx := errgroup.WithContext(ctx)
	for idx := range cart.Items {
		idx := idx
		view.Items[idx] = CartItemView{CartItem: cart.Items[idx]}
		g.Go(func() error {
			info, err := s.catalog.ProductForSKU(gctx, cart.Items[idx].SKU)
			if err != nil {
				// 商品信息缺失不阻断购物车查询
				logger.Ctx(gctx).Warn().Err(err).Str("sku", cart.Items[idx].SKU).Msg("product lookup failed")
				return nil
			}
			view.Items[idx].Title = info.Title
			view.Items[idx].Image = info.Image
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// AddItems 向已有购物车追加条目并重新计价。
func (s *CartService) AddItems(ctx context.Context, id string, items []domain.CartItem) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddItems")
	defer span.End()

	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
	}

	cart, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cart.State == domain.StateCheckedOut {
		return nil, domain.ErrAlreadyCheckedOut
	}
	cart.AddItems(items)
	if err := s.calculator.calculate(ctx, cart); err != nil {
		return nil, errors.Wrap(err, "calculate cart value")
	}
	if err := s.repo.Update(ctx, cart); err != nil {
		return nil, errors.Wrap(err, "update cart")
	}
	return cart, nil
}

// Checkout 结算：逐条预占库存，全部成功后创建订单并锁定购物车。
// 任一条目预占失败时释放此前已预占的条目再返回错误。
func (s *CartService) Checkout(ctx context.Context, id string) (*CheckoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.Checkout")
	defer span.End()
	span.SetAttributes(attribute.String("cart.id", id))

	cart, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cart.State == domain.StateCheckedOut {
		return nil, domain.ErrAlreadyCheckedOut
	}

	reservationIDs := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		resID, err := s.stocks.Block(ctx, item.SKU, item.Quantity)
		if err != nil {
			s.compensate(ctx, reservationIDs)
			return nil, errors.Wrapf(err, "block stock for sku %s", item.SKU)
		}
		reservationIDs = append(reservationIDs, resID)
	}

	order, err := s.orders.CreateForCart(ctx, cart.ID, reservationIDs)
	if err != nil {
		s.compensate(ctx, reservationIDs)
		return nil, errors.Wrap(err, "create order")
	}

	if err := cart.MarkCheckedOut(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, cart); err != nil {
		return nil, errors.Wrap(err, "update cart state")
	}

	logger.Ctx(ctx).Info().
		Str("cart_id", cart.ID).
		Str("order_id", order.ID).
		Int("reservations", len(reservationIDs)).
		Msg("cart checked out")
	return &CheckoutResult{
		OrderID:        order.ID,
		OrderState:     order.State,
		ReservationIDs: reservationIDs,
	}, nil
}

// compensate 回滚结算中途已经预占的库存。
func (s *CartService) compensate(ctx context.Context, reservationIDs []string) {
	for _, resID := range reservationIDs {
		if err := s.stocks.Release(ctx, resID); err != nil {
			// 释放失败由过期回收兜底，这里只记日志
			logger.Ctx(ctx).Error().Err(err).Str("reservation_id", resID).Msg("compensating release failed")
		}
	}
}
