// internal/service/cart/application/service_test.go
package application

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/pkg/errors"

	"jetcart/internal/service/cart/domain"
)

type stubRepo struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
	next  int
}

func newStubRepo() *stubRepo {
	return &stubRepo{carts: make(map[string]*domain.Cart)}
}

func (r *stubRepo) Save(_ context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	cart.ID = fmt.Sprintf("cart-%d", r.next)
	copied := *cart
	r.carts[cart.ID] = &copied
	return nil
}

func (r *stubRepo) FindByID(_ context.Context, id string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[id]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	copied := *cart
	return &copied, nil
}

func (r *stubRepo) Update(_ context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carts[cart.ID]; !ok {
		return domain.ErrCartNotFound
	}
	copied := *cart
	r.carts[cart.ID] = &copied
	return nil
}

type stubPricing struct {
	rates []domain.TaxRate
}

func (p *stubPricing) TaxesForItem(context.Context, domain.CartItem) ([]domain.TaxRate, error) {
	return p.rates, nil
}

type stubCatalog struct{}

func (stubCatalog) ProductForSKU(_ context.Context, sku string) (*domain.ProductInfo, error) {
	return &domain.ProductInfo{ProductID: "prod-" + sku, Title: "title-" + sku}, nil
}

type stubBlocker struct {
	mu       sync.Mutex
	blocked  []string
	released []string
	failSKU  string
	next     int
}

func (b *stubBlocker) Block(_ context.Context, sku string, _ int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sku == b.failSKU {
		return "", errors.New("stock unavailable")
	}
	b.next++
	id := fmt.Sprintf("res-%d", b.next)
	b.blocked = append(b.blocked, id)
	return id, nil
}

func (b *stubBlocker) Release(_ context.Context, reservationID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = append(b.released, reservationID)
	return nil
}

type stubOrders struct {
	lastReservations []string
	fail             bool
}

func (o *stubOrders) CreateForCart(_ context.Context, cartID string, reservationIDs []string) (*domain.CreatedOrder, error) {
	if o.fail {
		return nil, errors.New("order service down")
	}
	o.lastReservations = reservationIDs
	return &domain.CreatedOrder{ID: "order-1", State: 0}, nil
}

func newTestService(blocker *stubBlocker, orders *stubOrders) (*CartService, *stubRepo) {
	repo := newStubRepo()
	svc := NewCartService(
		repo,
		stubCatalog{},
		&stubPricing{rates: []domain.TaxRate{{Type: "VAT", Value: 10}}},
		blocker,
		orders,
	)
	return svc, repo
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCreateCartCalculatesTotals(t *testing.T) {
	svc, _ := newTestService(&stubBlocker{}, &stubOrders{})

	cart, err := svc.CreateCart(context.Background(), []domain.CartItem{
		{SKU: "sku-a", Quantity: 2, UnitPrice: 100},
		{SKU: "sku-b", Quantity: 1, UnitPrice: 50},
	})
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	if cart.Value == nil {
		t.Fatal("cart value not calculated")
	}
	if !almostEqual(cart.Value.TotalValue, 250) {
		t.Errorf("total value = %v, want 250", cart.Value.TotalValue)
	}
	// 10% 税：2*10 + 1*5
	if !almostEqual(cart.Value.TotalSalesTax, 25) {
		t.Errorf("total sales tax = %v, want 25", cart.Value.TotalSalesTax)
	}
	if !almostEqual(cart.Value.TotalPayableAmount, 275) {
		t.Errorf("payable = %v, want 275", cart.Value.TotalPayableAmount)
	}
	for _, item := range cart.Items {
		if item.SalesTaxType != "VAT" {
			t.Errorf("item %s tax type = %q, want VAT", item.SKU, item.SalesTaxType)
		}
	}
}

func TestCreateCartRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(&stubBlocker{}, &stubOrders{})
	ctx := context.Background()

	if _, err := svc.CreateCart(ctx, nil); !errors.Is(err, domain.ErrEmptyCart) {
		t.Errorf("empty cart err = %v, want ErrEmptyCart", err)
	}
	if _, err := svc.CreateCart(ctx, []domain.CartItem{{SKU: "", Quantity: 1}}); !errors.Is(err, domain.ErrInvalidItem) {
		t.Errorf("invalid item err = %v, want ErrInvalidItem", err)
	}
}

func TestCheckoutBlocksEveryItem(t *testing.T) {
	blocker := &stubBlocker{}
	orders := &stubOrders{}
	svc, _ := newTestService(blocker, orders)
	ctx := context.Background()

	cart, err := svc.CreateCart(ctx, []domain.CartItem{
		{SKU: "sku-a", Quantity: 2, UnitPrice: 100},
		{SKU: "sku-b", Quantity: 1, UnitPrice: 50},
	})
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}

	result, err := svc.Checkout(ctx, cart.ID)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.OrderID != "order-1" {
		t.Errorf("order id = %s, want order-1", result.OrderID)
	}
	if len(result.ReservationIDs) != 2 {
		t.Errorf("reservations = %d, want 2", len(result.ReservationIDs))
	}
	if len(orders.lastReservations) != 2 {
		t.Errorf("order created with %d reservations, want 2", len(orders.lastReservations))
	}

	// 二次结算被拒绝
	if _, err := svc.Checkout(ctx, cart.ID); !errors.Is(err, domain.ErrAlreadyCheckedOut) {
		t.Errorf("second checkout err = %v, want ErrAlreadyCheckedOut", err)
	}
}

func TestCheckoutCompensatesOnPartialFailure(t *testing.T) {
	blocker := &stubBlocker{failSKU: "sku-b"}
	svc, repo := newTestService(blocker, &stubOrders{})
	ctx := context.Background()

	cart, err := svc.CreateCart(ctx, []domain.CartItem{
		{SKU: "sku-a", Quantity: 1, UnitPrice: 100},
		{SKU: "sku-b", Quantity: 1, UnitPrice: 50},
	})
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}

	if _, err := svc.Checkout(ctx, cart.ID); err == nil {
		t.Fatal("checkout should fail when a block fails")
	}
	// 第一条已预占的库存被补偿释放
	if len(blocker.released) != 1 || blocker.released[0] != blocker.blocked[0] {
		t.Errorf("released = %v, want %v", blocker.released, blocker.blocked)
	}
	// 购物车保持可结算状态
	stored, err := repo.FindByID(ctx, cart.ID)
	if err != nil {
		t.Fatalf("find cart: %v", err)
	}
	if stored.State != domain.StateCreated {
		t.Errorf("cart state = %d, want %d", stored.State, domain.StateCreated)
	}
}

func TestCheckoutCompensatesOnOrderFailure(t *testing.T) {
	blocker := &stubBlocker{}
	svc, _ := newTestService(blocker, &stubOrders{fail: true})
	ctx := context.Background()

	cart, err := svc.CreateCart(ctx, []domain.CartItem{
		{SKU: "sku-a", Quantity: 1, UnitPrice: 100},
	})
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	if _, err := svc.Checkout(ctx, cart.ID); err == nil {
		t.Fatal("checkout should fail when order creation fails")
	}
	if len(blocker.released) != len(blocker.blocked) {
		t.Errorf("released %d of %d blocked reservations", len(blocker.released), len(blocker.blocked))
	}
}

func TestFetchCartEnrichesItems(t *testing.T) {
	svc, _ := newTestService(&stubBlocker{}, &stubOrders{})
	ctx := context.Background()

	cart, err := svc.CreateCart(ctx, []domain.CartItem{
		{SKU: "sku-a", Quantity: 1, UnitPrice: 100},
	})
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	view, err := svc.FetchCart(ctx, cart.ID)
	if err != nil {
		t.Fatalf("fetch cart: %v", err)
	}
	if view.Items[0].Title != "title-sku-a" {
		t.Errorf("title = %q, want title-sku-a", view.Items[0].Title)
	}
}
