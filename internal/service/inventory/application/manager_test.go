// internal/service/inventory/application/manager_test.go
package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"jetcart/internal/service/inventory/domain"
	"jetcart/internal/service/inventory/infrastructure"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

const testWindow = 5 * time.Minute

func newTestManager(t *testing.T, stock, buyerLimit int) (*ReservationManager, *infrastructure.MemoryLedger, *fakeClock) {
	t.Helper()
	ledger := infrastructure.NewMemoryLedger()
	err := ledger.Create(context.Background(), &domain.StockRecord{
		SKU:        "sku-1",
		ProductID:  "prod-1",
		Quantity:   stock,
		BuyerLimit: buyerLimit,
	})
	if err != nil {
		t.Fatalf("create stock record: %v", err)
	}
	clock := newFakeClock()
	manager := NewReservationManager(
		ledger, infrastructure.NewMemoryStore(), clock,
		testWindow, otel.Tracer("test"), nil, nil,
	)
	return manager, ledger, clock
}

func quantityOf(t *testing.T, ledger *infrastructure.MemoryLedger, sku string) int {
	t.Helper()
	rec, err := ledger.Get(context.Background(), sku)
	if err != nil {
		t.Fatalf("get stock record: %v", err)
	}
	return rec.Quantity
}

func TestBlockDecrementsStock(t *testing.T) {
	manager, ledger, clock := newTestManager(t, 10, 3)

	reservation, err := manager.Block(context.Background(), "sku-1", 2)
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if reservation.State != domain.StateBlocked {
		t.Errorf("state = %s, want %s", reservation.State, domain.StateBlocked)
	}
	wantExpiry := clock.Now().Add(testWindow).Unix()
	if reservation.Expiry != wantExpiry {
		t.Errorf("expiry = %d, want %d", reservation.Expiry, wantExpiry)
	}
	if got := quantityOf(t, ledger, "sku-1"); got != 8 {
		t.Errorf("quantity = %d, want 8", got)
	}
}

func TestBlockUnknownSKU(t *testing.T) {
	manager, _, _ := newTestManager(t, 10, 3)

	if _, err := manager.Block(context.Background(), "no-such-sku", 1); !errors.Is(err, domain.ErrInvalidSKU) {
		t.Fatalf("err = %v, want ErrInvalidSKU", err)
	}
}

func TestBlockRejectsInvalidQuantity(t *testing.T) {
	manager, ledger, _ := newTestManager(t, 10, 3)

	for _, quantity := range []int{0, -1, 4} {
		if _, err := manager.Block(context.Background(), "sku-1", quantity); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Errorf("Block(%d) err = %v, want ErrInvalidQuantity", quantity, err)
		}
	}
	if got := quantityOf(t, ledger, "sku-1"); got != 10 {
		t.Errorf("quantity = %d, want 10 (unchanged)", got)
	}
}

func TestBlockInsufficientStock(t *testing.T) {
	// 限购 5 但库存只剩 3：请求量合法，库存不够
	manager, ledger, _ := newTestManager(t, 3, 5)
	ctx := context.Background()

	if _, err := manager.Block(ctx, "sku-1", 5); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if got := quantityOf(t, ledger, "sku-1"); got != 3 {
		t.Errorf("quantity = %d, want 3 (unchanged)", got)
	}

	// 失败的预占不占库存，剩余 3 件仍可整单拿走
	if _, err := manager.Block(ctx, "sku-1", 3); err != nil {
		t.Fatalf("block remaining stock: %v", err)
	}
	if got := quantityOf(t, ledger, "sku-1"); got != 0 {
		t.Errorf("quantity = %d, want 0", got)
	}
}

func TestCommitFinalizesReservation(t *testing.T) {
	manager, ledger, _ := newTestManager(t, 10, 3)
	ctx := context.Background()

	reservation, err := manager.Block(ctx, "sku-1", 2)
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if err := manager.Commit(ctx, reservation.ID); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// 提交不再动台账，数量在 Block 时已经扣掉
	if got := quantityOf(t, ledger, "sku-1"); got != 8 {
		t.Errorf("quantity = %d, want 8", got)
	}
	got, err := manager.GetReservation(ctx, reservation.ID)
	if err != nil {
		t.Fatalf("get reservation: %v", err)
	}
	if got.State != domain.StateCommitted {
		t.Errorf("state = %s, want %s", got.State, domain.StateCommitted)
	}

	// 终态上的重复提交是状态冲突
	if err := manager.Commit(ctx, reservation.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("second commit err = %v, want ErrInvalidTransition", err)
	}
}

func TestCommitUnknownReservation(t *testing.T) {
	manager, _, _ := newTestManager(t, 10, 3)

	if err := manager.Commit(context.Background(), "no-such-id"); !errors.Is(err, domain.ErrUnknownReservation) {
		t.Fatalf("err = %v, want ErrUnknownReservation", err)
	}
}

func TestCommitAfterExpiryReclaimsStock(t *testing.T) {
	manager, ledger, clock := newTestManager(t, 10, 3)
	ctx := context.Background()

	reservation, err := manager.Block(ctx, "sku-1", 3)
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	clock.Advance(testWindow + time.Second)

	// 惰性回收：提交失败的同时库存已经还回台账
	if err := manager.Commit(ctx, reservation.ID); !errors.Is(err, domain.ErrReservationExpired) {
		t.Fatalf("err = %v, want ErrReservationExpired", err)
	}
	if got := quantityOf(t, ledger, "sku-1"); got != 10 {
		t.Errorf("quantity = %d, want 10 (restored)", got)
	}
	got, err := manager.GetReservation(ctx, reservation.ID)
	if err != nil {
		t.Fatalf("get reservation: %v", err)
	}
	if got.State != domain.StateExpired {
		t.Errorf("state = %s, want %s", got.State, domain.StateExpired)
	}

	// 已 EXPIRED 后再提交，报状态冲突而不是再次过期
	if err := manager.Commit(ctx, reservation.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("commit on expired err = %v, want ErrInvalidTransition", err)
	}
}

func TestCommitAtExpiryBoundary(t *testing.T) {
	manager, _, clock := newTestManager(t, 10, 3)
	ctx := context.Background()

	reservation, err := manager.Block(ctx, "sku-1", 1)
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	// 恰好落在过期时刻的提交仍然有效
	clock.Advance(testWindow)
	if err := manager.Commit(ctx, reservation.ID); err != nil {
		t.Fatalf("commit at boundary: %v", err)
	}
}

func TestReleaseRestoresStock(t *testing.T) {
	manager, ledger, _ := newTestManager(t, 10, 3)
	ctx := context.Background()

	reservation, err := manager.Block(ctx, "sku-1", 2)
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if err := manager.Release(ctx, reservation.ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := quantityOf(t, ledger, "sku-1"); got != 10 {
		t.Errorf("quantity = %d, want 10 (restored)", got)
	}

	// 重复释放不会二次回补
	if err := manager.Release(ctx, reservation.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("second release err = %v, want ErrInvalidTransition", err)
	}
	if got := quantityOf(t, ledger, "sku-1"); got != 10 {
		t.Errorf("quantity after second release = %d, want 10", got)
	}
}

func TestReleaseAfterCommit(t *testing.T) {
	manager, ledger, _ := newTestManager(t, 10, 3)
	ctx := context.Background()

	reservation, err := manager.Block(ctx, "sku-1", 2)
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if err := manager.Commit(ctx, reservation.ID); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := manager.Release(ctx, reservation.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("release after commit err = %v, want ErrInvalidTransition", err)
	}
	if got := quantityOf(t, ledger, "sku-1"); got != 8 {
		t.Errorf("quantity = %d, want 8 (committed stock stays gone)", got)
	}
}

func TestSweepExpiredReleasesBatch(t *testing.T) {
	manager, ledger, clock := newTestManager(t, 10, 3)
	ctx := context.Background()

	early1, err := manager.Block(ctx, "sku-1", 2)
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	early2, err := manager.Block(ctx, "sku-1", 3)
	if err != nil {
		t.Fatalf("block: %v", err)
	}

	// 晚一步创建的预占尚未过期
	clock.Advance(testWindow - time.Minute)
	late, err := manager.Block(ctx, "sku-1", 1)
	if err != nil {
		t.Fatalf("block: %v", err)
	}

	clock.Advance(2 * time.Minute)
	released, err := manager.SweepExpired(ctx, 100)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if released != 2 {
		t.Errorf("released = %d, want 2", released)
	}
	if got := quantityOf(t, ledger, "sku-1"); got != 9 {
		t.Errorf("quantity = %d, want 9 (only expired stock restored)", got)
	}

	for _, id := range []string{early1.ID, early2.ID} {
		reservation, err := manager.GetReservation(ctx, id)
		if err != nil {
			t.Fatalf("get reservation: %v", err)
		}
		if reservation.State != domain.StateExpired {
			t.Errorf("reservation %s state = %s, want %s", id, reservation.State, domain.StateExpired)
		}
	}
	reservation, err := manager.GetReservation(ctx, late.ID)
	if err != nil {
		t.Fatalf("get reservation: %v", err)
	}
	if reservation.State != domain.StateBlocked {
		t.Errorf("late reservation state = %s, want %s", reservation.State, domain.StateBlocked)
	}
}

func TestConcurrentBlocksNeverOversell(t *testing.T) {
	const (
		stock   = 30
		workers = 100
	)
	manager, ledger, _ := newTestManager(t, stock, 3)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.Block(ctx, "sku-1", 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != stock {
		t.Errorf("succeeded = %d, want %d", succeeded, stock)
	}
	if got := quantityOf(t, ledger, "sku-1"); got != 0 {
		t.Errorf("quantity = %d, want 0", got)
	}
}
