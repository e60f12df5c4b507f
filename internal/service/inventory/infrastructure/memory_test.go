// internal/service/inventory/infrastructure/memory_test.go
package infrastructure

import (
	"context"
	"sync"
	"testing"
	"time"

	"jetcart/internal/service/inventory/domain"
)

func TestMemoryLedgerTryDecrement(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()
	if err := ledger.Create(ctx, &domain.StockRecord{SKU: "sku-1", Quantity: 5, BuyerLimit: 3}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := ledger.TryDecrement(ctx, "sku-1", 3); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if err := ledger.TryDecrement(ctx, "sku-1", 3); err != domain.ErrInsufficientStock {
		t.Errorf("err = %v, want ErrInsufficientStock", err)
	}
	if err := ledger.TryDecrement(ctx, "missing", 1); err != domain.ErrInvalidSKU {
		t.Errorf("err = %v, want ErrInvalidSKU", err)
	}

	rec, err := ledger.Get(ctx, "sku-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Quantity != 2 {
		t.Errorf("quantity = %d, want 2", rec.Quantity)
	}
}

func TestMemoryLedgerDuplicateCreate(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()
	if err := ledger.Create(ctx, &domain.StockRecord{SKU: "sku-1", Quantity: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ledger.Create(ctx, &domain.StockRecord{SKU: "sku-1", Quantity: 1}); err != domain.ErrSKUExists {
		t.Errorf("err = %v, want ErrSKUExists", err)
	}
}

func TestMemoryLedgerConcurrentDecrement(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()
	if err := ledger.Create(ctx, &domain.StockRecord{SKU: "sku-1", Quantity: 50}); err != nil {
		t.Fatalf("create: %v", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ledger.TryDecrement(ctx, "sku-1", 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 50 {
		t.Errorf("succeeded = %d, want 50", succeeded)
	}
	rec, _ := ledger.Get(ctx, "sku-1")
	if rec.Quantity != 0 {
		t.Errorf("quantity = %d, want 0", rec.Quantity)
	}
}

func TestMemoryStoreTransition(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	reservation, err := store.Create(ctx, "sku-1", 2, time.Now().Add(time.Minute).Unix())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if reservation.State != domain.StateBlocked {
		t.Fatalf("state = %s, want BLOCKED", reservation.State)
	}

	if err := store.Transition(ctx, reservation.ID, domain.StateCommitted); err != nil {
		t.Fatalf("transition: %v", err)
	}
	// 终态之后的任何流转都被拒绝
	if err := store.Transition(ctx, reservation.ID, domain.StateExpired); err != domain.ErrInvalidTransition {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
	if err := store.Transition(ctx, "missing", domain.StateExpired); err != domain.ErrUnknownReservation {
		t.Errorf("err = %v, want ErrUnknownReservation", err)
	}
}

func TestMemoryStoreFindExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Unix(2000, 0)

	stale, err := store.Create(ctx, "sku-1", 1, 1000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, "sku-1", 1, 3000); err != nil {
		t.Fatalf("create: %v", err)
	}
	committed, err := store.Create(ctx, "sku-2", 1, 1000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Transition(ctx, committed.ID, domain.StateCommitted); err != nil {
		t.Fatalf("transition: %v", err)
	}

	expired, err := store.FindExpired(ctx, now, 10)
	if err != nil {
		t.Fatalf("find expired: %v", err)
	}
	if len(expired) != 1 {
		t.Fatalf("len(expired) = %d, want 1", len(expired))
	}
	if expired[0].ID != stale.ID {
		t.Errorf("expired[0].ID = %s, want %s", expired[0].ID, stale.ID)
	}
}
