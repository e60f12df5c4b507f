// internal/service/inventory/infrastructure/memory.go
package infrastructure

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"jetcart/internal/service/inventory/domain"
)

// MemoryLedger 是 StockLedger 的进程内实现，用于测试和本地开发。
// 每个 SKU 持有独立的互斥量，不同 SKU 的扣减互不阻塞。
type MemoryLedger struct {
	mu      sync.RWMutex // 只保护 records map 本身
	records map[string]*memoryStock
}

type memoryStock struct {
	mu  sync.Mutex
	rec domain.StockRecord
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{records: make(map[string]*memoryStock)}
}

func (l *MemoryLedger) Create(_ context.Context, rec *domain.StockRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.records[rec.SKU]; ok {
		return domain.ErrSKUExists
	}
	l.records[rec.SKU] = &memoryStock{rec: *rec}
	return nil
}

func (l *MemoryLedger) Get(_ context.Context, sku string) (*domain.StockRecord, error) {
	stock, ok := l.lookup(sku)
	if !ok {
		return nil, domain.ErrInvalidSKU
	}
	stock.mu.Lock()
	defer stock.mu.Unlock()
	rec := stock.rec
	return &rec, nil
}

func (l *MemoryLedger) TryDecrement(_ context.Context, sku string, quantity int) error {
	stock, ok := l.lookup(sku)
	if !ok {
		return domain.ErrInvalidSKU
	}
	// 检查与扣减在同一把 SKU 锁内完成
	stock.mu.Lock()
	defer stock.mu.Unlock()
	if stock.rec.Quantity < quantity {
		return domain.ErrInsufficientStock
	}
	stock.rec.Quantity -= quantity
	return nil
}

func (l *MemoryLedger) Increment(_ context.Context, sku string, quantity int) error {
	stock, ok := l.lookup(sku)
	if !ok {
		return domain.ErrInvalidSKU
	}
	stock.mu.Lock()
	defer stock.mu.Unlock()
	stock.rec.Quantity += quantity
	return nil
}

func (l *MemoryLedger) SetQuantity(_ context.Context, sku string, quantity int) error {
	stock, ok := l.lookup(sku)
	if !ok {
		return domain.ErrInvalidSKU
	}
	stock.mu.Lock()
	defer stock.mu.Unlock()
	stock.rec.Quantity = quantity
	return nil
}

func (l *MemoryLedger) lookup(sku string) (*memoryStock, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stock, ok := l.records[sku]
	return stock, ok
}

// MemoryStore 是 ReservationStore 的进程内实现。
type MemoryStore struct {
	mu           sync.Mutex
	reservations map[string]*domain.Reservation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reservations: make(map[string]*domain.Reservation)}
}

func (s *MemoryStore) Create(_ context.Context, sku string, quantity int, expiry int64) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reservation := &domain.Reservation{
		ID:        uuid.New().String(),
		SKU:       sku,
		Quantity:  quantity,
		Expiry:    expiry,
		State:     domain.StateBlocked,
		CreatedAt: time.Now().Unix(),
	}
	s.reservations[reservation.ID] = reservation
	copied := *reservation
	return &copied, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reservation, ok := s.reservations[id]
	if !ok {
		return nil, domain.ErrUnknownReservation
	}
	copied := *reservation
	return &copied, nil
}

func (s *MemoryStore) Transition(_ context.Context, id string, target domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reservation, ok := s.reservations[id]
	if !ok {
		return domain.ErrUnknownReservation
	}
	// 只允许从 BLOCKED 出发
	if reservation.State != domain.StateBlocked {
		return domain.ErrInvalidTransition
	}
	reservation.State = target
	return nil
}

func (s *MemoryStore) FindExpired(_ context.Context, now time.Time, limit int) ([]*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []*domain.Reservation
	for _, reservation := range s.reservations {
		if reservation.State == domain.StateBlocked && reservation.ExpiredAt(now) {
			copied := *reservation
			expired = append(expired, &copied)
			if limit > 0 && len(expired) >= limit {
				break
			}
		}
	}
	return expired, nil
}
