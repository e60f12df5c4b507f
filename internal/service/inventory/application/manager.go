// internal/service/inventory/application/manager.go
package application

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"jetcart/internal/pkg/logger"
	"jetcart/internal/service/inventory/domain"
)

// ReservationManager 编排 Block → Commit/Release 的完整状态机。
// 它是 StockRecord.Quantity 和 Reservation.State 唯一的变更入口。
//
// 过期策略：惰性回收 + 周期清扫双轨。
//   - Commit 路径发现预占已过窗口时，立即走一次释放把库存还回台账，
//     再以 ErrReservationExpired 拒绝提交（惰性回收为准绳）；
//   - 清扫器周期性释放被遗弃的 BLOCKED 预占。
//
// 两条路径共用同一个条件流转，BLOCKED→EXPIRED 只会有一方成功，
// 只有赢家回补台账，因此不会重复加回库存。
type ReservationManager struct {
	ledger domain.StockLedger
	store  domain.ReservationStore
	clock  domain.Clock
	window time.Duration
	tracer trace.Tracer

	events domain.EventPublisher // 可为 nil
	locker domain.SKULocker      // 可为 nil
}

func NewReservationManager(
	ledger domain.StockLedger,
	store domain.ReservationStore,
	clock domain.Clock,
	window time.Duration,
	tracer trace.Tracer,
	events domain.EventPublisher,
	locker domain.SKULocker,
) *ReservationManager {
	return &ReservationManager{
		ledger: ledger, store: store, clock: clock,
		window: window, tracer: tracer,
		events: events, locker: locker,
	}
}

// Block 为一次购买请求预占 quantity 件 sku 的库存。
// 成功时台账立即扣减（悲观预占），返回带过期时间的 BLOCKED 预占记录。
func (m *ReservationManager) Block(ctx context.Context, sku string, quantity int) (*domain.Reservation, error) {
	ctx, span := m.tracer.Start(ctx, "inventory.Block")
	defer span.End()
	span.SetAttributes(
		attribute.String("inventory.sku", sku),
		attribute.Int("inventory.quantity", quantity),
	)

	rec, err := m.ledger.Get(ctx, sku)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if quantity <= 0 || quantity > rec.BuyerLimit {
		err := errors.Wrapf(domain.ErrInvalidQuantity, "0 < quantity <= %d", rec.BuyerLimit)
		span.RecordError(err)
		return nil, err
	}

	var reservation *domain.Reservation
	err = m.withSKULock(ctx, sku, func() error {
		if err := m.ledger.TryDecrement(ctx, sku, quantity); err != nil {
			return err
		}
		expiry := m.clock.Now().Add(m.window).Unix()
		created, err := m.store.Create(ctx, sku, quantity, expiry)
		if err != nil {
			// 预占没落成，立即把扣掉的库存还回去
			if incErr := m.ledger.Increment(ctx, sku, quantity); incErr != nil {
				logger.Ctx(ctx).Error().Err(incErr).
					Str("sku", sku).Int("quantity", quantity).
					Msg("CRITICAL: failed to restore stock after reservation create failure")
			}
			return err
		}
		reservation = created
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			blocksTotal.WithLabelValues("insufficient_stock").Inc()
			span.AddEvent("Insufficient stock")
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, "block failed")
		}
		return nil, err
	}

	blocksTotal.WithLabelValues("ok").Inc()
	span.SetAttributes(attribute.String("reservation.id", reservation.ID))
	m.publish(ctx, &domain.StockEvent{
		Type:          domain.EventStockBlocked,
		ReservationID: reservation.ID,
		SKU:           sku,
		Quantity:      quantity,
		OccurredAt:    m.clock.Now().Unix(),
	})
	logger.Ctx(ctx).Info().
		Str("sku", sku).Int("quantity", quantity).
		Str("reservation_id", reservation.ID).
		Msg("stock blocked")
	return reservation, nil
}

// Commit 把一笔预占的扣减变为最终生效。台账不再变动，
// 数量在 Block 时已经扣掉了。
func (m *ReservationManager) Commit(ctx context.Context, id string) error {
	ctx, span := m.tracer.Start(ctx, "inventory.Commit")
	defer span.End()
	span.SetAttributes(attribute.String("reservation.id", id))

	reservation, err := m.store.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if reservation.State.IsTerminal() {
		return errors.Wrapf(domain.ErrInvalidTransition, "reservation %s is %s", id, reservation.State)
	}

	if reservation.ExpiredAt(m.clock.Now()) {
		// 惰性回收：先把库存还回台账，再向调用方报告过期。
		// 与清扫器竞争时条件流转会判出唯一赢家。
		if relErr := m.expire(ctx, reservation, "lazy"); relErr != nil && !errors.Is(relErr, domain.ErrInvalidTransition) {
			logger.Ctx(ctx).Error().Err(relErr).
				Str("reservation_id", id).
				Msg("failed to reclaim stock of lazily expired reservation")
		}
		commitsTotal.WithLabelValues("expired").Inc()
		span.AddEvent("Reservation found expired at commit time")
		return domain.ErrReservationExpired
	}

	if err := m.store.Transition(ctx, id, domain.StateCommitted); err != nil {
		span.RecordError(err)
		return err
	}

	commitsTotal.WithLabelValues("ok").Inc()
	m.publish(ctx, &domain.StockEvent{
		Type:          domain.EventStockCommitted,
		ReservationID: id,
		SKU:           reservation.SKU,
		Quantity:      reservation.Quantity,
		OccurredAt:    m.clock.Now().Unix(),
	})
	logger.Ctx(ctx).Info().Str("reservation_id", id).Msg("reservation committed")
	return nil
}

// Release 取消一笔预占并把数量还回台账。
// 幂等：对已处于终态的预占再次调用，返回 ErrInvalidTransition，
// 台账不变。
func (m *ReservationManager) Release(ctx context.Context, id string) error {
	ctx, span := m.tracer.Start(ctx, "inventory.Release")
	defer span.End()
	span.SetAttributes(attribute.String("reservation.id", id))

	reservation, err := m.store.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := m.expire(ctx, reservation, "explicit"); err != nil {
		span.RecordError(err)
		return err
	}
	logger.Ctx(ctx).Info().Str("reservation_id", id).Msg("reservation released")
	return nil
}

// GetReservation 按 ID 读取预占记录。
func (m *ReservationManager) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	return m.store.Get(ctx, id)
}

// SweepExpired 释放一批已过期仍处于 BLOCKED 的预占，返回释放条数。
// 由清扫器周期性调用。
func (m *ReservationManager) SweepExpired(ctx context.Context, batchSize int) (int, error) {
	ctx, span := m.tracer.Start(ctx, "inventory.SweepExpired")
	defer span.End()

	expired, err := m.store.FindExpired(ctx, m.clock.Now(), batchSize)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	var released atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, reservation := range expired {
		g.Go(func() error {
			err := m.expire(gctx, reservation, "sweep")
			switch {
			case err == nil:
				released.Add(1)
			case errors.Is(err, domain.ErrInvalidTransition):
				// 另一条路径（commit 或惰性回收）抢先了，无事可做
			default:
				logger.Ctx(gctx).Error().Err(err).
					Str("reservation_id", reservation.ID).
					Msg("sweep failed to release reservation")
			}
			return nil
		})
	}
	_ = g.Wait()

	span.SetAttributes(attribute.Int("sweep.released", int(released.Load())))
	return int(released.Load()), nil
}

// expire 是释放/过期的唯一实现：条件流转到 EXPIRED，
// 赢得流转的一方回补台账并发事件。
func (m *ReservationManager) expire(ctx context.Context, reservation *domain.Reservation, reason string) error {
	if err := m.store.Transition(ctx, reservation.ID, domain.StateExpired); err != nil {
		return err
	}
	err := m.withSKULock(ctx, reservation.SKU, func() error {
		return m.ledger.Increment(ctx, reservation.SKU, reservation.Quantity)
	})
	if err != nil {
		// 状态已置 EXPIRED 但库存没还上，必须告警人工对账
		logger.Ctx(ctx).Error().Err(err).
			Str("reservation_id", reservation.ID).Str("sku", reservation.SKU).
			Msg("CRITICAL: reservation expired but stock not restored")
		return err
	}

	releasesTotal.WithLabelValues(reason).Inc()
	m.publish(ctx, &domain.StockEvent{
		Type:          domain.EventStockReleased,
		ReservationID: reservation.ID,
		SKU:           reservation.SKU,
		Quantity:      reservation.Quantity,
		OccurredAt:    m.clock.Now().Unix(),
	})
	return nil
}

func (m *ReservationManager) withSKULock(ctx context.Context, sku string, fn func() error) error {
	if m.locker == nil {
		return fn()
	}
	return m.locker.WithLock(ctx, sku, fn)
}

func (m *ReservationManager) publish(ctx context.Context, event *domain.StockEvent) {
	if m.events == nil {
		return
	}
	if err := m.events.Publish(ctx, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Str("event", event.Type).Str("sku", event.SKU).
			Msg("failed to publish stock event")
	}
}
