// internal/service/inventory/domain/ports.go
package domain

import (
	"context"
	"time"
)

// StockLedger 定义了库存台账的持久化接口。
// 它位于领域层，由基础设施层实现（MySQL / Redis / 内存）。
type StockLedger interface {
	// Create 新建一条库存记录。SKU 重复返回 ErrSKUExists。
	Create(ctx context.Context, rec *StockRecord) error

	// Get 按 SKU 读取库存记录。不存在返回 ErrInvalidSKU。
	Get(ctx context.Context, sku string) (*StockRecord, error)

	// TryDecrement 原子地检查 quantity >= n 并扣减。
	// 对同一 SKU 的并发调用必须不可分割：不丢失更新、不出现负数。
	// 库存不足返回 ErrInsufficientStock。
	TryDecrement(ctx context.Context, sku string, quantity int) error

	// Increment 回补库存，用于释放/过期路径。
	Increment(ctx context.Context, sku string, quantity int) error

	// SetQuantity 管理员补货，不走预占协议。
	SetQuantity(ctx context.Context, sku string, quantity int) error
}

// ReservationStore 定义了预占记录的持久化接口。
type ReservationStore interface {
	// Create 以 BLOCKED 状态落一条新预占。
	Create(ctx context.Context, sku string, quantity int, expiry int64) (*Reservation, error)

	// Get 按 ID 读取。不存在返回 ErrUnknownReservation。
	Get(ctx context.Context, id string) (*Reservation, error)

	// Transition 条件流转：仅当当前状态为 BLOCKED 时置为目标状态，
	// 否则返回 ErrInvalidTransition。并发的 commit 与 sweep
	// 之间恰好有一方能赢得这次流转。
	Transition(ctx context.Context, id string, target State) error

	// FindExpired 返回在 now 之前过期、仍处于 BLOCKED 状态的预占，
	// 供周期性清扫器回补库存。
	FindExpired(ctx context.Context, now time.Time, limit int) ([]*Reservation, error)
}

// Clock 供过期判定读取当前时间，测试中可注入假时钟。
type Clock interface {
	Now() time.Time
}

// SystemClock 是走系统时间的默认实现。
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// EventPublisher 把预占生命周期事件发往消息队列。
// 发布失败只记录日志，绝不影响业务操作的结果。
type EventPublisher interface {
	Publish(ctx context.Context, event *StockEvent) error
}

// SKULocker 在非数据库台账的多实例部署下，对单个 SKU 的
// 扣减/回补提供跨进程互斥。数据库台账模式下不需要，
// 条件更新本身就是原子边界。
type SKULocker interface {
	WithLock(ctx context.Context, sku string, fn func() error) error
}
