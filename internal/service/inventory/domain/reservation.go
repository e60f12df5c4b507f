// internal/service/inventory/domain/reservation.go
package domain

import "time"

// State 定义了库存预占的生命周期状态。
type State string

const (
	StateBlocked   State = "BLOCKED"   // 库存已扣减，等待提交或过期
	StateCommitted State = "COMMITTED" // 扣减已最终生效（终态）
	StateExpired   State = "EXPIRED"   // 已过期/释放，库存已回补（终态）
)

// IsTerminal 返回该状态是否为终态。终态之后不允许任何流转。
func (s State) IsTerminal() bool {
	return s == StateCommitted || s == StateExpired
}

// Reservation 是一次成功 Block 产生的预占记录。
// Expiry 为绝对过期时间（epoch 秒）；过期判定是惰性的时间比较，
// 不依赖定时器。
type Reservation struct {
	ID        string `json:"id"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	Expiry    int64  `json:"expiry"`
	State     State  `json:"state"`
	CreatedAt int64  `json:"created_at"`
}

// ExpiredAt 判断在给定时刻该预占是否已过了有效窗口。
func (r *Reservation) ExpiredAt(now time.Time) bool {
	return now.Unix() > r.Expiry
}
