// internal/service/inventory/domain/errors.go
package domain

import "errors"

// 预占子系统的全部业务错误。调用方用 errors.Is 区分，
// HTTP 层据此映射状态码。业务性结果（如库存不足）与
// 请求错误（如超出限购）是不同的错误，不可混用。
var (
	// ErrInvalidSKU SKU 不存在
	ErrInvalidSKU = errors.New("invalid sku")
	// ErrSKUExists 库存记录重复创建
	ErrSKUExists = errors.New("sku already exists")
	// ErrInvalidQuantity 数量不在 (0, buyer_limit] 区间
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInsufficientStock 可售库存不足。这是预期中的业务结果，
	// 不是校验失败，调用方（如购物车结算）需要单独处理
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrUnknownReservation 预占记录不存在
	ErrUnknownReservation = errors.New("unknown reservation")
	// ErrReservationExpired 提交时预占已过有效窗口
	ErrReservationExpired = errors.New("reservation expired")
	// ErrInvalidTransition 从终态发起的状态流转
	ErrInvalidTransition = errors.New("invalid state transition")
)
