// internal/service/order/domain/order.go
package domain

import (
	"errors"
	"time"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAlreadyPlaced = errors.New("order already placed")
	ErrMissingCart        = errors.New("order must reference a cart")
)

// 订单状态沿用原有接口的数值编码。
const (
	StateCreated  = 0
	StateReceived = 5
)

// PaymentDetail 是下单时的支付信息。
type PaymentDetail struct {
	Mode          string `json:"mode"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// Address 是收货地址。
type Address struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// CustomerDetail 是下单客户信息。
type CustomerDetail struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Order 是订单聚合根。ReservationIDs 关联结算时预占的库存。
type Order struct {
	ID              string          `json:"id"`
	CartID          string          `json:"cart_id"`
	State           int             `json:"state"`
	Payment         *PaymentDetail  `json:"payment_detail,omitempty"`
	ShippingAddress *Address        `json:"shipping_address,omitempty"`
	Customer        *CustomerDetail `json:"customer_detail,omitempty"`
	OrderDate       time.Time       `json:"order_date"`
	ReservationIDs  []string        `json:"reservation_ids"`
}
