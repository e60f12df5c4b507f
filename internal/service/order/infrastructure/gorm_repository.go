// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"jetcart/internal/service/order/domain"
)

// OrderModel 是订单持久化模型，明细字段以 JSON 存储。
type OrderModel struct {
	ID             string `gorm:"primaryKey;size:64"`
	CartID         string `gorm:"size:64;index"`
	State          int    `gorm:"index"`
	Payment        string `gorm:"type:text"`
	Address        string `gorm:"type:text"`
	Customer       string `gorm:"type:text"`
	ReservationIDs string `gorm:"type:text"`
	OrderDate      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (OrderModel) TableName() string { return "orders" }

func (m *OrderModel) toDomain() (*domain.Order, error) {
	order := &domain.Order{
		ID:        m.ID,
		CartID:    m.CartID,
		State:     m.State,
		OrderDate: m.OrderDate,
	}
	if m.ReservationIDs != "" {
		if err := json.Unmarshal([]byte(m.ReservationIDs), &order.ReservationIDs); err != nil {
			return nil, errors.Wrap(err, "unmarshal reservation ids")
		}
	}
	if m.Payment != "" {
		order.Payment = &domain.PaymentDetail{}
		if err := json.Unmarshal([]byte(m.Payment), order.Payment); err != nil {
			return nil, errors.Wrap(err, "unmarshal payment detail")
		}
	}
	if m.Address != "" {
		order.ShippingAddress = &domain.Address{}
		if err := json.Unmarshal([]byte(m.Address), order.ShippingAddress); err != nil {
			return nil, errors.Wrap(err, "unmarshal shipping address")
		}
	}
	if m.Customer != "" {
		order.Customer = &domain.CustomerDetail{}
		if err := json.Unmarshal([]byte(m.Customer), order.Customer); err != nil {
			return nil, errors.Wrap(err, "unmarshal customer detail")
		}
	}
	return order, nil
}

func modelFromOrder(order *domain.Order) (*OrderModel, error) {
	m := &OrderModel{
		ID:        order.ID,
		CartID:    order.CartID,
		State:     order.State,
		OrderDate: order.OrderDate,
	}
	marshal := func(v interface{}, dst *string, what string) error {
		if v == nil {
			return nil
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return errors.Wrapf(err, "marshal %s", what)
		}
		*dst = string(raw)
		return nil
	}
	if len(order.ReservationIDs) > 0 {
		if err := marshal(order.ReservationIDs, &m.ReservationIDs, "reservation ids"); err != nil {
			return nil, err
		}
	}
	if order.Payment != nil {
		if err := marshal(order.Payment, &m.Payment, "payment detail"); err != nil {
			return nil, err
		}
	}
	if order.ShippingAddress != nil {
		if err := marshal(order.ShippingAddress, &m.Address, "shipping address"); err != nil {
			return nil, err
		}
	}
	if order.Customer != nil {
		if err := marshal(order.Customer, &m.Customer, "customer detail"); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// GormOrderRepository 基于 GORM 的订单仓储实现。
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	model, err := modelFromOrder(order)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query order")
	}
	return model.toDomain()
}

func (r *GormOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	model, err := modelFromOrder(order)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&OrderModel{}).Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"state":    model.State,
			"payment":  model.Payment,
			"address":  model.Address,
			"customer": model.Customer,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "update order")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&OrderModel{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "confirm order exists")
		}
		if count == 0 {
			return domain.ErrOrderNotFound
		}
	}
	return nil
}
