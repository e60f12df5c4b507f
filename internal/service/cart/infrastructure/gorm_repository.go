// internal/service/cart/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"jetcart/internal/service/cart/domain"
)

// CartModel 是购物车的持久化模型，条目以 JSON 内嵌存储。
type CartModel struct {
	ID                 string `gorm:"primaryKey;size:64"`
	Items              string `gorm:"type:text"`
	TotalValue         float64
	TotalDiscount      float64
	TotalSalesTax      float64
	TotalPayableAmount float64
	State              int `gorm:"index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (CartModel) TableName() string { return "carts" }

func (m *CartModel) toDomain() (*domain.Cart, error) {
	var items []domain.CartItem
	if m.Items != "" {
		if err := json.Unmarshal([]byte(m.Items), &items); err != nil {
			return nil, errors.Wrap(err, "unmarshal cart items")
		}
	}
	return &domain.Cart{
		ID:    m.ID,
		Items: items,
		Value: &domain.CartCalculation{
			TotalValue:         m.TotalValue,
			TotalDiscount:      m.TotalDiscount,
			TotalSalesTax:      m.TotalSalesTax,
			TotalPayableAmount: m.TotalPayableAmount,
		},
		State: m.State,
	}, nil
}

func modelFromCart(cart *domain.Cart) (*CartModel, error) {
	raw, err := json.Marshal(cart.Items)
	if err != nil {
		return nil, errors.Wrap(err, "marshal cart items")
	}
	m := &CartModel{
		ID:    cart.ID,
		Items: string(raw),
		State: cart.State,
	}
	if cart.Value != nil {
		m.TotalValue = cart.Value.TotalValue
		m.TotalDiscount = cart.Value.TotalDiscount
		m.TotalSalesTax = cart.Value.TotalSalesTax
		m.TotalPayableAmount = cart.Value.TotalPayableAmount
	}
	return m, nil
}

// GormCartRepository 基于 GORM 的购物车仓储实现。
type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	model, err := modelFromCart(cart)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *GormCartRepository) FindByID(ctx context.Context, id string) (*domain.Cart, error) {
	var model CartModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCartNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query cart")
	}
	return model.toDomain()
}

func (r *GormCartRepository) Update(ctx context.Context, cart *domain.Cart) error {
	model, err := modelFromCart(cart)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&CartModel{}).Where("id = ?", cart.ID).
		Updates(map[string]interface{}{
			"items":                model.Items,
			"total_value":          model.TotalValue,
			"total_discount":       model.TotalDiscount,
			"total_sales_tax":      model.TotalSalesTax,
			"total_payable_amount": model.TotalPayableAmount,
			"state":                model.State,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "update cart")
	}
	if result.RowsAffected == 0 {
		// 内容未变化时 MySQL 也报 0 行，二次确认存在性
		var count int64
		if err := r.db.WithContext(ctx).Model(&CartModel{}).Where("id = ?", cart.ID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "confirm cart exists")
		}
		if count == 0 {
			return domain.ErrCartNotFound
		}
	}
	return nil
}
