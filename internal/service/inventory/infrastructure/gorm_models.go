// internal/service/inventory/infrastructure/gorm_models.go
package infrastructure

import (
	"time"

	"jetcart/internal/service/inventory/domain"
)

// StockModel 对应数据库中的 inventories 表
type StockModel struct {
	SKU         string `gorm:"primaryKey;size:64"`
	ProductID   string `gorm:"size:64;index"`
	WarehouseID string `gorm:"size:64"`
	Quantity    int
	BuyerLimit  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (StockModel) TableName() string {
	return "inventories"
}

// ReservationModel 对应数据库中的 blocked_inventories 表
type ReservationModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	SKU       string `gorm:"size:64;index"`
	Quantity  int
	Expiry    int64  `gorm:"index:idx_state_expiry,priority:2"`
	State     string `gorm:"size:16;index:idx_state_expiry,priority:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ReservationModel) TableName() string {
	return "blocked_inventories"
}

func toDomainStock(model *StockModel) *domain.StockRecord {
	return &domain.StockRecord{
		SKU:         model.SKU,
		ProductID:   model.ProductID,
		WarehouseID: model.WarehouseID,
		Quantity:    model.Quantity,
		BuyerLimit:  model.BuyerLimit,
	}
}

func toDomainReservation(model *ReservationModel) *domain.Reservation {
	return &domain.Reservation{
		ID:        model.ID,
		SKU:       model.SKU,
		Quantity:  model.Quantity,
		Expiry:    model.Expiry,
		State:     domain.State(model.State),
		CreatedAt: model.CreatedAt.Unix(),
	}
}
