// internal/service/inventory/infrastructure/gorm_ledger.go
package infrastructure

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"jetcart/internal/service/inventory/domain"
)

const mysqlDuplicateEntry = 1062

// GormStockLedger 是 StockLedger 的 GORM/MySQL 实现。
// 扣减用带条件的 UPDATE 完成，原子性由数据库的行锁保证，
// 不同 SKU 的更新各走各的行，互不竞争。
type GormStockLedger struct {
	db *gorm.DB
}

func NewGormStockLedger(db *gorm.DB) *GormStockLedger {
	return &GormStockLedger{db: db}
}

func (l *GormStockLedger) Create(ctx context.Context, rec *domain.StockRecord) error {
	model := &StockModel{
		SKU:         rec.SKU,
		ProductID:   rec.ProductID,
		WarehouseID: rec.WarehouseID,
		Quantity:    rec.Quantity,
		BuyerLimit:  rec.BuyerLimit,
	}
	if err := l.db.WithContext(ctx).Create(model).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return domain.ErrSKUExists
		}
		return pkgerrors.Wrap(err, "failed to create stock record")
	}
	return nil
}

func (l *GormStockLedger) Get(ctx context.Context, sku string) (*domain.StockRecord, error) {
	var model StockModel
	err := l.db.WithContext(ctx).Where("sku = ?", sku).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidSKU
		}
		return nil, pkgerrors.Wrap(err, "failed to load stock record")
	}
	return toDomainStock(&model), nil
}

// TryDecrement 用条件更新实现不可分割的检查-扣减：
//
//	UPDATE inventories SET quantity = quantity - ? WHERE sku = ? AND quantity >= ?
//
// 影响行数为 0 说明条件没有满足——要么 SKU 不存在，要么库存不够。
func (l *GormStockLedger) TryDecrement(ctx context.Context, sku string, quantity int) error {
	result := l.db.WithContext(ctx).Model(&StockModel{}).
		Where("sku = ? AND quantity >= ?", sku, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if result.Error != nil {
		return pkgerrors.Wrap(result.Error, "failed to decrement stock")
	}
	if result.RowsAffected == 0 {
		if _, err := l.Get(ctx, sku); err != nil {
			return err
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

func (l *GormStockLedger) Increment(ctx context.Context, sku string, quantity int) error {
	result := l.db.WithContext(ctx).Model(&StockModel{}).
		Where("sku = ?", sku).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity))
	if result.Error != nil {
		return pkgerrors.Wrap(result.Error, "failed to increment stock")
	}
	if result.RowsAffected == 0 {
		return domain.ErrInvalidSKU
	}
	return nil
}

func (l *GormStockLedger) SetQuantity(ctx context.Context, sku string, quantity int) error {
	// MySQL 对值未变化的 UPDATE 报告影响行数为 0，
	// 所以这里不能用影响行数判断 SKU 是否存在
	if _, err := l.Get(ctx, sku); err != nil {
		return err
	}
	result := l.db.WithContext(ctx).Model(&StockModel{}).
		Where("sku = ?", sku).
		UpdateColumn("quantity", quantity)
	if result.Error != nil {
		return pkgerrors.Wrap(result.Error, "failed to set stock quantity")
	}
	return nil
}
