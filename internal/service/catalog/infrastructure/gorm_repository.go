// internal/service/catalog/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"jetcart/internal/service/catalog/domain"
)

// GormProductRepository 是 ProductRepository 的 GORM 实现。
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Save(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.SalesTax == 0 {
		product.SalesTax = 18
	}
	model := fromDomainProduct(product)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return pkgerrors.Wrap(err, "failed to save product")
	}
	return nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var model ProductModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, pkgerrors.Wrap(err, "failed to load product")
	}
	return toDomainProduct(&model), nil
}

func (r *GormProductRepository) FindAll(ctx context.Context, page, size int) ([]*domain.Product, error) {
	var models []ProductModel
	err := r.db.WithContext(ctx).
		Offset(page * size).Limit(size).
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list products")
	}
	return toDomainProducts(models), nil
}

func (r *GormProductRepository) FindByCategory(ctx context.Context, category string, page, size int) ([]*domain.Product, error) {
	var models []ProductModel
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Offset(page * size).Limit(size).
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list products by category")
	}
	return toDomainProducts(models), nil
}

// Search 只支持列名过滤与标题 LIKE。全文检索是明确的非目标。
func (r *GormProductRepository) Search(ctx context.Context, filters map[string]interface{}, title string) ([]*domain.Product, error) {
	query := r.db.WithContext(ctx).Model(&ProductModel{})
	for column, value := range filters {
		switch column {
		case "category", "price", "mrp":
			query = query.Where(fmt.Sprintf("%s = ?", column), value)
		}
	}
	if title != "" {
		query = query.Where("title LIKE ?", "%"+title+"%")
	}
	var models []ProductModel
	if err := query.Limit(1000).Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to search products")
	}
	return toDomainProducts(models), nil
}

func (r *GormProductRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&ProductModel{}).Error
}

func toDomainProducts(models []ProductModel) []*domain.Product {
	products := make([]*domain.Product, 0, len(models))
	for i := range models {
		products = append(products, toDomainProduct(&models[i]))
	}
	return products
}

// GormWarehouseRepository 是 WarehouseRepository 的 GORM 实现。
type GormWarehouseRepository struct {
	db *gorm.DB
}

func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

func (r *GormWarehouseRepository) Save(ctx context.Context, warehouse *domain.Warehouse) error {
	model := &WarehouseModel{
		Code: warehouse.Code,
		Name: warehouse.Name,
		Lat:  warehouse.Lat,
		Lng:  warehouse.Lng,
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return pkgerrors.Wrap(err, "failed to save warehouse")
	}
	return nil
}

func (r *GormWarehouseRepository) FindByCode(ctx context.Context, code string) (*domain.Warehouse, error) {
	var model WarehouseModel
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrWarehouseNotFound
		}
		return nil, pkgerrors.Wrap(err, "failed to load warehouse")
	}
	return &domain.Warehouse{Code: model.Code, Name: model.Name, Lat: model.Lat, Lng: model.Lng}, nil
}
