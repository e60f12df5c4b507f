// internal/service/tax/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"jetcart/internal/service/tax/domain"
)

// TaxModel 对应数据库中的 taxes 表
type TaxModel struct {
	Type      string `gorm:"primaryKey;size:16"`
	Value     float64
	CreatedAt time.Time
}

func (TaxModel) TableName() string {
	return "taxes"
}

// TaxMappingModel 对应数据库中的 tax_mappings 表
type TaxMappingModel struct {
	Category  string `gorm:"primaryKey;size:64"`
	TaxTypes  string `gorm:"size:128"` // 逗号分隔的税种列表
	Rule      string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TaxMappingModel) TableName() string {
	return "tax_mappings"
}

// GormTaxRepository 是 TaxRepository 的 GORM 实现。
type GormTaxRepository struct {
	db *gorm.DB
}

func NewGormTaxRepository(db *gorm.DB) *GormTaxRepository {
	return &GormTaxRepository{db: db}
}

func (r *GormTaxRepository) Save(ctx context.Context, tax *domain.Tax) error {
	model := &TaxModel{Type: tax.Type, Value: tax.Value}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return pkgerrors.Wrap(err, "failed to save tax")
	}
	return nil
}

func (r *GormTaxRepository) FindByType(ctx context.Context, taxType string) (*domain.Tax, error) {
	var model TaxModel
	err := r.db.WithContext(ctx).Where("type = ?", taxType).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaxNotFound
		}
		return nil, pkgerrors.Wrap(err, "failed to load tax")
	}
	return &domain.Tax{Type: model.Type, Value: model.Value}, nil
}

func (r *GormTaxRepository) FindAll(ctx context.Context) ([]*domain.Tax, error) {
	var models []TaxModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list taxes")
	}
	taxes := make([]*domain.Tax, 0, len(models))
	for i := range models {
		taxes = append(taxes, &domain.Tax{Type: models[i].Type, Value: models[i].Value})
	}
	return taxes, nil
}

func (r *GormTaxRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&TaxModel{}).Error
}

// GormTaxMappingRepository 是 TaxMappingRepository 的 GORM 实现。
type GormTaxMappingRepository struct {
	db *gorm.DB
}

func NewGormTaxMappingRepository(db *gorm.DB) *GormTaxMappingRepository {
	return &GormTaxMappingRepository{db: db}
}

func (r *GormTaxMappingRepository) Save(ctx context.Context, mapping *domain.TaxMapping) error {
	model := &TaxMappingModel{
		Category: mapping.Category,
		TaxTypes: strings.Join(mapping.TaxTypes, ","),
		Rule:     mapping.Rule,
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return pkgerrors.Wrap(err, "failed to save tax mapping")
	}
	return nil
}

func (r *GormTaxMappingRepository) FindByCategory(ctx context.Context, category string) (*domain.TaxMapping, error) {
	var model TaxMappingModel
	err := r.db.WithContext(ctx).Where("category = ?", category).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMappingNotFound
		}
		return nil, pkgerrors.Wrap(err, "failed to load tax mapping")
	}
	return toDomainMapping(&model), nil
}

func (r *GormTaxMappingRepository) FindAll(ctx context.Context) ([]*domain.TaxMapping, error) {
	var models []TaxMappingModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list tax mappings")
	}
	mappings := make([]*domain.TaxMapping, 0, len(models))
	for i := range models {
		mappings = append(mappings, toDomainMapping(&models[i]))
	}
	return mappings, nil
}

func toDomainMapping(model *TaxMappingModel) *domain.TaxMapping {
	var taxTypes []string
	if model.TaxTypes != "" {
		taxTypes = strings.Split(model.TaxTypes, ",")
	}
	return &domain.TaxMapping{
		Category: model.Category,
		TaxTypes: taxTypes,
		Rule:     model.Rule,
	}
}
