// internal/service/catalog/infrastructure/gorm_models.go
package infrastructure

import (
	"encoding/json"
	"time"

	"jetcart/internal/service/catalog/domain"
)

// ProductModel 对应数据库中的 products 表
type ProductModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	Title       string `gorm:"size:255;index"`
	Description string `gorm:"type:text"`
	Price       float64
	MRP         float64 `gorm:"column:mrp"`
	Category    string  `gorm:"size:64;index"`
	Attrs       string  `gorm:"type:json"`
	Images      string  `gorm:"type:json"`
	SalesTax    float64 `gorm:"default:18"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProductModel) TableName() string {
	return "products"
}

// WarehouseModel 对应数据库中的 warehouses 表
type WarehouseModel struct {
	Code      string `gorm:"primaryKey;size:32"`
	Name      string `gorm:"size:255"`
	Lat       float64
	Lng       float64
	CreatedAt time.Time
}

func (WarehouseModel) TableName() string {
	return "warehouses"
}

func toDomainProduct(model *ProductModel) *domain.Product {
	product := &domain.Product{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Price:       model.Price,
		MRP:         model.MRP,
		Category:    model.Category,
		SalesTax:    model.SalesTax,
	}
	// attrs/images 存为 JSON 字符串，这里还原成结构
	if model.Attrs != "" {
		_ = json.Unmarshal([]byte(model.Attrs), &product.Attrs)
	}
	if model.Images != "" {
		_ = json.Unmarshal([]byte(model.Images), &product.Images)
	}
	return product
}

func fromDomainProduct(product *domain.Product) *ProductModel {
	attrs, _ := json.Marshal(product.Attrs)
	images, _ := json.Marshal(product.Images)
	return &ProductModel{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		MRP:         product.MRP,
		Category:    product.Category,
		Attrs:       string(attrs),
		Images:      string(images),
		SalesTax:    product.SalesTax,
	}
}
