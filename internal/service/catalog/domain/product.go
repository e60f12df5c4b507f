// internal/service/catalog/domain/product.go
package domain

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrWarehouseNotFound = errors.New("warehouse not found")
)

// Product 是商品目录中的一个商品。
type Product struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Price       float64                `json:"price"`
	MRP         float64                `json:"mrp"`
	Category    string                 `json:"category"`
	Attrs       map[string]interface{} `json:"attrs"`
	Images      []string               `json:"images"`
	SalesTax    float64                `json:"-"`
}

// Warehouse 是一个发货仓。
type Warehouse struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Lat  float64 `json:"-"`
	Lng  float64 `json:"-"`
}
