// internal/service/catalog/domain/repository.go
package domain

import "context"

// ProductRepository 定义了商品数据的持久化接口。
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindAll(ctx context.Context, page, size int) ([]*Product, error)
	FindByCategory(ctx context.Context, category string, page, size int) ([]*Product, error)
	// Search 按属性过滤并可选地按标题模糊匹配
	Search(ctx context.Context, filters map[string]interface{}, title string) ([]*Product, error)
	DeleteAll(ctx context.Context) error
}

// WarehouseRepository 定义了仓库数据的持久化接口。
type WarehouseRepository interface {
	Save(ctx context.Context, warehouse *Warehouse) error
	FindByCode(ctx context.Context, code string) (*Warehouse, error)
}
